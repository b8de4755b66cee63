// Package generation assigns generation ranks to the people of a graph.
//
// # Ranks
//
// [Assign] gives every visible person an integer rank such that parents are
// strictly above their children and spouses share a rank. Among all
// assignments meeting those two rules it returns the smallest one: roots
// (people with no visible in-graph parent) sit at 0 and everyone else one
// below their lowest-placed parent group. Cross-generation remarriages
// therefore pull a person no lower than necessary.
//
// Spouses are unified into groups first (union-find), then groups are ranked
// with Kahn's algorithm over the condensed parent→child relation, the same
// longest-path layering used for dependency towers.
//
// # Collapsed People
//
// Descendants of a collapsed person are hidden. A spouse of a hidden person
// is hidden too when it has no visible parent and no visible spouse left. The
// collapsed person itself stays visible but is not unified with its spouses.
//
// # Components
//
// Weakly connected groups of visible people form components, numbered in
// discovery order. Each component has its own roots at rank 0 and is laid
// out beside the others.
//
// # Malformed Topology
//
// Self-parenting and ancestry cycles never make [Assign] loop. A group that
// is its own parent ignores that link. When no group is ready, one member of
// a cycle whose outside parents are all ranked is released, ranked below
// those parents; descendants of the cycle wait for it as usual. Both cases are reported as INVALID_TOPOLOGY warnings.
package generation

// Package graph holds the person graph: the single source of truth for the
// person records of a chart.
//
// # Overview
//
// A [Graph] maps person ids to records and remembers the order in which ids
// were first discovered. Discovery order is the tie-breaker for every
// downstream ordering decision (generation assignment, unit placement), so
// the same input always yields the same chart.
//
// # Symmetry
//
// Relationship data arriving from the backend is often one-sided: a child
// names its father but the father's record predates the child. After every
// [Graph.Merge] the graph re-derives back-references across all records:
//
//   - A child naming a parent is added to that parent's children.
//   - A spouse reference is mirrored on the other spouse.
//   - A parent listing a child fills the child's matching empty parent slot,
//     chosen by the parent's gender (father first when unknown).
//
// Repair only adds links. An occupied parent slot is never overwritten, and
// a record that omits a back-reference never erases the other side. Links are
// removed only by [Graph.Remove], [Graph.Unlink] or [Graph.Clear].
//
// # Temporary Ids
//
// Records created optimistically carry a temporary id until the backend
// confirms them. [Graph.ReconcileTemporaryID] rewrites the node id and every
// reference to it in one pass.
//
// # Concurrency
//
// A Graph is not safe for concurrent use. The chart coordinator serializes
// all access.
package graph

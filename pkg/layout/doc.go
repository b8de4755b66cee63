// Package layout turns generation ranks into card coordinates.
//
// # Coordinates
//
// The engine works on two abstract axes. Generations stack along the stack
// axis and people spread along the spread axis. [Vertical] maps spread to x
// and stack to y (generations top to bottom); [Horizontal] is the transpose.
// Node coordinates are the top-left corner of a card in chart units.
//
// # Family Units
//
// Within one generation row, each person not yet assigned forms a unit with
// its not-yet-assigned spouses of the same generation, unless the person is
// collapsed. Units are ordered by the mean spread position of their parents.
// Sibling units sharing the same parents form a block that is centered under
// them, so an only child sits right below the couple's midpoint. Blocks never
// move left of the row cursor, which keeps cards of a row from overlapping.
//
// # Pins
//
// A pinned person keeps its stored position verbatim and takes no room in its
// unit. Pinned cards are obstacles: unpinned cards in the same row band are
// pushed past them. A pin changes only through [Pins.Pin], [Pins.Reset],
// [Pins.ResetAll] or an orientation change handled by the caller.
//
// # Edges
//
// One spouse edge is emitted per couple. A child whose two visible parents
// are married gets a single family edge from the couple's midpoint; any other
// visible parent gets its own parent edge. Hidden people produce no edges.
package layout

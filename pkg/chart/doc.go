// Package chart holds the state of one interactive family chart and
// coordinates it with the backend.
//
// # Chart
//
// [Chart] owns the person graph and the view state that sits on top of it:
// manual pins, collapsed people, orientation, people still waiting for the
// backend to confirm them, and the last computed layout. Mutations mark the
// layout stale; [Chart.Layout] recomputes on demand. A drag in progress is
// shown as a preview over the last layout and only becomes a pin when it
// ends.
//
// Chart is not safe for concurrent use.
//
// # Coordinator
//
// [Coordinator] serializes every chart mutation behind one mutex and talks
// to the backend. Network calls run without the lock held and their results
// are merged in a single critical section, so a failed fetch never leaves a
// half-merged graph. Coordinator implements [render.Handler], which is how
// pointer gestures reach the chart: a click expands a person, the collapse
// toggle hides their descendants, and a finished drag pins the card.
//
// Adding a relative is optimistic. The new person appears immediately under
// a temporary id, the create request is sent, and the temporary id is then
// replaced everywhere by the id the backend returned. If the create fails
// the optimistic record is removed again.
//
// [render.Handler]: github.com/matzehuels/kintree/pkg/render.Handler
package chart

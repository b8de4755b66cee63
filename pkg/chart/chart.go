package chart

import (
	"context"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/generation"
	"github.com/matzehuels/kintree/pkg/graph"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/person"
	"github.com/matzehuels/kintree/pkg/store"
)

// State is the persistable part of a chart.
type State struct {
	People []person.Person
	View   store.View
}

// dragPreview is a drag that has not been committed.
type dragPreview struct {
	id    string
	start layout.Point
	at    layout.Point
}

// Chart is one family chart with its view state.
type Chart struct {
	opts      layout.Options
	engine    *layout.Engine
	graph     *graph.Graph
	pins      *layout.Pins
	collapsed map[string]bool
	pending   map[string]bool

	last  *layout.Layout
	dirty bool
	drag  *dragPreview

	logger *log.Logger
}

// New returns an empty chart. A nil logger discards output.
func New(opts layout.Options, logger *log.Logger) *Chart {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Chart{
		opts:      opts,
		engine:    layout.New(opts),
		graph:     graph.New(),
		pins:      layout.NewPins(),
		collapsed: make(map[string]bool),
		pending:   make(map[string]bool),
		dirty:     true,
		logger:    logger,
	}
}

// Graph returns the person graph. Callers must not mutate it directly.
func (c *Chart) Graph() *graph.Graph { return c.graph }

// Options returns the effective layout options.
func (c *Chart) Options() layout.Options { return c.engine.Options() }

// Relayout recomputes the layout from the current graph and view state and
// keeps it as the last good layout.
func (c *Chart) Relayout(ctx context.Context) *layout.Layout {
	start := time.Now()
	gen := generation.Assign(c.graph, c.collapsed)
	l := c.engine.Compute(layout.Input{
		Graph:       c.graph,
		Generations: gen,
		Collapsed:   c.collapsed,
		Pins:        c.pins,
	})
	// Pending people are drawn like temporary ones until confirmed.
	for i := range l.Nodes {
		if c.pending[l.Nodes[i].ID] {
			l.Nodes[i].Temporary = true
		}
	}
	dur := time.Since(start)

	for _, w := range l.Warnings {
		c.logger.Warn("topology", "code", w.Code, "people", w.People, "msg", w.Message)
	}
	c.logger.Debug("computed layout", "nodes", len(l.Nodes), "edges", len(l.Edges), "duration", dur)
	observability.Chart().OnLayoutComplete(ctx, len(l.Nodes), len(l.Warnings), dur)

	c.last = l
	c.dirty = false
	return l
}

// Layout returns the current layout, recomputing it if the chart changed,
// with any drag preview applied.
func (c *Chart) Layout(ctx context.Context) *layout.Layout {
	if c.dirty || c.last == nil {
		c.Relayout(ctx)
	}
	if c.drag != nil {
		return c.last.WithPreview(c.drag.id, c.drag.at, c.engine.Options())
	}
	return c.last
}

func (c *Chart) invalidate() { c.dirty = true }

// Merge adds or replaces people; see [graph.Graph.Merge].
func (c *Chart) Merge(people []person.Person) error {
	if err := c.graph.Merge(people); err != nil {
		return err
	}
	c.invalidate()
	return nil
}

// Upsert adds or replaces one person.
func (c *Chart) Upsert(p person.Person) error {
	return c.Merge([]person.Person{p})
}

// Remove deletes a person together with its pin and collapse state.
func (c *Chart) Remove(id string) error {
	if err := c.graph.Remove(id); err != nil {
		return err
	}
	c.pins.Reset(id)
	delete(c.collapsed, id)
	delete(c.pending, id)
	if c.drag != nil && c.drag.id == id {
		c.drag = nil
	}
	c.invalidate()
	return nil
}

// Clear removes every person and all view state except orientation.
func (c *Chart) Clear() {
	c.graph.Clear()
	c.pins.ResetAll()
	clear(c.collapsed)
	clear(c.pending)
	c.drag = nil
	c.invalidate()
}

// Len returns the number of people.
func (c *Chart) Len() int { return c.graph.Len() }

// Pin fixes id's card at the given top-left position.
func (c *Chart) Pin(id string, at layout.Point) error {
	if !c.graph.Has(id) {
		return errors.New(errors.ErrCodeNotFound, "person %q not found", id)
	}
	c.pins.Pin(id, at)
	c.invalidate()
	return nil
}

// ResetPositions unpins the given people, or everyone when ids is empty. It
// returns the number of pins removed.
func (c *Chart) ResetPositions(ids ...string) int {
	n := 0
	if len(ids) == 0 {
		n = c.pins.ResetAll()
	} else {
		for _, id := range ids {
			if c.pins.Reset(id) {
				n++
			}
		}
	}
	if n > 0 {
		c.invalidate()
	}
	return n
}

// Pins returns a copy of the manual positions.
func (c *Chart) Pins() map[string]layout.Point { return c.pins.Snapshot() }

// Orientation returns the current orientation.
func (c *Chart) Orientation() layout.Orientation { return c.engine.Options().Orientation }

// SetOrientation switches orientation. Pins are expressed in the old
// orientation's coordinates, so they are cleared; the count is returned.
func (c *Chart) SetOrientation(o layout.Orientation) (int, error) {
	o, err := layout.ParseOrientation(string(o))
	if err != nil {
		return 0, err
	}
	if o == c.Orientation() {
		return 0, nil
	}
	c.opts.Orientation = o
	c.engine = layout.New(c.opts)
	c.drag = nil
	n := c.pins.ResetAll()
	c.invalidate()
	return n, nil
}

// ToggleCollapsed flips id's collapsed state and returns the new state.
func (c *Chart) ToggleCollapsed(id string) (bool, error) {
	if !c.graph.Has(id) {
		return false, errors.New(errors.ErrCodeNotFound, "person %q not found", id)
	}
	c.collapsed[id] = !c.collapsed[id]
	if !c.collapsed[id] {
		delete(c.collapsed, id)
	}
	c.invalidate()
	return c.collapsed[id], nil
}

// IsCollapsed reports whether id's descendants are hidden.
func (c *Chart) IsCollapsed(id string) bool { return c.collapsed[id] }

// MarkPending records id as waiting for backend confirmation.
func (c *Chart) MarkPending(id string) {
	c.pending[id] = true
	c.invalidate()
}

// IsPending reports whether id is waiting for backend confirmation.
func (c *Chart) IsPending(id string) bool { return c.pending[id] }

// Confirm replaces the temporary id tmp with perm across the graph and the
// view state. It returns the number of rewritten references; zero means
// nothing referred to tmp any more.
func (c *Chart) Confirm(tmp, perm string) (int, error) {
	n, err := c.graph.ReconcileTemporaryID(tmp, perm)
	if err != nil {
		return 0, err
	}
	c.pins.Rename(tmp, perm)
	if c.collapsed[tmp] {
		delete(c.collapsed, tmp)
		c.collapsed[perm] = true
	}
	delete(c.pending, tmp)
	if c.drag != nil && c.drag.id == tmp {
		c.drag.id = perm
	}
	c.invalidate()
	return n, nil
}

// StartDrag begins a drag preview of id's card, replacing any earlier
// preview. It reports false when id has no card.
func (c *Chart) StartDrag(ctx context.Context, id string) bool {
	n, ok := c.Layout(ctx).Node(id)
	if !ok {
		c.drag = nil
		return false
	}
	c.drag = &dragPreview{id: id, start: n.Position(), at: n.Position()}
	return true
}

// Drag moves the preview by the offset from the drag start.
func (c *Chart) Drag(id string, dx, dy float64) {
	if c.drag == nil || c.drag.id != id {
		return
	}
	c.drag.at = layout.Point{X: c.drag.start.X + dx, Y: c.drag.start.Y + dy}
}

// EndDrag commits the drag by pinning id at the given position. A preview
// of another card is left running.
func (c *Chart) EndDrag(id string, at layout.Point) error {
	if c.drag != nil && c.drag.id == id {
		c.drag = nil
	}
	return c.Pin(id, at)
}

// CancelDrag drops the preview without pinning.
func (c *Chart) CancelDrag(id string) {
	if c.drag != nil && c.drag.id == id {
		c.drag = nil
	}
}

// Dragging returns the id of the card being previewed.
func (c *Chart) Dragging() (string, bool) {
	if c.drag == nil {
		return "", false
	}
	return c.drag.id, true
}

// State returns the persistable state. Pending people are left out.
func (c *Chart) State() State {
	var people []person.Person
	for _, p := range c.graph.Snapshot() {
		if !c.pending[p.ID] {
			people = append(people, p)
		}
	}
	collapsed := slices.Sorted(maps.Keys(c.collapsed))
	return State{
		People: people,
		View: store.View{
			Pins:        c.pins.Snapshot(),
			Collapsed:   collapsed,
			Orientation: c.Orientation(),
		},
	}
}

// Restore replaces the chart contents with s. On error the chart is left
// unchanged.
func (c *Chart) Restore(s State) error {
	g := graph.New()
	if err := g.Merge(s.People); err != nil {
		return err
	}
	if s.View.Orientation != "" {
		o, err := layout.ParseOrientation(string(s.View.Orientation))
		if err != nil {
			return err
		}
		c.opts.Orientation = o
		c.engine = layout.New(c.opts)
	}
	c.graph = g
	c.pins.Restore(s.View.Pins)
	c.collapsed = make(map[string]bool, len(s.View.Collapsed))
	for _, id := range s.View.Collapsed {
		c.collapsed[id] = true
	}
	clear(c.pending)
	c.drag = nil
	c.invalidate()
	return nil
}

package chart

import (
	"context"
	"testing"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/person"
	"github.com/matzehuels/kintree/pkg/store"
)

func family() []person.Person {
	return []person.Person{
		{ID: "1", Data: person.Data{FirstName: "John", Gender: person.GenderMale},
			Rels: person.Rels{Spouses: []string{"2"}, Children: []string{"3"}}},
		{ID: "2", Data: person.Data{FirstName: "Jane", Gender: person.GenderFemale},
			Rels: person.Rels{Spouses: []string{"1"}, Children: []string{"3"}}},
		{ID: "3", Data: person.Data{FirstName: "Tom"}, Rels: person.Rels{Father: "1", Mother: "2"}},
	}
}

func newFamilyChart(t *testing.T) *Chart {
	t.Helper()
	c := New(layout.Options{}, nil)
	if err := c.Merge(family()); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestLayoutIsLazy(t *testing.T) {
	ctx := context.Background()
	c := newFamilyChart(t)
	l := c.Layout(ctx)
	if len(l.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(l.Nodes))
	}
	if c.Layout(ctx) != l {
		t.Error("unchanged chart recomputed its layout")
	}
	if err := c.Pin("3", layout.Point{X: 500, Y: 500}); err != nil {
		t.Fatal(err)
	}
	if c.Layout(ctx) == l {
		t.Error("pin did not invalidate the layout")
	}
}

func TestDragPreview(t *testing.T) {
	ctx := context.Background()
	c := newFamilyChart(t)
	before, _ := c.Layout(ctx).Position("3")

	if !c.StartDrag(ctx, "3") {
		t.Fatal("StartDrag() = false")
	}
	c.Drag("3", 30, -10)
	got, _ := c.Layout(ctx).Position("3")
	if want := (layout.Point{X: before.X + 30, Y: before.Y - 10}); got != want {
		t.Errorf("preview position = %v, want %v", got, want)
	}
	if c.Pins()["3"] != (layout.Point{}) {
		t.Error("preview must not pin")
	}

	c.CancelDrag("3")
	if got, _ := c.Layout(ctx).Position("3"); got != before {
		t.Errorf("after cancel = %v, want %v", got, before)
	}

	c.StartDrag(ctx, "3")
	c.Drag("3", 5, 5)
	if err := c.EndDrag("3", layout.Point{X: 700, Y: 20}); err != nil {
		t.Fatal(err)
	}
	n, _ := c.Layout(ctx).Node("3")
	if !n.Pinned || n.X != 700 || n.Y != 20 {
		t.Errorf("after drop = %+v", n)
	}
	if _, ok := c.Dragging(); ok {
		t.Error("drag still active")
	}
}

func TestStartDragReplacesPreview(t *testing.T) {
	ctx := context.Background()
	c := newFamilyChart(t)
	c.StartDrag(ctx, "1")
	c.Drag("1", 100, 0)
	c.StartDrag(ctx, "2")
	if id, _ := c.Dragging(); id != "2" {
		t.Errorf("Dragging() = %q, want 2", id)
	}
	c.Drag("1", 50, 0)
	if n, _ := c.Layout(ctx).Node("1"); n.X != c.last.Nodes[0].X {
		t.Error("stale drag moved a card")
	}
}

func TestEndDragKeepsOtherPreview(t *testing.T) {
	ctx := context.Background()
	c := newFamilyChart(t)
	c.StartDrag(ctx, "2")
	c.Drag("2", 40, 0)

	if err := c.EndDrag("1", layout.Point{X: 500, Y: 0}); err != nil {
		t.Fatal(err)
	}
	if id, ok := c.Dragging(); !ok || id != "2" {
		t.Errorf("Dragging() = %q, %v, want 2 still previewed", id, ok)
	}
	if n, _ := c.Layout(ctx).Node("1"); !n.Pinned || n.X != 500 {
		t.Errorf("dropped card = %+v, want pinned at 500", n)
	}
}

func TestSetOrientationClearsPins(t *testing.T) {
	ctx := context.Background()
	c := newFamilyChart(t)
	_ = c.Pin("1", layout.Point{X: 1, Y: 1})
	n, err := c.SetOrientation(layout.Horizontal)
	if err != nil || n != 1 {
		t.Fatalf("SetOrientation() = %d, %v; want 1 cleared", n, err)
	}
	if c.Layout(ctx).Orientation != layout.Horizontal {
		t.Error("orientation not applied")
	}
	if _, err := c.SetOrientation("diagonal"); !errors.Is(err, errors.ErrCodeInvalidOrientation) {
		t.Errorf("error = %v, want INVALID_ORIENTATION", err)
	}
}

func TestToggleCollapsed(t *testing.T) {
	ctx := context.Background()
	c := newFamilyChart(t)
	on, err := c.ToggleCollapsed("1")
	if err != nil || !on {
		t.Fatalf("ToggleCollapsed() = %v, %v", on, err)
	}
	if _, ok := c.Layout(ctx).Node("3"); ok {
		t.Error("child of collapsed person still visible")
	}
	on, _ = c.ToggleCollapsed("1")
	if on || c.IsCollapsed("1") {
		t.Error("second toggle should expand")
	}
	if _, err := c.ToggleCollapsed("nobody"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestResetPositions(t *testing.T) {
	c := newFamilyChart(t)
	_ = c.Pin("1", layout.Point{})
	_ = c.Pin("2", layout.Point{})
	if n := c.ResetPositions("2", "3"); n != 1 {
		t.Errorf("ResetPositions(2, 3) = %d, want 1", n)
	}
	if n := c.ResetPositions(); n != 1 {
		t.Errorf("ResetPositions() = %d, want 1", n)
	}
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()
	c := newFamilyChart(t)
	tmp := person.NewTemporaryID()
	_ = c.Upsert(person.Person{ID: tmp, Rels: person.Rels{Father: "3"}})
	c.MarkPending(tmp)
	_ = c.Pin(tmp, layout.Point{X: 9, Y: 9})

	if n, _ := c.Layout(ctx).Node(tmp); !n.Temporary {
		t.Error("pending card not marked temporary")
	}
	if len(c.State().People) != 3 {
		t.Error("State() should skip pending people")
	}

	n, err := c.Confirm(tmp, "4")
	if err != nil || n == 0 {
		t.Fatalf("Confirm() = %d, %v", n, err)
	}
	if c.IsPending(tmp) || c.Graph().Has(tmp) {
		t.Error("temporary id survived")
	}
	if c.Pins()["4"] != (layout.Point{X: 9, Y: 9}) {
		t.Error("pin not renamed")
	}
	if kids := c.Graph().Children("3"); len(kids) != 1 || kids[0] != "4" {
		t.Errorf("children of 3 = %v", kids)
	}
}

func TestStateRestore(t *testing.T) {
	ctx := context.Background()
	c := newFamilyChart(t)
	_ = c.Pin("3", layout.Point{X: 10, Y: 10})
	_, _ = c.ToggleCollapsed("2")
	_, _ = c.SetOrientation(layout.Horizontal)
	_ = c.Pin("1", layout.Point{X: 10, Y: 10})
	s := c.State()

	d := New(layout.Options{}, nil)
	if err := d.Restore(s); err != nil {
		t.Fatal(err)
	}
	if d.Len() != 3 || !d.IsCollapsed("2") || d.Orientation() != layout.Horizontal {
		t.Errorf("restored state differs: len=%d collapsed=%v orient=%s", d.Len(), d.IsCollapsed("2"), d.Orientation())
	}
	if n, _ := d.Layout(ctx).Node("1"); !n.Pinned {
		t.Error("pin not restored")
	}

	bad := State{People: []person.Person{{ID: ""}}}
	if err := d.Restore(bad); !errors.Is(err, errors.ErrCodeInvalidRecord) {
		t.Errorf("error = %v, want INVALID_RECORD", err)
	}
	if d.Len() != 3 {
		t.Error("failed restore changed the chart")
	}
	if err := d.Restore(State{View: store.View{Orientation: "sideways"}}); err == nil {
		t.Error("bad orientation accepted")
	}
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	c := newFamilyChart(t)
	_ = c.Pin("3", layout.Point{})
	if err := c.Remove("3"); err != nil {
		t.Fatal(err)
	}
	if len(c.Pins()) != 0 || len(c.Layout(ctx).Nodes) != 2 {
		t.Error("Remove left state behind")
	}
	c.Clear()
	if c.Len() != 0 || len(c.Layout(ctx).Nodes) != 0 {
		t.Error("Clear left people behind")
	}
}

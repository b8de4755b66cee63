package layout

import (
	"testing"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/graph"
	"github.com/matzehuels/kintree/pkg/person"
)

func build(t *testing.T, people ...person.Person) *graph.Graph {
	t.Helper()
	g := graph.New()
	if err := g.Merge(people); err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	return g
}

func family() []person.Person {
	return []person.Person{
		{ID: "1", Data: person.Data{FirstName: "John", LastName: "Smith", Gender: person.GenderMale},
			Rels: person.Rels{Spouses: []string{"2"}, Children: []string{"3"}}},
		{ID: "2", Data: person.Data{FirstName: "Jane", Gender: person.GenderFemale},
			Rels: person.Rels{Spouses: []string{"1"}, Children: []string{"3"}}},
		{ID: "3", Data: person.Data{FirstName: "Kid", Birthday: "2001-02-03", Location: "Berlin"},
			Rels: person.Rels{Father: "1", Mother: "2"}},
	}
}

func mustNode(t *testing.T, l *Layout, id string) Node {
	t.Helper()
	n, ok := l.Node(id)
	if !ok {
		t.Fatalf("Node(%q) missing", id)
	}
	return n
}

func checkNoOverlap(t *testing.T, l *Layout) {
	t.Helper()
	for i := range l.Nodes {
		for j := i + 1; j < len(l.Nodes); j++ {
			a, b := l.Nodes[i], l.Nodes[j]
			if a.Box().Overlaps(b.Box()) {
				t.Errorf("cards %s %v and %s %v overlap", a.ID, a.Box(), b.ID, b.Box())
			}
		}
	}
}

func TestComputeCouple(t *testing.T) {
	g := build(t, family()...)
	l := New(Options{}).Compute(Input{Graph: g})

	n1, n2, n3 := mustNode(t, l, "1"), mustNode(t, l, "2"), mustNode(t, l, "3")
	if n1.Y != n2.Y {
		t.Errorf("spouses on different rows: %v, %v", n1.Y, n2.Y)
	}
	if got := n2.X - (n1.X + n1.Width); got != DefaultSpouseGap {
		t.Errorf("spouse gap = %v, want %v", got, DefaultSpouseGap)
	}
	if n3.Y <= n1.Y {
		t.Errorf("child y %v not below parent y %v", n3.Y, n1.Y)
	}
	mid := (n1.Center().X + n2.Center().X) / 2
	if n3.Center().X != mid {
		t.Errorf("child center = %v, want couple midpoint %v", n3.Center().X, mid)
	}
	if n3.Center().X != 265 {
		t.Errorf("child center = %v, want 265", n3.Center().X)
	}

	var spouse, fam, parent int
	for _, e := range l.Edges {
		switch e.Kind {
		case EdgeSpouse:
			spouse++
		case EdgeFamily:
			fam++
			if e.To != "3" || e.From != "1" || e.Via != "2" {
				t.Errorf("family edge = %+v", e)
			}
			if len(e.Points) != 4 {
				t.Errorf("family edge has %d points, want 4", len(e.Points))
			}
		case EdgeParent:
			parent++
		}
	}
	if spouse != 1 || fam != 1 || parent != 0 {
		t.Errorf("edges spouse=%d family=%d parent=%d, want 1 1 0", spouse, fam, parent)
	}

	if n3.Label != "Kid" || n3.Subtitle != "2001-02-03 · Berlin" {
		t.Errorf("card text = %q / %q", n3.Label, n3.Subtitle)
	}
	if n1.Initials != "JS" {
		t.Errorf("Initials = %q, want JS", n1.Initials)
	}
	checkNoOverlap(t, l)
}

func TestComputeEmpty(t *testing.T) {
	l := New(Options{}).Compute(Input{Graph: graph.New()})
	if len(l.Nodes) != 0 || len(l.Edges) != 0 {
		t.Errorf("empty graph gave %d nodes, %d edges", len(l.Nodes), len(l.Edges))
	}
	if l.Bounds != (Rect{}) {
		t.Errorf("Bounds = %v, want zero", l.Bounds)
	}
}

func TestComputeSiblingsNoOverlap(t *testing.T) {
	people := []person.Person{
		{ID: "f", Data: person.Data{Gender: person.GenderMale}, Rels: person.Rels{Spouses: []string{"m"}}},
		{ID: "m", Data: person.Data{Gender: person.GenderFemale}},
	}
	for _, id := range []string{"a", "b", "c", "d"} {
		people = append(people, person.Person{ID: id, Rels: person.Rels{Father: "f", Mother: "m"}})
	}
	// A married-in spouse for "b" and a grandchild.
	people = append(people,
		person.Person{ID: "bs", Rels: person.Rels{Spouses: []string{"b"}}},
		person.Person{ID: "gc", Rels: person.Rels{Father: "b", Mother: "bs"}},
	)
	g := build(t, people...)
	l := New(Options{}).Compute(Input{Graph: g})

	if len(l.Nodes) != 8 {
		t.Fatalf("got %d nodes, want 8", len(l.Nodes))
	}
	checkNoOverlap(t, l)

	b, bs := mustNode(t, l, "b"), mustNode(t, l, "bs")
	if b.Y != bs.Y {
		t.Errorf("married-in spouse on another row")
	}
	gc := mustNode(t, l, "gc")
	if gc.Y <= b.Y {
		t.Errorf("grandchild not below parents")
	}
}

func TestComputeComponentsSideBySide(t *testing.T) {
	g := build(t,
		person.Person{ID: "a"},
		person.Person{ID: "b"},
	)
	l := New(Options{}).Compute(Input{Graph: g})
	a, b := mustNode(t, l, "a"), mustNode(t, l, "b")
	if a.Component == b.Component {
		t.Fatalf("expected two components")
	}
	if got := b.X - (a.X + a.Width); got != DefaultComponentGap {
		t.Errorf("component gap = %v, want %v", got, DefaultComponentGap)
	}
}

func TestComputePinned(t *testing.T) {
	g := build(t, family()...)
	pins := NewPins()
	pins.Pin("3", Point{X: 900, Y: 700})

	l := New(Options{}).Compute(Input{Graph: g, Pins: pins})
	n3 := mustNode(t, l, "3")
	if n3.X != 900 || n3.Y != 700 || !n3.Pinned {
		t.Errorf("pinned node = %+v", n3)
	}

	// Pins survive unrelated recomputation.
	if err := g.UpsertOne(person.Person{ID: "4", Rels: person.Rels{Father: "1", Mother: "2"}}); err != nil {
		t.Fatal(err)
	}
	l = New(Options{}).Compute(Input{Graph: g, Pins: pins})
	if got, _ := l.Position("3"); got != (Point{X: 900, Y: 700}) {
		t.Errorf("pinned position after recompute = %v", got)
	}
	checkNoOverlap(t, l)
}

func TestComputePinnedObstacle(t *testing.T) {
	g := build(t, family()...)
	// Pin the mother where the child would go.
	pins := NewPins()
	pins.Pin("2", Point{X: 155, Y: 240})

	l := New(Options{}).Compute(Input{Graph: g, Pins: pins})
	checkNoOverlap(t, l)
	if n2 := mustNode(t, l, "2"); n2.X != 155 || n2.Y != 240 {
		t.Errorf("pinned mother moved to %v", n2.Position())
	}
}

func TestComputeHorizontal(t *testing.T) {
	g := build(t, family()...)
	l := New(Options{Orientation: Horizontal}).Compute(Input{Graph: g})

	n1, n2, n3 := mustNode(t, l, "1"), mustNode(t, l, "2"), mustNode(t, l, "3")
	if n1.X != n2.X {
		t.Errorf("spouses in different columns: %v, %v", n1.X, n2.X)
	}
	if n3.X <= n1.X {
		t.Errorf("child column %v not right of parents %v", n3.X, n1.X)
	}
	mid := (n1.Center().Y + n2.Center().Y) / 2
	if n3.Center().Y != mid {
		t.Errorf("child center y = %v, want %v", n3.Center().Y, mid)
	}
	if l.Orientation != Horizontal {
		t.Errorf("Orientation = %q", l.Orientation)
	}
	checkNoOverlap(t, l)
}

func TestComputeCollapsed(t *testing.T) {
	g := build(t, family()...)
	collapsed := map[string]bool{"1": true}
	l := New(Options{}).Compute(Input{Graph: g, Collapsed: collapsed})

	if _, ok := l.Node("3"); ok {
		t.Errorf("child of collapsed person is visible")
	}
	n1 := mustNode(t, l, "1")
	if !n1.Collapsed || !n1.HasHiddenChildren {
		t.Errorf("collapsed flags = %v %v", n1.Collapsed, n1.HasHiddenChildren)
	}
	for _, e := range l.Edges {
		if e.To == "3" || e.From == "3" {
			t.Errorf("edge to hidden person: %+v", e)
		}
	}
}

func TestComputeSingleParentEdges(t *testing.T) {
	g := build(t,
		person.Person{ID: "p", Data: person.Data{Gender: person.GenderMale}},
		person.Person{ID: "c", Rels: person.Rels{Father: "p"}},
	)
	l := New(Options{}).Compute(Input{Graph: g})
	if len(l.Edges) != 1 || l.Edges[0].Kind != EdgeParent {
		t.Fatalf("Edges = %+v, want one parent edge", l.Edges)
	}
	p, c := mustNode(t, l, "p"), mustNode(t, l, "c")
	pts := l.Edges[0].Points
	if pts[0] != (Point{X: p.Center().X, Y: p.Y + p.Height}) {
		t.Errorf("edge starts at %v", pts[0])
	}
	if pts[len(pts)-1] != (Point{X: c.Center().X, Y: c.Y}) {
		t.Errorf("edge ends at %v", pts[len(pts)-1])
	}
}

func TestWithPreview(t *testing.T) {
	g := build(t, family()...)
	l := New(Options{}).Compute(Input{Graph: g})
	before, _ := l.Position("3")

	moved := l.WithPreview("3", Point{X: 600, Y: 500}, Options{})
	if got, _ := moved.Position("3"); got != (Point{X: 600, Y: 500}) {
		t.Errorf("preview position = %v", got)
	}
	if got, _ := l.Position("3"); got != before {
		t.Errorf("original layout changed to %v", got)
	}
	for _, e := range moved.Edges {
		if e.To == "3" {
			end := e.Points[len(e.Points)-1]
			if end != (Point{X: 710, Y: 500}) {
				t.Errorf("rerouted edge ends at %v", end)
			}
		}
	}
	if same := l.WithPreview("missing", Point{}, Options{}); same != l {
		t.Errorf("preview of unknown id should return the layout unchanged")
	}
}

func TestParseOrientation(t *testing.T) {
	tests := []struct {
		in      string
		want    Orientation
		wantErr bool
	}{
		{"", Vertical, false},
		{"vertical", Vertical, false},
		{" Horizontal ", Horizontal, false},
		{"diagonal", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOrientation(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidOrientation) {
					t.Errorf("ParseOrientation(%q) error = %v, want INVALID_ORIENTATION", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseOrientation(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}

func TestPins(t *testing.T) {
	p := NewPins()
	p.Pin("a", Point{X: 1, Y: 2})
	p.Pin("tmp-x", Point{X: 3, Y: 4})
	if p.Len() != 2 {
		t.Fatalf("Len() = %d", p.Len())
	}

	p.Rename("tmp-x", "7")
	if p.Has("tmp-x") || !p.Has("7") {
		t.Errorf("Rename did not move the pin")
	}

	snap := p.Snapshot()
	if !p.Reset("a") || p.Reset("a") {
		t.Errorf("Reset() should report only the first removal")
	}
	if n := p.ResetAll(); n != 1 {
		t.Errorf("ResetAll() = %d, want 1", n)
	}
	p.Restore(snap)
	if at, _ := p.Get("a"); at != (Point{X: 1, Y: 2}) {
		t.Errorf("Restore() lost pin a: %v", at)
	}

	var nilPins *Pins
	if nilPins.Has("a") || nilPins.Len() != 0 {
		t.Errorf("nil Pins should be empty")
	}
}

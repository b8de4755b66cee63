package layout

import (
	"math"
	"strings"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/generation"
	"github.com/matzehuels/kintree/pkg/person"
)

// Orientation selects which axis generations stack along.
type Orientation string

// Supported orientations.
const (
	Vertical   Orientation = "vertical"
	Horizontal Orientation = "horizontal"
)

// ParseOrientation validates an orientation name. Empty means [Vertical].
func ParseOrientation(s string) (Orientation, error) {
	switch o := Orientation(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return Vertical, nil
	case Vertical, Horizontal:
		return o, nil
	}
	return "", errors.New(errors.ErrCodeInvalidOrientation, "unknown orientation %q (want vertical or horizontal)", s)
}

// Point is a position in chart units.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Width returns MaxX-MinX.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns MaxY-MinY.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Overlaps reports whether r and o share interior area.
func (r Rect) Overlaps(o Rect) bool {
	return r.MinX < o.MaxX && o.MinX < r.MaxX && r.MinY < o.MaxY && o.MinY < r.MaxY
}

// EdgeKind classifies edges for rendering.
type EdgeKind string

// Edge kinds.
const (
	EdgeSpouse EdgeKind = "spouse"
	EdgeFamily EdgeKind = "family"
	EdgeParent EdgeKind = "parent"
)

// Node is one positioned person card.
type Node struct {
	ID         string        `json:"id"`
	Label      string        `json:"label"`
	Subtitle   string        `json:"subtitle,omitempty"`
	Initials   string        `json:"initials"`
	Gender     person.Gender `json:"gender,omitempty"`
	Avatar     string        `json:"avatar,omitempty"`
	X          float64       `json:"x"`
	Y          float64       `json:"y"`
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	Generation int           `json:"generation"`
	Component  int           `json:"component"`

	Pinned            bool `json:"pinned,omitempty"`
	Collapsed         bool `json:"collapsed,omitempty"`
	HasChildren       bool `json:"has_children,omitempty"`
	HasHiddenChildren bool `json:"has_hidden_children,omitempty"`
	Temporary         bool `json:"temporary,omitempty"`
}

// Position returns the top-left corner.
func (n Node) Position() Point { return Point{X: n.X, Y: n.Y} }

// Center returns the card center.
func (n Node) Center() Point { return Point{X: n.X + n.Width/2, Y: n.Y + n.Height/2} }

// Box returns the card bounds.
func (n Node) Box() Rect { return Rect{MinX: n.X, MinY: n.Y, MaxX: n.X + n.Width, MaxY: n.Y + n.Height} }

// Edge connects cards. Family edges start at the midpoint of From and Via.
type Edge struct {
	Kind   EdgeKind `json:"kind"`
	From   string   `json:"from"`
	Via    string   `json:"via,omitempty"`
	To     string   `json:"to"`
	Points []Point  `json:"points"`
}

// Layout is the renderable result of one layout pass.
type Layout struct {
	Orientation Orientation          `json:"orientation"`
	Nodes       []Node               `json:"nodes"`
	Edges       []Edge               `json:"edges"`
	Rows        map[int][]string     `json:"rows"`
	Bounds      Rect                 `json:"bounds"`
	Margin      float64              `json:"margin"`
	Warnings    []generation.Warning `json:"warnings,omitempty"`

	index map[string]int
}

// Node returns the positioned card for id.
func (l *Layout) Node(id string) (Node, bool) {
	if l.index == nil {
		l.reindex()
	}
	i, ok := l.index[id]
	if !ok {
		return Node{}, false
	}
	return l.Nodes[i], true
}

// Position returns the top-left corner of id's card.
func (l *Layout) Position(id string) (Point, bool) {
	n, ok := l.Node(id)
	return n.Position(), ok
}

// Width returns the canvas width including margins.
func (l *Layout) Width() float64 { return l.Bounds.Width() + 2*l.Margin }

// Height returns the canvas height including margins.
func (l *Layout) Height() float64 { return l.Bounds.Height() + 2*l.Margin }

// Origin returns the top-left canvas corner including margins.
func (l *Layout) Origin() Point {
	return Point{X: l.Bounds.MinX - l.Margin, Y: l.Bounds.MinY - l.Margin}
}

// WithPreview returns a copy of l with id's card moved to p and its edges
// rerouted. It is used to show a drag in progress without committing it.
func (l *Layout) WithPreview(id string, p Point, opts Options) *Layout {
	if _, ok := l.Node(id); !ok {
		return l
	}
	i := l.index[id]
	out := *l
	out.Nodes = append([]Node(nil), l.Nodes...)
	out.Nodes[i].X, out.Nodes[i].Y = p.X, p.Y
	out.index = l.index
	out.Edges = route(&out, l.Edges, opts.withDefaults())
	out.Bounds = bounds(out.Nodes)
	return &out
}

func (l *Layout) reindex() {
	l.index = make(map[string]int, len(l.Nodes))
	for i, n := range l.Nodes {
		l.index[n.ID] = i
	}
}

func bounds(nodes []Node) Rect {
	if len(nodes) == 0 {
		return Rect{}
	}
	r := Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, n := range nodes {
		r.MinX = math.Min(r.MinX, n.X)
		r.MinY = math.Min(r.MinY, n.Y)
		r.MaxX = math.Max(r.MaxX, n.X+n.Width)
		r.MaxY = math.Max(r.MaxY, n.Y+n.Height)
	}
	return r
}

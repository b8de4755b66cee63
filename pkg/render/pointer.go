package render

import (
	"math"

	"github.com/matzehuels/kintree/pkg/layout"
)

// DefaultThreshold is how far, in chart units, the pointer must move before
// a press becomes a drag.
const DefaultThreshold = 4.0

// EventType names a raw pointer event.
type EventType string

// Raw pointer events as posted by renderers.
const (
	EventDown   EventType = "down"
	EventMove   EventType = "move"
	EventUp     EventType = "up"
	EventCancel EventType = "cancel"
)

// Event is one raw pointer event. X and Y are pointer coordinates in chart
// units. On EventDown, Node names the pressed card, CardX and CardY give its
// current top-left corner and Toggle is set when the collapse affordance was
// hit.
type Event struct {
	Type   EventType `json:"type"`
	Node   string    `json:"node,omitempty"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	CardX  float64   `json:"card_x,omitempty"`
	CardY  float64   `json:"card_y,omitempty"`
	Toggle bool      `json:"toggle,omitempty"`
}

// DragSession is the state of one press on a card.
type DragSession struct {
	NodeID string
	// Start is the card's top-left corner when the press began.
	Start layout.Point
	// Delta is the pointer offset since the press.
	Delta    layout.Point
	Dragging bool

	origin layout.Point
	toggle bool
}

// Position returns where the card would land if the drag ended now.
func (s DragSession) Position() layout.Point {
	return layout.Point{X: s.Start.X + s.Delta.X, Y: s.Start.Y + s.Delta.Y}
}

// Pointer turns raw pointer events into [Handler] calls. At most one session
// is active. Pointer is not safe for concurrent use.
type Pointer struct {
	// Threshold overrides [DefaultThreshold] when positive.
	Threshold float64

	h       Handler
	session *DragSession
}

// NewPointer returns a translator forwarding to h.
func NewPointer(h Handler) *Pointer {
	return &Pointer{h: h}
}

// Session returns the active session, if any.
func (p *Pointer) Session() (DragSession, bool) {
	if p.session == nil {
		return DragSession{}, false
	}
	return *p.session, true
}

// Handle dispatches one raw event.
func (p *Pointer) Handle(e Event) {
	at := layout.Point{X: e.X, Y: e.Y}
	switch e.Type {
	case EventDown:
		p.Down(e.Node, at, layout.Point{X: e.CardX, Y: e.CardY}, e.Toggle)
	case EventMove:
		p.Move(at)
	case EventUp:
		p.Up(at)
	case EventCancel:
		p.Cancel()
	}
}

// Down starts a session on node id. Any active session is cancelled first.
func (p *Pointer) Down(id string, at, card layout.Point, toggle bool) {
	p.Cancel()
	if id == "" {
		return
	}
	p.session = &DragSession{NodeID: id, Start: card, origin: at, toggle: toggle}
}

// Move updates the active session, turning it into a drag once the pointer
// has moved past the threshold.
func (p *Pointer) Move(at layout.Point) {
	s := p.session
	if s == nil {
		return
	}
	s.Delta = layout.Point{X: at.X - s.origin.X, Y: at.Y - s.origin.Y}
	if !s.Dragging {
		if math.Hypot(s.Delta.X, s.Delta.Y) <= p.threshold() {
			return
		}
		s.Dragging = true
		p.h.OnNodeDragStart(s.NodeID)
	}
	p.h.OnNodeDrag(s.NodeID, s.Delta.X, s.Delta.Y)
}

// Up ends the active session: a drag commits its position, anything else is
// a click or a collapse toggle.
func (p *Pointer) Up(at layout.Point) {
	s := p.session
	if s == nil {
		return
	}
	p.Move(at)
	p.session = nil
	switch {
	case s.Dragging:
		p.h.OnNodeDragEnd(s.NodeID, s.Position())
	case s.toggle:
		p.h.OnNodeCollapseToggle(s.NodeID)
	default:
		p.h.OnNodeClick(s.NodeID)
	}
}

// Cancel abandons the active session without committing anything.
func (p *Pointer) Cancel() {
	s := p.session
	p.session = nil
	if s == nil || !s.Dragging {
		return
	}
	if c, ok := p.h.(DragCanceler); ok {
		c.OnNodeDragCancel(s.NodeID)
	}
}

func (p *Pointer) threshold() float64 {
	if p.Threshold > 0 {
		return p.Threshold
	}
	return DefaultThreshold
}

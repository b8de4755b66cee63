package layout

import "maps"

// Pins holds manual positions set by dragging. Pins is not safe for
// concurrent use.
type Pins struct {
	pos map[string]Point
}

// NewPins returns an empty pin set.
func NewPins() *Pins {
	return &Pins{pos: make(map[string]Point)}
}

// Pin stores a manual position for id, replacing any earlier pin.
func (p *Pins) Pin(id string, at Point) {
	p.pos[id] = at
}

// Get returns the pinned position of id.
func (p *Pins) Get(id string) (Point, bool) {
	if p == nil {
		return Point{}, false
	}
	at, ok := p.pos[id]
	return at, ok
}

// Has reports whether id is pinned.
func (p *Pins) Has(id string) bool {
	_, ok := p.Get(id)
	return ok
}

// Len returns the number of pins.
func (p *Pins) Len() int {
	if p == nil {
		return 0
	}
	return len(p.pos)
}

// Reset unpins id and reports whether it was pinned.
func (p *Pins) Reset(id string) bool {
	_, ok := p.pos[id]
	delete(p.pos, id)
	return ok
}

// ResetAll unpins everyone and returns how many pins were cleared.
func (p *Pins) ResetAll() int {
	n := len(p.pos)
	clear(p.pos)
	return n
}

// Rename moves a pin from a temporary id to its permanent id.
func (p *Pins) Rename(from, to string) {
	if at, ok := p.pos[from]; ok {
		delete(p.pos, from)
		p.pos[to] = at
	}
}

// Snapshot returns a copy of all pins.
func (p *Pins) Snapshot() map[string]Point {
	if p == nil {
		return map[string]Point{}
	}
	return maps.Clone(p.pos)
}

// Restore replaces all pins with the given positions.
func (p *Pins) Restore(pins map[string]Point) {
	p.pos = make(map[string]Point, len(pins))
	maps.Copy(p.pos, pins)
}

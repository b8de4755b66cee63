package layout

import (
	"cmp"
	"slices"
	"strings"

	"github.com/matzehuels/kintree/pkg/generation"
	"github.com/matzehuels/kintree/pkg/graph"
	"github.com/matzehuels/kintree/pkg/person"
)

// Input is one layout request.
type Input struct {
	Graph *graph.Graph
	// Generations may be nil, in which case it is computed from Graph and
	// Collapsed.
	Generations *generation.Result
	Collapsed   map[string]bool
	Pins        *Pins
}

// Engine computes layouts with fixed options.
type Engine struct {
	opts Options
}

// New returns an engine; zero option fields take their defaults.
func New(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// Compute lays out the visible people of in.Graph. It never fails; an empty
// graph yields an empty layout.
func (e *Engine) Compute(in Input) *Layout {
	gen := in.Generations
	if gen == nil {
		gen = generation.Assign(in.Graph, in.Collapsed)
	}

	p := &placer{
		opts:      e.opts,
		g:         in.Graph,
		gen:       gen,
		collapsed: in.Collapsed,
		pins:      in.Pins,
		spread:    make(map[string]float64),
		stack:     make(map[string]float64),
	}
	p.collectObstacles()

	offset := e.opts.Margin
	for c := range gen.Components {
		if end, placed := p.placeComponent(c, offset); placed {
			offset = end + e.opts.ComponentGap
		}
	}

	l := &Layout{
		Orientation: e.opts.Orientation,
		Rows:        make(map[int][]string),
		Margin:      e.opts.Margin,
		Warnings:    gen.Warnings,
	}
	for _, id := range in.Graph.IDs() {
		rank, ok := gen.Generation(id)
		if !ok {
			continue
		}
		l.Rows[rank] = append(l.Rows[rank], id)
		l.Nodes = append(l.Nodes, p.node(id))
	}
	l.reindex()
	l.Edges = route(l, collectEdges(l, in.Graph, gen), e.opts)
	l.Bounds = bounds(l.Nodes)
	return l
}

// unit is a family unit: a person plus adjacent same-generation spouses.
type unit struct {
	members []string
	free    []string // members placed automatically
	width   float64
	key     float64 // mean spread center of placed parents
	hasKey  bool
	sig     string // parent set, groups siblings into one block
}

type block struct {
	units []unit
	width float64
}

type obstacle struct {
	s0, s1, t0, t1 float64
}

type placer struct {
	opts      Options
	g         *graph.Graph
	gen       *generation.Result
	collapsed map[string]bool
	pins      *Pins

	spread    map[string]float64
	stack     map[string]float64
	obstacles []obstacle
}

// collectObstacles records pinned cards in abstract coordinates.
func (p *placer) collectObstacles() {
	for _, id := range p.g.IDs() {
		at, ok := p.pins.Get(id)
		if !ok || !p.gen.Visible(id) {
			continue
		}
		s, t := p.opts.fromXY(at)
		p.obstacles = append(p.obstacles, obstacle{
			s0: s, s1: s + p.opts.spreadSize(),
			t0: t, t1: t + p.opts.stackSize(),
		})
	}
	slices.SortFunc(p.obstacles, func(a, b obstacle) int { return cmp.Compare(a.s0, b.s0) })
}

// placeComponent lays out one component starting at spread offset and
// returns the furthest spread coordinate used by an automatic card.
func (p *placer) placeComponent(c int, offset float64) (end float64, placed bool) {
	o := p.opts
	rows := p.gen.Rows(c)
	step := o.stackSize() + o.GenerationGap
	end = offset

	for r := 0; r <= p.gen.MaxRank(c); r++ {
		row := rows[r]
		if len(row) == 0 {
			continue
		}
		stackPos := o.Margin + float64(r)*step
		cursor := offset

		for _, b := range p.blocks(p.units(row, r, c)) {
			start := cursor
			if u := b.units[0]; u.hasKey {
				start = max(cursor, u.key-b.width/2)
			}
			for _, u := range b.units {
				if len(u.free) == 0 {
					continue
				}
				s := p.clear(start, u.width, stackPos)
				pos := s
				for _, id := range u.free {
					p.spread[id] = pos
					p.stack[id] = stackPos
					pos += o.spreadSize() + o.SpouseGap
				}
				end = max(end, s+u.width)
				placed = true
				start = s + u.width + o.UnitGap
				cursor = start
			}
		}
	}
	return end, placed
}

// units builds the family units of one generation row.
func (p *placer) units(row []string, rank, component int) []unit {
	o := p.opts
	assigned := make(map[string]bool, len(row))
	var out []unit

	for _, id := range row {
		if assigned[id] {
			continue
		}
		assigned[id] = true
		u := unit{members: []string{id}}
		if !p.collapsed[id] {
			for _, s := range p.g.Spouses(id) {
				sr, visible := p.gen.Generation(s)
				if assigned[s] || !visible || sr != rank || p.gen.Component[s] != component {
					continue
				}
				assigned[s] = true
				u.members = append(u.members, s)
			}
		}

		for _, m := range u.members {
			if !p.pins.Has(m) {
				u.free = append(u.free, m)
			}
		}
		if k := float64(len(u.free)); k > 0 {
			u.width = k*o.spreadSize() + (k-1)*o.SpouseGap
		}

		var parents []string
		sum := 0.0
		for _, m := range u.members {
			for _, par := range p.g.Parents(m) {
				c, ok := p.center(par)
				if !ok || slices.Contains(parents, par) {
					continue
				}
				parents = append(parents, par)
				sum += c
			}
		}
		if len(parents) > 0 {
			u.key = sum / float64(len(parents))
			u.hasKey = true
			slices.Sort(parents)
			u.sig = strings.Join(parents, "\x00")
		}
		out = append(out, u)
	}
	return out
}

// blocks orders units by parent position and groups siblings. Units without
// placed parents keep their order after the others.
func (p *placer) blocks(units []unit) []block {
	slices.SortStableFunc(units, func(a, b unit) int {
		switch {
		case a.hasKey && b.hasKey:
			return cmp.Compare(a.key, b.key)
		case a.hasKey:
			return -1
		case b.hasKey:
			return 1
		}
		return 0
	})

	var out []block
	for _, u := range units {
		if n := len(out); n > 0 && u.hasKey && out[n-1].units[0].sig == u.sig {
			b := &out[n-1]
			if u.width > 0 {
				if b.width > 0 {
					b.width += p.opts.UnitGap
				}
				b.width += u.width
			}
			b.units = append(b.units, u)
			continue
		}
		out = append(out, block{units: []unit{u}, width: u.width})
	}
	return out
}

// clear returns the first start at or after start where a card run of the
// given width fits between pinned cards of the row band.
func (p *placer) clear(start, width, stackPos float64) float64 {
	t0, t1 := stackPos, stackPos+p.opts.stackSize()
	gap := p.opts.UnitGap
	for moved := true; moved; {
		moved = false
		for _, ob := range p.obstacles {
			if ob.t1 <= t0 || ob.t0 >= t1 {
				continue
			}
			if start < ob.s1+gap && ob.s0-gap < start+width {
				start = ob.s1 + gap
				moved = true
			}
		}
	}
	return start
}

// center returns the spread-axis center of a placed or pinned card.
func (p *placer) center(id string) (float64, bool) {
	if !p.gen.Visible(id) {
		return 0, false
	}
	if at, ok := p.pins.Get(id); ok {
		s, _ := p.opts.fromXY(at)
		return s + p.opts.spreadSize()/2, true
	}
	s, ok := p.spread[id]
	if !ok {
		return 0, false
	}
	return s + p.opts.spreadSize()/2, true
}

func (p *placer) node(id string) Node {
	rec, _ := p.g.Get(id)
	rank, _ := p.gen.Generation(id)
	n := Node{
		ID:         id,
		Label:      rec.DisplayName(),
		Subtitle:   subtitle(rec),
		Initials:   rec.Initials(),
		Gender:     rec.Data.Gender,
		Avatar:     rec.Data.Avatar,
		Width:      p.opts.CardWidth,
		Height:     p.opts.CardHeight,
		Generation: rank,
		Component:  p.gen.Component[id],
		Collapsed:  p.collapsed[id],
		Temporary:  person.IsTemporary(id),
	}
	children := p.g.Children(id)
	n.HasChildren = len(children) > 0
	for _, c := range children {
		if p.gen.Hidden[c] {
			n.HasHiddenChildren = true
			break
		}
	}
	if at, ok := p.pins.Get(id); ok {
		n.X, n.Y = at.X, at.Y
		n.Pinned = true
		return n
	}
	at := p.opts.toXY(p.spread[id], p.stack[id])
	n.X, n.Y = at.X, at.Y
	return n
}

func subtitle(p person.Person) string {
	var parts []string
	if p.Data.Birthday != "" {
		parts = append(parts, p.Data.Birthday)
	}
	if p.Data.Location != "" {
		parts = append(parts, p.Data.Location)
	}
	return strings.Join(parts, " · ")
}

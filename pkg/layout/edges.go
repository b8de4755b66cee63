package layout

import (
	"slices"

	"github.com/matzehuels/kintree/pkg/generation"
	"github.com/matzehuels/kintree/pkg/graph"
)

// collectEdges lists the edges between visible cards without geometry.
func collectEdges(l *Layout, g *graph.Graph, gen *generation.Result) []Edge {
	var out []Edge
	drawn := make(map[[2]string]bool)

	for _, n := range l.Nodes {
		for _, s := range g.Spouses(n.ID) {
			if !gen.Visible(s) {
				continue
			}
			key := pairKey(n.ID, s)
			if drawn[key] {
				continue
			}
			drawn[key] = true
			out = append(out, Edge{Kind: EdgeSpouse, From: n.ID, To: s})
		}
	}

	for _, n := range l.Nodes {
		var parents []string
		for _, p := range g.Parents(n.ID) {
			if gen.Visible(p) {
				parents = append(parents, p)
			}
		}
		if len(parents) == 2 && slices.Contains(g.Spouses(parents[0]), parents[1]) {
			out = append(out, Edge{Kind: EdgeFamily, From: parents[0], Via: parents[1], To: n.ID})
			continue
		}
		for _, p := range parents {
			out = append(out, Edge{Kind: EdgeParent, From: p, To: n.ID})
		}
	}
	return out
}

func pairKey(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

// route computes polyline points for edges from the current card positions.
// Edges whose endpoints are not in l are dropped.
func route(l *Layout, edges []Edge, o Options) []Edge {
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		from, ok := l.Node(e.From)
		if !ok {
			continue
		}
		to, ok := l.Node(e.To)
		if !ok {
			continue
		}

		if e.Kind == EdgeSpouse {
			e.Points = []Point{from.Center(), to.Center()}
			out = append(out, e)
			continue
		}

		// Parent edges leave the card's far side; family edges drop from the
		// middle of the spouse line.
		spread, _ := o.fromXY(from.Center())
		_, top := o.fromXY(from.Position())
		bottom := top + o.stackSize()
		start := bottom
		if e.Kind == EdgeFamily {
			if via, ok := l.Node(e.Via); ok {
				viaSpread, viaStack := o.fromXY(via.Center())
				_, fromStack := o.fromXY(from.Center())
				spread = (spread + viaSpread) / 2
				start = (fromStack + viaStack) / 2
				_, viaTop := o.fromXY(via.Position())
				bottom = max(bottom, viaTop+o.stackSize())
			}
		}
		e.Points = elbow(spread, start, bottom, to, o)
		out = append(out, e)
	}
	return out
}

// elbow routes orthogonally from (spread, start) to the near side of child,
// turning halfway between bottom and the child.
func elbow(spread, start, bottom float64, child Node, o Options) []Point {
	childSpread, _ := o.fromXY(child.Center())
	_, childTop := o.fromXY(child.Position())
	mid := (bottom + childTop) / 2
	return []Point{
		o.toXY(spread, start),
		o.toXY(spread, mid),
		o.toXY(childSpread, mid),
		o.toXY(childSpread, childTop),
	}
}

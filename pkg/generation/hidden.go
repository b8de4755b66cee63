package generation

import "github.com/matzehuels/kintree/pkg/graph"

// Hidden returns the people hidden by the collapsed set: every descendant of
// a collapsed person, plus spouses of hidden people that are left without a
// visible parent or spouse. Collapsed people are never hidden by their own
// traversal.
func Hidden(g *graph.Graph, collapsed map[string]bool) map[string]bool {
	hidden := make(map[string]bool)
	if len(collapsed) == 0 {
		return hidden
	}

	for _, root := range g.IDs() {
		if !collapsed[root] {
			continue
		}
		seen := map[string]bool{root: true}
		stack := g.Children(root)
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[id] {
				continue
			}
			seen[id] = true
			hidden[id] = true
			stack = append(stack, g.Children(id)...)
		}
	}

	var queue []string
	for _, id := range g.IDs() {
		if hidden[id] {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, s := range g.Spouses(id) {
			if hidden[s] || collapsed[s] || anchored(g, s, hidden) {
				continue
			}
			hidden[s] = true
			queue = append(queue, s)
		}
	}
	return hidden
}

// anchored reports whether id still has a visible parent or spouse.
func anchored(g *graph.Graph, id string, hidden map[string]bool) bool {
	for _, p := range g.Parents(id) {
		if !hidden[p] {
			return true
		}
	}
	for _, s := range g.Spouses(id) {
		if !hidden[s] {
			return true
		}
	}
	return false
}

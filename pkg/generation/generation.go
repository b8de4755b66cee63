package generation

import (
	"fmt"
	"slices"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/graph"
)

// Warning describes malformed topology that was resolved defensively.
type Warning struct {
	Code    errors.Code `json:"code"`
	People  []string    `json:"people"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s %v", w.Code, w.Message, w.People)
}

// Result holds the generation assignment for one graph snapshot.
type Result struct {
	// Ranks maps every visible person to its generation.
	Ranks map[string]int
	// Hidden holds the people hidden under collapsed ancestors.
	Hidden map[string]bool
	// Component maps every visible person to its component index.
	Component map[string]int
	// Components lists the visible people of each component in discovery order.
	Components [][]string
	// Warnings lists topology problems found during assignment.
	Warnings []Warning
}

// Generation returns the rank of id and whether id is visible.
func (r *Result) Generation(id string) (int, bool) {
	rank, ok := r.Ranks[id]
	return rank, ok
}

// Visible reports whether id received a rank.
func (r *Result) Visible(id string) bool {
	_, ok := r.Ranks[id]
	return ok
}

// Rows groups the people of one component by rank, in discovery order.
func (r *Result) Rows(component int) map[int][]string {
	rows := make(map[int][]string)
	if component < 0 || component >= len(r.Components) {
		return rows
	}
	for _, id := range r.Components[component] {
		rows[r.Ranks[id]] = append(rows[r.Ranks[id]], id)
	}
	return rows
}

// MaxRank returns the deepest rank within a component, or -1 when empty.
func (r *Result) MaxRank(component int) int {
	deepest := -1
	if component < 0 || component >= len(r.Components) {
		return deepest
	}
	for _, id := range r.Components[component] {
		deepest = max(deepest, r.Ranks[id])
	}
	return deepest
}

// Assign computes generation ranks for the visible people of g.
// It never fails: malformed topology is resolved and reported as warnings.
func Assign(g *graph.Graph, collapsed map[string]bool) *Result {
	res := &Result{
		Ranks:     make(map[string]int),
		Hidden:    Hidden(g, collapsed),
		Component: make(map[string]int),
	}

	var ids []string
	for _, id := range g.IDs() {
		if !res.Hidden[id] {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return res
	}
	visible := func(id string) bool { return !res.Hidden[id] }

	// Spouse groups. Collapsed people keep to themselves.
	spouses := newUnionFind()
	for _, id := range ids {
		spouses.add(id)
	}
	for _, id := range ids {
		if collapsed[id] {
			continue
		}
		for _, s := range g.Spouses(id) {
			if visible(s) && !collapsed[s] {
				spouses.union(id, s)
			}
		}
	}
	groups, groupOf := spouses.groups(ids)

	// Condensed parent→child relation between groups.
	n := len(groups)
	children := make([][]int, n)
	parents := make([][]int, n)
	indegree := make([]int, n)
	linked := make(map[[2]int]bool)
	selfParented := make([]bool, n)
	for _, id := range ids {
		cg := groupOf[id]
		for _, p := range g.Parents(id) {
			if !visible(p) {
				continue
			}
			pg := groupOf[p]
			if pg == cg {
				selfParented[cg] = true
				continue
			}
			if linked[[2]int{pg, cg}] {
				continue
			}
			linked[[2]int{pg, cg}] = true
			children[pg] = append(children[pg], cg)
			parents[cg] = append(parents[cg], pg)
			indegree[cg]++
		}
	}
	for gi, self := range selfParented {
		if self {
			res.Warnings = append(res.Warnings, Warning{
				Code:    errors.ErrCodeInvalidTopology,
				People:  slices.Clone(groups[gi]),
				Message: "person is recorded as parent of themselves or their spouse; link ignored",
			})
		}
	}

	rank := make([]int, n)
	done := make([]bool, n)
	queue := make([]int, 0, n)
	for gi := range groups {
		if indegree[gi] == 0 {
			queue = append(queue, gi)
		}
	}

	for processed := 0; processed < n; {
		if len(queue) == 0 {
			gi := cycleEntry(done, parents, children)
			for _, pg := range parents[gi] {
				if done[pg] && rank[pg]+1 > rank[gi] {
					rank[gi] = rank[pg] + 1
				}
			}
			res.Warnings = append(res.Warnings, Warning{
				Code:    errors.ErrCodeInvalidTopology,
				People:  slices.Clone(groups[gi]),
				Message: "ancestry cycle detected; placed below ranked parents only",
			})
			queue = append(queue, gi)
		}

		gi := queue[0]
		queue = queue[1:]
		if done[gi] {
			continue
		}
		done[gi] = true
		processed++

		for _, cg := range children[gi] {
			if done[cg] {
				continue
			}
			if rank[gi]+1 > rank[cg] {
				rank[cg] = rank[gi] + 1
			}
			indegree[cg]--
			if indegree[cg] == 0 {
				queue = append(queue, cg)
			}
		}
	}

	for _, id := range ids {
		res.Ranks[id] = rank[groupOf[id]]
	}

	assignComponents(g, res, ids)
	return res
}

// cycleEntry picks the group to release when no group is ready: the first
// unfinished group, in discovery order, of a cycle whose parents outside the
// cycle are all finished.
func cycleEntry(done []bool, parents, children [][]int) int {
	comp := cycles(done, children)
	source := make(map[int]bool)
	for gi, d := range done {
		if !d {
			source[comp[gi]] = true
		}
	}
	for gi, d := range done {
		if d {
			continue
		}
		for _, pg := range parents[gi] {
			if !done[pg] && comp[pg] != comp[gi] {
				source[comp[gi]] = false
			}
		}
	}
	first := -1
	for gi, d := range done {
		if d {
			continue
		}
		if source[comp[gi]] {
			return gi
		}
		if first < 0 {
			first = gi
		}
	}
	return first
}

// cycles numbers the strongly connected components of the unfinished groups
// (Tarjan). Finished groups get -1.
func cycles(done []bool, children [][]int) []int {
	n := len(done)
	comp := make([]int, n)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i], comp[i] = -1, -1
	}
	var stack []int
	counter, next := 0, 0

	var visit func(v int)
	visit = func(v int) {
		index[v], low[v] = counter, counter
		counter++
		stack = append(stack, v)
		onStack[v] = true
		for _, w := range children[v] {
			switch {
			case done[w]:
			case index[w] < 0:
				visit(w)
				low[v] = min(low[v], low[w])
			case onStack[w]:
				low[v] = min(low[v], index[w])
			}
		}
		if low[v] != index[v] {
			return
		}
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			comp[w] = next
			if w == v {
				break
			}
		}
		next++
	}
	for v, d := range done {
		if !d && index[v] < 0 {
			visit(v)
		}
	}
	return comp
}

// assignComponents numbers weakly connected components in discovery order.
func assignComponents(g *graph.Graph, res *Result, ids []string) {
	uf := newUnionFind()
	for _, id := range ids {
		uf.add(id)
	}
	for _, id := range ids {
		for _, p := range g.Parents(id) {
			if res.Visible(p) {
				uf.union(id, p)
			}
		}
		for _, s := range g.Spouses(id) {
			if res.Visible(s) {
				uf.union(id, s)
			}
		}
	}
	comps, compOf := uf.groups(ids)
	res.Components = comps
	for id, c := range compOf {
		res.Component[id] = c
	}
}

// unionFind is a disjoint-set forest over string ids with path compression.
type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string)}
}

func (u *unionFind) add(id string) {
	if _, ok := u.parent[id]; !ok {
		u.parent[id] = id
	}
}

func (u *unionFind) find(id string) string {
	root := id
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[id] != root {
		next := u.parent[id]
		u.parent[id] = root
		id = next
	}
	return root
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}

// groups lists the sets in order of their first member in ids.
func (u *unionFind) groups(ids []string) ([][]string, map[string]int) {
	var out [][]string
	index := make(map[string]int)
	of := make(map[string]int, len(ids))
	for _, id := range ids {
		root := u.find(id)
		gi, ok := index[root]
		if !ok {
			gi = len(out)
			index[root] = gi
			out = append(out, nil)
		}
		out[gi] = append(out[gi], id)
		of[id] = gi
	}
	return out, of
}

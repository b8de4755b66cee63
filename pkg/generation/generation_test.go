package generation

import (
	"slices"
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

func man(id string, rels person.Rels) person.Person {
	return person.Person{ID: id, Data: person.Data{Gender: person.GenderMale}, Rels: rels}
}

func woman(id string, rels person.Rels) person.Person {
	return person.Person{ID: id, Data: person.Data{Gender: person.GenderFemale}, Rels: rels}
}

func checkRanks(t *testing.T, res *Result, want map[string]int) {
	t.Helper()
	for id, w := range want {
		got, ok := res.Generation(id)
		if !ok {
			t.Errorf("Generation(%q) not visible", id)
			continue
		}
		if got != w {
			t.Errorf("Generation(%q) = %d, want %d", id, got, w)
		}
	}
}

// checkInvariants verifies monotonicity and spouse co-generation.
func checkInvariants(t *testing.T, g *graph.Graph, res *Result, collapsed map[string]bool) {
	t.Helper()
	for _, id := range g.IDs() {
		rank, ok := res.Generation(id)
		if !ok {
			continue
		}
		for _, p := range g.Parents(id) {
			if pr, ok := res.Generation(p); ok && pr >= rank {
				t.Errorf("parent %s rank %d not above child %s rank %d", p, pr, id, rank)
			}
		}
		if collapsed[id] {
			continue
		}
		for _, s := range g.Spouses(id) {
			if sr, ok := res.Generation(s); ok && !collapsed[s] && sr != rank {
				t.Errorf("spouses %s (%d) and %s (%d) differ", id, rank, s, sr)
			}
		}
	}
}

func TestAssignCouple(t *testing.T) {
	g := build(t,
		man("1", person.Rels{Spouses: []string{"2"}, Children: []string{"3"}}),
		woman("2", person.Rels{Spouses: []string{"1"}, Children: []string{"3"}}),
		person.Person{ID: "3", Rels: person.Rels{Father: "1", Mother: "2"}},
	)

	res := Assign(g, nil)

	checkRanks(t, res, map[string]int{"1": 0, "2": 0, "3": 1})
	checkInvariants(t, g, res, nil)
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", res.Warnings)
	}
}

func TestAssignMarriedInSpouse(t *testing.T) {
	// gp → dad; mum married in without parents; kid below.
	g := build(t,
		man("gp", person.Rels{Children: []string{"dad"}}),
		man("dad", person.Rels{Spouses: []string{"mum"}}),
		woman("mum", person.Rels{}),
		person.Person{ID: "kid", Rels: person.Rels{Father: "dad", Mother: "mum"}},
	)

	res := Assign(g, nil)

	checkRanks(t, res, map[string]int{"gp": 0, "dad": 1, "mum": 1, "kid": 2})
	checkInvariants(t, g, res, nil)
}

func TestAssignCrossGenerationRemarriage(t *testing.T) {
	// a's grandchild c marries b, a root: b joins c's generation.
	g := build(t,
		man("a", person.Rels{Children: []string{"m"}}),
		man("m", person.Rels{Children: []string{"c"}}),
		man("c", person.Rels{Spouses: []string{"b"}}),
		woman("b", person.Rels{}),
		man("u", person.Rels{Children: []string{"x"}}),
		person.Person{ID: "x", Rels: person.Rels{Father: "u", Mother: "b"}},
	)

	res := Assign(g, nil)

	checkRanks(t, res, map[string]int{"a": 0, "m": 1, "c": 2, "b": 2, "u": 0, "x": 3})
	checkInvariants(t, g, res, nil)
}

func TestAssignComponents(t *testing.T) {
	g := build(t,
		man("a", person.Rels{Children: []string{"b"}}),
		person.Person{ID: "b"},
		woman("z", person.Rels{Children: []string{"y"}}),
		person.Person{ID: "y"},
		person.Person{ID: "loner"},
	)

	res := Assign(g, nil)

	if len(res.Components) != 3 {
		t.Fatalf("Components = %v, want 3", res.Components)
	}
	if !slices.Equal(res.Components[0], []string{"a", "b"}) || !slices.Equal(res.Components[1], []string{"z", "y"}) {
		t.Errorf("Components = %v", res.Components)
	}
	checkRanks(t, res, map[string]int{"a": 0, "b": 1, "z": 0, "y": 1, "loner": 0})
	if res.Component["loner"] != 2 {
		t.Errorf("Component[loner] = %d, want 2", res.Component["loner"])
	}
	rows := res.Rows(1)
	if !slices.Equal(rows[0], []string{"z"}) || !slices.Equal(rows[1], []string{"y"}) {
		t.Errorf("Rows(1) = %v", rows)
	}
	if res.MaxRank(0) != 1 || res.MaxRank(7) != -1 {
		t.Errorf("MaxRank = (%d, %d), want (1, -1)", res.MaxRank(0), res.MaxRank(7))
	}
}

func TestAssignDanglingParent(t *testing.T) {
	g := build(t, person.Person{ID: "orphan", Rels: person.Rels{Father: "not-fetched"}})

	res := Assign(g, nil)

	checkRanks(t, res, map[string]int{"orphan": 0})
}

func TestAssignCollapsed(t *testing.T) {
	g := build(t,
		man("root", person.Rels{Spouses: []string{"wife"}, Children: []string{"son"}}),
		woman("wife", person.Rels{}),
		man("son", person.Rels{Spouses: []string{"dil"}, Children: []string{"grandson"}}),
		woman("dil", person.Rels{}),
		person.Person{ID: "grandson", Rels: person.Rels{Father: "son"}},
	)
	collapsed := map[string]bool{"root": true}

	res := Assign(g, collapsed)

	for _, id := range []string{"son", "grandson", "dil"} {
		if !res.Hidden[id] || res.Visible(id) {
			t.Errorf("%s should be hidden", id)
		}
	}
	if !res.Visible("root") || !res.Visible("wife") {
		t.Error("collapsed person and their spouse must stay visible")
	}
	checkInvariants(t, g, res, collapsed)
}

func TestHiddenSpouseWithOwnFamilyStaysVisible(t *testing.T) {
	g := build(t,
		man("root", person.Rels{Children: []string{"son"}}),
		man("son", person.Rels{Spouses: []string{"dil"}}),
		woman("in-law-mum", person.Rels{Children: []string{"dil"}}),
		woman("dil", person.Rels{}),
	)

	res := Assign(g, map[string]bool{"root": true})

	if !res.Hidden["son"] {
		t.Error("son should be hidden")
	}
	if res.Hidden["dil"] {
		t.Error("dil has a visible parent and should stay visible")
	}
}

func TestAssignCycle(t *testing.T) {
	g := build(t,
		man("a", person.Rels{Father: "b"}),
		man("b", person.Rels{Father: "a"}),
		man("c", person.Rels{Father: "b"}),
	)

	res := Assign(g, nil)

	if len(res.Ranks) != 3 {
		t.Fatalf("Ranks = %v, want all three ranked", res.Ranks)
	}
	checkRanks(t, res, map[string]int{"a": 0, "b": 1, "c": 2})
	if len(res.Warnings) == 0 || res.Warnings[0].Code != errors.ErrCodeInvalidTopology {
		t.Errorf("Warnings = %v, want INVALID_TOPOLOGY", res.Warnings)
	}
}

func TestAssignCycleReleasesOnlyCycleMembers(t *testing.T) {
	g := build(t,
		man("c", person.Rels{Father: "a"}),
		man("a", person.Rels{Father: "b"}),
		man("b", person.Rels{Father: "a"}),
	)

	res := Assign(g, nil)

	checkRanks(t, res, map[string]int{"a": 0, "b": 1, "c": 1})
	if len(res.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want one", res.Warnings)
	}
	if got := res.Warnings[0].People; !slices.Equal(got, []string{"a"}) {
		t.Errorf("warning names %v, want [a]", got)
	}
	for _, id := range []string{"c", "b"} {
		child, _ := res.Generation(id)
		if parent, _ := res.Generation("a"); child <= parent {
			t.Errorf("%s rank %d not below parent a rank %d", id, child, parent)
		}
	}
}

func TestAssignCycleBelowAncestor(t *testing.T) {
	g := build(t,
		man("x", person.Rels{Father: "y"}),
		man("y", person.Rels{Father: "x", Mother: "m"}),
		woman("m", person.Rels{}),
	)

	res := Assign(g, nil)

	rm, _ := res.Generation("m")
	if ry, _ := res.Generation("y"); ry <= rm {
		t.Errorf("y rank %d, want below mother rank %d", ry, rm)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("Warnings = %v, want one", res.Warnings)
	}
}

func TestAssignParentOfSpouse(t *testing.T) {
	g := build(t,
		man("a", person.Rels{Spouses: []string{"b"}}),
		woman("b", person.Rels{Father: "a"}),
	)

	res := Assign(g, nil)

	checkRanks(t, res, map[string]int{"a": 0, "b": 0})
	if len(res.Warnings) != 1 {
		t.Errorf("Warnings = %v, want one", res.Warnings)
	}
}

func TestAssignEmpty(t *testing.T) {
	res := Assign(graph.New(), nil)
	if len(res.Ranks) != 0 || len(res.Components) != 0 {
		t.Errorf("Assign(empty) = %+v", res)
	}
}

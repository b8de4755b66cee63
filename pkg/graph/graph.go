package graph

import (
	"slices"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/person"
)

// Graph stores person records keyed by id, in discovery order.
type Graph struct {
	people map[string]*person.Person
	order  []string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{people: make(map[string]*person.Person)}
}

// Merge inserts or replaces a batch of records and restores relationship
// symmetry across the whole graph.
//
// The batch is validated first: if any record has no id, Merge returns an
// INVALID_RECORD error and the graph is left untouched. A record whose id
// already exists replaces the stored record field by field (the incoming
// record wins) and keeps its discovery position.
func (g *Graph) Merge(people []person.Person) error {
	for i, p := range people {
		if err := person.Validate(p); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidRecord, err, "record %d of %d rejected", i+1, len(people))
		}
	}
	for _, p := range people {
		n := person.Normalize(p)
		if existing, ok := g.people[n.ID]; ok {
			*existing = n
			continue
		}
		g.people[n.ID] = &n
		g.order = append(g.order, n.ID)
	}
	g.resymmetrize()
	return nil
}

// UpsertOne merges a single record.
func (g *Graph) UpsertOne(p person.Person) error {
	return g.Merge([]person.Person{p})
}

// Remove deletes a person and scrubs every reference to it.
func (g *Graph) Remove(id string) error {
	if _, ok := g.people[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "person %q not found", id)
	}
	delete(g.people, id)
	g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == id })
	for _, p := range g.people {
		scrub(p, id)
	}
	return nil
}

// Unlink removes every direct link between a and b in both directions.
func (g *Graph) Unlink(a, b string) error {
	pa, ok := g.people[a]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "person %q not found", a)
	}
	pb, ok := g.people[b]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "person %q not found", b)
	}
	scrub(pa, b)
	scrub(pb, a)
	return nil
}

// Clear removes every record.
func (g *Graph) Clear() {
	g.people = make(map[string]*person.Person)
	g.order = nil
}

// Get returns a copy of the record for id.
func (g *Graph) Get(id string) (person.Person, bool) {
	p, ok := g.people[id]
	if !ok {
		return person.Person{}, false
	}
	return person.Clone(*p), true
}

// Lookup is Get with a NOT_FOUND error for unknown ids.
func (g *Graph) Lookup(id string) (person.Person, error) {
	p, ok := g.Get(id)
	if !ok {
		return person.Person{}, errors.New(errors.ErrCodeNotFound, "person %q not found", id)
	}
	return p, nil
}

// Has reports whether id is in the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.people[id]
	return ok
}

// Len returns the number of people.
func (g *Graph) Len() int { return len(g.order) }

// IDs returns all ids in discovery order.
func (g *Graph) IDs() []string { return slices.Clone(g.order) }

// People returns copies of all records in discovery order.
func (g *Graph) People() []person.Person {
	out := make([]person.Person, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, person.Clone(*g.people[id]))
	}
	return out
}

// Snapshot returns the records worth persisting: People without client
// placeholders, and without references to them.
func (g *Graph) Snapshot() []person.Person {
	var out []person.Person
	for _, id := range g.order {
		if person.IsTemporary(id) {
			continue
		}
		p := person.Clone(*g.people[id])
		for _, ref := range p.Refs() {
			if person.IsTemporary(ref) {
				scrub(&p, ref)
			}
		}
		out = append(out, p)
	}
	return out
}

// Parents returns the in-graph father and mother of id, father first.
func (g *Graph) Parents(id string) []string {
	p, ok := g.people[id]
	if !ok {
		return nil
	}
	var out []string
	for _, ref := range []string{p.Rels.Father, p.Rels.Mother} {
		if ref != "" && g.Has(ref) {
			out = append(out, ref)
		}
	}
	return out
}

// Spouses returns the in-graph spouses of id in record order.
func (g *Graph) Spouses(id string) []string {
	p, ok := g.people[id]
	if !ok {
		return nil
	}
	return g.present(p.Rels.Spouses)
}

// Children returns the in-graph children of id in record order.
func (g *Graph) Children(id string) []string {
	p, ok := g.people[id]
	if !ok {
		return nil
	}
	return g.present(p.Rels.Children)
}

// EdgeCount returns the number of in-graph parent links plus spouse pairs.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, id := range g.order {
		n += len(g.Parents(id))
		for _, s := range g.Spouses(id) {
			if id < s {
				n++
			}
		}
	}
	return n
}

func (g *Graph) present(ids []string) []string {
	var out []string
	for _, id := range ids {
		if g.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// scrub drops every reference to id from p.
func scrub(p *person.Person, id string) {
	if p.Rels.Father == id {
		p.Rels.Father = ""
	}
	if p.Rels.Mother == id {
		p.Rels.Mother = ""
	}
	p.Rels.Spouses = remove(p.Rels.Spouses, id)
	p.Rels.Children = remove(p.Rels.Children, id)
}

func remove(ids []string, id string) []string {
	out := slices.DeleteFunc(ids, func(s string) bool { return s == id })
	if len(out) == 0 {
		return nil
	}
	return out
}

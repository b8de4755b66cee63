package graph

import "github.com/matzehuels/kintree/pkg/person"

type idSet map[string]struct{}

func newIDSet(ids []string) idSet {
	s := make(idSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s idSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

// resymmetrize re-derives back-references across the whole graph. It builds
// one membership set per record up front so the pass stays linear in people
// plus links.
func (g *Graph) resymmetrize() {
	children := make(map[string]idSet, len(g.order))
	spouses := make(map[string]idSet, len(g.order))
	for _, id := range g.order {
		p := g.people[id]
		children[id] = newIDSet(p.Rels.Children)
		spouses[id] = newIDSet(p.Rels.Spouses)
	}

	for _, id := range g.order {
		p := g.people[id]

		for _, parentID := range []string{p.Rels.Father, p.Rels.Mother} {
			parent, ok := g.people[parentID]
			if !ok || children[parentID].has(id) {
				continue
			}
			parent.Rels.Children = append(parent.Rels.Children, id)
			children[parentID][id] = struct{}{}
		}

		for _, spouseID := range p.Rels.Spouses {
			spouse, ok := g.people[spouseID]
			if !ok || spouses[spouseID].has(id) {
				continue
			}
			spouse.Rels.Spouses = append(spouse.Rels.Spouses, id)
			spouses[spouseID][id] = struct{}{}
		}

		for _, childID := range p.Rels.Children {
			child, ok := g.people[childID]
			if !ok || child.Rels.Father == id || child.Rels.Mother == id {
				continue
			}
			fillParentSlot(child, p)
		}
	}
}

// fillParentSlot records parent in the child's matching empty parent slot.
// Occupied slots are left alone.
func fillParentSlot(child, parent *person.Person) {
	switch parent.Data.Gender {
	case person.GenderMale:
		if child.Rels.Father == "" {
			child.Rels.Father = parent.ID
		}
	case person.GenderFemale:
		if child.Rels.Mother == "" {
			child.Rels.Mother = parent.ID
		}
	default:
		if child.Rels.Father == "" {
			child.Rels.Father = parent.ID
		} else if child.Rels.Mother == "" {
			child.Rels.Mother = parent.ID
		}
	}
}

package graph

import (
	"slices"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/person"
)

// ReconcileTemporaryID replaces the temporary id tmp with the permanent id
// perm: the node itself and every father, mother, spouse and child reference
// to it. It returns the number of rewritten references, counting the node
// rename as one.
//
// A count of zero means nothing referenced tmp, which callers should treat as
// a benign no-op. Calling it twice with the same ids is therefore safe. When
// both ids already exist the stored perm record wins and the temporary record
// is dropped; its links survive through the rewritten references of its
// relatives.
func (g *Graph) ReconcileTemporaryID(tmp, perm string) (int, error) {
	if tmp == "" || perm == "" {
		return 0, errors.New(errors.ErrCodeInvalidInput, "reconcile needs both ids (tmp=%q, perm=%q)", tmp, perm)
	}
	if tmp == perm {
		return 0, nil
	}

	count := 0
	if p, ok := g.people[tmp]; ok {
		delete(g.people, tmp)
		if _, exists := g.people[perm]; exists {
			g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == tmp })
		} else {
			p.ID = perm
			g.people[perm] = p
			g.order[slices.Index(g.order, tmp)] = perm
		}
		count++
	}

	for _, id := range g.order {
		p := g.people[id]
		n := rewrite(p, tmp, perm)
		if n == 0 {
			continue
		}
		count += n
		*p = person.Normalize(*p)
	}

	if count > 0 {
		g.resymmetrize()
	}
	return count, nil
}

func rewrite(p *person.Person, from, to string) int {
	n := 0
	if p.Rels.Father == from {
		p.Rels.Father = to
		n++
	}
	if p.Rels.Mother == from {
		p.Rels.Mother = to
		n++
	}
	for i, s := range p.Rels.Spouses {
		if s == from {
			p.Rels.Spouses[i] = to
			n++
		}
	}
	for i, c := range p.Rels.Children {
		if c == from {
			p.Rels.Children[i] = to
			n++
		}
	}
	return n
}

// Package person defines the Person record shared by every kintree component.
//
// A Person is a nested record: an opaque id, descriptive data, and the
// relationship references (father, mother, spouses, children) that make the
// family graph. Records arrive from the backend either in this nested shape
// or in the backend's flat write payload; see [FromPayload] and [ToPayload].
//
// Ids issued by the client before the backend has confirmed a create are
// temporary: they carry the "tmp-" prefix and are replaced by the permanent
// id through [graph.Graph.ReconcileTemporaryID].
package person

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/matzehuels/kintree/pkg/errors"
)

// Gender is the backend's gender marker.
type Gender string

// Gender values. The empty value means unknown.
const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "M"
	GenderFemale  Gender = "F"
)

// temporaryPrefix marks ids minted by the client.
const temporaryPrefix = "tmp-"

// Contact holds optional contact details.
type Contact struct {
	Email string `json:"email,omitempty" bson:"email,omitempty"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
}

// Data holds the descriptive fields of a person.
type Data struct {
	FirstName   string  `json:"firstName" bson:"firstName"`
	LastName    string  `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Gender      Gender  `json:"gender,omitempty" bson:"gender,omitempty"`
	Birthday    string  `json:"birthday,omitempty" bson:"birthday,omitempty"`
	Location    string  `json:"location,omitempty" bson:"location,omitempty"`
	Work        string  `json:"work,omitempty" bson:"work,omitempty"`
	NativePlace string  `json:"nativePlace,omitempty" bson:"nativePlace,omitempty"`
	Avatar      string  `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Contact     Contact `json:"contact" bson:"contact"`
	Living      *bool   `json:"living,omitempty" bson:"living,omitempty"`
}

// Rels holds relationship references by person id. Empty strings mean the
// parent is absent.
type Rels struct {
	Father   string   `json:"father,omitempty" bson:"father,omitempty"`
	Mother   string   `json:"mother,omitempty" bson:"mother,omitempty"`
	Spouses  []string `json:"spouses,omitempty" bson:"spouses,omitempty"`
	Children []string `json:"children,omitempty" bson:"children,omitempty"`
}

// Person is one family member.
type Person struct {
	ID   string `json:"id" bson:"id"`
	Data Data   `json:"data" bson:"data"`
	Rels Rels   `json:"rels" bson:"rels"`
}

// NewTemporaryID returns a fresh client-side placeholder id.
func NewTemporaryID() string {
	return temporaryPrefix + uuid.NewString()
}

// IsTemporary reports whether id was minted by [NewTemporaryID].
func IsTemporary(id string) bool {
	return strings.HasPrefix(id, temporaryPrefix)
}

// Validate reports an INVALID_RECORD error when p cannot enter the graph.
func Validate(p Person) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New(errors.ErrCodeInvalidRecord, "person record has no id")
	}
	return nil
}

// Clone returns a deep copy of p.
func Clone(p Person) Person {
	c := p
	c.Rels.Spouses = slices.Clone(p.Rels.Spouses)
	c.Rels.Children = slices.Clone(p.Rels.Children)
	if p.Data.Living != nil {
		v := *p.Data.Living
		c.Data.Living = &v
	}
	return c
}

// Normalize returns a copy of p with trimmed ids, no self references,
// no empty entries and no duplicate spouses or children. A mother equal to the
// father is dropped.
func Normalize(p Person) Person {
	c := Clone(p)
	c.ID = strings.TrimSpace(c.ID)
	c.Rels.Father = cleanRef(c.ID, c.Rels.Father)
	c.Rels.Mother = cleanRef(c.ID, c.Rels.Mother)
	if c.Rels.Mother == c.Rels.Father {
		c.Rels.Mother = ""
	}
	c.Rels.Spouses = cleanRefs(c.ID, c.Rels.Spouses)
	c.Rels.Children = cleanRefs(c.ID, c.Rels.Children)
	return c
}

func cleanRef(self, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == self {
		return ""
	}
	return ref
}

func cleanRefs(self string, refs []string) []string {
	if len(refs) == 0 {
		return nil
	}
	out := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, r := range refs {
		r = cleanRef(self, r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// Refs returns every id p references, parents first, in stable order.
func (p Person) Refs() []string {
	var out []string
	if p.Rels.Father != "" {
		out = append(out, p.Rels.Father)
	}
	if p.Rels.Mother != "" {
		out = append(out, p.Rels.Mother)
	}
	out = append(out, p.Rels.Spouses...)
	return append(out, p.Rels.Children...)
}

// DisplayName joins first and last name, falling back to the id.
func (p Person) DisplayName() string {
	name := strings.TrimSpace(p.Data.FirstName + " " + p.Data.LastName)
	if name == "" {
		return p.ID
	}
	return name
}

// Initials returns up to two upper-case initials for avatar placeholders.
func (p Person) Initials() string {
	var b strings.Builder
	for _, part := range []string{p.Data.FirstName, p.Data.LastName} {
		if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(part)); r != utf8.RuneError {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}

// SplitName splits a single display name at its first space.
func SplitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	first, last, _ = strings.Cut(full, " ")
	return first, strings.TrimSpace(last)
}

// Relation names how a new person relates to an existing one.
type Relation string

// Supported relations for adding relatives.
const (
	RelationFather Relation = "father"
	RelationMother Relation = "mother"
	RelationSpouse Relation = "spouse"
	RelationChild  Relation = "child"
)

// ParseRelation validates a relation name.
func ParseRelation(s string) (Relation, error) {
	switch r := Relation(strings.ToLower(strings.TrimSpace(s))); r {
	case RelationFather, RelationMother, RelationSpouse, RelationChild:
		return r, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown relation %q (want father, mother, spouse or child)", s)
}

package person

import (
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/kintree/pkg/errors"
)

func TestTemporaryIDs(t *testing.T) {
	a, b := NewTemporaryID(), NewTemporaryID()
	if a == b {
		t.Fatalf("NewTemporaryID() returned duplicate %q", a)
	}
	if !IsTemporary(a) {
		t.Errorf("IsTemporary(%q) = false, want true", a)
	}
	if IsTemporary("65f1c2a9") {
		t.Error("IsTemporary(permanent) = true, want false")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(Person{ID: "1"}); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	for _, id := range []string{"", "   "} {
		err := Validate(Person{ID: id})
		if !errors.Is(err, errors.ErrCodeInvalidRecord) {
			t.Errorf("Validate(%q) = %v, want INVALID_RECORD", id, err)
		}
	}
}

func TestClone(t *testing.T) {
	living := true
	p := Person{ID: "1", Data: Data{Living: &living}, Rels: Rels{Spouses: []string{"2"}, Children: []string{"3"}}}
	c := Clone(p)
	c.Rels.Spouses[0] = "x"
	c.Rels.Children[0] = "y"
	*c.Data.Living = false

	if p.Rels.Spouses[0] != "2" || p.Rels.Children[0] != "3" {
		t.Error("Clone() shares relationship slices")
	}
	if !*p.Data.Living {
		t.Error("Clone() shares living pointer")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Person
		want Rels
	}{
		{
			name: "dedupes and drops empties",
			in:   Person{ID: "a", Rels: Rels{Spouses: []string{"b", "", "b", "c"}, Children: []string{"d", "d"}}},
			want: Rels{Spouses: []string{"b", "c"}, Children: []string{"d"}},
		},
		{
			name: "drops self references",
			in:   Person{ID: "a", Rels: Rels{Father: "a", Spouses: []string{"a"}, Children: []string{"a", "b"}}},
			want: Rels{Children: []string{"b"}},
		},
		{
			name: "mother equal to father",
			in:   Person{ID: "a", Rels: Rels{Father: "f", Mother: "f"}},
			want: Rels{Father: "f"},
		},
		{
			name: "trims ids",
			in:   Person{ID: " a ", Rels: Rels{Father: " f "}},
			want: Rels{Father: "f"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in).Rels
			if got.Father != tt.want.Father || got.Mother != tt.want.Mother ||
				!slices.Equal(got.Spouses, tt.want.Spouses) || !slices.Equal(got.Children, tt.want.Children) {
				t.Errorf("Normalize() rels = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDisplayNameAndInitials(t *testing.T) {
	tests := []struct {
		p        Person
		name     string
		initials string
	}{
		{Person{ID: "1", Data: Data{FirstName: "ada", LastName: "Lovelace"}}, "ada Lovelace", "AL"},
		{Person{ID: "2", Data: Data{FirstName: "Émile"}}, "Émile", "É"},
		{Person{ID: "3"}, "3", "?"},
	}
	for _, tt := range tests {
		if got := tt.p.DisplayName(); got != tt.name {
			t.Errorf("DisplayName() = %q, want %q", got, tt.name)
		}
		if got := tt.p.Initials(); got != tt.initials {
			t.Errorf("Initials() = %q, want %q", got, tt.initials)
		}
	}
}

func TestRefs(t *testing.T) {
	p := Person{ID: "a", Rels: Rels{Father: "f", Mother: "m", Spouses: []string{"s"}, Children: []string{"c1", "c2"}}}
	want := []string{"f", "m", "s", "c1", "c2"}
	if got := p.Refs(); !slices.Equal(got, want) {
		t.Errorf("Refs() = %v, want %v", got, want)
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct{ in, first, last string }{
		{"Ada Lovelace", "Ada", "Lovelace"},
		{"Anna Maria van Dijk", "Anna", "Maria van Dijk"},
		{"  Plato  ", "Plato", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		first, last := SplitName(tt.in)
		if first != tt.first || last != tt.last {
			t.Errorf("SplitName(%q) = (%q, %q), want (%q, %q)", tt.in, first, last, tt.first, tt.last)
		}
	}
}

func TestParseRelation(t *testing.T) {
	for _, s := range []string{"father", "Mother", " spouse ", "CHILD"} {
		if _, err := ParseRelation(s); err != nil {
			t.Errorf("ParseRelation(%q) = %v", s, err)
		}
	}
	if _, err := ParseRelation("cousin"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ParseRelation(cousin) = %v, want INVALID_INPUT", err)
	}
}

func TestSanitizeAvatar(t *testing.T) {
	tests := []struct {
		name    string
		avatar  string
		want    string
		changed bool
	}{
		{"url kept", "https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg", false},
		{"empty", "", "", false},
		{"data uri", "data:image/png;base64,AAAA", "", true},
		{"upper data uri", "DATA:image/png;base64,AAAA", "", true},
		{"too long", "https://x/" + strings.Repeat("a", MaxAvatarURLLength), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Person{ID: "1", Data: Data{Avatar: tt.avatar}}
			got, changed := SanitizeAvatar(p)
			if got.Data.Avatar != tt.want || changed != tt.changed {
				t.Errorf("SanitizeAvatar() = (%q, %v), want (%q, %v)", got.Data.Avatar, changed, tt.want, tt.changed)
			}
			if p.Data.Avatar != tt.avatar {
				t.Error("SanitizeAvatar() mutated its input")
			}
		})
	}
}

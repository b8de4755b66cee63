package sink

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/kintree/pkg/graph"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/person"
)

func sample(t *testing.T) *layout.Layout {
	t.Helper()
	g := graph.New()
	err := g.Merge([]person.Person{
		{ID: "1", Data: person.Data{FirstName: "John", LastName: "Smith", Gender: person.GenderMale},
			Rels: person.Rels{Spouses: []string{"2"}, Children: []string{"3"}}},
		{ID: "2", Data: person.Data{FirstName: "Jane", Gender: person.GenderFemale, Avatar: "https://example.com/a.png"},
			Rels: person.Rels{Spouses: []string{"1"}}},
		{ID: "3", Data: person.Data{FirstName: "Tom & Co"}, Rels: person.Rels{Father: "1", Mother: "2"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	pins := layout.NewPins()
	pins.Pin("3", layout.Point{X: 400, Y: 300})
	return layout.New(layout.Options{}).Compute(layout.Input{Graph: g, Pins: pins})
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(sample(t)))

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg"`,
		`id="card-1"`,
		`class="card gender-M"`,
		`class="card gender-F"`,
		`class="card gender- pinned"`,
		`href="https://example.com/a.png"`,
		`>JS</text>`,
		`Tom &amp; Co`,
		`class="edge edge-spouse"`,
		`class="edge edge-family"`,
		`class="pin"`,
		`class="toggle"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Contains(svg, "<script") {
		t.Error("non-interactive SVG should not embed a script")
	}
}

func TestRenderSVGInteractive(t *testing.T) {
	svg := string(RenderSVG(sample(t), WithInteractive("/ws"), WithoutAvatars(), WithTitle("Smiths")))
	if !strings.Contains(svg, `location.host + "/ws"`) {
		t.Error("script does not target /ws")
	}
	if strings.Contains(svg, "<image") {
		t.Error("WithoutAvatars still drew an image")
	}
	if !strings.Contains(svg, "<title>Smiths</title>") {
		t.Error("missing title")
	}
}

func TestRenderSVGEmpty(t *testing.T) {
	l := layout.New(layout.Options{}).Compute(layout.Input{Graph: graph.New()})
	svg := string(RenderSVG(l))
	if !strings.Contains(svg, `<g id="scene">`) || strings.Contains(svg, "card-") {
		t.Errorf("unexpected empty SVG: %s", svg)
	}
}

func TestJSONRender(t *testing.T) {
	r := NewJSON()
	data, err := r.Render(sample(t))
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if r.ContentType() != "application/json" || r.Format() != "json" {
		t.Errorf("metadata = %q %q", r.ContentType(), r.Format())
	}

	var out jsonScene
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if len(out.Cards) != 3 {
		t.Fatalf("Cards = %d, want 3", len(out.Cards))
	}
	byID := map[string]jsonCard{}
	for _, c := range out.Cards {
		byID[c.ID] = c
	}
	if byID["1"].GenderLabel != "male" || byID["3"].GenderLabel != "unknown" {
		t.Errorf("gender labels = %q %q", byID["1"].GenderLabel, byID["3"].GenderLabel)
	}
	if !byID["3"].Pinned || byID["3"].X != 400 {
		t.Errorf("pinned card = %+v", byID["3"])
	}
	if len(out.Edges) != 2 {
		t.Errorf("Edges = %d, want 2", len(out.Edges))
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 100, 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("a very long name indeed", 50, 10); got != "a ve…" {
		t.Errorf("truncate() = %q", got)
	}
}

package sink

import (
	"encoding/json"

	"github.com/matzehuels/kintree/pkg/generation"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/person"
)

// JSON renders a scene document for external front ends.
type JSON struct {
	indent bool
}

// NewJSON returns a pretty-printing JSON renderer.
func NewJSON() *JSON { return &JSON{indent: true} }

// NewCompactJSON returns a JSON renderer without indentation, used on the
// websocket.
func NewCompactJSON() *JSON { return &JSON{} }

func (j *JSON) ContentType() string { return "application/json" }
func (j *JSON) Format() string      { return "json" }

type jsonScene struct {
	Orientation layout.Orientation   `json:"orientation"`
	Width       float64              `json:"width"`
	Height      float64              `json:"height"`
	Origin      layout.Point         `json:"origin"`
	Rows        map[int][]string     `json:"rows,omitempty"`
	Cards       []jsonCard           `json:"cards"`
	Edges       []layout.Edge        `json:"edges"`
	Warnings    []generation.Warning `json:"warnings,omitempty"`
}

type jsonCard struct {
	layout.Node
	GenderLabel string `json:"gender_label"`
}

// Render encodes l. It does not modify l.
func (j *JSON) Render(l *layout.Layout) ([]byte, error) {
	out := jsonScene{
		Orientation: l.Orientation,
		Width:       l.Width(),
		Height:      l.Height(),
		Origin:      l.Origin(),
		Rows:        l.Rows,
		Cards:       make([]jsonCard, 0, len(l.Nodes)),
		Edges:       l.Edges,
		Warnings:    l.Warnings,
	}
	if out.Edges == nil {
		out.Edges = []layout.Edge{}
	}
	for _, n := range l.Nodes {
		out.Cards = append(out.Cards, jsonCard{Node: n, GenderLabel: genderLabel(n.Gender)})
	}
	if j.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

func genderLabel(g person.Gender) string {
	switch g {
	case person.GenderMale:
		return "male"
	case person.GenderFemale:
		return "female"
	}
	return "unknown"
}

package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the subtitle and generation to node labels.
	Detailed bool
}

var genderFill = map[string]string{
	"M": "#dbe9f6",
	"F": "#f8dce6",
	"":  "#ececec",
}

// ToDOT converts a layout to Graphviz DOT source. Only visible people and
// their edges appear; manual positions are not carried over.
func ToDOT(l *layout.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if l.Orientation == layout.Horizontal {
		buf.WriteString("  rankdir=LR;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n\n")

	for _, n := range l.Nodes {
		attrs := []string{
			fmt.Sprintf("label=%q", label(n, opts.Detailed)),
			fmt.Sprintf("fillcolor=%q", genderFill[string(n.Gender)]),
		}
		if n.Temporary {
			attrs = append(attrs, `style="rounded,filled,dashed"`)
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, rank := range slices.Sorted(maps.Keys(l.Rows)) {
		ids := make([]string, len(l.Rows[rank]))
		for i, id := range l.Rows[rank] {
			ids[i] = strconv.Quote(id)
		}
		fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(ids, "; "))
	}

	buf.WriteString("\n")
	junctions := make(map[string]bool)
	for _, e := range l.Edges {
		switch e.Kind {
		case layout.EdgeSpouse:
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, constraint=false];\n", e.From, e.To)
		case layout.EdgeFamily:
			j := junction(e.From, e.Via)
			if !junctions[j] {
				junctions[j] = true
				fmt.Fprintf(&buf, "  %q [shape=point, width=0.05, label=\"\"];\n", j)
				fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, j)
				fmt.Fprintf(&buf, "  %q -> %q;\n", e.Via, j)
			}
			fmt.Fprintf(&buf, "  %q -> %q;\n", j, e.To)
		default:
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func junction(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "family:" + a + "+" + b
}

func label(n layout.Node, detailed bool) string {
	if !detailed {
		return n.Label
	}
	parts := []string{n.Label}
	if n.Subtitle != "" {
		parts = append(parts, n.Subtitle)
	}
	parts = append(parts, fmt.Sprintf("generation: %d", n.Generation))
	return strings.Join(parts, "\n")
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// DOT is a [render.Renderer] emitting DOT source.
type DOT struct {
	Options Options
}

func (d DOT) Render(l *layout.Layout) ([]byte, error) { return []byte(ToDOT(l, d.Options)), nil }
func (DOT) ContentType() string                       { return "text/vnd.graphviz" }
func (DOT) Format() string                            { return "dot" }

// Diagram is a [render.Renderer] producing Graphviz-laid-out SVG.
type Diagram struct {
	ctx  context.Context
	opts Options
}

// NewDiagram returns a Graphviz SVG renderer; ctx bounds each render.
func NewDiagram(ctx context.Context, opts Options) *Diagram {
	return &Diagram{ctx: ctx, opts: opts}
}

func (d *Diagram) Render(l *layout.Layout) ([]byte, error) { return RenderSVG(d.ctx, ToDOT(l, d.opts)) }
func (d *Diagram) ContentType() string                      { return "image/svg+xml" }
func (d *Diagram) Format() string                           { return "graphviz" }

var (
	_ render.Renderer = DOT{}
	_ render.Renderer = (*Diagram)(nil)
)

// Package nodelink renders family layouts as Graphviz node-link diagrams.
//
// It is an alternative to the card renderer when a plain diagram is wanted
// or when the DOT source should be processed with external Graphviz tools.
// Generations become rank=same groups and each couple with shared children
// gets a small junction point from which the child edges leave.
//
//	dot := nodelink.ToDOT(l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// In-process rendering uses [github.com/goccy/go-graphviz]; PDF and PNG
// conversion goes through render.ToPDF and render.ToPNG.
package nodelink

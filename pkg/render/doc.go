// Package render draws layouts and translates pointer input back into chart
// operations.
//
// # Output
//
// A [Renderer] turns a [layout.Layout] into bytes of one format. The card
// renderers live in the [sink] subpackage; Graphviz diagrams live in
// [nodelink]. [ToPDF] and [ToPNG] convert any SVG through the external
// rsvg-convert tool:
//
//	svg, _ := sink.NewSVG().Render(l)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// # Input
//
// Renderers only report raw pointer events. A [Pointer] turns them into
// clicks, collapse toggles and drags and forwards them to a [Handler]:
//
//	p := render.NewPointer(coordinator)
//	p.Handle(render.Event{Type: render.EventDown, Node: "42", X: 10, Y: 10})
//	p.Handle(render.Event{Type: render.EventUp, X: 11, Y: 10}) // click
//
// Positions are committed only on drag end. A pointer-down while another
// session is active cancels that session without committing it.
//
// [sink]: github.com/matzehuels/kintree/pkg/render/sink
// [nodelink]: github.com/matzehuels/kintree/pkg/render/nodelink
package render

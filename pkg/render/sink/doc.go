// Package sink encodes card layouts as SVG, JSON, PNG or PDF.
//
// Every encoder implements [render.Renderer]:
//
//	svg, err := sink.NewSVG(sink.WithInteractive("/ws")).Render(l)
//	doc, err := sink.NewJSON().Render(l)
//	png, err := sink.NewPNG(ctx, sink.WithScale(2)).Render(l)
//
// # SVG Cards
//
// Each visible person is a rounded card coloured by gender, with the avatar
// image or an initials placeholder, the display name and a subtitle.
// Pinned cards carry a small marker. People with children get a collapse
// affordance showing "+" when collapsed and "−" otherwise.
//
// With [WithInteractive] the SVG embeds a script that posts raw pointer
// events ([render.Event]) over a websocket. The script does not interpret
// drags; the server side translates them with [render.Pointer].
//
// [render.Renderer]: github.com/matzehuels/kintree/pkg/render#Renderer
// [render.Event]: github.com/matzehuels/kintree/pkg/render#Event
// [render.Pointer]: github.com/matzehuels/kintree/pkg/render#Pointer
package sink

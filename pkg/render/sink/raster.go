package sink

import (
	"context"

	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/render"
)

// RasterOption configures PNG and PDF rendering.
type RasterOption func(*rasterRenderer)

type rasterRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithSVGOptions passes options through to the underlying SVG renderer.
func WithSVGOptions(opts ...SVGOption) RasterOption {
	return func(r *rasterRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) RasterOption {
	return func(r *rasterRenderer) { r.scale = s }
}

// PNG renders layouts as PNG via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
type PNG struct {
	ctx context.Context
	r   rasterRenderer
}

// NewPNG returns a PNG renderer; ctx bounds the external conversion.
func NewPNG(ctx context.Context, opts ...RasterOption) *PNG {
	return &PNG{ctx: ctx, r: newRaster(opts)}
}

func (p *PNG) Render(l *layout.Layout) ([]byte, error) {
	return render.ToPNG(p.ctx, RenderSVG(l, p.r.svgOpts...), p.r.scale)
}
func (p *PNG) ContentType() string { return "image/png" }
func (p *PNG) Format() string      { return "png" }

// PDF renders layouts as PDF via SVG conversion.
type PDF struct {
	ctx context.Context
	r   rasterRenderer
}

// NewPDF returns a PDF renderer; ctx bounds the external conversion.
func NewPDF(ctx context.Context, opts ...RasterOption) *PDF {
	return &PDF{ctx: ctx, r: newRaster(opts)}
}

func (p *PDF) Render(l *layout.Layout) ([]byte, error) {
	return render.ToPDF(p.ctx, RenderSVG(l, p.r.svgOpts...))
}
func (p *PDF) ContentType() string { return "application/pdf" }
func (p *PDF) Format() string      { return "pdf" }

func newRaster(opts []RasterOption) rasterRenderer {
	r := rasterRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

var (
	_ render.Renderer = (*SVG)(nil)
	_ render.Renderer = (*JSON)(nil)
	_ render.Renderer = (*PNG)(nil)
	_ render.Renderer = (*PDF)(nil)
)

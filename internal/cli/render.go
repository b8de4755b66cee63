package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/config"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/render"
	"github.com/matzehuels/kintree/pkg/render/nodelink"
	"github.com/matzehuels/kintree/pkg/render/sink"
)

const (
	vizCards    = "cards"    // positioned person cards (default)
	vizNodeLink = "nodelink" // Graphviz-laid-out diagram
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output    string
	vizType   string
	formats   []string
	detailed  bool
	noAvatars bool
	scale     float64
	title     string
}

var validFormats = []string{"svg", "json", "dot", "png", "pdf"}

func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the chart to SVG, JSON, DOT, PNG or PDF",
		Long: `Render lays out the stored chart and writes one file per format.

The cards view draws the chart as positioned cards, honouring pinned and
collapsed people. The nodelink view lets Graphviz arrange the same people;
it supports svg and dot only. PNG and PDF need rsvg-convert (librsvg).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			applyRenderDefaults(cmd, &opts, cfg.Render)
			if formatsStr != "" {
				opts.formats = parseFormats(formatsStr)
			}
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			if opts.vizType != vizCards && opts.vizType != vizNodeLink {
				return errors.New(errors.ErrCodeInvalidInput, "invalid type %q (must be %s or %s)", opts.vizType, vizCards, vizNodeLink)
			}
			return c.runRender(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg, json, dot, png, pdf (comma-separated)")
	cmd.Flags().StringVarP(&opts.vizType, "type", "t", vizCards, "visualization: cards or nodelink")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "add details to nodelink labels")
	cmd.Flags().BoolVar(&opts.noAvatars, "no-avatars", false, "draw initials instead of pictures")
	cmd.Flags().Float64Var(&opts.scale, "scale", config.DefaultScale, "PNG scale factor")
	cmd.Flags().StringVar(&opts.title, "title", "", "document title (default: chart name)")
	return cmd
}

// applyRenderDefaults fills options the user did not set from the config.
func applyRenderDefaults(cmd *cobra.Command, opts *renderOpts, rc config.RenderConfig) {
	opts.formats = rc.Formats
	if len(opts.formats) == 0 {
		opts.formats = []string{"svg"}
	}
	if !cmd.Flags().Changed("detailed") {
		opts.detailed = rc.Detailed
	}
	if !cmd.Flags().Changed("no-avatars") {
		opts.noAvatars = !rc.Avatars
	}
	if !cmd.Flags().Changed("scale") && rc.Scale > 0 {
		opts.scale = rc.Scale
	}
}

func parseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return []string{"svg"}
	}
	return out
}

func validateFormats(formats []string) error {
	for _, f := range formats {
		if !slices.Contains(validFormats, f) {
			return errors.New(errors.ErrCodeInvalidInput, "invalid format: %s (must be one of %s)", f, strings.Join(validFormats, ", "))
		}
	}
	return nil
}

// outputPaths maps each format to its file. A single format writes to the
// output path as given; several formats share its base name.
func outputPaths(output, chartName string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = chartName
	} else if ext := filepath.Ext(base); slices.Contains(validFormats, strings.TrimPrefix(ext, ".")) {
		base = strings.TrimSuffix(base, ext)
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

func (c *CLI) runRender(ctx context.Context, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	s, err := c.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	if opts.title == "" {
		opts.title = s.name
	}
	l := s.coord.Layout(ctx)
	logger.Infof("Laid out %d of %d people", len(l.Nodes), s.size())
	if len(l.Nodes) == 0 {
		printWarning("Chart %s is empty", s.name)
	}

	paths := outputPaths(opts.output, s.name, opts.formats)
	for _, format := range opts.formats {
		r, err := newRenderer(ctx, format, opts)
		if errors.Is(err, errors.ErrCodeUnsupported) && len(opts.formats) > 1 {
			logger.Debugf("Skipping %s/%s (unsupported combination)", opts.vizType, format)
			continue
		}
		if err != nil {
			return err
		}
		if err := writeRendered(ctx, r, l, paths[format]); err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		printFile(paths[format])
	}
	return nil
}

// newRenderer picks the renderer for a format and visualization type.
func newRenderer(ctx context.Context, format string, opts *renderOpts) (render.Renderer, error) {
	svgOpts := []sink.SVGOption{sink.WithTitle(opts.title)}
	if opts.noAvatars {
		svgOpts = append(svgOpts, sink.WithoutAvatars())
	}
	nl := nodelink.Options{Detailed: opts.detailed}

	if format == "dot" {
		return nodelink.DOT{Options: nl}, nil
	}
	if opts.vizType == vizNodeLink {
		if format == "svg" {
			return nodelink.NewDiagram(ctx, nl), nil
		}
		return nil, errors.New(errors.ErrCodeUnsupported, "%s does not support %s output", vizNodeLink, format)
	}

	switch format {
	case "svg":
		return sink.NewSVG(svgOpts...), nil
	case "json":
		return sink.NewJSON(), nil
	case "png":
		return sink.NewPNG(ctx, sink.WithSVGOptions(svgOpts...), sink.WithScale(opts.scale)), nil
	case "pdf":
		return sink.NewPDF(ctx, sink.WithSVGOptions(svgOpts...)), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown format: %s", format)
}

func writeRendered(ctx context.Context, r render.Renderer, l *layout.Layout, path string) error {
	start := time.Now()
	data, err := r.Render(l)
	observability.Chart().OnRenderComplete(ctx, r.Format(), len(data), time.Since(start), err)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "create output dir")
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	loggerFromContext(ctx).Debugf("Generated %s: %d bytes", path, len(data))
	return nil
}

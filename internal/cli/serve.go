package cli

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/render/sink"
	"github.com/matzehuels/kintree/pkg/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		offline   bool
		noAvatars bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chart as an interactive web page",
		Long: `Serve hosts the chart at http://<addr>/. Clicking a card loads that
person's relatives, dragging pins it, and the +/− button collapses its
descendants. Every change is saved to the chart store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			if !cmd.Flags().Changed("no-avatars") {
				noAvatars = !cfg.Render.Avatars
			}
			return c.runServe(cmd.Context(), addr, !offline, noAvatars)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8420)")
	cmd.Flags().BoolVar(&offline, "offline", false, "serve the stored chart without a backend")
	cmd.Flags().BoolVar(&noAvatars, "no-avatars", false, "draw initials instead of pictures")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, online, noAvatars bool) error {
	s, err := c.openSession(ctx, online)
	if err != nil {
		return err
	}
	defer s.Close()

	// Saves are serialized; a slow store must not reorder snapshots.
	var saveMu sync.Mutex
	s.coord.OnChange(func() {
		saveMu.Lock()
		defer saveMu.Unlock()
		if err := s.save(ctx); err != nil {
			s.logger.Error("save failed", "err", err)
		}
	})

	var svgOpts []sink.SVGOption
	if noAvatars {
		svgOpts = append(svgOpts, sink.WithoutAvatars())
	}
	srv := server.New(s.coord, server.Options{
		Logger: s.logger,
		Title:  s.name,
		SVG:    svgOpts,
	})
	printSuccess("Serving chart %s", s.name)
	printDetail("http://%s/", addr)
	return srv.Run(ctx, addr)
}

package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// fetchCommand creates the fetch command.
func (c *CLI) fetchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <id>...",
		Short: "Add people and their relatives from the backend",
		Long: `Fetch loads each person's network (parents, spouses and children) from
the backend and merges it into the chart. Records already in the chart are
replaced by the fresh copy.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd.Context(), args)
		},
	}
}

func (c *CLI) runFetch(ctx context.Context, ids []string) error {
	return c.update(ctx, true, func(s *session) error {
		prog := newProgress(s.logger)
		for _, id := range ids {
			err := c.spin(ctx, "Fetching relatives of "+id, func() error {
				return s.coord.Expand(ctx, id)
			})
			if err != nil {
				return err
			}
		}
		prog.done("Fetched " + plural(len(ids), "network"))
		printSuccess("Chart %s updated", s.name)
		s.summary(ctx)
		return nil
	})
}

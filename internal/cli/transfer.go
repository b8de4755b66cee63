package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/io"
)

// importCommand merges a JSON file of people into the chart.
func (c *CLI) importCommand() *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Merge people from a JSON file into the chart",
		Long: `Import reads a JSON array of person records ({id, data, rels}) and merges
it into the chart. Missing back-references are repaired. With --replace the
chart is cleared first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prog := newProgress(loggerFromContext(ctx))
			people, err := io.ImportFile(args[0])
			if err != nil {
				return err
			}
			return c.update(ctx, false, func(s *session) error {
				if replace {
					s.coord.Clear()
				}
				if err := s.coord.Merge(people); err != nil {
					return err
				}
				prog.done("Imported " + plural(len(people), "record"))
				printSuccess("Imported %s into chart %s", args[0], s.name)
				s.summary(ctx)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "clear the chart before importing")
	return cmd
}

// exportCommand writes the chart's people as a JSON array.
func (c *CLI) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the chart's people to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			state := s.coord.State()
			if err := io.ExportFile(state.People, args[0]); err != nil {
				return err
			}
			printSuccess("Exported %d people", len(state.People))
			printFile(args[0])
			return nil
		},
	}
}

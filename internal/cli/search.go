package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/api"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/person"
)

type searchOpts struct {
	name     string
	location string
	pick     bool
}

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var opts searchOpts
	cmd := &cobra.Command{
		Use:   "search [name]",
		Short: "Search the backend for people",
		Long: `Search looks people up by name or location. Results are cached briefly.
With --pick an interactive list opens and the chosen person is added to the
chart.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.name = args[0]
			}
			return c.runSearch(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "", "name to search for")
	cmd.Flags().StringVar(&opts.location, "location", "", "current location to search for")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose a result interactively and add it to the chart")
	return cmd
}

func (c *CLI) runSearch(ctx context.Context, opts searchOpts) error {
	if opts.name == "" && opts.location == "" {
		return errors.New(errors.ErrCodeInvalidInput, "give a name or --location")
	}
	s, err := c.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	var people []person.Person
	err = c.spin(ctx, "Searching", func() error {
		var err error
		people, err = s.coord.Search(ctx, api.Query{Name: opts.name, Location: opts.location})
		return err
	})
	if err != nil {
		return err
	}
	if len(people) == 0 {
		printInfo("No matches")
		return nil
	}

	if !opts.pick {
		fmt.Println(renderPeople(people))
		printDetail("%s. Add one with: %s fetch <id>", plural(len(people), "match"), appName)
		return nil
	}

	chosen, err := pickPerson(people)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "run picker")
	}
	if chosen == nil {
		printInfo("Nothing selected")
		return nil
	}
	if err := s.coord.Select(*chosen); err != nil {
		return err
	}
	printSuccess("Added %s to chart %s", chosen.DisplayName(), s.name)
	s.summary(ctx)
	return s.save(ctx)
}

// plural formats n with noun, adding "s" or "es" when n != 1.
func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	suffix := "s"
	if noun[len(noun)-1] == 'h' || noun[len(noun)-1] == 's' {
		suffix = "es"
	}
	return fmt.Sprintf("%d %s%s", n, noun, suffix)
}

package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/layout"
)

// pinCommand fixes a card at a position, as a drag in the browser would.
func (c *CLI) pinCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pin <id> <x> <y>",
		Short: "Fix a card's top-left corner at x,y",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parsePoint(args[1], args[2])
			if err != nil {
				return err
			}
			return c.update(cmd.Context(), false, func(s *session) error {
				if err := s.coord.Pin(args[0], at); err != nil {
					return err
				}
				printSuccess("Pinned %s at %.0f,%.0f", args[0], at.X, at.Y)
				return nil
			})
		},
	}
}

func parsePoint(xs, ys string) (layout.Point, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return layout.Point{}, errors.New(errors.ErrCodeInvalidInput, "invalid x %q", xs)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return layout.Point{}, errors.New(errors.ErrCodeInvalidInput, "invalid y %q", ys)
	}
	return layout.Point{X: x, Y: y}, nil
}

func (c *CLI) resetPositionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-positions [id...]",
		Short: "Return pinned cards to their computed places",
		Long:  `Reset unpins the given people, or every card when no ids are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.update(cmd.Context(), false, func(s *session) error {
				n := s.coord.ResetPositions(args...)
				if n == 0 {
					printInfo("No pinned cards")
					return nil
				}
				printSuccess("Reset %s", plural(n, "card"))
				return nil
			})
		},
	}
}

func (c *CLI) collapseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "collapse <id>",
		Short: "Hide or show a person's descendants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.update(cmd.Context(), false, func(s *session) error {
				collapsed, err := s.coord.ToggleCollapsed(args[0])
				if err != nil {
					return err
				}
				if collapsed {
					printSuccess("Collapsed %s", args[0])
				} else {
					printSuccess("Expanded %s", args[0])
				}
				s.summary(cmd.Context())
				return nil
			})
		},
	}
}

func (c *CLI) orientationCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "orientation <vertical|horizontal>",
		Short:     "Set the direction generations advance in",
		Long:      `Switching orientation clears pinned positions.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(layout.Vertical), string(layout.Horizontal)},
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := layout.ParseOrientation(args[0])
			if err != nil {
				return err
			}
			return c.update(cmd.Context(), false, func(s *session) error {
				if err := s.coord.SetOrientation(o); err != nil {
					return err
				}
				printSuccess("Orientation %s", o)
				return nil
			})
		},
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/store"
)

// chartsCommand manages stored charts.
func (c *CLI) chartsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "charts",
		Short: "List or delete stored charts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			names, err := st.List(cmd.Context())
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "list charts")
			}
			if len(names) == 0 {
				printInfo("No stored charts")
				return nil
			}
			for _, name := range names {
				marker := "  "
				if name == c.chartName {
					marker = StyleTitle.Render("* ")
				}
				fmt.Println(marker + name)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>...",
		Short: "Delete stored charts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			for _, name := range args {
				if err := st.Delete(cmd.Context(), name); err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "delete chart %s", name)
				}
				printSuccess("Deleted %s", name)
			}
			return nil
		},
	})
	return cmd
}

func (c *CLI) openStore(cmd *cobra.Command) (store.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cmd.Context(), cfg.Store)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open chart store")
	}
	return st, nil
}

package cli

import (
	"fmt"
	"time"

	"github.com/commitzapp/commitz/internal/models"
	syncengine "github.com/commitzapp/commitz/internal/sync"
	"github.com/spf13/cobra"
)

// NewToggleCommand flips a completion for a date (default today).
func NewToggleCommand(rootOpts *RootOptions) *cobra.Command {
	date := ""

	cmd := &cobra.Command{
		Use:   "toggle <commitment-id>",
		Short: "Toggle a day's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(rootOpts)
			if err != nil {
				return err
			}

			if date == "" {
				date = models.FormatDate(time.Now())
			}

			toggler := syncengine.NewToggler(rt.local, rt.remote, rt.logger, nil)
			active, err := toggler.Toggle(cmd.Context(), args[0], date)
			if err != nil {
				return err
			}

			if active {
				fmt.Fprintf(cmd.OutOrStdout(), "%s marked complete\n", date)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s marked incomplete\n", date)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date to toggle (YYYY-MM-DD, default today)")
	return cmd
}

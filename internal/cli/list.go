package cli

import (
	"fmt"
	"time"

	"github.com/commitzapp/commitz/internal/models"
	"github.com/spf13/cobra"
)

// NewListCommand prints all local commitments with today's state.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List commitments and today's completion state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(rootOpts)
			if err != nil {
				return err
			}

			today := models.FormatDate(time.Now())
			commitments := rt.local.Commitments()
			if len(commitments) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no commitments yet")
				return nil
			}

			for _, commitment := range commitments {
				mark := " "
				if rt.local.IsDateCompleted(commitment.ID, rt.userID, today) {
					mark = "x"
				}
				suffix := ""
				if commitment.IsCollaborative() {
					suffix = "  [collab]"
					if commitment.IsLocalOnly() {
						suffix = "  [collab, unsynced]"
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s  (%s)%s\n", mark, commitment.Title, commitment.ID, suffix)
			}
			return nil
		},
	}
}

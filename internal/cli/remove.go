package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRemoveCommand deletes or leaves a commitment. For synced
// collaborative commitments the server decides between owner teardown
// and participant leave; either way the local copy is removed.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <commitment-id>",
		Aliases: []string{"leave"},
		Short:   "Delete a commitment, or leave one you joined",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(rootOpts)
			if err != nil {
				return err
			}

			commitment, ok := rt.local.FindCommitment(args[0])
			if !ok {
				return fmt.Errorf("unknown commitment %s", args[0])
			}

			if commitment.IsCollaborative() && !commitment.IsLocalOnly() {
				if err := rt.remote.Delete(cmd.Context(), commitment.ID, rt.userID); err != nil {
					return fmt.Errorf("server removal failed: %w", err)
				}
			}
			if err := rt.local.RemoveCommitment(commitment.ID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", commitment.Title)
			return nil
		},
	}
}

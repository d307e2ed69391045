package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewRenameCommand retitles a commitment. The local write always
// succeeds; for synced collaborative commitments the new title is
// pushed best-effort and otherwise picked up by the next sync pass.
func NewRenameCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <commitment-id> <title>",
		Short: "Rename a commitment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(args[1])
			if title == "" {
				return errors.New("title must not be empty")
			}

			rt, err := newRuntime(rootOpts)
			if err != nil {
				return err
			}

			commitment, err := rt.local.RenameCommitment(args[0], title)
			if err != nil {
				return err
			}

			if commitment.IsCollaborative() && !commitment.IsLocalOnly() {
				if _, pushErr := rt.remote.UpdateTitle(cmd.Context(), commitment.ID, title); pushErr != nil {
					rt.logger.Warn("title push failed, will retry on next sync", "error", pushErr)
				} else if err := rt.local.ClearDirtyCommitment(commitment.ID); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %q\n", commitment.ID, title)
			return nil
		},
	}
}

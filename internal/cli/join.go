package cli

import (
	"errors"
	"fmt"

	"github.com/commitzapp/commitz/internal/remote"
	"github.com/spf13/cobra"
)

// NewJoinCommand joins a collaborative commitment by share code.
func NewJoinCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "join <share-code>",
		Short: "Join a collaborative commitment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(rootOpts)
			if err != nil {
				return err
			}

			commitment, err := rt.remote.Join(cmd.Context(), args[0], rt.userID)
			if err != nil {
				switch {
				case errors.Is(err, remote.ErrNotFound):
					return fmt.Errorf("no active commitment for code %s", args[0])
				case errors.Is(err, remote.ErrConflict):
					return errors.New("that challenge is already full")
				default:
					return err
				}
			}

			if err := rt.local.UpsertCommitment(commitment); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "joined %s (%s)\n", commitment.Title, commitment.ID)
			return nil
		},
	}
}

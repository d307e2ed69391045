package cli

import (
	"errors"
	"fmt"

	"github.com/commitzapp/commitz/internal/remote"
	"github.com/spf13/cobra"
)

// NewViewCommand shows a shared commitment by code without joining it.
func NewViewCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "view <share-code>",
		Short: "Look up a shared commitment without joining",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(rootOpts)
			if err != nil {
				return err
			}

			commitment, err := rt.remote.ViewShared(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, remote.ErrNotFound) {
					return fmt.Errorf("no active commitment for code %s", args[0])
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, owner %s)\n", commitment.Title, commitment.Type, commitment.OwnerID)
			return nil
		},
	}
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// NewShareCommand prints a commitment's share code, optionally
// rotating it first.
func NewShareCommand(rootOpts *RootOptions) *cobra.Command {
	rotate := false

	cmd := &cobra.Command{
		Use:   "share <commitment-id>",
		Short: "Show or rotate a commitment's share code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(rootOpts)
			if err != nil {
				return err
			}

			commitment, ok := rt.local.FindCommitment(args[0])
			if !ok {
				return fmt.Errorf("unknown commitment %s", args[0])
			}
			if !commitment.IsCollaborative() {
				return errors.New("only collaborative commitments have share codes")
			}
			if commitment.IsLocalOnly() {
				return errors.New("commitment has not been synced yet, run sync first")
			}

			code := commitment.ShareCode
			if rotate {
				code, err = rt.remote.RotateShareCode(cmd.Context(), commitment.ID)
				if err != nil {
					return err
				}
				commitment.ShareCode = code
				if err := rt.local.UpsertCommitment(commitment); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}

	cmd.Flags().BoolVar(&rotate, "rotate", false, "generate a new code, invalidating the old one")
	return cmd
}

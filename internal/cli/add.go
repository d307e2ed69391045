package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/commitzapp/commitz/internal/models"
	"github.com/spf13/cobra"
)

// NewAddCommand creates a commitment. Self commitments never leave the
// device; collaborative ones are pushed immediately when the server is
// reachable and stay local-only otherwise.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	collaborative := false

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a commitment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(args[0])
			if title == "" {
				return errors.New("title must not be empty")
			}

			rt, err := newRuntime(rootOpts)
			if err != nil {
				return err
			}

			commitmentType := models.TypeSelf
			if collaborative {
				commitmentType = models.TypeCollaborative
			}

			commitment, err := rt.local.NewLocalCommitment(title, commitmentType, rt.userID)
			if err != nil {
				return err
			}

			if !collaborative {
				fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", commitment.Title, commitment.ID)
				return nil
			}

			created, pushErr := rt.remote.CreateCommitment(cmd.Context(), title, commitmentType, rt.userID)
			if pushErr != nil {
				rt.logger.Warn("create push failed, commitment stays local-only", "error", pushErr)
				fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s, offline, will sync)\n", commitment.Title, commitment.ID)
				return nil
			}
			if err := rt.local.ReplaceCommitmentID(commitment.ID, created); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s, share code %s)\n", created.Title, created.ID, created.ShareCode)
			return nil
		},
	}

	cmd.Flags().BoolVar(&collaborative, "collab", false, "create a collaborative commitment")
	return cmd
}

package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	syncengine "github.com/commitzapp/commitz/internal/sync"
	"github.com/spf13/cobra"
)

// NewSyncCommand runs reconciliation: one full pass by default, or a
// resident loop with the pull and push timers under --watch.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	watch := false

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile local state with the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(rootOpts)
			if err != nil {
				return err
			}

			engine := syncengine.NewEngine(rt.local, rt.remote, rt.userID, rt.logger)
			engine.PullInterval = rt.config.PullInterval()
			engine.PushInterval = rt.config.PushInterval()

			if !watch {
				if err := engine.PushLocalChanges(cmd.Context()); err != nil {
					return err
				}
				if err := engine.Reconcile(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "sync complete")
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			engine.Start(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "syncing, press Ctrl-C to stop")
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and sync on the configured intervals")
	return cmd
}

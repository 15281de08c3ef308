package root

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"prio/internal/reminder"
	"prio/internal/ui"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the background deadline/streak checks until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openSession(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			sched := a.NewScheduler()
			sched.Start(runCtx)

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
				ui.Key.Render("Watching."),
				ui.Muted.Render(fmt.Sprintf("Deadline scan every %s; streak reminder at 23:00. Ctrl+C to stop.", reminder.ScanInterval)),
			)

			<-runCtx.Done()
			sched.Stop()
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("stopped"))
			return nil
		},
	}

	return cmd
}

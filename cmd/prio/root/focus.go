package root

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"prio/internal/progress"
	"prio/internal/ui"
)

// maxFocusPenalty caps the abort drain at one interrupted minute's worth.
const maxFocusPenalty = 60 * progress.FocusPenaltyPerSecond

func newFocusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "focus [duration]",
		Short: "Run a protected focus cycle (default 25m)",
		Long: `Run a protected focus cycle.

Finishing the cycle awards XP. Abandoning it drains XP, ten points per
second of the first interrupted minute. Boss mode rules: if you leave,
you pay.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dur := 25 * time.Minute
			if len(args) == 1 {
				parsed, err := time.ParseDuration(args[0])
				if err != nil {
					return fmt.Errorf("invalid duration: %q", args[0])
				}
				if parsed <= 0 {
					return fmt.Errorf("duration must be positive")
				}
				dur = parsed
			}

			ctx := context.Background()
			a, cleanup, err := openSession(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Warn.Render("BOSS MODE ENGAGED. Do not leave!"))

			deadline := time.Now().Add(dur)
			tick := time.NewTicker(time.Second)
			defer tick.Stop()

			for {
				select {
				case <-tick.C:
					remaining := time.Until(deadline)
					if remaining <= 0 {
						fmt.Fprintf(out, "\r%s\n", ui.Good.Render(ui.IconDone+" Focus cycle complete. Mandatory break now. ☕"))
						return a.Progress.AwardXP(ctx, progress.XPFocusCycle, "focus cycle complete")
					}
					fmt.Fprintf(out, "\r%s %s ", ui.Key.Render("Focus:"), formatCountdown(remaining))
				case <-runCtx.Done():
					remaining := int(time.Until(deadline).Seconds())
					if remaining < 0 {
						remaining = 0
					}
					penalty := remaining * progress.FocusPenaltyPerSecond
					if penalty > maxFocusPenalty {
						penalty = maxFocusPenalty
					}
					fmt.Fprintf(out, "\n%s %s\n", ui.Bad.Render("COME BACK!!! 😡"), ui.Muted.Render(fmt.Sprintf("(-%d XP)", penalty)))
					return a.Progress.ApplyPenalty(ctx, penalty)
				}
			}
		},
	}

	return cmd
}

func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

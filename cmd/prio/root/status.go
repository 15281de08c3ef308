package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"prio/internal/progress"
	"prio/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show progression and collection summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openSession(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			u := a.User
			rank := a.Progress.Rank()
			into, span := progress.LevelProgress(u.XP, u.Level)
			nextReq := progress.XPForLevel(u.Level + 1)
			toNext := nextReq - u.XP
			if toNext < 0 {
				toNext = 0
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Commander Status"))
			fmt.Fprintln(out, ui.LabelValue("Name", u.Name))
			fmt.Fprintln(out, ui.LabelValue("Rank", ui.Gold.Render(rank.Name)))
			fmt.Fprintln(out, ui.LabelValue("Level", u.Level))
			fmt.Fprintf(out, "%s %s %s\n",
				ui.Key.Render("XP:"),
				ui.ProgressBar(into, span, 30),
				ui.Muted.Render(fmt.Sprintf("%d (next at %d, %d to go)", u.XP, nextReq, toNext)),
			)
			fmt.Fprintln(out, ui.LabelValue("Streak", fmt.Sprintf("%s %d day(s)", ui.IconFlame, u.Streak)))
			fmt.Fprintln(out, "")
			fmt.Fprintln(out, ui.LabelValue("Tasks", fmt.Sprintf("%d total, %d pending", a.Tasks.Len(), a.Tasks.PendingCount())))
			return nil
		},
	}

	return cmd
}

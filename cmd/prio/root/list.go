package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"prio/internal/task"
	"prio/internal/ui"
)

func newListCmd() *cobra.Command {
	var status string
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openSession(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			view := a.Tasks.Filter(task.Query{
				Status: task.StatusFilter(status),
				Search: search,
			})
			if len(view) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No tasks match these parameters."))
				return nil
			}

			now := time.Now()
			for i, t := range view {
				fmt.Fprintln(cmd.OutOrStdout(), renderTaskLine(i+1, t, now))
				for _, sub := range t.Subtasks {
					fmt.Fprintf(cmd.OutOrStdout(), "      %s %s\n", ui.Checkbox(sub.Completed), ui.Muted.Render(fmt.Sprintf("%s (#%d)", sub.Text, sub.ID)))
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "")
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Pending", fmt.Sprintf("%d strategic goal(s)", a.Tasks.PendingCount())))
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "all", "Status filter (all|active|completed)")
	cmd.Flags().StringVarP(&search, "search", "q", "", "Case-insensitive text search")

	return cmd
}

func renderTaskLine(pos int, t task.Task, now time.Time) string {
	line := fmt.Sprintf("%3d. %s #%d %s  %s %s",
		pos,
		ui.Checkbox(t.Completed),
		t.ID,
		t.Text,
		ui.PriorityText(string(t.Priority)),
		ui.Muted.Render(string(t.Category)),
	)
	if t.DueDate != nil {
		due := t.DueDate.Format("Jan 2 15:04")
		switch {
		case t.Completed:
			line += "  " + ui.Muted.Render("due "+due)
		case t.DueDate.Before(now):
			line += "  " + ui.Bad.Render("overdue "+due)
		default:
			line += "  " + ui.Warn.Render("due "+due)
		}
	}
	return line
}

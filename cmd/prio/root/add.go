package root

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"prio/internal/task"
	"prio/internal/ui"
)

func newAddCmd() *cobra.Command {
	var priority string
	var category string
	var due string

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("task text is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openSession(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			var dueDate *time.Time
			if due != "" {
				parsed, err := parseDueDate(due, time.Now())
				if err != nil {
					return err
				}
				dueDate = parsed
			}

			t, err := a.Tasks.Create(ctx, task.CreateInput{
				Text:     strings.Join(args, " "),
				Priority: task.Priority(strings.ToLower(priority)),
				Category: task.Category(strings.ToLower(category)),
				DueDate:  dueDate,
			})
			if err != nil {
				return err
			}

			line := fmt.Sprintf("%s #%d %s", ui.Good.Render(ui.IconPlus+" Added"), t.ID, t.Text)
			fmt.Fprintln(cmd.OutOrStdout(), line)
			if t.DueDate != nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Due", t.DueDate.Format("Mon, Jan 2 15:04")))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", string(task.DefaultPriority), "Priority (high|medium|low)")
	cmd.Flags().StringVarP(&category, "category", "c", string(task.DefaultCategory), "Category (work|personal|health)")
	cmd.Flags().StringVarP(&due, "due", "d", "", "Due date (today|tomorrow|YYYY-MM-DD[ HH:MM])")

	return cmd
}

// parseDueDate accepts a couple of natural shortcuts plus explicit dates.
// Date-only input resolves to end of that day so 'due today' is not
// instantly overdue.
func parseDueDate(s string, now time.Time) (*time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	endOfDay := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
	}

	switch s {
	case "today":
		t := endOfDay(now)
		return &t, nil
	case "tomorrow", "tom":
		t := endOfDay(now.AddDate(0, 0, 1))
		return &t, nil
	}

	if t, err := time.ParseInLocation("2006-01-02 15:04", s, now.Location()); err == nil {
		return &t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		t = endOfDay(t)
		return &t, nil
	}
	return nil, fmt.Errorf("invalid due date: %q", s)
}

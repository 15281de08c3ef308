package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"prio/internal/ui"
)

func newDoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's completion",
		Args:  requireIDArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openSession(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			id, _ := strconv.ParseInt(args[0], 10, 64)
			t, err := a.Tasks.Toggle(ctx, id)
			if err != nil {
				return err
			}
			if t == nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render(fmt.Sprintf("no task with id %d", id)))
				return nil
			}

			if t.Completed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconDone+" Victory confirmed!"), t.Text)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render("↩ Back to pending:"), t.Text)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Pending", a.Tasks.PendingCount()))
			return nil
		},
	}

	return cmd
}

func requireIDArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("id is required")
	}
	if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
		return errors.New("id must be an integer")
	}
	return nil
}

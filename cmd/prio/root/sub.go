package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"prio/internal/ui"
)

func newSubCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sub",
		Short: "Manage subtasks",
	}

	cmd.AddCommand(newSubAddCmd(), newSubDoneCmd(), newSubRmCmd())
	return cmd
}

func newSubAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <task-id> <text>",
		Short: "Add a subtask",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("task id and text are required")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return errors.New("task id must be an integer")
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

			taskID, _ := strconv.ParseInt(args[0], 10, 64)
			sub, err := a.Tasks.AddSubtask(ctx, taskID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if sub == nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render(fmt.Sprintf("no task with id %d", taskID)))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d · %s\n", ui.Good.Render(ui.IconPlus+" Sub-objective mapped"), sub.ID, sub.Text)
			return nil
		},
	}
}

func newSubDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <task-id> <subtask-id>",
		Short: "Toggle a subtask's completion",
		Args:  requireSubIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openSession(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			taskID, _ := strconv.ParseInt(args[0], 10, 64)
			subID, _ := strconv.ParseInt(args[1], 10, 64)
			sub, err := a.Tasks.ToggleSubtask(ctx, taskID, subID)
			if err != nil {
				return err
			}
			if sub == nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("no such subtask"))
				return nil
			}
			if sub.Completed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconDone+" Sub-objective confirmed"), sub.Text)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render("↩ Sub-objective reopened:"), sub.Text)
			}
			return nil
		},
	}
}

func newSubRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task-id> <subtask-id>",
		Short: "Delete a subtask",
		Args:  requireSubIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openSession(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			taskID, _ := strconv.ParseInt(args[0], 10, 64)
			subID, _ := strconv.ParseInt(args[1], 10, 64)
			removed, err := a.Tasks.DeleteSubtask(ctx, taskID, subID)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("no such subtask"))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d\n", ui.Warn.Render("🗑 Subtask removed"), subID)
			return nil
		},
	}
}

func requireSubIDs(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return errors.New("task id and subtask id are required")
	}
	for _, arg := range args {
		if _, err := strconv.ParseInt(arg, 10, 64); err != nil {
			return errors.New("ids must be integers")
		}
	}
	return nil
}

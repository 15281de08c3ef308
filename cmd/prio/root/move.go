package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"prio/internal/ui"
)

func newMoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <id> <position>",
		Short: "Move a task to a new position (1-based, canonical order)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("id and position are required")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return errors.New("id must be an integer")
			}
			if _, err := strconv.Atoi(args[1]); err != nil {
				return errors.New("position must be an integer")
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

			id, _ := strconv.ParseInt(args[0], 10, 64)
			pos, _ := strconv.Atoi(args[1])

			// Ids map to canonical positions here, so an active filter in
			// another view can never corrupt the order.
			from := a.Tasks.IndexOf(id)
			if from < 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render(fmt.Sprintf("no task with id %d", id)))
				return nil
			}
			to := pos - 1
			if to < 0 || to >= a.Tasks.Len() {
				return fmt.Errorf("position %d out of range (1-%d)", pos, a.Tasks.Len())
			}

			if err := a.Tasks.Reorder(ctx, from, to); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d → position %d\n", ui.Good.Render("↕ Moved"), id, pos)
			return nil
		},
	}

	return cmd
}

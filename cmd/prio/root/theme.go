package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"prio/internal/ui"
)

func newThemeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme [name]",
		Short: "Show or set the theme preference",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openSession(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			if len(args) == 0 {
				theme, err := a.Session.Theme(ctx, a.User.ID)
				if err != nil {
					return err
				}
				if theme == "" {
					theme = "default"
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Theme", theme))
				return nil
			}

			if err := a.Session.SetTheme(ctx, a.User.ID, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Theme", args[0]))
			return nil
		},
	}

	return cmd
}

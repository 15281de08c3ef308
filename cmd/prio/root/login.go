package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"prio/internal/ui"
	"prio/internal/user"
)

func newLoginCmd() *cobra.Command {
	var name string
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Create a local account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if current, err := a.Session.Current(ctx); err == nil {
				return fmt.Errorf("already signed in as %s; run 'prio logout' first", current.Name)
			}

			u, err := a.Session.SignIn(ctx, name, email)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconSparkle+" Welcome,"), u.Name)
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("id "+u.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email (display only)")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out (stored records remain)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := a.Session.Current(ctx); errors.Is(err, user.ErrNoUser) {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("not signed in"))
				return nil
			}
			if err := a.Session.SignOut(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render("Signed out. Your progress is kept for next time."))
			return nil
		},
	}
}

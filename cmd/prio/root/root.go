package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"prio/internal/ui"
)

const Version = "0.1.0"

var dbPath string

var rootCmd = &cobra.Command{
	Use:           "prio",
	Short:         "prio is a local-first task manager with progression mechanics",
	Long:          "prio is a single-user, local-first CLI/TUI task manager that rewards consistency with XP, levels, streaks and ranks.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default ~/.prio/prio.db, or $PRIO_DB)")

	rootCmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newAddCmd(),
		newDoneCmd(),
		newEditCmd(),
		newRmCmd(),
		newMoveCmd(),
		newSubCmd(),
		newListCmd(),
		newStatusCmd(),
		newExportCmd(),
		newFocusCmd(),
		newWatchCmd(),
		newThemeCmd(),
		newBoardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opsdeck/opsdeck/internal/tui"
)

// consoleCmd launches the full-screen console
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the interactive console",
	Long: `Open the interactive full-screen console.

The console shows one tab per screen your role may use and keeps
every list live: sorting, searching, and paging refetch in the
background, and a session that expires mid-flight drops you back to
the shell with a hint to sign in again.

Examples:
  opsdeck console`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		adapter := tui.NewAdapter(app.client, app.store, app.logger)

		// Session transitions must reach the console; the store hook is
		// registered before the first screen is built.
		app.store.OnChange(adapter.NotifySessionChanged)

		if err := app.requireSession(cmd.Context()); err != nil {
			return err
		}

		return adapter.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

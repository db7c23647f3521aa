package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "opsdeck",
	Short: "Role-gated console for the ops admin API",
	Long: `opsdeck is the terminal client for the ops admin API.
It signs you in with your email and password, remembers the session
between runs, and gives each role exactly the screens it is allowed
to use: Admins manage the team, Managers and Employees work the
orders, and everyone browses products.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a cancellable context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("api-url", "", "Base URL of the admin API (default from config)")
	rootCmd.PersistentFlags().String("log-level", "", "Minimum log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log output format: text, json")
}

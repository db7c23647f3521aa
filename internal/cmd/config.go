package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsdeck/opsdeck/internal/config"
	"github.com/opsdeck/opsdeck/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage opsdeck configuration",
	Long: `Manage the opsdeck configuration file.

Settings live in ~/.opsdeck/config.yaml and can be overridden per run
with OPSDECK_* environment variables or the global flags.

Subcommands:
  show  Print the effective configuration
  set   Set a configuration value

Examples:
  opsdeck config show
  opsdeck config set api_url https://admin.example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// configShowCmd prints the effective configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.Dir())
		if err != nil {
			return err
		}
		applyFlags(cmd, &cfg)

		fmt.Printf("api_url: %s\n", cfg.APIURL)
		fmt.Printf("log_level: %s\n", cfg.LogLevel)
		fmt.Printf("log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

// configSetCmd writes one setting back to the config file
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and write it to the config file.

Keys: api_url, log_level, log_format

Examples:
  opsdeck config set api_url https://admin.example.com
  opsdeck config set log_level debug`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.Dir())
		if err != nil {
			return err
		}

		key, value := args[0], args[1]
		switch key {
		case "api_url":
			cfg.APIURL = value
		case "log_level":
			cfg.LogLevel = value
		case "log_format":
			cfg.LogFormat = value
		default:
			return errors.New(errors.ErrCodeValidationFormat,
				fmt.Sprintf("unknown config key %q (want api_url, log_level or log_format)", key))
		}

		if err := config.Save(config.Dir(), cfg); err != nil {
			return err
		}

		fmt.Printf("%s = %s\n", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

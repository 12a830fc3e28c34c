// Package commands implements the connector CLI.
package commands

import (
	"context"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/abushkanya/connector/cli/internal/version"
	"github.com/abushkanya/connector/config"
	"github.com/abushkanya/connector/runtime/client"
)

var configPath string

// NewRootCommand assembles the CLI command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "connector",
		Short:         "Declarative database access with multilingual columns",
		Long:          "Connector manages declared tables against live databases: schema convergence, backups, restores, and instance-to-instance sync.",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: .connector.yaml lookup)")

	root.AddCommand(newMigrateCommand())
	root.AddCommand(newBackupCommand())
	root.AddCommand(newRestoreCommand())
	root.AddCommand(newSyncCommand())
	root.AddCommand(newWatchCommand())
	root.AddCommand(newVersionCommand())

	return root
}

// loadConfig honors the --config flag, falling back to the standard lookup.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

// openClient builds and pings a client from a loaded config.
func openClient(ctx context.Context, cfg *config.Config) (*client.Client, error) {
	c, err := client.NewClient(cfg.Provider, cfg.DSN(), cfg.Tables, cfg.Locales)
	if err != nil {
		return nil, err
	}
	if err := c.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Provider, err)
	}
	return c, nil
}

// confirm asks the user before a write-heavy step. --yes skips the prompt.
func confirm(message string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	var ok bool
	err := survey.AskOne(&survey.Confirm{Message: message, Default: false}, &ok)
	return ok, err
}

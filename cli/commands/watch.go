package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abushkanya/connector/cli/internal/ui"
	"github.com/abushkanya/connector/cli/internal/watch"
	"github.com/abushkanya/connector/migrate"
)

func newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-converge the schema whenever the config file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = ".connector.yaml"
			}

			push := func() error {
				ctx := context.Background()

				cfg, err := loadConfig()
				if err != nil {
					ui.PrintError("Config: %v", err)
					return nil
				}
				c, err := openClient(ctx, cfg)
				if err != nil {
					ui.PrintError("Connect: %v", err)
					return nil
				}
				defer c.Disconnect(ctx)

				d, statements, err := migrate.New(c).Push(ctx)
				if err != nil {
					ui.PrintError("Push: %v", err)
					return nil
				}
				for _, stmt := range statements {
					ui.PrintSQL(stmt)
				}
				if d.Empty() {
					ui.PrintInfo("Schema up to date")
				} else {
					ui.PrintSuccess("Applied %d statements", len(statements))
				}
				for _, conflict := range d.Conflicts {
					ui.PrintWarning("Conflict: %s", conflict.Description)
				}
				return nil
			}

			watcher, err := watch.New(configPath, push)
			if err != nil {
				return err
			}
			if err := watcher.Start(); err != nil {
				watcher.Stop()
				return err
			}
			defer watcher.Stop()

			ui.PrintInfo("Watching %s, Ctrl+C to stop", configPath)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop
			return nil
		},
	}
}

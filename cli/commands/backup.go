package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abushkanya/connector/backup"
	"github.com/abushkanya/connector/cli/internal/ui"
	"github.com/abushkanya/connector/config"
)

func newBackupCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot all declared tables into a dump file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			c, err := openClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer c.Disconnect(ctx)

			spinner, _ := ui.Spinner("Reading tables")
			dump, err := backup.Backup(ctx, c)
			if spinner != nil {
				spinner.Stop()
			}
			if err != nil {
				return err
			}

			if out == "" {
				out = fmt.Sprintf("connector-%s.json", time.Now().UTC().Format("20060102-150405"))
			}
			if err := dump.WriteFile(config.AppFs, out); err != nil {
				return err
			}

			var total int
			for _, td := range dump.Tables {
				total += len(td.Rows)
			}
			ui.PrintSuccess("Dumped %d tables (%d rows) to %s", len(dump.Tables), total, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "dump file path (default: timestamped)")

	return cmd
}

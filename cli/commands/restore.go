package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abushkanya/connector/backup"
	"github.com/abushkanya/connector/cli/internal/ui"
	"github.com/abushkanya/connector/config"
)

func newRestoreCommand() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "restore <dump-file>",
		Short: "Load a dump into the configured database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			dump, err := backup.ReadDumpFile(config.AppFs, args[0])
			if err != nil {
				return err
			}
			ui.PrintInfo("Dump %s: %d tables, created %s from %s",
				dump.ID, len(dump.Tables), dump.CreatedAt.Format("2006-01-02 15:04"), dump.Provider)

			ok, err := confirm(fmt.Sprintf("Restore into %s?", cfg.Database), assumeYes)
			if err != nil {
				return err
			}
			if !ok {
				ui.PrintWarning("Aborted, nothing restored")
				return nil
			}

			c, err := openClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer c.Disconnect(ctx)

			report, err := backup.Restore(ctx, c, dump)
			if err != nil {
				return err
			}
			printRestoreReport(report)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "restore without confirmation")

	return cmd
}

func printRestoreReport(report *backup.RestoreReport) {
	ui.PrintSuccess("Restored %d tables, %d rows", report.TablesRestored, report.RowsInserted)

	if len(report.SkippedRows) > 0 {
		rows := make([][]string, 0, len(report.SkippedRows))
		for _, skipped := range report.SkippedRows {
			rows = append(rows, []string{skipped.Table, fmt.Sprint(skipped.RowIndex), skipped.Reason})
		}
		ui.PrintWarning("%d rows skipped:", len(report.SkippedRows))
		ui.PrintTable([]string{"Table", "Row", "Reason"}, rows)
	}
	for _, failed := range report.FailedTables {
		ui.PrintError("Table %s failed: %s", failed.Table, failed.Reason)
	}
}

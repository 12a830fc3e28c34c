package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abushkanya/connector/backup"
	"github.com/abushkanya/connector/cli/internal/ui"
	"github.com/abushkanya/connector/config"
)

// minPostgresVersion is the oldest postgres release sync is tested against.
const minPostgresVersion = "9.5"

func newSyncCommand() *cobra.Command {
	var targetPath string
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push missing and changed rows from this instance to a target",
		Long:  "Sync converges a target instance toward the configured source, keyed by primary key. Rows present only in the target are never deleted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sourceCfg, err := loadConfig()
			if err != nil {
				return err
			}
			targetCfg, err := config.LoadFile(targetPath)
			if err != nil {
				return fmt.Errorf("target config: %w", err)
			}
			// The target uses the source's table declarations; only the
			// connection differs.
			targetCfg.Tables = sourceCfg.Tables
			targetCfg.Locales = sourceCfg.Locales

			source, err := openClient(ctx, sourceCfg)
			if err != nil {
				return fmt.Errorf("source: %w", err)
			}
			defer source.Disconnect(ctx)

			target, err := openClient(ctx, targetCfg)
			if err != nil {
				return fmt.Errorf("target: %w", err)
			}
			defer target.Disconnect(ctx)

			switch targetCfg.Provider {
			case "postgresql", "postgres":
				if err := target.RequireServerVersion(ctx, minPostgresVersion); err != nil {
					return err
				}
			}

			ok, err := confirm(fmt.Sprintf("Sync %s into %s?", sourceCfg.Database, targetCfg.Database), assumeYes)
			if err != nil {
				return err
			}
			if !ok {
				ui.PrintWarning("Aborted, nothing synced")
				return nil
			}

			report, err := backup.Sync(ctx, source, target)
			if err != nil {
				return err
			}
			printSyncReport(report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "target", "t", "", "path to the target instance config file")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "sync without confirmation")
	cmd.MarkFlagRequired("target")

	return cmd
}

func printSyncReport(report *backup.SyncReport) {
	rows := make([][]string, 0, len(report.Tables))
	for _, ts := range report.Tables {
		rows = append(rows, []string{ts.Table, fmt.Sprint(ts.Inserted), fmt.Sprint(ts.Updated)})
	}
	ui.PrintTable([]string{"Table", "Inserted", "Updated"}, rows)
	ui.PrintSuccess("Synced: %d inserted, %d updated", report.Inserted(), report.Updated())

	for _, failed := range report.FailedTables {
		ui.PrintError("Table %s failed: %s", failed.Table, failed.Reason)
	}
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abushkanya/connector/cli/internal/ui"
	"github.com/abushkanya/connector/migrate"
	"github.com/abushkanya/connector/migrate/diff"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Converge the live database schema to the declared tables",
	}

	cmd.AddCommand(newMigratePlanCommand())
	cmd.AddCommand(newMigratePushCommand())

	return cmd
}

func newMigratePlanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show what push would change, without applying anything",
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

			d, err := migrate.New(c).Plan(ctx)
			if err != nil {
				return err
			}
			printDiff(d)
			return nil
		},
	}
}

func newMigratePushCommand() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Apply the schema changes needed to match the declarations",
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

			m := migrate.New(c)
			d, err := m.Plan(ctx)
			if err != nil {
				return err
			}
			printDiff(d)

			if d.Empty() {
				return d.ConflictError()
			}

			ok, err := confirm(fmt.Sprintf("Apply these changes to %s?", cfg.Database), assumeYes)
			if err != nil {
				return err
			}
			if !ok {
				ui.PrintWarning("Aborted, nothing applied")
				return nil
			}

			statements, err := m.Apply(ctx, d)
			if err != nil {
				return err
			}
			for _, stmt := range statements {
				ui.PrintSQL(stmt)
			}
			ui.PrintSuccess("Schema converged (%d statements)", len(statements))
			return d.ConflictError()
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "apply without confirmation")

	return cmd
}

func printDiff(d *diff.Diff) {
	if d.Empty() && len(d.Conflicts) == 0 {
		ui.PrintSuccess("Schema is up to date")
		return
	}

	if len(d.TablesToCreate) > 0 {
		rows := make([][]string, 0, len(d.TablesToCreate))
		for _, table := range d.TablesToCreate {
			rows = append(rows, []string{table.Name, fmt.Sprintf("%d columns", len(table.Columns))})
		}
		ui.PrintInfo("Tables to create:")
		ui.PrintTable([]string{"Table", "Columns"}, rows)
	}

	if len(d.ColumnsToAdd) > 0 {
		rows := make([][]string, 0, len(d.ColumnsToAdd))
		for _, change := range d.ColumnsToAdd {
			rows = append(rows, []string{change.Table, change.Column.Name, change.Column.Type})
		}
		ui.PrintInfo("Columns to add:")
		ui.PrintTable([]string{"Table", "Column", "Type"}, rows)
	}

	for _, conflict := range d.Conflicts {
		ui.PrintWarning("Conflict: %s", conflict.Description)
	}
}

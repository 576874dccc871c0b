package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LadyAlena/sql-homeworks-6/internal/models"
	"github.com/LadyAlena/sql-homeworks-6/pkg/ddl"
	"github.com/LadyAlena/sql-homeworks-6/pkg/runtime"
)

func newSchemaCmd() *cobra.Command {
	var (
		dialect string
		drop    bool
	)

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the DDL of the book tables",
		Long: `Print the CREATE TABLE statements of the book tables in creation order,
optionally preceded by the DROP TABLE statements in reverse order.

Examples:
  bookdist schema                       # PostgreSQL
  bookdist schema --dialect sqlite
  bookdist schema --drop`,
		RunE: func(cmd *cobra.Command, args []string) error {
			driver, err := runtime.ParseDriver(dialect)
			if err != nil {
				return usageError("--dialect: %v", err)
			}

			reg, err := models.NewRegistry()
			if err != nil {
				return err
			}

			planner := ddl.NewPlannerWithOptions(runtime.DialectFor(driver), ddl.PlannerOptions{IfExists: drop})
			tables := reg.Tables()

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "-- bookdist schema (%s)\n\n", driver)
			if drop {
				for _, stmt := range planner.DropStatements(tables) {
					_, _ = fmt.Fprintln(w, stmt)
				}
				_, _ = fmt.Fprintln(w)
			}
			for _, stmt := range planner.CreateStatements(tables) {
				_, _ = fmt.Fprintln(w, stmt)
				_, _ = fmt.Fprintln(w)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dialect, "dialect", "postgres", "SQL dialect: postgres or sqlite")
	cmd.Flags().BoolVar(&drop, "drop", false, "Include DROP TABLE IF EXISTS statements")
	return cmd
}

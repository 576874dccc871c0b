package commands

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/LadyAlena/sql-homeworks-6/cmd/bookdist/output"
)

func newSeedCmd(flags *globalFlags) *cobra.Command {
	var seedValue uint64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Reset the tables and fill them with random data",
		Long: `Drop and recreate the book tables and fill them with random data, then
commit. Use 'bookdist shops' afterwards to query the seeded database.

Examples:
  bookdist seed --driver sqlite          # Seed ./bookdist.db
  bookdist seed --seed 42                # Reproducible data`,
		RunE: func(cmd *cobra.Command, args []string) error {
			seedValue = resolveSeed(cmd, seedValue)
			return withSession(cmd, flags, "seed", func(ctx context.Context, s *session) error {
				res, err := s.app.Seed(ctx, newSource(seedValue))
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if flags.jsonOutput {
					enc := json.NewEncoder(w)
					enc.SetIndent("", "  ")
					return enc.Encode(map[string]any{
						"seed":       seedValue,
						"publishers": len(res.Publishers),
						"books":      len(res.Books),
						"shops":      len(res.Shops),
						"stocks":     len(res.Stocks),
						"sales":      len(res.Sales),
					})
				}

				output.SeedSummary(w, res, seedValue)
				output.Success(w, "Database seeded")
				return nil
			})
		},
	}

	cmd.Flags().Uint64Var(&seedValue, "seed", 0, "Random seed (defaults to the current time)")
	return cmd
}

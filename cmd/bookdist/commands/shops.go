package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/LadyAlena/sql-homeworks-6/internal/prompt"
)

func newShopsCmd(flags *globalFlags) *cobra.Command {
	var publisher int

	cmd := &cobra.Command{
		Use:   "shops",
		Short: "List the shops selling a publisher's books",
		Long: `Query an already seeded database in a read-only transaction and list
the shops selling books of the given publisher.

Examples:
  bookdist shops --publisher 1
  bookdist shops -p 3 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, "shops", func(ctx context.Context, s *session) error {
				max := len(s.app.Catalog().Publishers)
				if _, err := prompt.ParseOrdinal(strconv.Itoa(publisher), max); err != nil {
					return usageError("--publisher: %s", prompt.Message(err, max))
				}

				res, err := s.app.Shops(ctx, publisher)
				if err != nil {
					return err
				}
				return printShops(cmd.OutOrStdout(), flags, res)
			})
		},
	}

	cmd.Flags().IntVarP(&publisher, "publisher", "p", 0, "Publisher ordinal (1-based)")
	_ = cmd.MarkFlagRequired("publisher")
	return cmd
}

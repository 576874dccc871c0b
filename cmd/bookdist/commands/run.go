package commands

import (
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/LadyAlena/sql-homeworks-6/cmd/bookdist/output"
	"github.com/LadyAlena/sql-homeworks-6/internal/app"
	"github.com/LadyAlena/sql-homeworks-6/internal/prompt"
	"github.com/LadyAlena/sql-homeworks-6/internal/report"
)

func newRunCmd(flags *globalFlags) *cobra.Command {
	var (
		publisher   int
		seedValue   uint64
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reset, seed and query in one transaction",
		Long: `Drop and recreate the book tables, fill them with random data, ask for
a publisher and list the shops selling its books. Everything happens in
one transaction that is committed only when the listing succeeds.

Examples:
  bookdist run                          # Prompt for the publisher
  bookdist run --publisher 2            # No prompt
  bookdist run --interactive            # Pick the publisher in a TUI
  bookdist run --seed 42 --publisher 1  # Replay a previous run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			seedValue = resolveSeed(cmd, seedValue)
			return withSession(cmd, flags, "run", func(ctx context.Context, s *session) error {
				choose, err := chooser(cmd, publisher, interactive, len(s.app.Catalog().Publishers))
				if err != nil {
					return err
				}

				res, err := s.app.Run(ctx, newSource(seedValue), choose)
				if err != nil {
					return err
				}
				s.logger.Debug().Uint64("seed", seedValue).Str("run_id", res.RunID).Msg("run committed")

				output.ClearScreen(cmd.OutOrStdout())
				return printShops(cmd.OutOrStdout(), flags, res.Shops)
			})
		},
	}

	cmd.Flags().IntVarP(&publisher, "publisher", "p", 0, "Publisher ordinal (1-based); prompts when omitted")
	cmd.Flags().Uint64Var(&seedValue, "seed", 0, "Random seed (defaults to the current time)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Pick the publisher in an interactive list")
	return cmd
}

// chooser selects how the publisher ordinal is obtained: a fixed flag value,
// the TUI picker or a line prompt on stdin.
func chooser(cmd *cobra.Command, publisher int, interactive bool, max int) (app.Chooser, error) {
	if cmd.Flags().Changed("publisher") {
		if _, err := prompt.ParseOrdinal(strconv.Itoa(publisher), max); err != nil {
			return nil, usageError("--publisher: %s", prompt.Message(err, max))
		}
		return app.Fixed(publisher), nil
	}

	if interactive {
		return func(ctx context.Context, publishers []string) (int, error) {
			return prompt.Pick(ctx, publishers,
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
		}, nil
	}

	return func(ctx context.Context, publishers []string) (int, error) {
		return prompt.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).Ordinal(ctx, len(publishers))
	}, nil
}

func printShops(w io.Writer, flags *globalFlags, res *report.PublisherShops) error {
	if flags.jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Publisher string   `json:"publisher"`
			Shops     []string `json:"shops"`
		}{res.Publisher, res.Shops})
	}

	output.PublisherShops(w, res)
	return nil
}

// resolveSeed returns the --seed value, or a time based seed when the flag
// was not given.
func resolveSeed(cmd *cobra.Command, value uint64) uint64 {
	if cmd.Flags().Changed("seed") {
		return value
	}
	return uint64(time.Now().UnixNano())
}

func newSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed>>32|seed<<32))
}

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"harvest-planner/internal/repository"
)

var (
	seedValue int64
	seedFrom  string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace all records with demo farmers, plots and plantings",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().Int64Var(&seedValue, "seed", 1, "Random seed; the same seed yields the same data")
	seedCmd.Flags().StringVar(&seedFrom, "from", "", "First harvest day YYYY-MM-DD (default today)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	from := time.Now().UTC()
	if seedFrom != "" {
		t, err := time.Parse("2006-01-02", seedFrom)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		from = t
	}

	_, logger, db, err := setup()
	if err != nil {
		return err
	}
	defer closeDB(db, logger)

	stats, err := repository.NewSeedRepository(db, seedValue).SeedDatabase(cmd.Context(), from)
	if err != nil {
		return err
	}
	logger.Info("database seeded",
		"farmers", stats.Farmers,
		"plots", stats.Plots,
		"plantings", stats.Plantings,
	)
	return nil
}

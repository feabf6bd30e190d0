// Package cli contains the farmos commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"harvest-planner/internal/config"
	"harvest-planner/internal/database"
)

// Version is the current version of farmos
var Version = "0.1.0"

var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "farmos",
	Short: "Harvest planning for farmer plots and plantings",
	Long: `farmos tracks farmers, plots and crop plantings and forecasts the
expected harvest tonnage per calendar month.

Examples:
  farmos serve                           # start the HTTP API
  farmos seed                            # load demo data
  farmos export --month 2024-05          # write harvest_plan.csv
  farmos export --q kk3 --format xlsx    # write harvest_plan.xlsx`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "farmos.yaml", "Path to config file")
	rootCmd.AddCommand(serveCmd, seedCmd, exportCmd)
}

// newLogger builds the JSON slog logger used by every command
func newLogger(cfg config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
}

// setup loads configuration and opens the database
func setup() (config.Config, *slog.Logger, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	logger := newLogger(cfg)
	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, logger, db, nil
}

// closeDB releases the connection pool opened by setup
func closeDB(db *gorm.DB, logger *slog.Logger) {
	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.Close()
	}
	if err != nil {
		logger.Warn("close database", "error", err.Error())
	}
}

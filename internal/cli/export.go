package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"harvest-planner/internal/harvest"
	"harvest-planner/internal/repository"
	"harvest-planner/internal/service"
)

var (
	exportQuery  string
	exportMonth  string
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the harvest plan table to a csv or xlsx file",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportQuery, "q", "", "Free-text filter")
	exportCmd.Flags().StringVar(&exportMonth, "month", "", "Harvest month filter (YYYY-MM)")
	exportCmd.Flags().StringVar(&exportFormat, "format", service.FormatCSV, "Output format: csv | xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file, or - for stdout (default harvest_plan.<format> in the export dir)")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != service.FormatCSV && exportFormat != service.FormatXLSX {
		return fmt.Errorf("%w: %q", service.ErrUnknownFormat, exportFormat)
	}

	cfg, logger, db, err := setup()
	if err != nil {
		return err
	}
	defer closeDB(db, logger)
	svc := service.NewHarvestService(repository.NewFarmRepository(db), logger)
	q := harvest.Query{Text: exportQuery, Month: exportMonth}

	if exportOut == "-" {
		return svc.Export(cmd.Context(), cmd.OutOrStdout(), q, exportFormat)
	}

	path := exportOut
	if path == "" {
		path = filepath.Join(cfg.Export.Dir, "harvest_plan."+exportFormat)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := svc.Export(cmd.Context(), f, q, exportFormat); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("export written", "path", path, "format", exportFormat)
	return nil
}

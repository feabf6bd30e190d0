package harvest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// DateLayout is the ISO 8601 calendar date layout used in exports
const DateLayout = "2006-01-02"

// ExportSheet is the worksheet name of the XLSX export
const ExportSheet = "Forecast"

// ExportHeader is the first line of every flat export
var ExportHeader = []string{
	"month",
	"farmer_code",
	"farmer_name",
	"plot_name",
	"area_rai",
	"variety",
	"plant_date",
	"harvest_date",
	"expected_tons",
	"status",
}

// SeriesPoint is one month of the charting/API series
type SeriesPoint struct {
	Month string  `json:"month"`
	Tons  float64 `json:"tons"`
}

// Round3 rounds half away from zero to 3 decimal places
func Round3(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(3).Float64()
	return f
}

// Series renders month buckets as {month, tons} points, tons rounded once
// per point. It never returns nil.
func Series(t Totals) []SeriesPoint {
	points := make([]SeriesPoint, 0, len(t.Buckets))
	for _, b := range t.Buckets {
		points = append(points, SeriesPoint{Month: b.Month, Tons: Round3(b.Tons)})
	}
	return points
}

// formatTons renders tonnage with exactly three decimals
func formatTons(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(3)
}

// ExportRecord renders a detail row as export fields. Unresolved plot and
// farmer fields are blank.
func ExportRecord(row Row) []string {
	area := ""
	if row.Plot != nil {
		area = strconv.FormatFloat(row.Plot.AreaRai, 'f', -1, 64)
	}
	return []string{
		row.Month,
		row.FarmerCode(),
		row.FarmerName(),
		row.PlotName(),
		area,
		row.Planting.Variety,
		row.Planting.PlantDay().Format(DateLayout),
		row.HarvestDate.Format(DateLayout),
		formatTons(row.ExpectedTons),
		row.Planting.Status,
	}
}

// WriteCSV writes the header and one line per row in input order. Fields
// holding a comma, quote or newline (or starting with a space) are quoted
// per RFC 4180; all other fields are written verbatim.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(ExportRecord(row)); err != nil {
			return fmt.Errorf("write csv row for planting %d: %w", row.Planting.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the same table as WriteCSV as a single-sheet workbook.
// Area and tonnage cells are numeric.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(ExportHeader))
	for i, h := range ExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, row := range rows {
		record := ExportRecord(row)
		values := make([]interface{}, len(record))
		for j, v := range record {
			values[j] = v
		}
		if row.Plot != nil {
			values[4] = row.Plot.AreaRai
		}
		values[8] = Round3(row.ExpectedTons)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ExportSheet, cell, &values); err != nil {
			return fmt.Errorf("write xlsx row for planting %d: %w", row.Planting.ID, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

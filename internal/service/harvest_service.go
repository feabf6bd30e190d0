package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"harvest-planner/internal/harvest"
	"harvest-planner/internal/repository"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ErrUnknownFormat is returned by Export for formats other than csv and xlsx
var ErrUnknownFormat = errors.New("unknown export format")

// HarvestService defines the harvest forecast operations
type HarvestService interface {
	Forecast(ctx context.Context, q harvest.Query) (*ForecastResponse, error)
	Series(ctx context.Context, q harvest.Query) ([]harvest.SeriesPoint, error)
	Dashboard(ctx context.Context) (*DashboardResponse, error)
	Export(ctx context.Context, w io.Writer, q harvest.Query, format string) error
}

// ForecastResponse is the filtered detail table with its month series
type ForecastResponse struct {
	Query     string                `json:"query"`
	Month     string                `json:"month"`
	Rows      []ForecastRow         `json:"rows"`
	Series    []harvest.SeriesPoint `json:"series"`
	TotalTons float64               `json:"total_tons"`
}

// ForecastRow is one planting of the detail table. Farmer and plot fields
// are blank and AreaRai is null when the references do not resolve.
type ForecastRow struct {
	PlantingID   uint     `json:"planting_id"`
	Month        string   `json:"month"`
	FarmerCode   string   `json:"farmer_code"`
	FarmerName   string   `json:"farmer_name"`
	PlotName     string   `json:"plot_name"`
	AreaRai      *float64 `json:"area_rai"`
	Crop         string   `json:"crop"`
	Variety      string   `json:"variety"`
	PlantDate    string   `json:"plant_date"`
	HarvestDate  string   `json:"harvest_date"`
	ExpectedTons float64  `json:"expected_tons"`
	Status       string   `json:"status"`
}

// DashboardResponse summarises the whole, unfiltered data set
type DashboardResponse struct {
	Farmers          int                   `json:"farmers"`
	Plots            int                   `json:"plots"`
	Plantings        int                   `json:"plantings"`
	Unresolved       int                   `json:"unresolved_plantings"`
	TotalTons        float64               `json:"total_tons"`
	NextHarvest      *NextHarvest          `json:"next_harvest,omitempty"`
	UpcomingHarvests int                   `json:"upcoming_harvests"`
	Series           []harvest.SeriesPoint `json:"series"`
	FarmerBreakdown  []FarmerBreakdown     `json:"farmer_breakdown"`
}

// NextHarvest is the earliest month bucket of the all-time series
type NextHarvest struct {
	Month     string  `json:"month"`
	Tons      float64 `json:"tons"`
	Plantings int     `json:"plantings"`
}

// FarmerBreakdown contains expected tonnage for one farmer
type FarmerBreakdown struct {
	FarmerCode string  `json:"farmer_code"`
	FarmerName string  `json:"farmer_name"`
	Plantings  int     `json:"plantings"`
	AreaRai    float64 `json:"area_rai"`
	Tons       float64 `json:"tons"`
}

// harvestService implements HarvestService
type harvestService struct {
	repo   repository.FarmRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewHarvestService creates a new harvest service reading from repo
func NewHarvestService(repo repository.FarmRepository, logger *slog.Logger) HarvestService {
	return &harvestService{repo: repo, logger: logger, now: time.Now}
}

// rows loads one snapshot and joins it into detail rows
func (s *harvestService) rows(ctx context.Context) ([]harvest.Row, *repository.Snapshot, error) {
	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load snapshot: %w", err)
	}
	rows := harvest.Resolve(snap.Farmers, snap.Plots, snap.Plantings)

	unresolved := 0
	for _, r := range rows {
		if !r.Resolved() {
			unresolved++
		}
	}
	if unresolved > 0 {
		s.logger.Info("plantings with unresolved plot or farmer",
			"count", unresolved,
			"plantings", len(rows),
		)
	}
	return rows, snap, nil
}

// Forecast returns the detail rows matching q, their series and total
func (s *harvestService) Forecast(ctx context.Context, q harvest.Query) (*ForecastResponse, error) {
	all, _, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	rows := harvest.Filter(all, q)
	totals := harvest.Aggregate(rows)

	out := make([]ForecastRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, toForecastRow(r))
	}

	return &ForecastResponse{
		Query:     q.Text,
		Month:     q.Month,
		Rows:      out,
		Series:    harvest.Series(totals),
		TotalTons: harvest.Round3(totals.Total),
	}, nil
}

// Series returns only the month series for q
func (s *harvestService) Series(ctx context.Context, q harvest.Query) ([]harvest.SeriesPoint, error) {
	all, _, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	return harvest.Series(harvest.Aggregate(harvest.Filter(all, q))), nil
}

// Dashboard computes the KPIs over every planting, independent of any
// filter applied to the detail table
func (s *harvestService) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	rows, snap, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	totals := harvest.Aggregate(rows)

	today := s.now()
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	resp := &DashboardResponse{
		Farmers:         len(snap.Farmers),
		Plots:           len(snap.Plots),
		Plantings:       len(snap.Plantings),
		TotalTons:       harvest.Round3(totals.Total),
		Series:          harvest.Series(totals),
		FarmerBreakdown: make([]FarmerBreakdown, 0),
	}

	for _, r := range rows {
		if !r.Resolved() {
			resp.Unresolved++
		}
		if !r.HarvestDate.Before(today) {
			resp.UpcomingHarvests++
		}
	}

	if b, ok := totals.Earliest(); ok {
		resp.NextHarvest = &NextHarvest{
			Month:     b.Month,
			Tons:      harvest.Round3(b.Tons),
			Plantings: b.Rows,
		}
	}

	for _, ft := range harvest.ByFarmer(rows) {
		resp.FarmerBreakdown = append(resp.FarmerBreakdown, FarmerBreakdown{
			FarmerCode: ft.FarmerCode,
			FarmerName: ft.FarmerName,
			Plantings:  ft.Plantings,
			AreaRai:    ft.AreaRai,
			Tons:       harvest.Round3(ft.Tons),
		})
	}

	return resp, nil
}

// Export writes the filtered detail table to w as csv or xlsx
func (s *harvestService) Export(ctx context.Context, w io.Writer, q harvest.Query, format string) error {
	var write func(io.Writer, []harvest.Row) error
	switch format {
	case FormatCSV, "":
		write = harvest.WriteCSV
	case FormatXLSX:
		write = harvest.WriteXLSX
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	all, _, err := s.rows(ctx)
	if err != nil {
		return err
	}
	return write(w, harvest.Filter(all, q))
}

func toForecastRow(r harvest.Row) ForecastRow {
	row := ForecastRow{
		PlantingID:   r.Planting.ID,
		Month:        r.Month,
		FarmerCode:   r.FarmerCode(),
		FarmerName:   r.FarmerName(),
		PlotName:     r.PlotName(),
		Crop:         r.Planting.Crop,
		Variety:      r.Planting.Variety,
		PlantDate:    r.Planting.PlantDay().Format(harvest.DateLayout),
		HarvestDate:  r.HarvestDate.Format(harvest.DateLayout),
		ExpectedTons: harvest.Round3(r.ExpectedTons),
		Status:       r.Planting.Status,
	}
	if r.Plot != nil {
		area := r.Plot.AreaRai
		row.AreaRai = &area
	}
	return row
}

package harvest

import (
	"time"

	"harvest-planner/internal/model"
)

// Row is one planting after join resolution. Plot and Farmer are nil when the
// reference does not resolve; the row is still reported.
type Row struct {
	Planting     model.Planting
	Plot         *model.Plot
	Farmer       *model.Farmer
	HarvestDate  time.Time
	Month        string
	ExpectedTons float64
}

// FarmerCode returns the resolved farmer's code or ""
func (r Row) FarmerCode() string {
	if r.Farmer == nil {
		return ""
	}
	return r.Farmer.Code
}

// FarmerName returns the resolved farmer's name or ""
func (r Row) FarmerName() string {
	if r.Farmer == nil {
		return ""
	}
	return r.Farmer.Name
}

// PlotName returns the resolved plot's name or ""
func (r Row) PlotName() string {
	if r.Plot == nil {
		return ""
	}
	return r.Plot.PlotName
}

// Resolved reports whether both the planting's plot and that plot's farmer
// were found
func (r Row) Resolved() bool {
	return r.Plot != nil && r.Farmer != nil
}

// Resolver holds id lookups for one snapshot of plots and farmers
type Resolver struct {
	plots   map[uint]*model.Plot
	farmers map[uint]*model.Farmer
}

// NewResolver indexes the given farmers and plots by id
func NewResolver(farmers []model.Farmer, plots []model.Plot) *Resolver {
	r := &Resolver{
		plots:   make(map[uint]*model.Plot, len(plots)),
		farmers: make(map[uint]*model.Farmer, len(farmers)),
	}
	for i := range farmers {
		r.farmers[farmers[i].ID] = &farmers[i]
	}
	for i := range plots {
		r.plots[plots[i].ID] = &plots[i]
	}
	return r
}

// Plot looks up a plot; a missing id yields nil
func (r *Resolver) Plot(id uint) *model.Plot {
	return r.plots[id]
}

// Farmer looks up a farmer; a missing id yields nil
func (r *Resolver) Farmer(id uint) *model.Farmer {
	return r.farmers[id]
}

// Row resolves planting -> plot -> farmer and derives the computed fields
func (r *Resolver) Row(p model.Planting) Row {
	plot := r.Plot(p.PlotID)
	var farmer *model.Farmer
	if plot != nil {
		farmer = r.Farmer(plot.FarmerID)
	}
	harvestDate := p.HarvestDate()
	return Row{
		Planting:     p,
		Plot:         plot,
		Farmer:       farmer,
		HarvestDate:  harvestDate,
		Month:        MonthKey(harvestDate),
		ExpectedTons: ExpectedTons(plot, p),
	}
}

// Resolve builds one Row per planting, in the plantings' order
func Resolve(farmers []model.Farmer, plots []model.Plot, plantings []model.Planting) []Row {
	r := NewResolver(farmers, plots)
	rows := make([]Row, 0, len(plantings))
	for _, p := range plantings {
		rows = append(rows, r.Row(p))
	}
	return rows
}

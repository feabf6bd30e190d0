package harvest

import "harvest-planner/internal/model"

// ExpectedTons is plot area times the planting's yield rate. An unresolved
// plot contributes zero area. No clamping or rounding happens here.
func ExpectedTons(plot *model.Plot, planting model.Planting) float64 {
	area := 0.0
	if plot != nil {
		area = plot.AreaRai
	}
	return area * planting.YieldTonPerRai
}

package harvest

import "sort"

// Bucket is the total expected tonnage of one harvest month
type Bucket struct {
	Month      string
	Tons       float64
	Rows       int
	Cumulative float64
}

// Totals is the month-bucketed view of a row set. Values keep full
// precision; rounding is left to the encoders.
type Totals struct {
	Buckets []Bucket
	Total   float64
}

// Aggregate groups rows by month key, ascending by month, with a running
// total and a grand total over all rows.
func Aggregate(rows []Row) Totals {
	byMonth := make(map[string]*Bucket)
	for _, row := range rows {
		b, ok := byMonth[row.Month]
		if !ok {
			b = &Bucket{Month: row.Month}
			byMonth[row.Month] = b
		}
		b.Tons += row.ExpectedTons
		b.Rows++
	}

	buckets := make([]Bucket, 0, len(byMonth))
	for _, b := range byMonth {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Month < buckets[j].Month
	})

	var total float64
	for i := range buckets {
		total += buckets[i].Tons
		buckets[i].Cumulative = total
	}
	return Totals{Buckets: buckets, Total: total}
}

// Earliest returns the first month bucket, if any
func (t Totals) Earliest() (Bucket, bool) {
	if len(t.Buckets) == 0 {
		return Bucket{}, false
	}
	return t.Buckets[0], true
}

// FarmerTotal is the expected tonnage attributed to one farmer. Rows whose
// farmer did not resolve are grouped under an empty code.
type FarmerTotal struct {
	FarmerCode string
	FarmerName string
	Plantings  int
	AreaRai    float64
	Tons       float64
}

// ByFarmer breaks rows down per farmer code, sorted by code
func ByFarmer(rows []Row) []FarmerTotal {
	byCode := make(map[string]*FarmerTotal)
	for _, row := range rows {
		code := row.FarmerCode()
		ft, ok := byCode[code]
		if !ok {
			ft = &FarmerTotal{FarmerCode: code, FarmerName: row.FarmerName()}
			byCode[code] = ft
		}
		ft.Plantings++
		ft.Tons += row.ExpectedTons
		if row.Plot != nil {
			ft.AreaRai += row.Plot.AreaRai
		}
	}

	out := make([]FarmerTotal, 0, len(byCode))
	for _, ft := range byCode {
		out = append(out, *ft)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FarmerCode < out[j].FarmerCode
	})
	return out
}

package harvest

import "strings"

// Query narrows a row set. Empty fields disable the corresponding filter.
type Query struct {
	Text  string
	Month string
}

// NormalizeText trims and case-folds a free-text query
func NormalizeText(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// MatchText reports whether q occurs in the farmer name, farmer code, plot
// name, variety or status of the row. q must already be normalized; an
// empty q matches every row.
func MatchText(row Row, q string) bool {
	if q == "" {
		return true
	}
	fields := [...]string{
		row.FarmerName(),
		row.FarmerCode(),
		row.PlotName(),
		row.Planting.Variety,
		row.Planting.Status,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// MatchMonth reports whether the row's month key equals month exactly.
// An empty month matches every row; a malformed one matches none.
func MatchMonth(row Row, month string) bool {
	return month == "" || row.Month == month
}

// Filter returns the rows matching both the text and month filters, in
// their original order. The input slice is not modified.
func Filter(rows []Row, q Query) []Row {
	text := NormalizeText(q.Text)
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if MatchText(row, text) && MatchMonth(row, q.Month) {
			out = append(out, row)
		}
	}
	return out
}

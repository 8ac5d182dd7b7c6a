package models

// Aggregate holds count, per-field sums and per-field averages of a record list.
type Aggregate struct {
	Count           int                `json:"count"`
	TotalsByField   map[string]float64 `json:"totals_by_field"`
	AveragesByField map[string]float64 `json:"averages_by_field"`
}

// RecordStats is the statistics block shown on every dashboard.
type RecordStats struct {
	Aggregate
	CurrentStreak  int    `json:"current_streak"`
	LongestStreak  int    `json:"longest_streak"`
	LastRecordDate string `json:"last_record_date,omitempty"`
}

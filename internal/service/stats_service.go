package service

import (
	"sort"
	"time"

	"github.com/noah-isme/tracker-console/internal/models"
	"github.com/noah-isme/tracker-console/pkg/timecodec"
)

// StatsService derives presentation statistics from tracked records. Dates are
// compared by calendar day only.
type StatsService struct {
	now func() time.Time
}

// NewStatsService constructs a stats service using the wall clock for "today".
func NewStatsService() *StatsService {
	return &StatsService{now: time.Now}
}

// Today decomposes the current wall-clock date.
func (s *StatsService) Today() timecodec.Date {
	y, m, d := s.now().Date()
	return timecodec.Date{Year: y, Month: int(m), Day: d}
}

// Summarize computes the dashboard statistics relative to today.
func (s *StatsService) Summarize(records []models.Record) models.RecordStats {
	today := s.Today()
	stats := models.RecordStats{
		Aggregate:     AggregateRecords(records),
		CurrentStreak: CurrentStreak(records, today),
		LongestStreak: LongestStreak(records, today),
	}
	if days := uniqueDays(records, today); len(days) > 0 {
		stats.LastRecordDate = days[0].String()
	}
	return stats
}

// AggregateRecords sums every numeric field across records. Absent values add nothing
// and are left out of the average's denominator; a field present on no record
// averages to 0.
func AggregateRecords(records []models.Record) models.Aggregate {
	agg := models.Aggregate{
		Count:           len(records),
		TotalsByField:   map[string]float64{},
		AveragesByField: map[string]float64{},
	}
	contributing := map[string]int{}

	for _, record := range records {
		for field, value := range record.Metrics() {
			if _, seen := agg.TotalsByField[field]; !seen {
				agg.TotalsByField[field] = 0
			}
			if value == nil {
				continue
			}
			agg.TotalsByField[field] += *value
			contributing[field]++
		}
	}

	for field, total := range agg.TotalsByField {
		if n := contributing[field]; n > 0 {
			agg.AveragesByField[field] = total / float64(n)
		} else {
			agg.AveragesByField[field] = 0
		}
	}
	return agg
}

// CurrentStreak counts consecutive calendar days with at least one record, ending
// today or yesterday. Records dated after today are ignored.
func CurrentStreak(records []models.Record, today timecodec.Date) int {
	days := uniqueDays(records, today)
	if len(days) == 0 {
		return 0
	}
	if days[0].DaysUntil(today) > 1 {
		return 0
	}

	pairs := 0
	for i := 1; i < len(days); i++ {
		if days[i].DaysUntil(days[i-1]) != 1 {
			break
		}
		pairs++
	}
	return pairs + 1
}

// LongestStreak is the longest run of consecutive record days up to today.
func LongestStreak(records []models.Record, today timecodec.Date) int {
	days := uniqueDays(records, today)
	if len(days) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].DaysUntil(days[i-1]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// uniqueDays returns the distinct record days not after today, most recent first.
// Records whose date cannot be read are skipped.
func uniqueDays(records []models.Record, today timecodec.Date) []timecodec.Date {
	seen := make(map[int]timecodec.Date, len(records))
	for _, record := range records {
		day, ok := timecodec.ExtractDate(record.RecordDate())
		if !ok || !day.Valid() || today.Before(day) {
			continue
		}
		seen[day.Ordinal()] = day
	}

	days := make([]timecodec.Date, 0, len(seen))
	for _, day := range seen {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[j].Before(days[i])
	})
	return days
}

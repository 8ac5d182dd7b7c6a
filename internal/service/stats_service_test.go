package service

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tracker-console/internal/models"
	"github.com/noah-isme/tracker-console/pkg/timecodec"
)

var statsToday = timecodec.Date{Year: 2024, Month: 3, Day: 1}

func floatPtr(v float64) *float64 { return &v }

func activityOn(day timecodec.Date, hour int, duration *float64) models.Record {
	return models.Activity{
		ActivityName: "run",
		Duration:     duration,
		Date: timecodec.ToWire(timecodec.LocalDateTime{
			Year: day.Year, Month: day.Month, Day: day.Day, Hour: hour,
		}),
	}
}

func daysAgo(n int) timecodec.Date {
	return statsToday.AddDays(-n)
}

func TestCurrentStreak(t *testing.T) {
	tests := []struct {
		name    string
		records []models.Record
		want    int
	}{
		{
			name: "three consecutive days ending today",
			records: []models.Record{
				activityOn(daysAgo(0), 7, floatPtr(30)),
				activityOn(daysAgo(1), 23, floatPtr(30)),
				activityOn(daysAgo(2), 0, floatPtr(30)),
			},
			want: 3,
		},
		{
			name: "gap after today",
			records: []models.Record{
				activityOn(daysAgo(0), 9, nil),
				activityOn(daysAgo(2), 9, nil),
			},
			want: 1,
		},
		{
			name:    "stale single record",
			records: []models.Record{activityOn(daysAgo(3), 12, nil)},
			want:    0,
		},
		{
			name: "stale record with older history",
			records: []models.Record{
				activityOn(daysAgo(2), 12, nil),
				activityOn(daysAgo(3), 12, nil),
				activityOn(daysAgo(4), 12, nil),
			},
			want: 0,
		},
		{
			name:    "empty",
			records: nil,
			want:    0,
		},
		{
			name:    "single record today",
			records: []models.Record{activityOn(daysAgo(0), 18, nil)},
			want:    1,
		},
		{
			name:    "single record yesterday",
			records: []models.Record{activityOn(daysAgo(1), 18, nil)},
			want:    1,
		},
		{
			name: "streak ending yesterday",
			records: []models.Record{
				activityOn(daysAgo(1), 6, nil),
				activityOn(daysAgo(2), 6, nil),
			},
			want: 2,
		},
		{
			name: "several records on one day count once",
			records: []models.Record{
				activityOn(daysAgo(0), 6, nil),
				activityOn(daysAgo(0), 20, nil),
				activityOn(daysAgo(1), 6, nil),
				activityOn(daysAgo(1), 21, nil),
			},
			want: 2,
		},
		{
			name: "future records are ignored",
			records: []models.Record{
				activityOn(statsToday.AddDays(1), 6, nil),
				activityOn(daysAgo(0), 6, nil),
			},
			want: 1,
		},
		{
			name: "late night and early morning are separate days",
			records: []models.Record{
				models.Activity{Date: "2024-02-29T23:59:00.000Z"},
				models.Activity{Date: "2024-03-01T00:00:00.000Z"},
			},
			want: 2,
		},
		{
			name: "unreadable dates are skipped",
			records: []models.Record{
				models.Activity{Date: "yesterday"},
				activityOn(daysAgo(0), 6, nil),
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentStreak(tt.records, statsToday))
		})
	}
}

func TestCurrentStreakCrossesMonthAndLeapDay(t *testing.T) {
	records := []models.Record{
		models.Activity{Date: "2024-03-01T08:00:00.000Z"},
		models.Activity{Date: "2024-02-29T08:00:00.000Z"},
		models.Activity{Date: "2024-02-28"},
	}
	assert.Equal(t, 3, CurrentStreak(records, statsToday))

	nonLeap := []models.Record{
		models.Activity{Date: "2023-03-01T08:00:00.000Z"},
		models.Activity{Date: "2023-02-28T08:00:00.000Z"},
	}
	assert.Equal(t, 2, CurrentStreak(nonLeap, timecodec.Date{Year: 2023, Month: 3, Day: 1}))
}

func TestStreakIsOrderIndependentAndDoesNotMutate(t *testing.T) {
	records := []models.Record{
		activityOn(daysAgo(0), 1, floatPtr(10)),
		activityOn(daysAgo(1), 2, floatPtr(20)),
		activityOn(daysAgo(2), 3, nil),
		activityOn(daysAgo(5), 4, floatPtr(40)),
		activityOn(daysAgo(6), 5, floatPtr(50)),
	}
	original := append([]models.Record(nil), records...)
	wantStreak := CurrentStreak(records, statsToday)
	wantAgg := AggregateRecords(records)
	assert.Equal(t, original, records)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]models.Record(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, wantStreak, CurrentStreak(shuffled, statsToday))
		assert.Equal(t, wantAgg, AggregateRecords(shuffled))
	}
}

func TestLongestStreak(t *testing.T) {
	records := []models.Record{
		activityOn(daysAgo(0), 6, nil),
		activityOn(daysAgo(3), 6, nil),
		activityOn(daysAgo(4), 6, nil),
		activityOn(daysAgo(5), 6, nil),
		activityOn(daysAgo(9), 6, nil),
	}
	assert.Equal(t, 3, LongestStreak(records, statsToday))
	assert.Equal(t, 1, CurrentStreak(records, statsToday))
	assert.Zero(t, LongestStreak(nil, statsToday))
}

func TestAggregateRecordsSkipsMissingValues(t *testing.T) {
	records := []models.Record{
		activityOn(daysAgo(0), 6, floatPtr(30)),
		activityOn(daysAgo(1), 6, nil),
		activityOn(daysAgo(2), 6, floatPtr(60)),
	}

	agg := AggregateRecords(records)
	assert.Equal(t, 3, agg.Count)
	assert.Equal(t, 90.0, agg.TotalsByField["duration"])
	assert.Equal(t, 45.0, agg.AveragesByField["duration"])

	require.Contains(t, agg.TotalsByField, "distance")
	assert.Zero(t, agg.TotalsByField["distance"])
	assert.Zero(t, agg.AveragesByField["distance"])
}

func TestAggregateRecordsEmpty(t *testing.T) {
	agg := AggregateRecords(nil)
	assert.Zero(t, agg.Count)
	assert.Empty(t, agg.TotalsByField)
	assert.Empty(t, agg.AveragesByField)
}

func TestAggregateRecordsWellness(t *testing.T) {
	records := []models.Record{
		models.HydrationEntry{WaterIntake: floatPtr(250), TimeLogged: "2024-03-01T08:00:00.000Z"},
		models.HydrationEntry{WaterIntake: floatPtr(500), TimeLogged: "2024-03-01T12:00:00.000Z"},
	}
	agg := AggregateRecords(records)
	assert.Equal(t, 750.0, agg.TotalsByField["water_intake"])
	assert.Equal(t, 375.0, agg.AveragesByField["water_intake"])
}

func TestStatsServiceSummarize(t *testing.T) {
	svc := &StatsService{now: func() time.Time {
		return time.Date(2024, time.March, 1, 22, 30, 0, 0, time.Local)
	}}
	assert.Equal(t, statsToday, svc.Today())

	summary := svc.Summarize([]models.Record{
		activityOn(daysAgo(1), 6, floatPtr(30)),
		activityOn(daysAgo(2), 6, floatPtr(30)),
		activityOn(statsToday.AddDays(2), 6, floatPtr(30)),
	})
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, 2, summary.CurrentStreak)
	assert.Equal(t, 2, summary.LongestStreak)
	assert.Equal(t, daysAgo(1).String(), summary.LastRecordDate)
}

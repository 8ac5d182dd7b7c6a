package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tracker-console/internal/models"
	appErrors "github.com/noah-isme/tracker-console/pkg/errors"
	"github.com/noah-isme/tracker-console/pkg/export"
	"github.com/noah-isme/tracker-console/pkg/timecodec"
)

// ExportFormat is a download format.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ParseExportFormat accepts csv or pdf, case-insensitively.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case ExportCSV, "":
		return ExportCSV, nil
	case ExportPDF:
		return ExportPDF, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
}

type recordSource interface {
	ExerciseRecords(ctx context.Context, sessionID string) ([]models.Record, error)
	WellnessRecords(ctx context.Context, sessionID string, category models.WellnessCategory) ([]models.Record, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders a session's records as CSV or PDF downloads.
type ExportService struct {
	records recordSource
	stats   *StatsService
	csv     csvRenderer
	pdf     pdfRenderer
	enabled bool
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers use the pkg/export
// defaults.
func NewExportService(records recordSource, stats *StatsService, enabled bool, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if stats == nil {
		stats = NewStatsService()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		records: records,
		stats:   stats,
		csv:     csv,
		pdf:     pdf,
		enabled: enabled,
		logger:  logger,
		now:     time.Now,
	}
}

// Activities exports the exercise log.
func (s *ExportService) Activities(ctx context.Context, sessionID string, format ExportFormat) (*ExportFile, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrExportsUnavailable, "")
	}
	records, err := s.records.ExerciseRecords(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.render("activities", "Exercise Activities", activityColumns, records, format)
}

// Wellness exports one wellness category.
func (s *ExportService) Wellness(ctx context.Context, sessionID string, category models.WellnessCategory, format ExportFormat) (*ExportFile, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrExportsUnavailable, "")
	}
	columns, ok := wellnessColumns[category]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown wellness category %q", category))
	}
	records, err := s.records.WellnessRecords(ctx, sessionID, category)
	if err != nil {
		return nil, err
	}
	title := strings.ToUpper(string(category[:1])) + string(category[1:]) + " Log"
	return s.render(string(category), title, columns, records, format)
}

func (s *ExportService) render(name, title string, columns []column, records []models.Record, format ExportFormat) (*ExportFile, error) {
	dataset := export.Dataset{
		Title:   title,
		Headers: make([]string, len(columns)),
		Rows:    make([]map[string]string, 0, len(records)),
		Summary: s.summary(records),
	}
	for i, col := range columns {
		dataset.Headers[i] = col.header
	}
	for _, record := range records {
		row := make(map[string]string, len(columns))
		for _, col := range columns {
			row[col.header] = col.value(record)
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case ExportCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportPDF:
		payload, err = s.pdf.Render(dataset)
		contentType = "application/pdf"
	default:
		err = fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		s.logger.Error("render export", zap.String("dataset", name), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("%s_%s.%s", name, s.now().UTC().Format("20060102_150405"), format),
		ContentType: contentType,
		Data:        payload,
	}, nil
}

func (s *ExportService) summary(records []models.Record) []export.SummaryLine {
	stats := s.stats.Summarize(records)
	lines := []export.SummaryLine{{Label: "Entries", Value: strconv.Itoa(stats.Count)}}

	fields := make([]string, 0, len(stats.TotalsByField))
	for field := range stats.TotalsByField {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		label := fieldLabel(field)
		lines = append(lines,
			export.SummaryLine{Label: "Total " + label, Value: formatNumber(stats.TotalsByField[field])},
			export.SummaryLine{Label: "Average " + label, Value: formatNumber(stats.AveragesByField[field])},
		)
	}
	lines = append(lines,
		export.SummaryLine{Label: "Current Streak (days)", Value: strconv.Itoa(stats.CurrentStreak)},
		export.SummaryLine{Label: "Longest Streak (days)", Value: strconv.Itoa(stats.LongestStreak)},
	)
	return lines
}

type column struct {
	header string
	value  func(models.Record) string
}

func metricColumn(header, field string) column {
	return column{header: header, value: func(r models.Record) string {
		if v := r.Metrics()[field]; v != nil {
			return formatNumber(*v)
		}
		return ""
	}}
}

func dateColumn(header string, pick func(models.Record) string) column {
	return column{header: header, value: func(r models.Record) string {
		return displayTime(pick(r))
	}}
}

var recordDate = dateColumn("Date", models.Record.RecordDate)

var activityColumns = []column{
	recordDate,
	{header: "Activity", value: func(r models.Record) string { return asActivity(r).ActivityName }},
	{header: "Category", value: func(r models.Record) string { return asActivity(r).Category }},
	metricColumn("Duration (min)", "duration"),
	metricColumn("Distance (km)", "distance"),
	metricColumn("Calories", "calories_burned"),
	{header: "Notes", value: func(r models.Record) string { return asActivity(r).Notes }},
}

var wellnessColumns = map[models.WellnessCategory][]column{
	models.WellnessNutrition: {
		recordDate,
		{header: "Meal", value: func(r models.Record) string { return r.(models.NutritionEntry).MealType }},
		{header: "Food Items", value: func(r models.Record) string { return r.(models.NutritionEntry).FoodItems }},
		metricColumn("Calories", "calories"),
		metricColumn("Protein (g)", "protein"),
		metricColumn("Carbs (g)", "carbs"),
		metricColumn("Sugar (g)", "sugar"),
		metricColumn("Fat (g)", "fat"),
	},
	models.WellnessSleep: {
		dateColumn("Bedtime", func(r models.Record) string { return r.(models.SleepEntry).Bedtime }),
		dateColumn("Wake Time", func(r models.Record) string { return r.(models.SleepEntry).WakeTime }),
		metricColumn("Quality", "sleep_quality"),
		metricColumn("Duration (min)", "sleep_duration"),
		{header: "Notes", value: func(r models.Record) string { return r.(models.SleepEntry).Notes }},
	},
	models.WellnessMood: {
		recordDate,
		{header: "Mood", value: func(r models.Record) string { return r.(models.MoodEntry).MoodType }},
		metricColumn("Rating", "mood_rating"),
		metricColumn("Energy", "energy_level"),
		metricColumn("Stress", "stress_level"),
		{header: "Notes", value: func(r models.Record) string { return r.(models.MoodEntry).Notes }},
	},
	models.WellnessMeditation: {
		recordDate,
		{header: "Type", value: func(r models.Record) string { return r.(models.MeditationEntry).MeditationType }},
		metricColumn("Duration (min)", "duration"),
		{header: "Notes", value: func(r models.Record) string { return r.(models.MeditationEntry).Notes }},
	},
	models.WellnessHydration: {
		recordDate,
		metricColumn("Water (ml)", "water_intake"),
		{header: "Notes", value: func(r models.Record) string { return r.(models.HydrationEntry).Notes }},
	},
}

func asActivity(r models.Record) models.Activity {
	activity, _ := r.(models.Activity)
	return activity
}

// displayTime renders a wire timestamp as "YYYY-MM-DD HH:MM" and a date-only value as
// its date. Unreadable values pass through unchanged.
func displayTime(wire string) string {
	if t, ok := timecodec.FromWire(wire); ok {
		return t.Date().String() + " " + t.Clock().String()
	}
	if d, ok := timecodec.ExtractDate(wire); ok {
		return d.String()
	}
	return wire
}

func fieldLabel(field string) string {
	words := strings.Split(field, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

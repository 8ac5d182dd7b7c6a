package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tracker-console/internal/models"
	appErrors "github.com/noah-isme/tracker-console/pkg/errors"
)

func newExportServiceForTest(api *fakeTracker, enabled bool) *ExportService {
	svc := NewExportService(NewDashboardService(api, fixedStats()), fixedStats(), enabled, zap.NewNop(), nil, nil)
	svc.now = func() time.Time { return time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestExportActivitiesCSV(t *testing.T) {
	svc := newExportServiceForTest(&fakeTracker{activities: sampleActivities()}, true)

	file, err := svc.Activities(context.Background(), "sid", ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "activities_20240301_093000.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	assert.Equal(t, "Date,Activity,Category,Duration (min),Distance (km),Calories,Notes", lines[0])
	assert.Equal(t, "2024-03-01 18:00,Yoga,flexibility,45,,,hot room", lines[1])
	assert.Equal(t, "2024-02-27 19:30,Evening run,Cardio,,3,,", lines[3])
	assert.Contains(t, lines, "Total Duration,75")
	assert.Contains(t, lines, "Average Duration,37.5")
	assert.Contains(t, lines, "Current Streak (days),2")
}

func TestExportWellnessPDF(t *testing.T) {
	api := &fakeTracker{wellness: map[models.WellnessCategory][]models.Record{
		models.WellnessHydration: {
			models.HydrationEntry{ID: "1", WaterIntake: floatPtr(250), TimeLogged: "2024-03-01T08:00:00.000Z"},
		},
	}}
	svc := newExportServiceForTest(api, true)

	file, err := svc.Wellness(context.Background(), "sid", models.WellnessHydration, ExportPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".pdf"))
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestExportDisabled(t *testing.T) {
	svc := newExportServiceForTest(&fakeTracker{activities: sampleActivities()}, false)

	_, err := svc.Activities(context.Background(), "sid", ExportCSV)
	assert.True(t, errors.Is(err, appErrors.ErrExportsUnavailable))
	_, err = svc.Wellness(context.Background(), "sid", models.WellnessSleep, ExportCSV)
	assert.True(t, errors.Is(err, appErrors.ErrExportsUnavailable))
}

func TestExportUnknownCategory(t *testing.T) {
	svc := newExportServiceForTest(&fakeTracker{}, true)
	_, err := svc.Wellness(context.Background(), "sid", "steps", ExportCSV)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, ExportPDF, format)

	format, err = ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, ExportCSV, format)

	_, err = ParseExportFormat("xlsx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestDisplayTime(t *testing.T) {
	assert.Equal(t, "2024-03-01 07:05", displayTime("2024-03-01T07:05:00.000Z"))
	assert.Equal(t, "2024-03-01", displayTime("2024-03-01"))
	assert.Equal(t, "soon", displayTime("soon"))
}

package dto

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tracker-console/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestActivityFormKeepsLocalFields(t *testing.T) {
	form := ActivityForm{ActivityName: "Run", Duration: floatPtr(30), DateTime: "2024-03-10T23:45"}
	activity, err := form.ToModel()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10T23:45:00.000Z", activity.Date)

	_, err = ActivityForm{ActivityName: "Run", Duration: floatPtr(30), DateTime: "10/03/2024"}.ToModel()
	assert.Error(t, err)
}

func TestSleepFormRollsWakeTimeToNextDay(t *testing.T) {
	form := SleepForm{Date: "2024-02-28", Bedtime: "23:30", WakeTime: "07:15", SleepQuality: floatPtr(8)}
	record, err := form.ToModel()
	require.NoError(t, err)

	sleep := record.(models.SleepEntry)
	assert.Equal(t, "2024-02-28T23:30:00.000Z", sleep.Bedtime)
	assert.Equal(t, "2024-02-29T07:15:00.000Z", sleep.WakeTime)
	require.NotNil(t, sleep.SleepDuration)
	assert.Equal(t, 465.0, *sleep.SleepDuration)
}

func TestSleepFormSameDayNap(t *testing.T) {
	form := SleepForm{Date: "2024-12-31T00:00", Bedtime: "13:00", WakeTime: "14:30", SleepQuality: floatPtr(5), SleepDuration: floatPtr(80)}
	record, err := form.ToModel()
	require.NoError(t, err)

	sleep := record.(models.SleepEntry)
	assert.Equal(t, "2024-12-31T14:30:00.000Z", sleep.WakeTime)
	assert.Equal(t, 80.0, *sleep.SleepDuration)
}

func TestHydrationFormUsesTimeLogged(t *testing.T) {
	record, err := HydrationForm{WaterIntake: floatPtr(0.5), DateTime: "2024-01-01T06:05"}.ToModel()
	require.NoError(t, err)
	hydration := record.(models.HydrationEntry)
	assert.Equal(t, "2024-01-01T06:05:00.000Z", hydration.TimeLogged)
	assert.Empty(t, hydration.Date)
}

func TestNewWellnessForm(t *testing.T) {
	for _, category := range models.WellnessCategories {
		form, err := NewWellnessForm(category)
		require.NoError(t, err)
		assert.NotNil(t, form)
	}
	_, err := NewWellnessForm("steps")
	assert.Error(t, err)
}

func TestRegisterFormValidation(t *testing.T) {
	validate := validator.New()

	valid := RegisterForm{Username: "jane", Email: "jane@example.com", Password: "secret1", ConfirmPassword: "secret1"}
	assert.NoError(t, validate.Struct(valid))

	mismatch := valid
	mismatch.ConfirmPassword = "secret2"
	assert.Error(t, validate.Struct(mismatch))

	short := valid
	short.Username = "jo"
	assert.Error(t, validate.Struct(short))

	admin := valid
	admin.Role = models.RoleAdmin
	assert.Error(t, validate.Struct(admin))
}

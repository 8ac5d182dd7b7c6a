package dto

import (
	"fmt"

	"github.com/noah-isme/tracker-console/internal/models"
	"github.com/noah-isme/tracker-console/pkg/timecodec"
)

// Form inputs carry datetime-local values (YYYY-MM-DDTHH:MM) that are converted to the
// wire format by field substitution.

// ActivityForm creates or updates an exercise activity.
type ActivityForm struct {
	ActivityName   string   `json:"activity_name" validate:"required,max=100"`
	Category       string   `json:"category,omitempty"`
	Duration       *float64 `json:"duration" validate:"required,gt=0"`
	Distance       *float64 `json:"distance,omitempty" validate:"omitempty,gte=0"`
	CaloriesBurned *float64 `json:"calories_burned,omitempty" validate:"omitempty,gte=0"`
	Notes          string   `json:"notes,omitempty"`
	DateTime       string   `json:"date_time" validate:"required"`
}

func (f ActivityForm) ToModel() (models.Activity, error) {
	wire, err := localToWire(f.DateTime)
	if err != nil {
		return models.Activity{}, err
	}
	return models.Activity{
		ActivityName:   f.ActivityName,
		Category:       f.Category,
		Duration:       f.Duration,
		Distance:       f.Distance,
		CaloriesBurned: f.CaloriesBurned,
		Notes:          f.Notes,
		Date:           wire,
	}, nil
}

// NutritionForm records a meal.
type NutritionForm struct {
	MealType  string   `json:"meal_type" validate:"required,oneof=breakfast lunch dinner snack"`
	FoodItems string   `json:"food_items" validate:"required"`
	Calories  *float64 `json:"calories,omitempty" validate:"omitempty,gte=0"`
	Protein   *float64 `json:"protein,omitempty" validate:"omitempty,gte=0"`
	Carbs     *float64 `json:"carbs,omitempty" validate:"omitempty,gte=0"`
	Sugar     *float64 `json:"sugar,omitempty" validate:"omitempty,gte=0"`
	Fat       *float64 `json:"fat,omitempty" validate:"omitempty,gte=0"`
	Notes     string   `json:"notes,omitempty"`
	DateTime  string   `json:"date_time" validate:"required"`
}

func (f NutritionForm) ToModel() (models.Record, error) {
	wire, err := localToWire(f.DateTime)
	if err != nil {
		return nil, err
	}
	return models.NutritionEntry{
		MealType:  f.MealType,
		FoodItems: f.FoodItems,
		Calories:  f.Calories,
		Protein:   f.Protein,
		Carbs:     f.Carbs,
		Sugar:     f.Sugar,
		Fat:       f.Fat,
		Notes:     f.Notes,
		Date:      wire,
	}, nil
}

// SleepForm takes one calendar date plus bedtime and wake clock times. A wake time
// earlier than the bedtime belongs to the next day.
type SleepForm struct {
	Date          string   `json:"date" validate:"required"`
	Bedtime       string   `json:"bedtime" validate:"required"`
	WakeTime      string   `json:"wake_time" validate:"required"`
	SleepQuality  *float64 `json:"sleep_quality" validate:"required,min=1,max=10"`
	SleepDuration *float64 `json:"sleep_duration,omitempty" validate:"omitempty,gte=0"`
	Notes         string   `json:"notes,omitempty"`
}

func (f SleepForm) ToModel() (models.Record, error) {
	date, ok := timecodec.ExtractDate(f.Date)
	if !ok || !date.Valid() {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", f.Date)
	}
	bed, err := timecodec.ParseClock(f.Bedtime)
	if err != nil {
		return nil, err
	}
	wake, err := timecodec.ParseClock(f.WakeTime)
	if err != nil {
		return nil, err
	}

	base := date.String()
	bedWire, err := timecodec.CombineDateAndTime(base, bed, nil)
	if err != nil {
		return nil, err
	}
	wakeWire, err := timecodec.CombineDateAndTime(base, wake, &bed)
	if err != nil {
		return nil, err
	}

	duration := f.SleepDuration
	if duration == nil {
		minutes := float64(minutesBetween(bedWire, wakeWire))
		duration = &minutes
	}

	return models.SleepEntry{
		Bedtime:       bedWire,
		WakeTime:      wakeWire,
		SleepQuality:  f.SleepQuality,
		SleepDuration: duration,
		Notes:         f.Notes,
	}, nil
}

// MoodForm records a mood check-in.
type MoodForm struct {
	MoodRating  *float64 `json:"mood_rating" validate:"required,min=1,max=10"`
	MoodType    string   `json:"mood_type" validate:"required"`
	EnergyLevel *float64 `json:"energy_level,omitempty" validate:"omitempty,min=1,max=10"`
	StressLevel *float64 `json:"stress_level,omitempty" validate:"omitempty,min=1,max=10"`
	Notes       string   `json:"notes,omitempty"`
	DateTime    string   `json:"date_time" validate:"required"`
}

func (f MoodForm) ToModel() (models.Record, error) {
	wire, err := localToWire(f.DateTime)
	if err != nil {
		return nil, err
	}
	return models.MoodEntry{
		MoodRating:  f.MoodRating,
		MoodType:    f.MoodType,
		EnergyLevel: f.EnergyLevel,
		StressLevel: f.StressLevel,
		Notes:       f.Notes,
		Date:        wire,
	}, nil
}

// MeditationForm records a meditation session.
type MeditationForm struct {
	Duration       *float64 `json:"duration" validate:"required,gt=0"`
	MeditationType string   `json:"meditation_type" validate:"required"`
	Notes          string   `json:"notes,omitempty"`
	DateTime       string   `json:"date_time" validate:"required"`
}

func (f MeditationForm) ToModel() (models.Record, error) {
	wire, err := localToWire(f.DateTime)
	if err != nil {
		return nil, err
	}
	return models.MeditationEntry{
		Duration:       f.Duration,
		MeditationType: f.MeditationType,
		Notes:          f.Notes,
		Date:           wire,
	}, nil
}

// HydrationForm records a drink; its datetime becomes time_logged.
type HydrationForm struct {
	WaterIntake *float64 `json:"water_intake" validate:"required,gt=0"`
	Notes       string   `json:"notes,omitempty"`
	DateTime    string   `json:"date_time" validate:"required"`
}

func (f HydrationForm) ToModel() (models.Record, error) {
	wire, err := localToWire(f.DateTime)
	if err != nil {
		return nil, err
	}
	return models.HydrationEntry{
		WaterIntake: f.WaterIntake,
		TimeLogged:  wire,
		Notes:       f.Notes,
	}, nil
}

// WellnessForm is implemented by every wellness category form.
type WellnessForm interface {
	ToModel() (models.Record, error)
}

// NewWellnessForm returns an empty form for category.
func NewWellnessForm(category models.WellnessCategory) (WellnessForm, error) {
	switch category {
	case models.WellnessNutrition:
		return &NutritionForm{}, nil
	case models.WellnessSleep:
		return &SleepForm{}, nil
	case models.WellnessMood:
		return &MoodForm{}, nil
	case models.WellnessMeditation:
		return &MeditationForm{}, nil
	case models.WellnessHydration:
		return &HydrationForm{}, nil
	}
	return nil, fmt.Errorf("unknown wellness category %q", category)
}

func localToWire(value string) (string, error) {
	t, err := timecodec.ParseLocal(value)
	if err != nil {
		return "", err
	}
	return timecodec.ToWire(t), nil
}

func minutesBetween(fromWire, toWire string) int {
	from, _ := timecodec.FromWire(fromWire)
	to, _ := timecodec.FromWire(toWire)
	return minuteOrdinal(to) - minuteOrdinal(from)
}

func minuteOrdinal(t timecodec.LocalDateTime) int {
	return t.Date().Ordinal()*24*60 + t.Hour*60 + t.Minute
}

package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record is the shape shared by every tracked entry.
type Record interface {
	RecordID() ID
	// RecordDate is the wire timestamp whose calendar day the entry belongs to.
	RecordDate() string
	// Metrics lists the numeric fields of the entry. Nil values are absent.
	Metrics() map[string]*float64
	// SearchText is matched case-insensitively by list searches.
	SearchText() string
}

// Activity is an exercise log entry.
type Activity struct {
	ID             ID       `json:"id,omitempty"`
	ActivityName   string   `json:"activity_name" validate:"required"`
	Category       string   `json:"category,omitempty"`
	Duration       *float64 `json:"duration" validate:"required,gt=0"`
	Distance       *float64 `json:"distance,omitempty" validate:"omitempty,gte=0"`
	CaloriesBurned *float64 `json:"calories_burned,omitempty" validate:"omitempty,gte=0"`
	Notes          string   `json:"notes,omitempty"`
	Date           string   `json:"date" validate:"required"`
}

func (a Activity) RecordID() ID       { return a.ID }
func (a Activity) RecordDate() string { return a.Date }
func (a Activity) SearchText() string { return a.ActivityName + " " + a.Notes }

func (a Activity) Metrics() map[string]*float64 {
	return map[string]*float64{
		"duration":        a.Duration,
		"distance":        a.Distance,
		"calories_burned": a.CaloriesBurned,
	}
}

// NutritionEntry is one meal.
type NutritionEntry struct {
	ID        ID       `json:"id,omitempty"`
	MealType  string   `json:"meal_type" validate:"required,oneof=breakfast lunch dinner snack"`
	FoodItems string   `json:"food_items" validate:"required"`
	Calories  *float64 `json:"calories,omitempty" validate:"omitempty,gte=0"`
	Protein   *float64 `json:"protein,omitempty" validate:"omitempty,gte=0"`
	Carbs     *float64 `json:"carbs,omitempty" validate:"omitempty,gte=0"`
	Sugar     *float64 `json:"sugar,omitempty" validate:"omitempty,gte=0"`
	Fat       *float64 `json:"fat,omitempty" validate:"omitempty,gte=0"`
	Notes     string   `json:"notes,omitempty"`
	Date      string   `json:"date" validate:"required"`
}

func (n NutritionEntry) RecordID() ID       { return n.ID }
func (n NutritionEntry) RecordDate() string { return n.Date }
func (n NutritionEntry) SearchText() string { return n.MealType + " " + n.FoodItems + " " + n.Notes }

func (n NutritionEntry) Metrics() map[string]*float64 {
	return map[string]*float64{
		"calories": n.Calories,
		"protein":  n.Protein,
		"carbs":    n.Carbs,
		"sugar":    n.Sugar,
		"fat":      n.Fat,
	}
}

// SleepEntry spans bedtime to wake time.
type SleepEntry struct {
	ID            ID       `json:"id,omitempty"`
	Bedtime       string   `json:"bedtime" validate:"required"`
	WakeTime      string   `json:"wake_time" validate:"required"`
	SleepQuality  *float64 `json:"sleep_quality" validate:"required,min=1,max=10"`
	SleepDuration *float64 `json:"sleep_duration,omitempty" validate:"omitempty,gte=0"`
	Notes         string   `json:"notes,omitempty"`
	Date          string   `json:"date,omitempty"`
}

func (s SleepEntry) RecordID() ID       { return s.ID }
func (s SleepEntry) SearchText() string { return s.Notes }

// RecordDate falls back to the bedtime when the entry has no explicit date.
func (s SleepEntry) RecordDate() string {
	if s.Date != "" {
		return s.Date
	}
	return s.Bedtime
}

func (s SleepEntry) Metrics() map[string]*float64 {
	return map[string]*float64{
		"sleep_quality":  s.SleepQuality,
		"sleep_duration": s.SleepDuration,
	}
}

// MoodEntry records mood on a 1-10 scale.
type MoodEntry struct {
	ID          ID       `json:"id,omitempty"`
	MoodRating  *float64 `json:"mood_rating" validate:"required,min=1,max=10"`
	MoodType    string   `json:"mood_type" validate:"required"`
	EnergyLevel *float64 `json:"energy_level,omitempty" validate:"omitempty,min=1,max=10"`
	StressLevel *float64 `json:"stress_level,omitempty" validate:"omitempty,min=1,max=10"`
	Notes       string   `json:"notes,omitempty"`
	Date        string   `json:"date" validate:"required"`
}

func (m MoodEntry) RecordID() ID       { return m.ID }
func (m MoodEntry) RecordDate() string { return m.Date }
func (m MoodEntry) SearchText() string { return m.MoodType + " " + m.Notes }

func (m MoodEntry) Metrics() map[string]*float64 {
	return map[string]*float64{
		"mood_rating":  m.MoodRating,
		"energy_level": m.EnergyLevel,
		"stress_level": m.StressLevel,
	}
}

// MeditationEntry is one meditation session.
type MeditationEntry struct {
	ID             ID       `json:"id,omitempty"`
	Duration       *float64 `json:"duration" validate:"required,gt=0"`
	MeditationType string   `json:"meditation_type" validate:"required"`
	Notes          string   `json:"notes,omitempty"`
	Date           string   `json:"date" validate:"required"`
}

func (m MeditationEntry) RecordID() ID       { return m.ID }
func (m MeditationEntry) RecordDate() string { return m.Date }
func (m MeditationEntry) SearchText() string { return m.MeditationType + " " + m.Notes }

func (m MeditationEntry) Metrics() map[string]*float64 {
	return map[string]*float64{"duration": m.Duration}
}

// HydrationEntry is one logged drink.
type HydrationEntry struct {
	ID          ID       `json:"id,omitempty"`
	WaterIntake *float64 `json:"water_intake" validate:"required,gt=0"`
	TimeLogged  string   `json:"time_logged" validate:"required"`
	Notes       string   `json:"notes,omitempty"`
	Date        string   `json:"date,omitempty"`
}

func (h HydrationEntry) RecordID() ID       { return h.ID }
func (h HydrationEntry) SearchText() string { return h.Notes }

// RecordDate falls back to the logging time when the entry has no explicit date.
func (h HydrationEntry) RecordDate() string {
	if h.Date != "" {
		return h.Date
	}
	return h.TimeLogged
}

func (h HydrationEntry) Metrics() map[string]*float64 {
	return map[string]*float64{"water_intake": h.WaterIntake}
}

// WellnessCategory names one of the wellness sub-logs.
type WellnessCategory string

const (
	WellnessNutrition  WellnessCategory = "nutrition"
	WellnessSleep      WellnessCategory = "sleep"
	WellnessMood       WellnessCategory = "mood"
	WellnessMeditation WellnessCategory = "meditation"
	WellnessHydration  WellnessCategory = "hydration"
)

// WellnessCategories lists the categories in display order.
var WellnessCategories = []WellnessCategory{
	WellnessNutrition,
	WellnessSleep,
	WellnessMood,
	WellnessMeditation,
	WellnessHydration,
}

// ParseWellnessCategory validates a path segment.
func ParseWellnessCategory(raw string) (WellnessCategory, error) {
	category := WellnessCategory(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range WellnessCategories {
		if category == known {
			return category, nil
		}
	}
	return "", fmt.Errorf("unknown wellness category %q", raw)
}

// DecodeList parses a JSON array of entries of this category.
func (c WellnessCategory) DecodeList(data []byte) ([]Record, error) {
	switch c {
	case WellnessNutrition:
		return decodeList[NutritionEntry](data)
	case WellnessSleep:
		return decodeList[SleepEntry](data)
	case WellnessMood:
		return decodeList[MoodEntry](data)
	case WellnessMeditation:
		return decodeList[MeditationEntry](data)
	case WellnessHydration:
		return decodeList[HydrationEntry](data)
	}
	return nil, fmt.Errorf("unknown wellness category %q", c)
}

// DecodeOne parses a single entry of this category.
func (c WellnessCategory) DecodeOne(data []byte) (Record, error) {
	switch c {
	case WellnessNutrition:
		return decodeOne[NutritionEntry](data)
	case WellnessSleep:
		return decodeOne[SleepEntry](data)
	case WellnessMood:
		return decodeOne[MoodEntry](data)
	case WellnessMeditation:
		return decodeOne[MeditationEntry](data)
	case WellnessHydration:
		return decodeOne[HydrationEntry](data)
	}
	return nil, fmt.Errorf("unknown wellness category %q", c)
}

// DecodeActivities parses a JSON array of activities.
func DecodeActivities(data []byte) ([]Activity, error) {
	var items []Activity
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ActivitiesAsRecords widens a typed slice for the stats functions.
func ActivitiesAsRecords(items []Activity) []Record {
	out := make([]Record, len(items))
	for i := range items {
		out[i] = items[i]
	}
	return out
}

func decodeList[T Record](data []byte) ([]Record, error) {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	out := make([]Record, len(items))
	for i := range items {
		out[i] = items[i]
	}
	return out, nil
}

func decodeOne[T Record](data []byte) (Record, error) {
	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return item, nil
}

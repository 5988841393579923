package model

import "strings"

// WorkoutType is one of the supported activities with a fixed burn rate.
type WorkoutType string

const (
	WorkoutRun     WorkoutType = "run"
	WorkoutWalk    WorkoutType = "walk"
	WorkoutBicycle WorkoutType = "bicycle"
)

// WorkoutTypes lists the supported types in display order.
var WorkoutTypes = []WorkoutType{WorkoutRun, WorkoutWalk, WorkoutBicycle}

// WorkoutTypeList renders WorkoutTypes as "run, walk, bicycle".
func WorkoutTypeList() string {
	names := make([]string, len(WorkoutTypes))
	for i, t := range WorkoutTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

var burnRates = map[WorkoutType]int{
	WorkoutRun:     10,
	WorkoutWalk:    5,
	WorkoutBicycle: 8,
}

// Russian names used by the bot's first audience.
var workoutAliases = map[string]WorkoutType{
	"бег":       WorkoutRun,
	"ходьба":    WorkoutWalk,
	"велосипед": WorkoutBicycle,
	"bike":      WorkoutBicycle,
	"cycling":   WorkoutBicycle,
	"running":   WorkoutRun,
	"walking":   WorkoutWalk,
}

// ParseWorkoutType matches case-insensitively against the canonical names and aliases.
func ParseWorkoutType(s string) (WorkoutType, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	t := WorkoutType(key)
	if _, ok := burnRates[t]; ok {
		return t, true
	}
	t, ok := workoutAliases[key]
	return t, ok
}

// BurnRate returns kcal per minute; zero for unknown types.
func (t WorkoutType) BurnRate() int {
	return burnRates[t]
}

// WorkoutResult is returned by a workout log. WaterSuggestedMl is advisory
// and never added to the ledger.
type WorkoutResult struct {
	Type             WorkoutType `json:"type"`
	Minutes          int         `json:"minutes"`
	CaloriesBurned   int         `json:"calories_burned"`
	WaterSuggestedMl int         `json:"water_suggested_ml"`
	TotalBurned      int         `json:"total_burned"`
}

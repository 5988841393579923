package model

// Profile holds the attributes collected by the profile dialogue.
// It is replaced wholesale when the user runs setup again.
type Profile struct {
	Weight          int    `json:"weight"` // kg
	Height          int    `json:"height"` // cm
	Age             int    `json:"age"`
	ActivityMinutes int    `json:"activity_minutes"`
	City            string `json:"city"`
}

// Goals are the daily targets derived from a Profile.
type Goals struct {
	WaterMl  int `json:"water_ml"`
	Calories int `json:"calories"`
}

// Ledger is a user's running totals against their goals.
type Ledger struct {
	Profile        Profile `json:"profile"`
	Goals          Goals   `json:"goals"`
	LoggedWaterMl  int     `json:"logged_water_ml"`
	LoggedCalories float64 `json:"logged_calories"`
	BurnedCalories int     `json:"burned_calories"`
}

// RemainingWaterMl is negative once the goal is exceeded.
func (l *Ledger) RemainingWaterMl() int {
	return l.Goals.WaterMl - l.LoggedWaterMl
}

// RemainingCalories is calorieGoal - (eaten - burned); negative means over budget.
func (l *Ledger) RemainingCalories() float64 {
	return float64(l.Goals.Calories) - (l.LoggedCalories - float64(l.BurnedCalories))
}

// WaterResult is returned by a water log.
type WaterResult struct {
	AddedMl     int `json:"added_ml"`
	LoggedMl    int `json:"logged_ml"`
	RemainingMl int `json:"remaining_ml"`
}

// Progress is a read-only snapshot of a ledger.
type Progress struct {
	LoggedWaterMl     int     `json:"logged_water_ml"`
	WaterGoalMl       int     `json:"water_goal_ml"`
	LoggedCalories    float64 `json:"logged_calories"`
	BurnedCalories    int     `json:"burned_calories"`
	CalorieGoal       int     `json:"calorie_goal"`
	RemainingCalories float64 `json:"remaining_calories"`
}

// ProgressOf snapshots a ledger.
func ProgressOf(l *Ledger) Progress {
	return Progress{
		LoggedWaterMl:     l.LoggedWaterMl,
		WaterGoalMl:       l.Goals.WaterMl,
		LoggedCalories:    l.LoggedCalories,
		BurnedCalories:    l.BurnedCalories,
		CalorieGoal:       l.Goals.Calories,
		RemainingCalories: l.RemainingCalories(),
	}
}

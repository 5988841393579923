// Package goals derives daily water and calorie targets from a profile.
package goals

import "github.com/hydrotrack-bot/server/internal/tracker/model"

const (
	WaterPerKgMl = 30
	// WaterPerActivityBlockMl is added for every full ActivityBlockMinutes of daily activity.
	WaterPerActivityBlockMl = 500
	ActivityBlockMinutes    = 30
	// WeatherAdjustmentMl is a flat allowance standing in for a weather lookup by city.
	WeatherAdjustmentMl = 500

	// CaloriesPerActivityMinute is the burn assumed for daily activity.
	CaloriesPerActivityMinute = 7
)

// Water returns the daily water goal in millilitres.
func Water(weight, activityMinutes int) int {
	return weight*WaterPerKgMl + (activityMinutes/ActivityBlockMinutes)*WaterPerActivityBlockMl + WeatherAdjustmentMl
}

// Calories returns the daily calorie goal (Mifflin-St Jeor base without the
// sex constant, plus activity), truncated toward zero.
func Calories(weight, height, age, activityMinutes int) int {
	base := 10*float64(weight) + 6.25*float64(height) - 5*float64(age)
	return int(base + float64(activityMinutes*CaloriesPerActivityMinute))
}

func ForProfile(p model.Profile) model.Goals {
	return model.Goals{
		WaterMl:  Water(p.Weight, p.ActivityMinutes),
		Calories: Calories(p.Weight, p.Height, p.Age, p.ActivityMinutes),
	}
}

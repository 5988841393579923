package router

import (
	"fmt"
	"strings"

	"github.com/hydrotrack-bot/server/internal/tracker/model"
)

const HelpText = "Hi! I track your water, calories and workouts.\n\n" +
	"Commands:\n" +
	"/start - show this help\n" +
	"/set_profile - set up your profile (weight, height, age, activity, city)\n" +
	"/log_water <ml> - log water you drank\n" +
	"/log_food <product> - log food you ate\n" +
	"/log_workout <type> <minutes> - log a workout (run, walk, bicycle)\n" +
	"/check_progress - show today's water and calorie progress\n" +
	"/cancel - abandon the current question"

const (
	UsageLogWater   = "Usage: /log_water <amount in ml>"
	UsageLogFood    = "Usage: /log_food <product name>"
	UsageLogWorkout = "Usage: /log_workout <type> <minutes>\n<type> is one of: run, walk, bicycle"

	MsgUseCommands       = "Use /start to see the available commands."
	MsgDialogueCancelled = "(Previous question cancelled.)"
	MsgCancelled         = "Cancelled."
	MsgNothingToCancel   = "Nothing to cancel."
)

func formatProfileSaved(p model.Profile, g model.Goals) string {
	return fmt.Sprintf("Profile saved!\nCity: %s\nWater goal: %d ml/day\nCalorie goal: %d kcal/day",
		p.City, g.WaterMl, g.Calories)
}

func formatWater(res model.WaterResult) string {
	if res.RemainingMl <= 0 {
		return fmt.Sprintf("Added %d ml. Daily water goal reached (%d ml over).", res.AddedMl, -res.RemainingMl)
	}
	return fmt.Sprintf("Added %d ml. Remaining: %d ml", res.AddedMl, res.RemainingMl)
}

func formatFoodLogged(step model.Step) string {
	return fmt.Sprintf("Added %.1f kcal (%s, %d g).", step.CaloriesAdded, step.Food.Name, step.Grams)
}

func formatWorkout(res model.WorkoutResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏋️ %s %d min: %d kcal burned", res.Type, res.Minutes, res.CaloriesBurned)
	if res.WaterSuggestedMl > 0 {
		fmt.Fprintf(&b, "\n💧 Drink an extra %d ml of water", res.WaterSuggestedMl)
	}
	return b.String()
}

func formatProgress(p model.Progress) string {
	return fmt.Sprintf(
		"💧 Water: %d/%d ml\n🔥 Calories: %.1f eaten\n🏃 %d burned\n🎯 Remaining: %.1f kcal",
		p.LoggedWaterMl, p.WaterGoalMl, p.LoggedCalories, p.BurnedCalories, p.RemainingCalories,
	)
}

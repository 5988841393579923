package dialogue

import (
	"fmt"

	"github.com/hydrotrack-bot/server/internal/tracker/model"
)

const (
	PromptWeight    = "Enter your weight (kg):"
	PromptHeight    = "Enter your height (cm):"
	PromptAge       = "Enter your age:"
	PromptActivity  = "How many minutes of activity do you get per day?"
	PromptCity      = "Which city are you in?"
	PromptFoodGrams = "How many grams did you eat?"

	MsgNotANumber        = "Please enter a whole number."
	MsgEmptyCity         = "City cannot be empty."
	MsgNoProfileStep     = "No profile setup in progress. Start one with /set_profile."
	MsgNoFoodStep        = "No food entry in progress. Start one with /log_food <product>."
	MsgProductNotFound   = "Product not found!"
	MsgProfileIncomplete = "Profile data was incomplete, let's start over."
)

// PromptFor returns the question asked in state s, empty for Idle.
func PromptFor(s model.DialogueState) string {
	switch s {
	case model.AwaitingWeight:
		return PromptWeight
	case model.AwaitingHeight:
		return PromptHeight
	case model.AwaitingAge:
		return PromptAge
	case model.AwaitingActivity:
		return PromptActivity
	case model.AwaitingCity:
		return PromptCity
	case model.AwaitingFoodGrams:
		return PromptFoodGrams
	default:
		return ""
	}
}

func foodPrompt(info model.FoodInfo) string {
	return fmt.Sprintf("%s - %.1f kcal/100g\n%s", info.Name, info.CaloriesPer100g, PromptFoodGrams)
}

func outOfRange(limit int) string {
	return fmt.Sprintf("Please enter a number from 0 to %d.", limit)
}

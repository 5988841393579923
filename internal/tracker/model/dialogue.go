package model

// DialogueState is the step a user's conversation is waiting on.
type DialogueState int

const (
	Idle DialogueState = iota
	AwaitingWeight
	AwaitingHeight
	AwaitingAge
	AwaitingActivity
	AwaitingCity
	AwaitingFoodGrams
)

func (s DialogueState) String() string {
	switch s {
	case AwaitingWeight:
		return "awaiting_weight"
	case AwaitingHeight:
		return "awaiting_height"
	case AwaitingAge:
		return "awaiting_age"
	case AwaitingActivity:
		return "awaiting_activity"
	case AwaitingCity:
		return "awaiting_city"
	case AwaitingFoodGrams:
		return "awaiting_food_grams"
	default:
		return "idle"
	}
}

// IsProfileStep reports whether s belongs to the profile sequence.
func (s DialogueState) IsProfileStep() bool {
	return s >= AwaitingWeight && s <= AwaitingCity
}

// Draft is the partially collected data of the active dialogue.
// Implemented only by *ProfileDraft and *FoodDraft.
type Draft interface {
	isDraft()
}

// ProfileDraft collects profile fields one step at a time.
type ProfileDraft struct {
	Weight   *int
	Height   *int
	Age      *int
	Activity *int
}

func (*ProfileDraft) isDraft() {}

// FoodDraft holds the looked-up product while waiting for grams.
type FoodDraft struct {
	Name            string
	CaloriesPer100g float64
}

func (*FoodDraft) isDraft() {}

// Dialogue is a user's conversation state. The zero value is Idle.
type Dialogue struct {
	State DialogueState
	Draft Draft
}

// Active reports whether a dialogue is in progress.
func (d Dialogue) Active() bool {
	return d.State != Idle
}

// Outcome of a dialogue step.
type Outcome int

const (
	Advance Outcome = iota
	Reject
	Complete
)

func (o Outcome) String() string {
	switch o {
	case Reject:
		return "reject"
	case Complete:
		return "complete"
	default:
		return "advance"
	}
}

// Step is the explicit result of feeding one reply into a dialogue.
// On Reject, Err carries the reason and Prompt asks again. On Complete,
// Profile/Goals (profile dialogue) or CaloriesAdded/TotalCalories
// (food dialogue) are set.
type Step struct {
	Outcome Outcome
	Prompt  string
	Err     error

	Profile Profile
	Goals   Goals

	Food          FoodInfo
	Grams         int
	CaloriesAdded float64
	TotalCalories float64
}

// Profile assembles the collected fields with the city. It reports false
// if any numeric field is still missing.
func (d *ProfileDraft) Profile(city string) (Profile, bool) {
	if d.Weight == nil || d.Height == nil || d.Age == nil || d.Activity == nil {
		return Profile{}, false
	}
	return Profile{
		Weight:          *d.Weight,
		Height:          *d.Height,
		Age:             *d.Age,
		ActivityMinutes: *d.Activity,
		City:            city,
	}, true
}

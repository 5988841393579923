// Package dialogue drives the multi-turn conversations: profile setup and
// food gram entry. All state lives in the store; the engine only reads and
// writes it under the user's lock.
package dialogue

import (
	"strconv"
	"strings"

	errx "github.com/hydrotrack-bot/server/internal/core/error"
	"github.com/hydrotrack-bot/server/internal/tracker/model"
	"github.com/hydrotrack-bot/server/internal/tracker/store"
	logx "github.com/hydrotrack-bot/server/pkg/logger"
)

type Engine struct {
	store *store.Store
}

func NewEngine(st *store.Store) *Engine {
	return &Engine{store: st}
}

// CurrentState never creates a session; unknown users are Idle.
func (e *Engine) CurrentState(userID int64) model.DialogueState {
	state := model.Idle
	e.store.View(userID, func(s store.Session) {
		state = s.Dialogue.State
	})
	return state
}

// Cancel resets the user to Idle and reports whether a dialogue was active.
func (e *Engine) Cancel(userID int64) bool {
	var was model.DialogueState
	_ = e.store.Update(userID, func(s *store.Session) error {
		was = s.Dialogue.State
		s.Dialogue = model.Dialogue{}
		return nil
	})
	if was != model.Idle {
		logx.Debug().Int64("user_id", userID).Stringer("state", was).Msg("dialogue cancelled")
	}
	return was != model.Idle
}

// =========== Profile dialogue ===========

// StartProfile begins (or restarts) profile setup and returns the first prompt.
func (e *Engine) StartProfile(userID int64) string {
	_ = e.store.Update(userID, func(s *store.Session) error {
		s.Dialogue = model.Dialogue{State: model.AwaitingWeight, Draft: &model.ProfileDraft{}}
		return nil
	})
	return PromptWeight
}

// SubmitProfileStep feeds one answer into the profile dialogue. On the final
// step the ledger is created in the same critical section.
func (e *Engine) SubmitProfileStep(userID int64, raw string) model.Step {
	var step model.Step
	_ = e.store.Update(userID, func(s *store.Session) error {
		step = profileStep(s, raw)
		return nil
	})
	logx.Debug().
		Int64("user_id", userID).
		Stringer("outcome", step.Outcome).
		Msg("profile step")
	return step
}

func profileStep(s *store.Session, raw string) model.Step {
	draft, ok := s.Dialogue.Draft.(*model.ProfileDraft)
	if !ok || !s.Dialogue.State.IsProfileStep() {
		return reject(errx.InvalidArgument(MsgNoProfileStep), MsgNoProfileStep)
	}

	state := s.Dialogue.State
	if state == model.AwaitingCity {
		city := strings.TrimSpace(raw)
		if city == "" {
			return reject(errx.Validation(MsgEmptyCity), MsgEmptyCity+" "+PromptCity)
		}
		profile, ok := draft.Profile(city)
		if !ok {
			s.Dialogue = model.Dialogue{State: model.AwaitingWeight, Draft: &model.ProfileDraft{}}
			return reject(errx.Validation(MsgProfileIncomplete), MsgProfileIncomplete+" "+PromptWeight)
		}
		ledger := s.ResetLedger(profile)
		s.Dialogue = model.Dialogue{}
		return model.Step{Outcome: model.Complete, Profile: profile, Goals: ledger.Goals}
	}

	n, ok := parseCount(raw)
	if !ok {
		return reject(errx.Validation(MsgNotANumber), MsgNotANumber+" "+PromptFor(state))
	}
	if limit := stepLimit(state); n > limit {
		msg := outOfRange(limit)
		return reject(errx.Validation(msg), msg+" "+PromptFor(state))
	}

	var next model.DialogueState
	switch state {
	case model.AwaitingWeight:
		draft.Weight, next = &n, model.AwaitingHeight
	case model.AwaitingHeight:
		draft.Height, next = &n, model.AwaitingAge
	case model.AwaitingAge:
		draft.Age, next = &n, model.AwaitingActivity
	case model.AwaitingActivity:
		draft.Activity, next = &n, model.AwaitingCity
	}
	s.Dialogue.State = next
	return model.Step{Outcome: model.Advance, Prompt: PromptFor(next)}
}

// =========== Food dialogue ===========

// StartFood enters AwaitingFoodGrams for a looked-up product. The product
// must have a positive caloric density.
func (e *Engine) StartFood(userID int64, info model.FoodInfo) (string, error) {
	if !info.Usable() {
		return "", errx.LookupFailure(MsgProductNotFound, nil)
	}
	_ = e.store.Update(userID, func(s *store.Session) error {
		s.Dialogue = model.Dialogue{
			State: model.AwaitingFoodGrams,
			Draft: &model.FoodDraft{Name: info.Name, CaloriesPer100g: info.CaloriesPer100g},
		}
		return nil
	})
	return foodPrompt(info), nil
}

// SubmitFoodGrams converts grams to calories and adds them to the ledger.
func (e *Engine) SubmitFoodGrams(userID int64, raw string) model.Step {
	var step model.Step
	_ = e.store.Update(userID, func(s *store.Session) error {
		step = foodStep(s, raw)
		return nil
	})
	logx.Debug().
		Int64("user_id", userID).
		Stringer("outcome", step.Outcome).
		Float64("calories_added", step.CaloriesAdded).
		Msg("food step")
	return step
}

func foodStep(s *store.Session, raw string) model.Step {
	draft, ok := s.Dialogue.Draft.(*model.FoodDraft)
	if !ok || s.Dialogue.State != model.AwaitingFoodGrams {
		return reject(errx.InvalidArgument(MsgNoFoodStep), MsgNoFoodStep)
	}

	grams, ok := parseCount(raw)
	if !ok {
		return reject(errx.Validation(MsgNotANumber), MsgNotANumber+" "+PromptFoodGrams)
	}
	if grams > model.MaxFoodGrams {
		msg := outOfRange(model.MaxFoodGrams)
		return reject(errx.Validation(msg), msg+" "+PromptFoodGrams)
	}

	kcal := draft.CaloriesPer100g * float64(grams) / 100
	total, err := store.AddFoodCalories(s, kcal)
	s.Dialogue = model.Dialogue{}
	if err != nil {
		return reject(err, errx.UserMessage(err))
	}
	return model.Step{
		Outcome:       model.Complete,
		Food:          model.FoodInfo{Name: draft.Name, CaloriesPer100g: draft.CaloriesPer100g},
		Grams:         grams,
		CaloriesAdded: kcal,
		TotalCalories: total,
	}
}

// ====================== Helper function ======================

// stepLimit is the largest answer accepted in a numeric profile step.
func stepLimit(state model.DialogueState) int {
	switch state {
	case model.AwaitingWeight:
		return model.MaxWeightKg
	case model.AwaitingHeight:
		return model.MaxHeightCm
	case model.AwaitingAge:
		return model.MaxAge
	default:
		return model.MaxActivityMinutes
	}
}

func reject(err error, prompt string) model.Step {
	return model.Step{Outcome: model.Reject, Err: err, Prompt: prompt}
}

// parseCount accepts only ASCII digits (after trimming), so signs, spaces
// inside the number and decimals are rejected.
func parseCount(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

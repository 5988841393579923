// Package store owns every user's dialogue state and ledger.
//
// Users live in a sharded concurrent map; each user has a private mutex, so
// operations on one user are serialized while different users never wait on
// each other. Callers only ever receive copies or a borrowed *Session inside
// an Update callback.
package store

import (
	"math"
	"sync"
	"sync/atomic"

	cmap "github.com/orcaman/concurrent-map/v2"

	errx "github.com/hydrotrack-bot/server/internal/core/error"
	"github.com/hydrotrack-bot/server/internal/tracker/goals"
	"github.com/hydrotrack-bot/server/internal/tracker/model"
	logx "github.com/hydrotrack-bot/server/pkg/logger"
)

const (
	MsgMissingProfile = "Set up your profile first with /set_profile."
	MsgWaterAmount    = "Water amount must be between 1 and 10000 ml."
	MsgWorkoutMinutes = "Workout duration must be between 1 and 1440 minutes."
	MsgCalories       = "Calories must be a non-negative number."
	MsgInvalidProfile = "Profile values are out of range."
)

// MsgUnknownWorkout is the reply for a workout type ParseWorkoutType rejects.
var MsgUnknownWorkout = "Unknown workout type. Choose one of: " + model.WorkoutTypeList() + "."

// Session is one user's dialogue and ledger. It is only valid inside the
// callback it was passed to.
type Session struct {
	Dialogue model.Dialogue
	// Ledger is nil until the user completes profile setup.
	Ledger *model.Ledger
}

// ResetLedger replaces the ledger with a fresh one for p. Progress is discarded.
func (s *Session) ResetLedger(p model.Profile) *model.Ledger {
	s.Ledger = &model.Ledger{
		Profile: p,
		Goals:   goals.ForProfile(p),
	}
	return s.Ledger
}

type entry struct {
	mu      sync.Mutex
	session Session
}

type Store struct {
	users    cmap.ConcurrentMap[int64, *entry]
	profiles atomic.Int64
}

func New() *Store {
	return &Store{
		users: cmap.NewWithCustomShardingFunction[int64, *entry](shardUserID),
	}
}

// shardUserID spreads sequential ids with a 32-bit FNV-style mix.
func shardUserID(id int64) uint32 {
	h := uint32(2166136261)
	u := uint64(id)
	for i := 0; i < 8; i++ {
		h ^= uint32(u & 0xff)
		h *= 16777619
		u >>= 8
	}
	return h
}

func (s *Store) entry(userID int64) *entry {
	return s.users.Upsert(userID, nil, func(exists bool, current, _ *entry) *entry {
		if exists {
			return current
		}
		return &entry{}
	})
}

// Update runs fn with the user's session while holding the user's lock,
// creating an Idle session on first contact.
func (s *Store) Update(userID int64, fn func(*Session) error) error {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	hadLedger := e.session.Ledger != nil
	err := fn(&e.session)
	if !hadLedger && e.session.Ledger != nil {
		s.profiles.Add(1)
	}
	return err
}

// View passes a copy of the user's session to fn. Unknown users see the
// zero Session and no entry is created for them.
func (s *Store) View(userID int64, fn func(Session)) {
	e, ok := s.users.Get(userID)
	if !ok {
		fn(Session{})
		return
	}
	e.mu.Lock()
	snapshot := e.session
	if snapshot.Ledger != nil {
		l := *snapshot.Ledger
		snapshot.Ledger = &l
	}
	e.mu.Unlock()
	fn(snapshot)
}

// Get returns a copy of the user's ledger. It never creates one.
func (s *Store) Get(userID int64) (model.Ledger, bool) {
	var (
		out model.Ledger
		ok  bool
	)
	s.View(userID, func(sess Session) {
		if sess.Ledger != nil {
			out, ok = *sess.Ledger, true
		}
	})
	return out, ok
}

// CreateOrReplace computes goals for p and installs a zeroed ledger,
// overwriting any previous one. Out-of-range profiles are rejected.
func (s *Store) CreateOrReplace(userID int64, p model.Profile) (model.Ledger, error) {
	if err := p.Validate(); err != nil {
		return model.Ledger{}, errx.New(errx.KindValidation, MsgInvalidProfile, err)
	}
	var out model.Ledger
	_ = s.Update(userID, func(sess *Session) error {
		out = *sess.ResetLedger(p)
		return nil
	})
	logx.Debug().Int64("user_id", userID).Int("water_goal_ml", out.Goals.WaterMl).Int("calorie_goal", out.Goals.Calories).Msg("ledger created")
	return out, nil
}

// LogWater adds amountMl to the user's water total.
func (s *Store) LogWater(userID int64, amountMl int) (model.WaterResult, error) {
	if amountMl <= 0 || amountMl > model.MaxWaterPerLogMl {
		return model.WaterResult{}, errx.Validation(MsgWaterAmount)
	}
	var res model.WaterResult
	err := s.Update(userID, func(sess *Session) error {
		if sess.Ledger == nil {
			return errx.MissingProfile(MsgMissingProfile)
		}
		sess.Ledger.LoggedWaterMl += amountMl
		res = model.WaterResult{
			AddedMl:     amountMl,
			LoggedMl:    sess.Ledger.LoggedWaterMl,
			RemainingMl: sess.Ledger.RemainingWaterMl(),
		}
		return nil
	})
	return res, err
}

// LogFoodCalories adds kcal to the eaten total and returns the new total.
func (s *Store) LogFoodCalories(userID int64, kcal float64) (float64, error) {
	if kcal < 0 || math.IsNaN(kcal) || math.IsInf(kcal, 0) {
		return 0, errx.Validation(MsgCalories)
	}
	var total float64
	err := s.Update(userID, func(sess *Session) error {
		var err error
		total, err = AddFoodCalories(sess, kcal)
		return err
	})
	return total, err
}

// AddFoodCalories is the lock-held part of LogFoodCalories, shared with the
// food dialogue so grams and ledger are applied in one critical section.
func AddFoodCalories(sess *Session, kcal float64) (float64, error) {
	if sess.Ledger == nil {
		return 0, errx.MissingProfile(MsgMissingProfile)
	}
	sess.Ledger.LoggedCalories += kcal
	return sess.Ledger.LoggedCalories, nil
}

// LogWorkout records a workout by type name and duration.
func (s *Store) LogWorkout(userID int64, workoutType string, minutes int) (model.WorkoutResult, error) {
	wt, ok := model.ParseWorkoutType(workoutType)
	if !ok {
		return model.WorkoutResult{}, errx.InvalidArgument(MsgUnknownWorkout)
	}
	if minutes <= 0 || minutes > model.MaxWorkoutMinutes {
		return model.WorkoutResult{}, errx.Validation(MsgWorkoutMinutes)
	}

	var res model.WorkoutResult
	err := s.Update(userID, func(sess *Session) error {
		if sess.Ledger == nil {
			return errx.MissingProfile(MsgMissingProfile)
		}
		burned := wt.BurnRate() * minutes
		sess.Ledger.BurnedCalories += burned
		res = model.WorkoutResult{
			Type:             wt,
			Minutes:          minutes,
			CaloriesBurned:   burned,
			WaterSuggestedMl: (minutes / 30) * 200,
			TotalBurned:      sess.Ledger.BurnedCalories,
		}
		return nil
	})
	return res, err
}

// Progress snapshots the user's ledger.
func (s *Store) Progress(userID int64) (model.Progress, error) {
	l, ok := s.Get(userID)
	if !ok {
		return model.Progress{}, errx.MissingProfile(MsgMissingProfile)
	}
	return model.ProgressOf(&l), nil
}

// Users is the number of users seen so far.
func (s *Store) Users() int {
	return s.users.Count()
}

// Profiles is the number of users with a ledger.
func (s *Store) Profiles() int {
	return int(s.profiles.Load())
}

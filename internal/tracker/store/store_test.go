package store

import (
	"math"
	"sync"
	"testing"

	errx "github.com/hydrotrack-bot/server/internal/core/error"
	"github.com/hydrotrack-bot/server/internal/tracker/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var berlin = model.Profile{Weight: 70, Height: 175, Age: 30, ActivityMinutes: 45, City: "Berlin"}

func TestCreateOrReplace_ComputesGoalsAndZeroes(t *testing.T) {
	s := New()

	l, err := s.CreateOrReplace(1, berlin)
	require.NoError(t, err)
	assert.Equal(t, 3100, l.Goals.WaterMl)
	assert.Equal(t, 1958, l.Goals.Calories)
	assert.Zero(t, l.LoggedWaterMl)
	assert.Zero(t, l.LoggedCalories)
	assert.Zero(t, l.BurnedCalories)
	assert.Equal(t, 1, s.Profiles())

	_, err = s.LogWater(1, 700)
	require.NoError(t, err)

	again, err := s.CreateOrReplace(1, berlin)
	require.NoError(t, err)
	assert.Zero(t, again.LoggedWaterMl, "re-running setup resets progress")
	assert.Equal(t, 1, s.Profiles())
}

func TestLogging_WithoutProfileFailsAndCreatesNothing(t *testing.T) {
	s := New()

	_, err := s.LogWater(7, 500)
	assert.True(t, errx.IsKind(err, errx.KindMissingProfile))

	_, err = s.LogFoodCalories(7, 10)
	assert.True(t, errx.IsKind(err, errx.KindMissingProfile))

	_, err = s.LogWorkout(7, "run", 10)
	assert.True(t, errx.IsKind(err, errx.KindMissingProfile))

	_, err = s.Progress(7)
	assert.True(t, errx.IsKind(err, errx.KindMissingProfile))

	_, ok := s.Get(7)
	assert.False(t, ok)
	assert.Zero(t, s.Profiles())
}

func TestLogWater_Accumulates(t *testing.T) {
	s := New()
	s.CreateOrReplace(1, berlin)

	res, err := s.LogWater(1, 500)
	require.NoError(t, err)
	assert.Equal(t, 500, res.LoggedMl)
	assert.Equal(t, 2600, res.RemainingMl)

	res, err = s.LogWater(1, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1500, res.LoggedMl)
	assert.Equal(t, 1600, res.RemainingMl)

	res, err = s.LogWater(1, 2000)
	require.NoError(t, err)
	assert.Equal(t, -400, res.RemainingMl, "exceeding the goal is not an error")
}

func TestLogWater_RejectsNonPositive(t *testing.T) {
	s := New()
	s.CreateOrReplace(1, berlin)

	for _, amount := range []int{0, -5} {
		_, err := s.LogWater(1, amount)
		assert.True(t, errx.IsKind(err, errx.KindValidation))
	}
	l, _ := s.Get(1)
	assert.Zero(t, l.LoggedWaterMl)
}

func TestLogFoodCalories(t *testing.T) {
	s := New()
	s.CreateOrReplace(1, berlin)

	total, err := s.LogFoodCalories(1, 78)
	require.NoError(t, err)
	assert.Equal(t, 78.0, total)

	total, err = s.LogFoodCalories(1, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 78.5, total)

	_, err = s.LogFoodCalories(1, -1)
	assert.True(t, errx.IsKind(err, errx.KindValidation))
}

func TestLogWorkout(t *testing.T) {
	s := New()
	s.CreateOrReplace(1, berlin)

	res, err := s.LogWorkout(1, "run", 40)
	require.NoError(t, err)
	assert.Equal(t, 400, res.CaloriesBurned)
	assert.Equal(t, 200, res.WaterSuggestedMl)
	assert.Equal(t, 400, res.TotalBurned)

	res, err = s.LogWorkout(1, "Велосипед", 20)
	require.NoError(t, err)
	assert.Equal(t, model.WorkoutBicycle, res.Type)
	assert.Equal(t, 160, res.CaloriesBurned)
	assert.Zero(t, res.WaterSuggestedMl)

	l, _ := s.Get(1)
	assert.Equal(t, 560, l.BurnedCalories)
	assert.Zero(t, l.LoggedWaterMl, "suggested water is advisory")
}

func TestLogWorkout_InvalidArguments(t *testing.T) {
	s := New()

	_, err := s.LogWorkout(1, "swim", 30)
	assert.True(t, errx.IsKind(err, errx.KindInvalidArgument), "type is checked before profile")

	s.CreateOrReplace(1, berlin)
	_, err = s.LogWorkout(1, "walk", 0)
	assert.True(t, errx.IsKind(err, errx.KindValidation))
}

func TestProgress(t *testing.T) {
	s := New()
	s.CreateOrReplace(1, berlin)

	_, err := s.LogWater(1, 1200)
	require.NoError(t, err)
	_, err = s.LogFoodCalories(1, 500.5)
	require.NoError(t, err)
	_, err = s.LogWorkout(1, "walk", 30)
	require.NoError(t, err)

	p, err := s.Progress(1)
	require.NoError(t, err)
	assert.Equal(t, model.Progress{
		LoggedWaterMl:     1200,
		WaterGoalMl:       3100,
		LoggedCalories:    500.5,
		BurnedCalories:    150,
		CalorieGoal:       1958,
		RemainingCalories: 1958 - (500.5 - 150),
	}, p)
}

func TestView_UnknownUserDoesNotCreateEntry(t *testing.T) {
	s := New()
	s.View(42, func(sess Session) {
		assert.False(t, sess.Dialogue.Active())
		assert.Nil(t, sess.Ledger)
	})
	assert.Zero(t, s.Users())
}

func TestView_ReturnsCopy(t *testing.T) {
	s := New()
	s.CreateOrReplace(1, berlin)

	s.View(1, func(sess Session) {
		sess.Ledger.LoggedWaterMl = 9999
	})
	l, _ := s.Get(1)
	assert.Zero(t, l.LoggedWaterMl)
}

func TestConcurrentLogWater_SameUserIsLossless(t *testing.T) {
	s := New()
	s.CreateOrReplace(1, berlin)

	const workers, perWorker = 32, 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_, err := s.LogWater(1, 10)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	l, _ := s.Get(1)
	assert.Equal(t, workers*perWorker*10, l.LoggedWaterMl)
}

func TestConcurrentLogWater_UsersAreIsolated(t *testing.T) {
	s := New()
	const users = 20
	for id := int64(1); id <= users; id++ {
		s.CreateOrReplace(id, berlin)
	}

	var wg sync.WaitGroup
	for id := int64(1); id <= users; id++ {
		for j := 0; j < 10; j++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				_, err := s.LogWater(id, int(id))
				assert.NoError(t, err)
			}(id)
		}
	}
	wg.Wait()

	for id := int64(1); id <= users; id++ {
		l, ok := s.Get(id)
		require.True(t, ok)
		assert.Equal(t, int(id)*10, l.LoggedWaterMl, "user %d", id)
	}
	assert.Equal(t, users, s.Profiles())
}

func TestMsgUnknownWorkout(t *testing.T) {
	assert.Equal(t, "Unknown workout type. Choose one of: run, walk, bicycle.", MsgUnknownWorkout)
}

func TestCreateOrReplace_RejectsOutOfRangeProfile(t *testing.T) {
	cases := map[string]model.Profile{
		"huge weight":       {Weight: 999999999999999999, Height: 175, Age: 30, ActivityMinutes: 45},
		"weight over limit": {Weight: model.MaxWeightKg + 1, Height: 175, Age: 30},
		"height over limit": {Weight: 70, Height: model.MaxHeightCm + 1, Age: 30},
		"age over limit":    {Weight: 70, Height: 175, Age: model.MaxAge + 1},
		"activity too long": {Weight: 70, Height: 175, Age: 30, ActivityMinutes: model.MaxActivityMinutes + 1},
		"negative age":      {Weight: 70, Height: 175, Age: -1},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			s := New()
			_, err := s.CreateOrReplace(1, p)
			assert.True(t, errx.IsKind(err, errx.KindValidation))
			_, ok := s.Get(1)
			assert.False(t, ok)
		})
	}
}

func TestCreateOrReplace_AcceptsUpperBounds(t *testing.T) {
	s := New()
	l, err := s.CreateOrReplace(1, model.Profile{
		Weight:          model.MaxWeightKg,
		Height:          model.MaxHeightCm,
		Age:             model.MaxAge,
		ActivityMinutes: model.MaxActivityMinutes,
	})
	require.NoError(t, err)
	assert.Positive(t, l.Goals.WaterMl)
	assert.Positive(t, l.Goals.Calories)
}

func TestLogWater_RejectsOversizedAmounts(t *testing.T) {
	s := New()
	_, err := s.CreateOrReplace(1, berlin)
	require.NoError(t, err)

	for _, ml := range []int{model.MaxWaterPerLogMl + 1, math.MaxInt64 - 10} {
		_, err := s.LogWater(1, ml)
		assert.True(t, errx.IsKind(err, errx.KindValidation), "ml=%d", ml)
	}

	res, err := s.LogWater(1, model.MaxWaterPerLogMl)
	require.NoError(t, err)
	res, err = s.LogWater(1, 100)
	require.NoError(t, err)
	assert.Equal(t, model.MaxWaterPerLogMl+100, res.LoggedMl)
}

func TestLogWorkout_RejectsOversizedDurations(t *testing.T) {
	s := New()
	_, err := s.CreateOrReplace(1, berlin)
	require.NoError(t, err)

	for _, minutes := range []int{model.MaxWorkoutMinutes + 1, math.MaxInt64 / 5} {
		_, err := s.LogWorkout(1, "run", minutes)
		assert.True(t, errx.IsKind(err, errx.KindValidation), "minutes=%d", minutes)
	}
	l, _ := s.Get(1)
	assert.Zero(t, l.BurnedCalories)

	_, err = s.LogWorkout(1, "run", model.MaxWorkoutMinutes)
	require.NoError(t, err)
	l, _ = s.Get(1)
	assert.Positive(t, l.BurnedCalories)
}

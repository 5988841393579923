package model

import "fmt"

// Upper bounds on user-typed numbers. Keeping inputs inside these ranges
// keeps every ledger total and goal far from integer overflow.
const (
	MaxWeightKg        = 500
	MaxHeightCm        = 300
	MaxAge             = 150
	MaxActivityMinutes = 24 * 60

	MaxWaterPerLogMl  = 10_000
	MaxWorkoutMinutes = 24 * 60
	MaxFoodGrams      = 10_000
)

// Validate reports the first field outside its range, or nil.
func (p Profile) Validate() error {
	checks := []struct {
		name  string
		value int
		max   int
	}{
		{"weight", p.Weight, MaxWeightKg},
		{"height", p.Height, MaxHeightCm},
		{"age", p.Age, MaxAge},
		{"activity minutes", p.ActivityMinutes, MaxActivityMinutes},
	}
	for _, c := range checks {
		if c.value < 0 || c.value > c.max {
			return fmt.Errorf("%s must be between 0 and %d, got %d", c.name, c.max, c.value)
		}
	}
	return nil
}

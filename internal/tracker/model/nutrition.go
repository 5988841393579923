package model

import "context"

// FoodInfo is a product's caloric density as returned by a lookup.
type FoodInfo struct {
	Name            string  `json:"name"`
	CaloriesPer100g float64 `json:"calories_per_100g"`
}

// Usable reports whether the lookup result can start a food dialogue.
func (f FoodInfo) Usable() bool {
	return f.CaloriesPer100g > 0
}

type NutritionLookup interface {
	// Query resolves a free-text product name. Implementations may be slow
	// and must honour ctx cancellation.
	Query(ctx context.Context, productName string) (FoodInfo, error)
}

// InboundMessage is what a transport hands to the router.
type InboundMessage struct {
	UserID int64
	Text   string
}

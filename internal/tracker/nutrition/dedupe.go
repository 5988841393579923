package nutrition

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/hydrotrack-bot/server/internal/tracker/model"
)

// Deduplicated collapses concurrent lookups of the same product into one
// upstream call. Each caller still gives up when its own ctx is done.
type Deduplicated struct {
	next  model.NutritionLookup
	group singleflight.Group
}

func NewDeduplicated(next model.NutritionLookup) *Deduplicated {
	return &Deduplicated{next: next}
}

func (d *Deduplicated) Query(ctx context.Context, productName string) (model.FoodInfo, error) {
	ch := d.group.DoChan(normalizeName(productName), func() (any, error) {
		// Detached so one caller's cancellation does not fail the callers sharing it.
		return d.next.Query(context.WithoutCancel(ctx), productName)
	})

	select {
	case <-ctx.Done():
		return model.FoodInfo{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return model.FoodInfo{}, res.Err
		}
		return res.Val.(model.FoodInfo), nil
	}
}

var _ model.NutritionLookup = (*Deduplicated)(nil)

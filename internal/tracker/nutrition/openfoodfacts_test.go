package nutrition

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hydrotrack-bot/server/internal/tracker/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOFFServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	var seen http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = *r
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func newClient(baseURL string) *OpenFoodFacts {
	return NewOpenFoodFacts(model.NutritionConfig{
		BaseURL:   baseURL + "/",
		Timeout:   2 * time.Second,
		UserAgent: "hydrotrack-test/1.0",
	}, nil)
}

func TestOpenFoodFacts_Query(t *testing.T) {
	srv, seen := newOFFServer(t, http.StatusOK, `{
		"count": 2,
		"products": [
			{"product_name": "Banana", "nutriments": {"energy-kcal_100g": 89}},
			{"product_name": "Other", "nutriments": {"energy-kcal_100g": 10}}
		]
	}`)

	info, err := newClient(srv.URL).Query(context.Background(), "  banana ")
	require.NoError(t, err)
	assert.Equal(t, model.FoodInfo{Name: "Banana", CaloriesPer100g: 89}, info)

	assert.Equal(t, searchPath, seen.URL.Path)
	assert.Equal(t, "banana", seen.URL.Query().Get("search_terms"))
	assert.Equal(t, "1", seen.URL.Query().Get("json"))
	assert.Equal(t, "hydrotrack-test/1.0", seen.Header.Get("User-Agent"))
}

func TestOpenFoodFacts_NameFallbackAndStringCalories(t *testing.T) {
	srv, _ := newOFFServer(t, http.StatusOK, `{"products":[{"nutriments":{"energy-kcal_100g":"52.5"}}]}`)

	info, err := newClient(srv.URL).Query(context.Background(), "apple")
	require.NoError(t, err)
	assert.Equal(t, "apple", info.Name)
	assert.Equal(t, 52.5, info.CaloriesPer100g)
}

func TestOpenFoodFacts_NotFound(t *testing.T) {
	bodies := map[string]string{
		"no products":   `{"products":[]}`,
		"zero calories": `{"products":[{"product_name":"Water","nutriments":{"energy-kcal_100g":0}}]}`,
		"no nutriments": `{"products":[{"product_name":"Mystery"}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv, _ := newOFFServer(t, http.StatusOK, body)
			_, err := newClient(srv.URL).Query(context.Background(), "x")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestOpenFoodFacts_Errors(t *testing.T) {
	srv, _ := newOFFServer(t, http.StatusServiceUnavailable, `oops`)
	_, err := newClient(srv.URL).Query(context.Background(), "apple")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))

	srv, _ = newOFFServer(t, http.StatusOK, `not json`)
	_, err = newClient(srv.URL).Query(context.Background(), "apple")
	require.Error(t, err)

	_, err = newClient(srv.URL).Query(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenFoodFacts_HonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newClient(srv.URL).Query(ctx, "slow")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "greek yogurt", normalizeName("  Greek   YOGURT "))
}

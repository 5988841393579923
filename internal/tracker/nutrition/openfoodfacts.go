// Package nutrition resolves food names to caloric density.
package nutrition

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/hydrotrack-bot/server/internal/tracker/model"
	logx "github.com/hydrotrack-bot/server/pkg/logger"
)

// ErrNotFound is returned when no product with a usable calorie value matches.
var ErrNotFound = errors.New("product not found")

const (
	searchPath   = "/cgi/search.pl"
	maxBodyBytes = 2 << 20

	pathFirstProduct = "products.0"
	pathName         = "product_name"
	pathKcal100g     = "nutriments.energy-kcal_100g"
)

// OpenFoodFacts queries the public Open Food Facts search endpoint and
// takes the first hit.
type OpenFoodFacts struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func NewOpenFoodFacts(cfg model.NutritionConfig, httpClient *http.Client) *OpenFoodFacts {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &OpenFoodFacts{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: httpClient,
	}
}

func (c *OpenFoodFacts) Query(ctx context.Context, productName string) (model.FoodInfo, error) {
	name := strings.TrimSpace(productName)
	if name == "" {
		return model.FoodInfo{}, ErrNotFound
	}

	q := url.Values{}
	q.Set("search_terms", name)
	q.Set("json", "1")
	q.Set("page_size", "1")
	endpoint := c.baseURL + searchPath + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.FoodInfo{}, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.FoodInfo{}, fmt.Errorf("open food facts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logx.Warn().Int("status", resp.StatusCode).Str("product", name).Msg("open food facts returned non-2xx")
		return model.FoodInfo{}, fmt.Errorf("open food facts: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return model.FoodInfo{}, fmt.Errorf("read open food facts body: %w", err)
	}

	return parseSearchResponse(body, name)
}

func parseSearchResponse(body []byte, fallbackName string) (model.FoodInfo, error) {
	if !gjson.ValidBytes(body) {
		return model.FoodInfo{}, fmt.Errorf("open food facts: invalid json")
	}

	product := gjson.GetBytes(body, pathFirstProduct)
	if !product.Exists() {
		return model.FoodInfo{}, ErrNotFound
	}

	// Float() also parses numeric strings, which the API sometimes returns.
	kcal := product.Get(pathKcal100g).Float()
	if kcal <= 0 {
		return model.FoodInfo{}, ErrNotFound
	}

	name := strings.TrimSpace(product.Get(pathName).String())
	if name == "" {
		name = fallbackName
	}
	return model.FoodInfo{Name: name, CaloriesPer100g: kcal}, nil
}

// normalizeName is the cache and dedup key for a query.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

var _ model.NutritionLookup = (*OpenFoodFacts)(nil)

package feeds

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const coinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoClient fetches coin listings and market detail from the public
// CoinGecko API. An API key is optional (demo tier).
type CoinGeckoClient struct {
	restClient
	apiKey string
}

// CoinMarket is one row of the /coins/markets listing.
type CoinMarket struct {
	ID                       string  `json:"id"`
	Symbol                   string  `json:"symbol"`
	Name                     string  `json:"name"`
	Image                    string  `json:"image"`
	CurrentPrice             float64 `json:"current_price"`
	MarketCap                float64 `json:"market_cap"`
	MarketCapRank            int     `json:"market_cap_rank"`
	TotalVolume              float64 `json:"total_volume"`
	High24h                  float64 `json:"high_24h"`
	Low24h                   float64 `json:"low_24h"`
	PriceChange24h           float64 `json:"price_change_24h"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	LastUpdated              string  `json:"last_updated"`
}

// CoinGeckoOptions configures the client; zero values fall back to the
// public base URL and a conservative request rate.
type CoinGeckoOptions struct {
	BaseURL   string
	APIKey    string
	RateLimit float64
	Burst     int
}

func NewCoinGeckoClient(opts CoinGeckoOptions, logger *zap.Logger) *CoinGeckoClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = coinGeckoBaseURL
	}

	return &CoinGeckoClient{
		restClient: newRestClient(baseURL, opts.RateLimit, opts.Burst, logger),
		apiKey:     opts.APIKey,
	}
}

// ListMarkets returns the top coins by market cap.
func (c *CoinGeckoClient) ListMarkets(ctx context.Context, limit int) ([]CoinMarket, error) {
	if limit <= 0 {
		limit = 50
	}

	var markets []CoinMarket
	req := c.client.R().
		SetQueryParams(map[string]string{
			"vs_currency": "usd",
			"order":       "market_cap_desc",
			"per_page":    fmt.Sprintf("%d", limit),
			"page":        "1",
			"sparkline":   "false",
		}).
		SetResult(&markets)
	if c.apiKey != "" {
		req.SetHeader("x-cg-demo-api-key", c.apiKey)
	}

	if _, err := c.doRequest(ctx, "GET", "/coins/markets", req); err != nil {
		return nil, fmt.Errorf("failed to list coin markets: %w", err)
	}

	return markets, nil
}

// GetMarket returns the market row for a single coin id (e.g. "bitcoin").
func (c *CoinGeckoClient) GetMarket(ctx context.Context, id string) (*CoinMarket, error) {
	var markets []CoinMarket
	req := c.client.R().
		SetQueryParams(map[string]string{
			"vs_currency": "usd",
			"ids":         strings.ToLower(id),
			"sparkline":   "false",
		}).
		SetResult(&markets)
	if c.apiKey != "" {
		req.SetHeader("x-cg-demo-api-key", c.apiKey)
	}

	if _, err := c.doRequest(ctx, "GET", "/coins/markets", req); err != nil {
		return nil, fmt.Errorf("failed to get coin market: %w", err)
	}

	if len(markets) == 0 {
		return nil, fmt.Errorf("coin %s not found", id)
	}
	return &markets[0], nil
}

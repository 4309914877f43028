package feeds

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const cryptoCompareBaseURL = "https://min-api.cryptocompare.com"

// CryptoCompareClient fetches spot prices and crypto news from the public
// CryptoCompare API.
type CryptoCompareClient struct {
	restClient
	apiKey string
}

type CryptoCompareOptions struct {
	BaseURL   string
	APIKey    string
	RateLimit float64
	Burst     int
}

func NewCryptoCompareClient(opts CryptoCompareOptions, logger *zap.Logger) *CryptoCompareClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = cryptoCompareBaseURL
	}

	return &CryptoCompareClient{
		restClient: newRestClient(baseURL, opts.RateLimit, opts.Burst, logger),
		apiKey:     opts.APIKey,
	}
}

// GetPrice returns the USD price of one base asset (e.g. "BTC").
func (c *CryptoCompareClient) GetPrice(ctx context.Context, symbol string) (float64, error) {
	var result map[string]float64
	req := c.client.R().
		SetQueryParams(map[string]string{
			"fsym":  strings.ToUpper(symbol),
			"tsyms": "USD",
		}).
		SetResult(&result)
	if c.apiKey != "" {
		req.SetHeader("authorization", "Apikey "+c.apiKey)
	}

	if _, err := c.doRequest(ctx, "GET", "/data/price", req); err != nil {
		return 0, fmt.Errorf("failed to get price for %s: %w", symbol, err)
	}

	price, ok := result["USD"]
	if !ok {
		return 0, fmt.Errorf("no USD price for symbol %s", symbol)
	}
	return price, nil
}

// NewsArticle is one entry of the /data/v2/news feed.
type NewsArticle struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedOn int64  `json:"published_on"`
	Categories  string `json:"categories"`
}

type newsResponse struct {
	Data []NewsArticle `json:"Data"`
}

// ListNews returns the latest crypto news articles.
func (c *CryptoCompareClient) ListNews(ctx context.Context) ([]NewsArticle, error) {
	var result newsResponse
	req := c.client.R().
		SetQueryParam("lang", "EN").
		SetResult(&result)
	if c.apiKey != "" {
		req.SetHeader("authorization", "Apikey "+c.apiKey)
	}

	if _, err := c.doRequest(ctx, "GET", "/data/v2/news/", req); err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}

	return result.Data, nil
}

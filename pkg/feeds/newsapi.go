package feeds

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const newsAPIBaseURL = "https://newsapi.org/v2"

// NewsAPIClient fetches general headlines from newsapi.org. The service
// requires an API key; without one every call fails and callers are expected
// to fall back to the CryptoCompare news feed.
type NewsAPIClient struct {
	restClient
	apiKey string
}

type NewsAPIOptions struct {
	BaseURL   string
	APIKey    string
	RateLimit float64
	Burst     int
}

func NewNewsAPIClient(opts NewsAPIOptions, logger *zap.Logger) *NewsAPIClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = newsAPIBaseURL
	}

	return &NewsAPIClient{
		restClient: newRestClient(baseURL, opts.RateLimit, opts.Burst, logger),
		apiKey:     opts.APIKey,
	}
}

// Headline is one article returned by /v2/everything.
type Headline struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

type everythingResponse struct {
	Status       string     `json:"status"`
	TotalResults int        `json:"totalResults"`
	Articles     []Headline `json:"articles"`
}

// SearchHeadlines returns recent articles matching the query, newest first.
func (c *NewsAPIClient) SearchHeadlines(ctx context.Context, query string, limit int) ([]Headline, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("newsapi key not configured")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var result everythingResponse
	req := c.client.R().
		SetQueryParams(map[string]string{
			"q":        query,
			"sortBy":   "publishedAt",
			"language": "en",
			"pageSize": fmt.Sprintf("%d", limit),
		}).
		SetHeader("X-Api-Key", c.apiKey).
		SetResult(&result)

	if _, err := c.doRequest(ctx, "GET", "/everything", req); err != nil {
		return nil, fmt.Errorf("failed to search headlines: %w", err)
	}

	if result.Status != "ok" {
		return nil, fmt.Errorf("newsapi returned status %q", result.Status)
	}
	return result.Articles, nil
}

package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradekit/lumen/pkg/feeds"
	"go.uber.org/zap"
)

func TestClassifySentiment(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Bitcoin surges to new record high after ETF approval", "positive"},
		{"Exchange hack triggers massive selloff", "negative"},
		{"Weekly market overview", "neutral"},
		{"Rally continues despite lawsuit", "neutral"}, // one of each cancels out
		{"", "neutral"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, classifySentiment(tt.text))
		})
	}
}

func TestClip(t *testing.T) {
	items := []NewsItem{{Title: "a"}, {Title: "b"}, {Title: "c"}}
	assert.Len(t, clip(items, 2), 2)
	assert.Len(t, clip(items, 5), 3)
}

func TestLatestServesFallbackWhenUpstreamsDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	logger := zap.NewNop()
	newsAPI := feeds.NewNewsAPIClient(feeds.NewsAPIOptions{BaseURL: server.URL, APIKey: "test-key", RateLimit: 1000, Burst: 1000}, logger)
	compare := feeds.NewCryptoCompareClient(feeds.CryptoCompareOptions{BaseURL: server.URL, RateLimit: 1000, Burst: 1000}, logger)
	s := NewNewsService(newsAPI, compare, logger)

	items, source, err := s.Latest(context.Background(), "", 3)
	assert.NoError(t, err)
	assert.Equal(t, SourceFallback, source)
	require.NotEmpty(t, items)
	assert.LessOrEqual(t, len(items), 3)
	for _, item := range items {
		assert.NotEmpty(t, item.Title)
		assert.NotEmpty(t, item.Sentiment)
		assert.False(t, item.PublishedAt.IsZero())
	}
}

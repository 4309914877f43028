package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradekit/lumen/internal/config"
	"github.com/tradekit/lumen/internal/models"
	"github.com/tradekit/lumen/pkg/exchange"
	"github.com/tradekit/lumen/pkg/feeds"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestMarket(t *testing.T, feedURL string) *MarketService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.IndicatorSnapshot{}))

	conf := &config.Config{}
	conf.Market.TopCoins = 50

	logger := zap.NewNop()
	gecko := feeds.NewCoinGeckoClient(feeds.CoinGeckoOptions{BaseURL: feedURL, RateLimit: 1000, Burst: 1000}, logger)
	compare := feeds.NewCryptoCompareClient(feeds.CryptoCompareOptions{BaseURL: feedURL, RateLimit: 1000, Burst: 1000}, logger)
	binance := exchange.NewBinanceClientWithBaseURL("", "", feedURL)

	return NewMarketService(db, conf, binance, gecko, compare, NewIndicatorService(), logger)
}

// newThrottledServer answers every request with 429 so callers exhaust their
// retries immediately.
func newThrottledServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
}

func TestListCoinsServesFallbackOnColdCache(t *testing.T) {
	server := newThrottledServer()
	defer server.Close()

	s := newTestMarket(t, server.URL)

	coins, source, err := s.ListCoins(context.Background(), 3)
	assert.NoError(t, err)
	assert.Equal(t, SourceFallback, source)
	require.Len(t, coins, 3)
	assert.Equal(t, "bitcoin", coins[0].ID)
	assert.Greater(t, coins[0].CurrentPrice, 0.0)
}

func TestGetCoinDetailServesFallbackOnColdCache(t *testing.T) {
	server := newThrottledServer()
	defer server.Close()

	s := newTestMarket(t, server.URL)
	ctx := context.Background()

	coin, source, err := s.GetCoinDetail(ctx, "ethereum")
	assert.NoError(t, err)
	assert.Equal(t, SourceFallback, source)
	assert.Equal(t, "eth", coin.Symbol)

	// Unknown coins still surface the upstream error.
	_, _, err = s.GetCoinDetail(ctx, "no-such-coin")
	assert.Error(t, err)
}

func TestListCoinsLiveThenCached(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":65000}]`))
	}))
	defer server.Close()

	s := newTestMarket(t, server.URL)
	ctx := context.Background()

	coins, source, err := s.ListCoins(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, SourceLive, source)
	require.Len(t, coins, 1)

	_, source, err = s.ListCoins(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, SourceCache, source)
	assert.Equal(t, int32(1), calls.Load())
}

package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestCoinGecko(server *httptest.Server) *CoinGeckoClient {
	return NewCoinGeckoClient(CoinGeckoOptions{
		BaseURL:   server.URL,
		APIKey:    "test-key",
		RateLimit: 1000,
		Burst:     1000,
	}, zap.NewNop())
}

func TestListMarkets(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/coins/markets", r.URL.Path)
			assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
			assert.Equal(t, "2", r.URL.Query().Get("per_page"))
			assert.Equal(t, "test-key", r.Header.Get("x-cg-demo-api-key"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":64000.5,"market_cap_rank":1,"price_change_percentage_24h":1.2},
				{"id":"ethereum","symbol":"eth","name":"Ethereum","current_price":3100.25,"market_cap_rank":2,"price_change_percentage_24h":-0.4}
			]`))
		})
		server := httptest.NewServer(handler)
		defer server.Close()

		client := newTestCoinGecko(server)
		markets, err := client.ListMarkets(context.Background(), 2)

		assert.NoError(t, err)
		assert.Len(t, markets, 2)
		assert.Equal(t, "bitcoin", markets[0].ID)
		assert.Equal(t, 64000.5, markets[0].CurrentPrice)
		assert.Equal(t, 2, markets[1].MarketCapRank)
	})

	t.Run("ClientError", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid key"}`))
		})
		server := httptest.NewServer(handler)
		defer server.Close()

		client := newTestCoinGecko(server)
		_, err := client.ListMarkets(context.Background(), 10)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list coin markets")
	})
}

func TestGetMarket(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":64000.5}]`))
		})
		server := httptest.NewServer(handler)
		defer server.Close()

		client := newTestCoinGecko(server)
		coin, err := client.GetMarket(context.Background(), "Bitcoin")

		assert.NoError(t, err)
		assert.Equal(t, "bitcoin", coin.ID)
		assert.Equal(t, 64000.5, coin.CurrentPrice)
	})

	t.Run("NotFound", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[]`))
		})
		server := httptest.NewServer(handler)
		defer server.Close()

		client := newTestCoinGecko(server)
		_, err := client.GetMarket(context.Background(), "nope")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTicker24h(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","priceChange":"500.10","priceChangePercent":"1.25","lastPrice":"50500.00","highPrice":"51000.00","lowPrice":"49500.00","volume":"1234.5","quoteVolume":"62000000"}`))
	}))
	defer server.Close()

	client := NewBinanceClientWithBaseURL("", "", server.URL)

	ticker, err := client.GetTicker24h(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", ticker.Symbol)
	assert.InDelta(t, 50500.0, ticker.LastPrice, 1e-9)
	assert.InDelta(t, 500.10, ticker.PriceChange, 1e-9)
	assert.InDelta(t, 1.25, ticker.PriceChangePercent, 1e-9)
	assert.InDelta(t, 49500.0, ticker.LowPrice, 1e-9)
	assert.InDelta(t, 1234.5, ticker.Volume, 1e-9)
}

func TestGetKlines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/klines", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[1700000000000,"100","110","90","105","1000",1700003599999,"105000",100,"500","52500","0"],[1700003600000,"105","112","104","110","900",1700007199999,"99000",90,"450","49500","0"]]`))
	}))
	defer server.Close()

	client := NewBinanceClientWithBaseURL("", "", server.URL)

	klines, err := client.GetKlines(context.Background(), "BTCUSDT", "1h", 2)
	require.NoError(t, err)
	require.Len(t, klines, 2)
	assert.Equal(t, 100.0, klines[0].Open)
	assert.Equal(t, 105.0, klines[0].Close)
	assert.Equal(t, 1000.0, klines[0].Volume)
	assert.Equal(t, 110.0, klines[1].Close)
	assert.True(t, klines[1].OpenTime.After(klines[0].OpenTime))
}

package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradekit/lumen/internal/config"
	"github.com/tradekit/lumen/internal/models"
	"github.com/tradekit/lumen/internal/service"
	"github.com/tradekit/lumen/pkg/exchange"
	"github.com/tradekit/lumen/pkg/feeds"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// klinesJSON renders n rising candles in the exchange wire format.
func klinesJSON(n int) string {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		open := 100 + i
		openTime := int64(1700000000000) + int64(i)*3600000
		fmt.Fprintf(&b, `[%d,"%d","%d","%d","%d","1000",%d,"0",0,"0","0","0"]`,
			openTime, open, open+2, open-1, open+1, openTime+3599999)
	}
	b.WriteString("]")
	return b.String()
}

func newMarketTestStack(t *testing.T) (*MarketHandler, *service.StrategyService) {
	t.Helper()

	gecko := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":65000,"market_cap":1280000000000}]`))
	}))
	t.Cleanup(gecko.Close)

	binanceSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v3/ticker/24hr":
			_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","priceChange":"500","priceChangePercent":"1.25","lastPrice":"50500","highPrice":"51000","lowPrice":"49500","volume":"1234","quoteVolume":"62000000"}`))
		case "/api/v3/klines":
			_, _ = w.Write([]byte(klinesJSON(120)))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(binanceSrv.Close)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.Signal{}, models.IndicatorSnapshot{}))

	logger := zap.NewNop()
	conf := &config.Config{}

	geckoClient := feeds.NewCoinGeckoClient(feeds.CoinGeckoOptions{BaseURL: gecko.URL, RateLimit: 1000, Burst: 1000}, logger)
	compareClient := feeds.NewCryptoCompareClient(feeds.CryptoCompareOptions{BaseURL: gecko.URL, RateLimit: 1000, Burst: 1000}, logger)
	newsClient := feeds.NewNewsAPIClient(feeds.NewsAPIOptions{BaseURL: gecko.URL, RateLimit: 1000, Burst: 1000}, logger)
	binanceClient := exchange.NewBinanceClientWithBaseURL("", "", binanceSrv.URL)

	market := service.NewMarketService(db, conf, binanceClient, geckoClient, compareClient, service.NewIndicatorService(), logger)
	news := service.NewNewsService(newsClient, compareClient, logger)
	strategy := service.NewStrategyService(logger, db)

	return NewMarketHandler(market, news, strategy, logger), strategy
}

func TestGetMarketIncludesTickerIndicatorsAndSignal(t *testing.T) {
	h, strategy := newMarketTestStack(t)

	_, err := strategy.SaveSignal(context.Background(), &service.Evaluation{
		Symbol:     "BTCUSDT",
		Action:     models.SignalActionBuy,
		Score:      1.2,
		Confidence: 60,
		Price:      50500,
		Reasons:    []string{"RSI oversold"},
	}, 1)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/market/bitcoin", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("bitcoin")

	require.NoError(t, h.GetMarket(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Contains(t, body, "data")
	require.Contains(t, body, "ticker_24h")
	require.Contains(t, body, "indicators")
	require.Contains(t, body, "signal")

	var symbol string
	require.NoError(t, json.Unmarshal(body["symbol"], &symbol))
	assert.Equal(t, "BTCUSDT", symbol)

	var ticker exchange.Ticker24h
	require.NoError(t, json.Unmarshal(body["ticker_24h"], &ticker))
	assert.InDelta(t, 50500.0, ticker.LastPrice, 1e-9)
	assert.InDelta(t, 1.25, ticker.PriceChangePercent, 1e-9)

	var signal models.Signal
	require.NoError(t, json.Unmarshal(body["signal"], &signal))
	assert.Equal(t, models.SignalActionBuy, signal.Action)
	assert.Equal(t, "BTCUSDT", signal.Symbol)
}

func TestGetMarketOmitsSignalWhenNonePersisted(t *testing.T) {
	h, _ := newMarketTestStack(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/market/bitcoin", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("bitcoin")

	require.NoError(t, h.GetMarket(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// No signal has been persisted yet: the coin row is still served and the
	// signal key is simply absent.
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "data")
	assert.NotContains(t, body, "signal")
}

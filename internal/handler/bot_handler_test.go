package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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

// newTestBotHandler builds the handler on real services with no configured
// symbols, so cycles finish immediately without touching any upstream.
func newTestBotHandler(t *testing.T) *BotHandler {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		models.Account{}, models.Trade{}, models.Position{},
		models.BotConfig{}, models.Signal{},
		models.IndicatorSnapshot{}, models.AccountSnapshot{},
	))

	logger := zap.NewNop()
	conf := &config.Config{}
	conf.Bot = config.BotConf{Address: "bot", IntervalMinutes: 60}

	gecko := feeds.NewCoinGeckoClient(feeds.CoinGeckoOptions{BaseURL: "http://127.0.0.1:1", RateLimit: 1000, Burst: 1}, logger)
	compare := feeds.NewCryptoCompareClient(feeds.CryptoCompareOptions{BaseURL: "http://127.0.0.1:1", RateLimit: 1000, Burst: 1}, logger)
	binance := exchange.NewBinanceClientWithBaseURL("", "", "http://127.0.0.1:1")

	market := service.NewMarketService(db, conf, binance, gecko, compare, service.NewIndicatorService(), logger)
	strategy := service.NewStrategyService(logger, db)
	ledger := service.NewLedgerService(db, logger)
	risk := service.NewRiskService(ledger, logger)
	stream := service.NewStreamService(logger)
	loop := service.NewBotLoop(conf, market, strategy, risk, ledger, stream, nil, logger)

	return NewBotHandler(loop, stream, logger)
}

func postBot(t *testing.T, e *echo.Echo, h echo.HandlerFunc, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h(c))
	return rec
}

func TestBotStartStopLifecycle(t *testing.T) {
	h := newTestBotHandler(t)
	e := echo.New()

	rec := postBot(t, e, h.Start, "/api/bot/start")
	assert.Equal(t, http.StatusOK, rec.Code)

	// A second start is rejected even before the loop goroutine has come up.
	rec = postBot(t, e, h.Start, "/api/bot/start")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Eventually(t, h.botLoop.IsRunning, 2*time.Second, 10*time.Millisecond)

	rec = postBot(t, e, h.Stop, "/api/bot/stop")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, h.botLoop.IsRunning())

	rec = postBot(t, e, h.Stop, "/api/bot/stop")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBotRestart(t *testing.T) {
	h := newTestBotHandler(t)
	e := echo.New()

	rec := postBot(t, e, h.Restart, "/api/bot/restart")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Eventually(t, h.botLoop.IsRunning, 2*time.Second, 10*time.Millisecond)

	rec = postBot(t, e, h.Restart, "/api/bot/restart")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Eventually(t, h.botLoop.IsRunning, 2*time.Second, 10*time.Millisecond)

	rec = postBot(t, e, h.Stop, "/api/bot/stop")
	assert.Equal(t, http.StatusOK, rec.Code)
}

package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"github.com/tradekit/lumen/internal/service"
	"go.uber.org/zap"
)

// MarketHandler serves the aggregated market data endpoints.
type MarketHandler struct {
	marketService   *service.MarketService
	newsService     *service.NewsService
	strategyService *service.StrategyService
	logger          *zap.Logger
}

func NewMarketHandler(
	marketService *service.MarketService,
	newsService *service.NewsService,
	strategyService *service.StrategyService,
	logger *zap.Logger,
) *MarketHandler {
	return &MarketHandler{
		marketService:   marketService,
		newsService:     newsService,
		strategyService: strategyService,
		logger:          logger,
	}
}

// ListCoins returns the top coins by market cap.
// GET /api/coins?limit=50
func (h *MarketHandler) ListCoins(c echo.Context) error {
	ctx := c.Request().Context()
	limit := cast.ToInt(c.QueryParam("limit"))

	coins, source, err := h.marketService.ListCoins(ctx, limit)
	if err != nil {
		h.logger.Error("failed to list coins", zap.Error(err))
		return c.JSON(http.StatusBadGateway, map[string]interface{}{
			"error": "market data unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"source": source,
		"count":  len(coins),
		"data":   coins,
	})
}

// GetMarket returns one coin by CoinGecko id, enriched with the exchange's
// 24h statistics, the 1h indicator set and the latest persisted signal.
// Enrichment is best effort; a dead exchange still yields the coin row.
// GET /api/market/:id
func (h *MarketHandler) GetMarket(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	coin, source, err := h.marketService.GetCoinDetail(ctx, id)
	if err != nil {
		h.logger.Error("failed to get market", zap.String("id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "coin not found",
		})
	}

	symbol := strings.ToUpper(coin.Symbol) + "USDT"
	resp := map[string]interface{}{
		"source": source,
		"symbol": symbol,
		"data":   coin,
	}

	if ticker, terr := h.marketService.GetTicker24h(ctx, symbol); terr == nil {
		resp["ticker_24h"] = ticker
	} else {
		h.logger.Warn("24h ticker unavailable", zap.String("symbol", symbol), zap.Error(terr))
	}

	if indicators, _, ierr := h.marketService.GetIndicators(ctx, symbol, "1h"); ierr == nil {
		resp["indicators"] = indicators
	} else {
		h.logger.Warn("indicators unavailable", zap.String("symbol", symbol), zap.Error(ierr))
	}

	if signals, serr := h.strategyService.RecentSignals(ctx, symbol, 1); serr == nil && len(signals) > 0 {
		resp["signal"] = signals[0]
	}

	return c.JSON(http.StatusOK, resp)
}

// resolveSymbol turns a path id into an exchange symbol. A CoinGecko id is
// resolved through the coin detail, anything already shaped like a trading
// pair passes through.
func (h *MarketHandler) resolveSymbol(c echo.Context, id string) string {
	upper := strings.ToUpper(id)
	if strings.HasSuffix(upper, "USDT") {
		return upper
	}
	coin, _, err := h.marketService.GetCoinDetail(c.Request().Context(), strings.ToLower(id))
	if err != nil {
		return upper + "USDT"
	}
	return strings.ToUpper(coin.Symbol) + "USDT"
}

// GetIndicators returns the indicator set for a coin.
// GET /api/market/:id/indicators?timeframe=1h
func (h *MarketHandler) GetIndicators(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	timeframe := c.QueryParam("timeframe")
	if timeframe == "" {
		timeframe = "1h"
	}
	switch timeframe {
	case "5m", "15m", "1h", "4h":
	default:
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "unsupported timeframe",
		})
	}

	symbol := h.resolveSymbol(c, id)

	indicators, series, err := h.marketService.GetIndicators(ctx, symbol, timeframe)
	if err != nil {
		h.logger.Error("failed to get indicators",
			zap.String("symbol", symbol), zap.Error(err))
		return c.JSON(http.StatusBadGateway, map[string]interface{}{
			"error": "indicator data unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"symbol":     symbol,
		"timeframe":  timeframe,
		"indicators": indicators,
		"series":     series,
	})
}

// GetIndicatorHistory returns persisted indicator snapshots.
// GET /api/market/:id/indicators/history?timeframe=1h&limit=100
func (h *MarketHandler) GetIndicatorHistory(c echo.Context) error {
	ctx := c.Request().Context()
	symbol := h.resolveSymbol(c, c.Param("id"))
	timeframe := c.QueryParam("timeframe")
	if timeframe == "" {
		timeframe = "1h"
	}
	limit := cast.ToInt(c.QueryParam("limit"))

	snapshots, err := h.marketService.IndicatorHistory(ctx, symbol, timeframe, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"count": len(snapshots),
		"data":  snapshots,
	})
}

// GetPrice returns the current price of an exchange symbol.
// GET /api/market/:id/price
func (h *MarketHandler) GetPrice(c echo.Context) error {
	ctx := c.Request().Context()
	symbol := h.resolveSymbol(c, c.Param("id"))

	price, err := h.marketService.GetPrice(ctx, symbol)
	if err != nil {
		h.logger.Error("failed to get price", zap.String("symbol", symbol), zap.Error(err))
		return c.JSON(http.StatusBadGateway, map[string]interface{}{
			"error": "price unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"price":  price,
	})
}

// GetNews returns recent crypto headlines.
// GET /api/news?q=bitcoin&limit=20
func (h *MarketHandler) GetNews(c echo.Context) error {
	ctx := c.Request().Context()
	query := c.QueryParam("q")
	limit := cast.ToInt(c.QueryParam("limit"))

	items, source, err := h.newsService.Latest(ctx, query, limit)
	if err != nil {
		h.logger.Error("failed to get news", zap.Error(err))
		return c.JSON(http.StatusBadGateway, map[string]interface{}{
			"error": "news unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"source": source,
		"count":  len(items),
		"data":   items,
	})
}

// GetSignals returns recent persisted signals.
// GET /api/signals?symbol=BTCUSDT&limit=50
func (h *MarketHandler) GetSignals(c echo.Context) error {
	ctx := c.Request().Context()
	symbol := strings.ToUpper(c.QueryParam("symbol"))
	limit := cast.ToInt(c.QueryParam("limit"))

	signals, err := h.strategyService.RecentSignals(ctx, symbol, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"count": len(signals),
		"data":  signals,
	})
}

// RegisterRoutes wires the market endpoints.
func (h *MarketHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/coins", h.ListCoins)
	g.GET("/news", h.GetNews)
	g.GET("/signals", h.GetSignals)

	market := g.Group("/market")
	market.GET("/:id", h.GetMarket)
	market.GET("/:id/price", h.GetPrice)
	market.GET("/:id/indicators", h.GetIndicators)
	market.GET("/:id/indicators/history", h.GetIndicatorHistory)
}

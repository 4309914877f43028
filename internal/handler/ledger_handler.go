package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"github.com/tradekit/lumen/internal/service"
	"github.com/tradekit/lumen/pkg/exchange"
	"go.uber.org/zap"
)

// LedgerHandler exposes the per-address account ledger under
// /api/blockchain.
type LedgerHandler struct {
	ledgerService *service.LedgerService
	logger        *zap.Logger
}

func NewLedgerHandler(ledgerService *service.LedgerService, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// GetBalance returns the free balance of an address.
// GET /api/blockchain/balance/:address
func (h *LedgerHandler) GetBalance(c echo.Context) error {
	ctx := c.Request().Context()
	address := c.Param("address")

	balance, err := h.ledgerService.GetBalance(ctx, address)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"address": address,
		"balance": balance,
	})
}

type amountRequest struct {
	Address string  `json:"address" validate:"required"`
	Amount  float64 `json:"amount" validate:"required,gt=0"`
}

// Deposit credits an address.
// POST /api/blockchain/deposit
func (h *LedgerHandler) Deposit(c echo.Context) error {
	var req amountRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	account, err := h.ledgerService.Deposit(c.Request().Context(), req.Address, req.Amount)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"address": account.Address,
		"balance": account.Balance,
	})
}

// Withdraw debits an address.
// POST /api/blockchain/withdraw
func (h *LedgerHandler) Withdraw(c echo.Context) error {
	var req amountRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	account, err := h.ledgerService.Withdraw(c.Request().Context(), req.Address, req.Amount)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"address": account.Address,
		"balance": account.Balance,
	})
}

type executeTradeRequest struct {
	Address string  `json:"address" validate:"required"`
	Symbol  string  `json:"symbol" validate:"required"`
	Side    string  `json:"side" validate:"required,oneof=long short"`
	Amount  float64 `json:"amount" validate:"required,gt=0"`
	Price   float64 `json:"price" validate:"required,gt=0"`
}

// ExecuteTrade opens a trade for an address.
// POST /api/blockchain/trade/execute
func (h *LedgerHandler) ExecuteTrade(c echo.Context) error {
	var req executeTradeRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	trade, err := h.ledgerService.ExecuteTrade(c.Request().Context(),
		req.Address, req.Symbol, exchange.PositionSide(req.Side), req.Amount, req.Price)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"trade": trade,
	})
}

type closeTradeRequest struct {
	Address   string  `json:"address" validate:"required"`
	TradeID   string  `json:"trade_id" validate:"required"`
	ExitPrice float64 `json:"exit_price" validate:"required,gt=0"`
}

// CloseTrade settles an active trade.
// POST /api/blockchain/trade/close
func (h *LedgerHandler) CloseTrade(c echo.Context) error {
	var req closeTradeRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	trade, err := h.ledgerService.CloseTrade(c.Request().Context(),
		req.Address, req.TradeID, req.ExitPrice)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"trade": trade,
	})
}

type openPositionRequest struct {
	Address    string  `json:"address" validate:"required"`
	Symbol     string  `json:"symbol" validate:"required"`
	Side       string  `json:"side" validate:"required,oneof=long short"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	EntryPrice float64 `json:"entry_price" validate:"required,gt=0"`
	StopLoss   float64 `json:"stop_loss" validate:"gte=0"`
	TakeProfit float64 `json:"take_profit" validate:"gte=0"`
	Reason     string  `json:"reason"`
}

// OpenPosition opens a position and reserves its margin.
// POST /api/blockchain/position/open
func (h *LedgerHandler) OpenPosition(c echo.Context) error {
	var req openPositionRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	position, err := h.ledgerService.OpenPosition(c.Request().Context(), service.OpenPositionParams{
		Address:    req.Address,
		Symbol:     req.Symbol,
		Side:       exchange.PositionSide(req.Side),
		Amount:     req.Amount,
		EntryPrice: req.EntryPrice,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
		Reason:     req.Reason,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"position": position,
	})
}

type closePositionRequest struct {
	Address    string  `json:"address" validate:"required"`
	PositionID string  `json:"position_id" validate:"required"`
	ExitPrice  float64 `json:"exit_price" validate:"required,gt=0"`
}

// ClosePosition settles an active position.
// POST /api/blockchain/position/close
func (h *LedgerHandler) ClosePosition(c echo.Context) error {
	var req closePositionRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	position, err := h.ledgerService.ClosePosition(c.Request().Context(),
		req.Address, req.PositionID, req.ExitPrice)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"position": position,
	})
}

type botSettingsRequest struct {
	Address         string  `json:"address" validate:"required"`
	MaxPositionSize float64 `json:"max_position_size" validate:"gte=0"`
	DailyTradeLimit int     `json:"daily_trade_limit" validate:"gte=0"`
	MinConfidence   float64 `json:"min_confidence" validate:"gte=0,lte=100"`
	Active          bool    `json:"active"`
}

// ConfigureSettings stores the per-address bot settings.
// POST /api/blockchain/settings
func (h *LedgerHandler) ConfigureSettings(c echo.Context) error {
	var req botSettingsRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	conf, err := h.ledgerService.ConfigureBotSettings(c.Request().Context(),
		req.Address, req.MaxPositionSize, req.DailyTradeLimit, req.MinConfidence, req.Active)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"settings": conf,
	})
}

// GetSettings returns the stored bot settings of an address.
// GET /api/blockchain/settings/:address
func (h *LedgerHandler) GetSettings(c echo.Context) error {
	conf, err := h.ledgerService.GetBotSettings(c.Request().Context(), c.Param("address"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"settings": conf,
	})
}

// GetTrades returns the trades of an address.
// GET /api/blockchain/trades/:address?limit=100
func (h *LedgerHandler) GetTrades(c echo.Context) error {
	limit := cast.ToInt(c.QueryParam("limit"))
	trades, err := h.ledgerService.GetTrades(c.Request().Context(), c.Param("address"), limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"count": len(trades),
		"data":  trades,
	})
}

// GetPositions returns the positions of an address.
// GET /api/blockchain/positions/:address?active=true
func (h *LedgerHandler) GetPositions(c echo.Context) error {
	activeOnly := cast.ToBool(c.QueryParam("active"))
	positions, err := h.ledgerService.GetPositions(c.Request().Context(), c.Param("address"), activeOnly)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"count": len(positions),
		"data":  positions,
	})
}

// GetMetrics returns the performance summary of an address.
// GET /api/blockchain/metrics/:address
func (h *LedgerHandler) GetMetrics(c echo.Context) error {
	metrics, err := h.ledgerService.GetMetrics(c.Request().Context(), c.Param("address"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, metrics)
}

// GetEquityCurve returns the recorded equity curve of an address.
// GET /api/blockchain/equity/:address?limit=500
func (h *LedgerHandler) GetEquityCurve(c echo.Context) error {
	limit := cast.ToInt(c.QueryParam("limit"))
	snapshots, err := h.ledgerService.EquityCurve(c.Request().Context(), c.Param("address"), limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"count": len(snapshots),
		"data":  snapshots,
	})
}

// RegisterRoutes wires the ledger endpoints. The guarded group covers every
// mutation; reads stay on the open group.
func (h *LedgerHandler) RegisterRoutes(g *echo.Group, guarded *echo.Group) {
	blockchain := g.Group("/blockchain")
	blockchain.GET("/balance/:address", h.GetBalance)
	blockchain.GET("/settings/:address", h.GetSettings)
	blockchain.GET("/trades/:address", h.GetTrades)
	blockchain.GET("/positions/:address", h.GetPositions)
	blockchain.GET("/metrics/:address", h.GetMetrics)
	blockchain.GET("/equity/:address", h.GetEquityCurve)

	control := guarded.Group("/blockchain")
	control.POST("/deposit", h.Deposit)
	control.POST("/withdraw", h.Withdraw)
	control.POST("/trade/execute", h.ExecuteTrade)
	control.POST("/trade/close", h.CloseTrade)
	control.POST("/position/open", h.OpenPosition)
	control.POST("/position/close", h.ClosePosition)
	control.POST("/settings", h.ConfigureSettings)
}

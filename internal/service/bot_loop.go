package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tradekit/lumen/internal/config"
	"github.com/tradekit/lumen/internal/models"
	"github.com/tradekit/lumen/internal/telegram"
	"github.com/tradekit/lumen/internal/xe"
	"github.com/tradekit/lumen/pkg/exchange"
	"go.uber.org/zap"
)

// BotLoop runs the automated trading cycle on a cron schedule: collect market
// data, sweep protective stops, score each symbol, and act on signals through
// the ledger.
type BotLoop struct {
	conf     config.BotConf
	telegram config.TelegramConf

	marketService   *MarketService
	strategyService *StrategyService
	riskService     *RiskService
	ledgerService   *LedgerService
	streamService   *StreamService
	notifier        *telegram.Telegram

	logger *zap.Logger

	mu        sync.Mutex
	startTime time.Time
	iteration int
	isRunning bool
	stopChan  chan struct{}
	cron      *cron.Cron
	cancel    context.CancelFunc
}

func NewBotLoop(
	conf *config.Config,
	marketService *MarketService,
	strategyService *StrategyService,
	riskService *RiskService,
	ledgerService *LedgerService,
	streamService *StreamService,
	notifier *telegram.Telegram,
	logger *zap.Logger,
) *BotLoop {
	return &BotLoop{
		conf:            conf.Bot,
		telegram:        conf.Telegram,
		marketService:   marketService,
		strategyService: strategyService,
		riskService:     riskService,
		ledgerService:   ledgerService,
		streamService:   streamService,
		notifier:        notifier,
		logger:          logger,
	}
}

// Start schedules the loop and blocks until Stop is called or the context is
// cancelled. Starting a running loop fails.
func (t *BotLoop) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return xe.ErrBotAlreadyRunning
	}
	t.isRunning = true
	t.startTime = time.Now()
	t.stopChan = make(chan struct{})
	stopChan := t.stopChan
	ctx, t.cancel = context.WithCancel(ctx)

	interval := t.conf.IntervalMinutes
	if interval <= 0 {
		interval = 5
	}
	cronExpr := fmt.Sprintf("*/%d * * * *", interval)

	t.cron = cron.New()
	_, err := t.cron.AddFunc(cronExpr, func() {
		if err := t.ExecuteCycle(context.Background()); err != nil {
			t.logger.Error("cycle execution failed", zap.Error(err))
		}
	})
	if err != nil {
		t.isRunning = false
		t.mu.Unlock()
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	t.cron.Start()
	t.mu.Unlock()

	t.logger.Info("bot loop started",
		zap.Strings("symbols", t.conf.Symbols),
		zap.Int("interval_minutes", interval),
		zap.String("cron_expression", cronExpr))

	t.streamService.Publish("status", map[string]any{"running": true})

	// Run the first cycle right away instead of waiting a full interval.
	go func() {
		if err := t.ExecuteCycle(context.Background()); err != nil {
			t.logger.Error("first cycle execution failed", zap.Error(err))
		}
	}()

	select {
	case <-stopChan:
		t.logger.Info("bot loop stopped by user")
		return nil
	case <-ctx.Done():
		t.Stop()
		return ctx.Err()
	}
}

// Stop halts the scheduler and waits for a running cycle to finish.
func (t *BotLoop) Stop() error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return xe.ErrBotNotRunning
	}

	t.logger.Info("stopping bot loop...")

	scheduler := t.cron
	if t.cancel != nil {
		t.cancel()
	}
	t.isRunning = false
	close(t.stopChan)
	t.mu.Unlock()

	// Wait for a running cycle outside the lock; ExecuteCycle takes it to
	// bump the iteration counter.
	if scheduler != nil {
		ctx := scheduler.Stop()
		<-ctx.Done()
	}

	t.streamService.Publish("status", map[string]any{"running": false})
	t.logger.Info("bot loop stopped")
	return nil
}

// IsRunning reports whether the loop is scheduled.
func (t *BotLoop) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isRunning
}

// BotStatus describes the loop for the status endpoint.
type BotStatus struct {
	Running         bool      `json:"running"`
	Iteration       int       `json:"iteration"`
	Address         string    `json:"address"`
	Symbols         []string  `json:"symbols"`
	IntervalMinutes int       `json:"interval_minutes"`
	StartedAt       time.Time `json:"started_at,omitempty"`
	UptimeSeconds   int64     `json:"uptime_seconds"`
}

// Status returns a snapshot of the loop state.
func (t *BotLoop) Status() BotStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	status := BotStatus{
		Running:         t.isRunning,
		Iteration:       t.iteration,
		Address:         t.conf.Address,
		Symbols:         t.conf.Symbols,
		IntervalMinutes: t.conf.IntervalMinutes,
	}
	if t.isRunning {
		status.StartedAt = t.startTime
		status.UptimeSeconds = int64(time.Since(t.startTime).Seconds())
	}
	return status
}

// ExecuteCycle runs one full cycle.
func (t *BotLoop) ExecuteCycle(ctx context.Context) error {
	t.mu.Lock()
	t.iteration++
	iteration := t.iteration
	t.mu.Unlock()

	cycleStart := time.Now()
	t.logger.Info("========== BOT CYCLE START ==========",
		zap.Int("iteration", iteration),
		zap.Time("start_time", cycleStart))

	// Step 1: market data for every configured symbol.
	marketData, err := t.marketService.CollectAllSymbols(ctx, t.conf.Symbols)
	if err != nil {
		return fmt.Errorf("collect market data: %w", err)
	}

	// Step 2: protective stop sweep at current prices.
	prices := make(map[string]float64, len(marketData))
	for symbol, data := range marketData {
		prices[symbol] = data.CurrentPrice
	}
	closed, err := t.riskService.SweepProtectiveStops(ctx, prices)
	if err != nil {
		t.logger.Error("protective stop sweep failed", zap.Error(err))
	}
	for _, position := range closed {
		t.streamService.Publish("position", position)
		t.notifyPositionClosed(position)
	}

	// Step 3: score each symbol and act.
	for symbol, data := range marketData {
		t.processSymbol(ctx, iteration, symbol, data)
	}

	// Step 4: record the equity curve point.
	if _, err := t.ledgerService.RecordSnapshot(ctx, t.conf.Address, iteration); err != nil {
		t.logger.Warn("failed to record account snapshot", zap.Error(err))
	}

	t.logger.Info("========== BOT CYCLE END ==========",
		zap.Int("iteration", iteration),
		zap.Duration("elapsed", time.Since(cycleStart)))
	return nil
}

func (t *BotLoop) processSymbol(ctx context.Context, iteration int, symbol string, data *MarketData) {
	// Score on the 1h timeframe; fall back to any available one.
	ind, ok := data.Timeframes["1h"]
	if !ok {
		for _, v := range data.Timeframes {
			ind = v
			break
		}
	}

	eval := t.strategyService.Evaluate(symbol, ind)
	if eval == nil {
		return
	}

	signal, err := t.strategyService.SaveSignal(ctx, eval, iteration)
	if err != nil {
		t.logger.Error("failed to save signal", zap.String("symbol", symbol), zap.Error(err))
	} else {
		t.streamService.Publish("signal", signal)
	}

	if eval.Action == models.SignalActionHold {
		return
	}

	t.notifySignal(eval)

	if err := t.riskService.CanExecute(ctx, t.conf.Address, eval); err != nil {
		t.logger.Info("signal not actionable",
			zap.String("symbol", symbol),
			zap.String("action", string(eval.Action)),
			zap.Error(err))
		return
	}

	t.actOnSignal(ctx, symbol, eval, ind)
}

func (t *BotLoop) actOnSignal(ctx context.Context, symbol string, eval *Evaluation, ind *TimeframeIndicators) {
	address := t.conf.Address

	side := exchange.PositionSideLong
	if eval.Action == models.SignalActionSell {
		side = exchange.PositionSideShort
	}

	// An opposite signal closes the open position instead of stacking a new
	// one on top of it.
	positions, err := t.ledgerService.GetPositions(ctx, address, true)
	if err != nil {
		t.logger.Error("failed to load positions", zap.Error(err))
		return
	}
	for _, position := range positions {
		if position.Symbol != symbol {
			continue
		}
		if position.Side == string(side) {
			return // already positioned in this direction
		}
		closedPos, err := t.ledgerService.ClosePosition(ctx, address, position.ID, eval.Price)
		if err != nil {
			t.logger.Error("failed to close opposite position",
				zap.String("position_id", position.ID), zap.Error(err))
			return
		}
		t.streamService.Publish("position", closedPos)
		t.notifyPositionClosed(closedPos)
	}

	amount, err := t.riskService.PositionSize(ctx, address, eval)
	if err != nil {
		t.logger.Info("skipping trade, cannot size position",
			zap.String("symbol", symbol), zap.Error(err))
		return
	}

	stopLoss, takeProfit := t.riskService.StopPrices(eval, ind)

	reason := fmt.Sprintf("%s signal, score %.2f, confidence %.1f%%",
		eval.Action, eval.Score, eval.Confidence)
	position, err := t.ledgerService.OpenPosition(ctx, OpenPositionParams{
		Address:    address,
		Symbol:     symbol,
		Side:       side,
		Amount:     amount,
		EntryPrice: eval.Price,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
		Reason:     reason,
	})
	if err != nil {
		t.logger.Warn("failed to open position",
			zap.String("symbol", symbol), zap.Error(err))
		return
	}

	t.streamService.Publish("position", position)
	t.notifyPositionOpened(position)
}

func (t *BotLoop) notifySignal(eval *Evaluation) {
	if t.notifier == nil || !t.telegram.Enabled {
		return
	}
	if err := t.notifier.NotifySignal(t.telegram.ChatID, eval.Symbol,
		string(eval.Action), eval.Confidence, eval.Price); err != nil {
		t.logger.Warn("telegram signal alert failed", zap.Error(err))
	}
}

func (t *BotLoop) notifyPositionOpened(position models.Position) {
	if t.notifier == nil || !t.telegram.Enabled {
		return
	}
	if err := t.notifier.NotifyPositionOpened(t.telegram.ChatID, position.Symbol,
		position.Side, position.Amount, position.EntryPrice,
		position.StopLoss, position.TakeProfit); err != nil {
		t.logger.Warn("telegram open alert failed", zap.Error(err))
	}
}

func (t *BotLoop) notifyPositionClosed(position models.Position) {
	if t.notifier == nil || !t.telegram.Enabled {
		return
	}
	if err := t.notifier.NotifyPositionClosed(t.telegram.ChatID, position.Symbol,
		position.Side, position.ExitPrice, position.Pnl); err != nil {
		t.logger.Warn("telegram close alert failed", zap.Error(err))
	}
}

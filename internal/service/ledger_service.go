package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"github.com/tradekit/lumen/internal/models"
	"github.com/tradekit/lumen/internal/repo"
	"github.com/tradekit/lumen/internal/xe"
	"github.com/tradekit/lumen/pkg/exchange"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LedgerService implements the per-address account ledger: balances, trades,
// positions and bot settings. Every mutation runs in a transaction and every
// query is scoped to a single address, so accounts never observe each other's
// state.
type LedgerService struct {
	logger *zap.Logger

	*orz.Service

	accountRepo   *repo.AccountRepo
	tradeRepo     *repo.TradeRepo
	positionRepo  *repo.PositionRepo
	botConfigRepo *repo.BotConfigRepo
	snapshotRepo  *repo.AccountSnapshotRepo
}

func NewLedgerService(db *gorm.DB, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		logger:        logger,
		Service:       orz.NewService(db),
		accountRepo:   repo.NewAccountRepo(db),
		tradeRepo:     repo.NewTradeRepo(db),
		positionRepo:  repo.NewPositionRepo(db),
		botConfigRepo: repo.NewBotConfigRepo(db),
		snapshotRepo:  repo.NewAccountSnapshotRepo(db),
	}
}

// startOfDay is the UTC midnight boundary used by the daily trade limit.
func startOfDay(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EnsureAccount seeds an address with an initial balance on first boot.
// Existing accounts are left untouched.
func (s *LedgerService) EnsureAccount(ctx context.Context, address string, initialBalance float64) error {
	if address == "" {
		return nil
	}
	return s.Transaction(ctx, func(ctx context.Context) error {
		_, err := s.accountRepo.FindById(ctx, address)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		account := models.Account{Address: address, Balance: initialBalance}
		if err := s.accountRepo.Create(ctx, &account); err != nil {
			return err
		}
		s.logger.Info("seeded account",
			zap.String("address", address),
			zap.Float64("balance", initialBalance))
		return nil
	})
}

// GetBalance returns the free balance of an address. Unknown addresses have a
// zero balance.
func (s *LedgerService) GetBalance(ctx context.Context, address string) (float64, error) {
	account, err := s.accountRepo.FindById(ctx, address)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return account.Balance, nil
}

// Deposit credits an address.
func (s *LedgerService) Deposit(ctx context.Context, address string, amount float64) (models.Account, error) {
	if amount <= 0 {
		return models.Account{}, xe.ErrInvalidParams
	}

	var account models.Account
	err := s.Transaction(ctx, func(ctx context.Context) error {
		var err error
		account, err = s.accountRepo.FindOrCreate(ctx, address)
		if err != nil {
			return err
		}
		account.Balance += amount
		return s.accountRepo.Save(ctx, &account)
	})
	if err != nil {
		return models.Account{}, err
	}

	s.logger.Info("deposit",
		zap.String("address", address),
		zap.Float64("amount", amount),
		zap.Float64("balance", account.Balance))
	return account, nil
}

// Withdraw debits an address. The balance can never go negative.
func (s *LedgerService) Withdraw(ctx context.Context, address string, amount float64) (models.Account, error) {
	if amount <= 0 {
		return models.Account{}, xe.ErrInvalidParams
	}

	var account models.Account
	err := s.Transaction(ctx, func(ctx context.Context) error {
		var err error
		account, err = s.accountRepo.FindOrCreate(ctx, address)
		if err != nil {
			return err
		}
		if account.Balance < amount {
			return xe.ErrInsufficientBalance
		}
		account.Balance -= amount
		return s.accountRepo.Save(ctx, &account)
	})
	if err != nil {
		return models.Account{}, err
	}

	s.logger.Info("withdraw",
		zap.String("address", address),
		zap.Float64("amount", amount),
		zap.Float64("balance", account.Balance))
	return account, nil
}

// checkDailyLimit counts opens (trades plus positions) since UTC midnight
// against the address's configured limit.
func (s *LedgerService) checkDailyLimit(ctx context.Context, address string, conf models.BotConfig) error {
	if conf.DailyTradeLimit <= 0 {
		return nil
	}
	since := startOfDay(time.Now())
	tradeCount, err := s.tradeRepo.CountOpenedSince(ctx, address, since)
	if err != nil {
		return err
	}
	positionCount, err := s.positionRepo.CountOpenedSince(ctx, address, since)
	if err != nil {
		return err
	}
	if tradeCount+positionCount >= int64(conf.DailyTradeLimit) {
		return xe.ErrDailyTradeLimit
	}
	return nil
}

// getBotConfig returns the stored config of an address, or a zero-value
// config when none has been set (no limits enforced).
func (s *LedgerService) getBotConfig(ctx context.Context, address string) (models.BotConfig, error) {
	conf, err := s.botConfigRepo.FindById(ctx, address)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.BotConfig{Address: address}, nil
		}
		return models.BotConfig{}, err
	}
	return conf, nil
}

// ExecuteTrade opens a trade for an address. The notional (amount * price) is
// debited up front and the daily trade limit and max position size apply.
func (s *LedgerService) ExecuteTrade(ctx context.Context, address, symbol string, side exchange.PositionSide, amount, price float64) (models.Trade, error) {
	if amount <= 0 || price <= 0 || !side.Valid() {
		return models.Trade{}, xe.ErrInvalidParams
	}

	notional := amount * price
	var trade models.Trade

	err := s.Transaction(ctx, func(ctx context.Context) error {
		conf, err := s.getBotConfig(ctx, address)
		if err != nil {
			return err
		}
		if conf.MaxPositionSize > 0 && notional > conf.MaxPositionSize {
			return xe.ErrMaxPositionSize
		}
		if err := s.checkDailyLimit(ctx, address, conf); err != nil {
			return err
		}

		account, err := s.accountRepo.FindOrCreate(ctx, address)
		if err != nil {
			return err
		}
		if account.Balance < notional {
			return xe.ErrInsufficientBalance
		}
		account.Balance -= notional
		if err := s.accountRepo.Save(ctx, &account); err != nil {
			return err
		}

		trade = models.Trade{
			ID:         ulid.Make().String(),
			Address:    address,
			Symbol:     symbol,
			Side:       string(side),
			Amount:     amount,
			EntryPrice: price,
			Status:     models.TradeStatusActive,
			OpenedAt:   time.Now(),
		}
		return s.tradeRepo.Create(ctx, &trade)
	})
	if err != nil {
		return models.Trade{}, err
	}

	s.logger.Info("trade executed",
		zap.String("address", address),
		zap.String("trade_id", trade.ID),
		zap.String("symbol", symbol),
		zap.String("side", string(side)),
		zap.Float64("amount", amount),
		zap.Float64("price", price))
	return trade, nil
}

// CloseTrade settles an active trade at exitPrice and credits the notional
// plus pnl back to the account. Settlement is floored at zero so the balance
// invariant holds even on a total loss.
func (s *LedgerService) CloseTrade(ctx context.Context, address, tradeID string, exitPrice float64) (models.Trade, error) {
	if exitPrice <= 0 {
		return models.Trade{}, xe.ErrInvalidParams
	}

	var trade models.Trade
	err := s.Transaction(ctx, func(ctx context.Context) error {
		var err error
		trade, err = s.tradeRepo.FindById(ctx, tradeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return xe.ErrTradeNotActive
			}
			return err
		}
		if trade.Address != address {
			return xe.ErrPermissionDenied
		}
		if !trade.IsActive() {
			return xe.ErrTradeNotActive
		}

		pnl := trade.CalculatePnl(exitPrice)
		settlement := trade.Amount*trade.EntryPrice + pnl
		if settlement < 0 {
			settlement = 0
		}

		account, err := s.accountRepo.FindOrCreate(ctx, address)
		if err != nil {
			return err
		}
		account.Balance += settlement
		if err := s.accountRepo.Save(ctx, &account); err != nil {
			return err
		}

		now := time.Now()
		trade.ExitPrice = exitPrice
		trade.Pnl = pnl
		trade.Status = models.TradeStatusClosed
		trade.ClosedAt = &now
		return s.tradeRepo.Save(ctx, &trade)
	})
	if err != nil {
		return models.Trade{}, err
	}

	s.logger.Info("trade closed",
		zap.String("address", address),
		zap.String("trade_id", trade.ID),
		zap.Float64("exit_price", exitPrice),
		zap.Float64("pnl", trade.Pnl))
	return trade, nil
}

// OpenPositionParams are the inputs of OpenPosition.
type OpenPositionParams struct {
	Address    string
	Symbol     string
	Side       exchange.PositionSide
	Amount     float64
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	Reason     string
}

// OpenPosition opens a position and reserves its margin. An address can hold
// at most one active position per symbol.
func (s *LedgerService) OpenPosition(ctx context.Context, params OpenPositionParams) (models.Position, error) {
	if params.Amount <= 0 || params.EntryPrice <= 0 || !params.Side.Valid() {
		return models.Position{}, xe.ErrInvalidParams
	}

	margin := params.Amount * params.EntryPrice
	var position models.Position

	err := s.Transaction(ctx, func(ctx context.Context) error {
		conf, err := s.getBotConfig(ctx, params.Address)
		if err != nil {
			return err
		}
		if conf.MaxPositionSize > 0 && margin > conf.MaxPositionSize {
			return xe.ErrMaxPositionSize
		}
		if err := s.checkDailyLimit(ctx, params.Address, conf); err != nil {
			return err
		}

		_, err = s.positionRepo.FindActiveBySymbol(ctx, params.Address, params.Symbol)
		if err == nil {
			return xe.ErrPositionExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		account, err := s.accountRepo.FindOrCreate(ctx, params.Address)
		if err != nil {
			return err
		}
		if account.Balance < margin {
			return xe.ErrInsufficientBalance
		}
		account.Balance -= margin
		if err := s.accountRepo.Save(ctx, &account); err != nil {
			return err
		}

		position = models.Position{
			ID:         ulid.Make().String(),
			Address:    params.Address,
			Symbol:     params.Symbol,
			Side:       string(params.Side),
			Amount:     params.Amount,
			EntryPrice: params.EntryPrice,
			StopLoss:   params.StopLoss,
			TakeProfit: params.TakeProfit,
			Reason:     params.Reason,
			Active:     true,
			OpenedAt:   time.Now(),
		}
		return s.positionRepo.Create(ctx, &position)
	})
	if err != nil {
		return models.Position{}, err
	}

	s.logger.Info("position opened",
		zap.String("address", params.Address),
		zap.String("position_id", position.ID),
		zap.String("symbol", params.Symbol),
		zap.String("side", string(params.Side)),
		zap.Float64("margin", margin))
	return position, nil
}

// ClosePosition settles an active position at exitPrice. The margin plus pnl
// is credited back, floored at zero. Closing twice fails.
func (s *LedgerService) ClosePosition(ctx context.Context, address, positionID string, exitPrice float64) (models.Position, error) {
	if exitPrice <= 0 {
		return models.Position{}, xe.ErrInvalidParams
	}

	var position models.Position
	err := s.Transaction(ctx, func(ctx context.Context) error {
		var err error
		position, err = s.positionRepo.FindById(ctx, positionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return xe.ErrPositionNotActive
			}
			return err
		}
		if position.Address != address {
			return xe.ErrPermissionDenied
		}
		if !position.Active {
			return xe.ErrPositionNotActive
		}

		pnl := position.CalculatePnl(exitPrice)
		settlement := position.Margin() + pnl
		if settlement < 0 {
			settlement = 0
		}

		account, err := s.accountRepo.FindOrCreate(ctx, address)
		if err != nil {
			return err
		}
		account.Balance += settlement
		if err := s.accountRepo.Save(ctx, &account); err != nil {
			return err
		}

		now := time.Now()
		position.ExitPrice = exitPrice
		position.Pnl = pnl
		position.Active = false
		position.ClosedAt = &now
		return s.positionRepo.Save(ctx, &position)
	})
	if err != nil {
		return models.Position{}, err
	}

	s.logger.Info("position closed",
		zap.String("address", address),
		zap.String("position_id", position.ID),
		zap.Float64("exit_price", exitPrice),
		zap.Float64("pnl", position.Pnl))
	return position, nil
}

// ConfigureBotSettings stores the per-address bot settings.
func (s *LedgerService) ConfigureBotSettings(ctx context.Context, address string, maxPositionSize float64, dailyTradeLimit int, minConfidence float64, active bool) (models.BotConfig, error) {
	if maxPositionSize < 0 || dailyTradeLimit < 0 || minConfidence < 0 || minConfidence > 100 {
		return models.BotConfig{}, xe.ErrInvalidParams
	}

	conf := models.BotConfig{
		Address:         address,
		MaxPositionSize: maxPositionSize,
		DailyTradeLimit: dailyTradeLimit,
		MinConfidence:   minConfidence,
		Active:          active,
	}
	err := s.Transaction(ctx, func(ctx context.Context) error {
		existing, err := s.botConfigRepo.FindById(ctx, address)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return s.botConfigRepo.Create(ctx, &conf)
			}
			return err
		}
		conf.CreatedAt = existing.CreatedAt
		return s.botConfigRepo.Save(ctx, &conf)
	})
	if err != nil {
		return models.BotConfig{}, err
	}

	s.logger.Info("bot settings configured",
		zap.String("address", address),
		zap.Float64("max_position_size", maxPositionSize),
		zap.Int("daily_trade_limit", dailyTradeLimit),
		zap.Float64("min_confidence", minConfidence),
		zap.Bool("active", active))
	return conf, nil
}

// GetBotSettings returns the stored bot settings of an address.
func (s *LedgerService) GetBotSettings(ctx context.Context, address string) (models.BotConfig, error) {
	return s.getBotConfig(ctx, address)
}

// GetTrades returns the trades of an address, newest first.
func (s *LedgerService) GetTrades(ctx context.Context, address string, limit int) ([]models.Trade, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.tradeRepo.FindByAddress(ctx, address, limit)
}

// GetPositions returns the positions of an address, newest first.
func (s *LedgerService) GetPositions(ctx context.Context, address string, activeOnly bool) ([]models.Position, error) {
	if activeOnly {
		return s.positionRepo.FindActiveByAddress(ctx, address)
	}
	return s.positionRepo.FindByAddress(ctx, address, 200)
}

// AccountMetrics summarises the trading performance of an address.
type AccountMetrics struct {
	Address       string  `json:"address"`
	Balance       float64 `json:"balance"`
	Equity        float64 `json:"equity"`
	OpenPositions int     `json:"open_positions"`
	TotalTrades   int     `json:"total_trades"`
	ClosedTrades  int     `json:"closed_trades"`
	WinningTrades int     `json:"winning_trades"`
	WinRate       float64 `json:"win_rate"` // 0-100 over closed trades
	TotalPnl      float64 `json:"total_pnl"`
	SharpeRatio   float64 `json:"sharpe_ratio"` // over closed trade pnl
}

// GetMetrics computes the performance summary of an address.
func (s *LedgerService) GetMetrics(ctx context.Context, address string) (AccountMetrics, error) {
	account, err := s.accountRepo.FindOrCreate(ctx, address)
	if err != nil {
		return AccountMetrics{}, err
	}

	trades, err := s.tradeRepo.FindByAddress(ctx, address, 0)
	if err != nil {
		return AccountMetrics{}, err
	}
	openPositions, err := s.positionRepo.FindActiveByAddress(ctx, address)
	if err != nil {
		return AccountMetrics{}, err
	}

	metrics := AccountMetrics{
		Address:       address,
		Balance:       account.Balance,
		TotalTrades:   len(trades),
		OpenPositions: len(openPositions),
	}

	equity := account.Balance
	for _, p := range openPositions {
		equity += p.Margin()
	}
	metrics.Equity = equity

	var pnls []float64
	for _, t := range trades {
		if t.Status != models.TradeStatusClosed {
			continue
		}
		metrics.ClosedTrades++
		metrics.TotalPnl += t.Pnl
		pnls = append(pnls, t.Pnl)
		if t.Pnl > 0 {
			metrics.WinningTrades++
		}
	}
	if metrics.ClosedTrades > 0 {
		metrics.WinRate = float64(metrics.WinningTrades) / float64(metrics.ClosedTrades) * 100
	}
	metrics.SharpeRatio = sharpeRatio(pnls)

	return metrics, nil
}

// sharpeRatio is mean/stddev of the pnl series, zero when undefined.
func sharpeRatio(pnls []float64) float64 {
	if len(pnls) < 2 {
		return 0
	}
	mean := 0.0
	for _, p := range pnls {
		mean += p
	}
	mean /= float64(len(pnls))

	variance := 0.0
	for _, p := range pnls {
		variance += (p - mean) * (p - mean)
	}
	variance /= float64(len(pnls) - 1)

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return mean / std
}

// RecordSnapshot writes one equity-curve point for an address.
func (s *LedgerService) RecordSnapshot(ctx context.Context, address string, iteration int) (models.AccountSnapshot, error) {
	metrics, err := s.GetMetrics(ctx, address)
	if err != nil {
		return models.AccountSnapshot{}, err
	}

	snapshot := models.AccountSnapshot{
		ID:            ulid.Make().String(),
		Address:       address,
		Balance:       metrics.Balance,
		Equity:        metrics.Equity,
		OpenPositions: metrics.OpenPositions,
		Iteration:     iteration,
		RecordedAt:    time.Now(),
	}
	if err := s.snapshotRepo.Create(ctx, &snapshot); err != nil {
		return models.AccountSnapshot{}, err
	}
	return snapshot, nil
}

// EquityCurve returns the recorded snapshots of an address in chronological
// order.
func (s *LedgerService) EquityCurve(ctx context.Context, address string, limit int) ([]models.AccountSnapshot, error) {
	if limit <= 0 || limit > 2000 {
		limit = 500
	}
	return s.snapshotRepo.FindByAddress(ctx, address, limit)
}

// ActivePositions returns every open position across all addresses, for the
// protective stop sweep.
func (s *LedgerService) ActivePositions(ctx context.Context) ([]models.Position, error) {
	return s.positionRepo.FindAllActive(ctx)
}

package service

import (
	"context"
	"fmt"

	"github.com/tradekit/lumen/internal/models"
	"github.com/tradekit/lumen/internal/xe"
	"go.uber.org/zap"
)

// RiskService gates automated trades and sweeps protective stops.
type RiskService struct {
	ledgerService *LedgerService
	logger        *zap.Logger
}

func NewRiskService(ledgerService *LedgerService, logger *zap.Logger) *RiskService {
	return &RiskService{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// CanExecute checks whether the bot may act on an evaluation for the given
// address. Returns nil when the trade may proceed.
func (s *RiskService) CanExecute(ctx context.Context, address string, eval *Evaluation) error {
	conf, err := s.ledgerService.GetBotSettings(ctx, address)
	if err != nil {
		return err
	}
	if !conf.Active {
		return xe.ErrBotDisabled
	}
	if eval.Confidence < conf.MinConfidence {
		return xe.ErrConfidenceTooLow
	}
	return nil
}

// PositionSize converts an evaluation into a trade amount, capped by the
// configured max position size and the free balance. Higher confidence risks
// a larger share of the balance.
func (s *RiskService) PositionSize(ctx context.Context, address string, eval *Evaluation) (float64, error) {
	balance, err := s.ledgerService.GetBalance(ctx, address)
	if err != nil {
		return 0, err
	}
	if balance <= 0 || eval.Price <= 0 {
		return 0, xe.ErrInsufficientBalance
	}

	conf, err := s.ledgerService.GetBotSettings(ctx, address)
	if err != nil {
		return 0, err
	}

	// Risk between 5% and 20% of the balance, scaled by confidence.
	fraction := 0.05 + 0.15*eval.Confidence/100
	notional := balance * fraction
	if conf.MaxPositionSize > 0 && notional > conf.MaxPositionSize {
		notional = conf.MaxPositionSize
	}
	if notional > balance {
		notional = balance
	}

	return notional / eval.Price, nil
}

// StopPrices derives protective stop levels from the entry price and ATR.
func (s *RiskService) StopPrices(eval *Evaluation, ind *TimeframeIndicators) (stopLoss, takeProfit float64) {
	atr := ind.ATR14
	if atr <= 0 {
		atr = eval.Price * 0.02
	}

	if eval.Action == models.SignalActionSell {
		stopLoss = eval.Price + 2*atr
		takeProfit = eval.Price - 3*atr
		return
	}
	stopLoss = eval.Price - 2*atr
	takeProfit = eval.Price + 3*atr
	return
}

// SweepProtectiveStops closes every open position whose stop-loss or
// take-profit is crossed at the current price. Returns the closed positions.
func (s *RiskService) SweepProtectiveStops(ctx context.Context, prices map[string]float64) ([]models.Position, error) {
	positions, err := s.ledgerService.ActivePositions(ctx)
	if err != nil {
		return nil, err
	}

	var closed []models.Position
	for _, position := range positions {
		price, ok := prices[position.Symbol]
		if !ok || price <= 0 {
			continue
		}

		hit, trigger := position.StopHit(price)
		if !hit {
			continue
		}

		s.logger.Info("protective stop hit",
			zap.String("position_id", position.ID),
			zap.String("symbol", position.Symbol),
			zap.String("trigger", trigger),
			zap.Float64("price", price))

		result, err := s.ledgerService.ClosePosition(ctx, position.Address, position.ID, price)
		if err != nil {
			s.logger.Error("failed to close stopped position",
				zap.String("position_id", position.ID), zap.Error(err))
			continue
		}
		result.Reason = fmt.Sprintf("%s hit at %.2f", trigger, price)
		closed = append(closed, result)
	}

	return closed, nil
}

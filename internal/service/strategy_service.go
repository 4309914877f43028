package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/tradekit/lumen/internal/models"
	"github.com/tradekit/lumen/internal/repo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Component weights. They sum to 1 so the total score stays in [-2, 2] when
// each component scores in [-2, 2].
const (
	weightTrend     = 0.30
	weightRSI       = 0.25
	weightMACD      = 0.25
	weightBollinger = 0.20
)

// Score thresholds for turning the weighted sum into an action.
const (
	buyThreshold  = 0.5
	sellThreshold = -0.5
)

// StrategyService scores indicator sets into trade signals. The scoring is
// closed-form arithmetic over the indicators, no external calls.
type StrategyService struct {
	logger     *zap.Logger
	signalRepo *repo.SignalRepo
}

func NewStrategyService(logger *zap.Logger, db *gorm.DB) *StrategyService {
	return &StrategyService{
		logger:     logger,
		signalRepo: repo.NewSignalRepo(db),
	}
}

// ComponentScore is one indicator's contribution to the total.
type ComponentScore struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`  // raw, in [-2, 2]
	Weight float64 `json:"weight"` //
	Reason string  `json:"reason"`
}

// Evaluation is the scored result for one symbol.
type Evaluation struct {
	Symbol     string              `json:"symbol"`
	Action     models.SignalAction `json:"action"`
	Score      float64             `json:"score"`
	Confidence float64             `json:"confidence"` // 0-100
	Price      float64             `json:"price"`
	Components []ComponentScore    `json:"components"`
	Reasons    []string            `json:"reasons"`
}

// Evaluate scores a symbol's indicators into a signal.
func (s *StrategyService) Evaluate(symbol string, ind *TimeframeIndicators) *Evaluation {
	if ind == nil {
		return nil
	}

	components := []ComponentScore{
		s.scoreTrend(ind),
		s.scoreRSI(ind),
		s.scoreMACD(ind),
		s.scoreBollinger(ind),
	}

	total := 0.0
	reasons := make([]string, 0, len(components))
	for _, c := range components {
		total += c.Score * c.Weight
		if c.Reason != "" {
			reasons = append(reasons, c.Reason)
		}
	}

	action := models.SignalActionHold
	if total >= buyThreshold {
		action = models.SignalActionBuy
	} else if total <= sellThreshold {
		action = models.SignalActionSell
	}

	confidence := total / 2 * 100
	if confidence < 0 {
		confidence = -confidence
	}
	if confidence > 100 {
		confidence = 100
	}

	return &Evaluation{
		Symbol:     symbol,
		Action:     action,
		Score:      total,
		Confidence: confidence,
		Price:      ind.Price,
		Components: components,
		Reasons:    reasons,
	}
}

// scoreTrend compares price against the short and long moving averages.
func (s *StrategyService) scoreTrend(ind *TimeframeIndicators) ComponentScore {
	c := ComponentScore{Name: "trend", Weight: weightTrend}

	above20 := ind.Price > ind.SMA20
	above50 := ind.Price > ind.SMA50
	goldenCross := ind.SMA20 > ind.SMA50

	switch {
	case above20 && above50 && goldenCross:
		c.Score = 2
		c.Reason = "price above SMA20 and SMA50 with SMA20 leading"
	case above20 && above50:
		c.Score = 1
		c.Reason = "price above both moving averages"
	case !above20 && !above50 && !goldenCross:
		c.Score = -2
		c.Reason = "price below SMA20 and SMA50 with SMA20 trailing"
	case !above20 && !above50:
		c.Score = -1
		c.Reason = "price below both moving averages"
	default:
		c.Score = 0
	}
	return c
}

// scoreRSI rewards oversold readings and penalises overbought ones.
func (s *StrategyService) scoreRSI(ind *TimeframeIndicators) ComponentScore {
	c := ComponentScore{Name: "rsi", Weight: weightRSI}

	rsi := ind.RSI14
	switch {
	case rsi <= 20:
		c.Score = 2
		c.Reason = fmt.Sprintf("RSI14 deeply oversold (%.1f)", rsi)
	case rsi <= 30:
		c.Score = 1
		c.Reason = fmt.Sprintf("RSI14 oversold (%.1f)", rsi)
	case rsi >= 80:
		c.Score = -2
		c.Reason = fmt.Sprintf("RSI14 deeply overbought (%.1f)", rsi)
	case rsi >= 70:
		c.Score = -1
		c.Reason = fmt.Sprintf("RSI14 overbought (%.1f)", rsi)
	default:
		c.Score = 0
	}
	return c
}

// scoreMACD looks at the MACD line relative to its signal line and the
// histogram sign.
func (s *StrategyService) scoreMACD(ind *TimeframeIndicators) ComponentScore {
	c := ComponentScore{Name: "macd", Weight: weightMACD}

	aboveSignal := ind.MACD > ind.MACDSignal
	histPositive := ind.MACDHist > 0

	switch {
	case aboveSignal && histPositive && ind.MACD > 0:
		c.Score = 2
		c.Reason = "MACD above signal line in positive territory"
	case aboveSignal && histPositive:
		c.Score = 1
		c.Reason = "MACD above signal line"
	case !aboveSignal && !histPositive && ind.MACD < 0:
		c.Score = -2
		c.Reason = "MACD below signal line in negative territory"
	case !aboveSignal && !histPositive:
		c.Score = -1
		c.Reason = "MACD below signal line"
	default:
		c.Score = 0
	}
	return c
}

// scoreBollinger treats a close beyond the bands as mean-reversion pressure.
func (s *StrategyService) scoreBollinger(ind *TimeframeIndicators) ComponentScore {
	c := ComponentScore{Name: "bollinger", Weight: weightBollinger}

	switch {
	case ind.Price <= ind.BBLower:
		c.Score = 2
		c.Reason = "price at or below the lower Bollinger band"
	case ind.Price >= ind.BBUpper:
		c.Score = -2
		c.Reason = "price at or above the upper Bollinger band"
	case ind.Price < ind.BBMiddle:
		c.Score = 0.5
	case ind.Price > ind.BBMiddle:
		c.Score = -0.5
	default:
		c.Score = 0
	}
	return c
}

// SaveSignal persists an evaluation.
func (s *StrategyService) SaveSignal(ctx context.Context, eval *Evaluation, iteration int) (*models.Signal, error) {
	components, err := json.Marshal(eval.Components)
	if err != nil {
		return nil, err
	}

	signal := models.Signal{
		ID:         ulid.Make().String(),
		Symbol:     eval.Symbol,
		Action:     eval.Action,
		Score:      eval.Score,
		Confidence: eval.Confidence,
		Price:      eval.Price,
		Reasons:    datatypes.NewJSONSlice(eval.Reasons),
		Components: components,
		Iteration:  iteration,
	}
	if err := s.signalRepo.Create(ctx, &signal); err != nil {
		return nil, err
	}

	s.logger.Info("signal saved",
		zap.String("symbol", eval.Symbol),
		zap.String("action", string(eval.Action)),
		zap.Float64("score", eval.Score),
		zap.Float64("confidence", eval.Confidence),
	)
	return &signal, nil
}

// RecentSignals returns the latest persisted signals, optionally filtered by
// symbol.
func (s *StrategyService) RecentSignals(ctx context.Context, symbol string, limit int) ([]models.Signal, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if symbol != "" {
		return s.signalRepo.FindRecentBySymbol(ctx, symbol, limit)
	}
	return s.signalRepo.FindRecent(ctx, limit)
}

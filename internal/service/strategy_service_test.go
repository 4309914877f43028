package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tradekit/lumen/internal/models"
)

func TestEvaluateNilIndicators(t *testing.T) {
	s := &StrategyService{}
	assert.Nil(t, s.Evaluate("BTCUSDT", nil))
}

func TestEvaluateActions(t *testing.T) {
	s := &StrategyService{}

	tests := []struct {
		name       string
		indicators TimeframeIndicators
		action     models.SignalAction
	}{
		{
			name: "strong buy",
			indicators: TimeframeIndicators{
				Price:      110,
				SMA20:      105,
				SMA50:      100,
				RSI14:      25,
				MACD:       1.0,
				MACDSignal: 0.5,
				MACDHist:   0.5,
				BBUpper:    125,
				BBMiddle:   118,
				BBLower:    111,
			},
			action: models.SignalActionBuy,
		},
		{
			name: "strong sell",
			indicators: TimeframeIndicators{
				Price:      90,
				SMA20:      95,
				SMA50:      100,
				RSI14:      78,
				MACD:       -1.0,
				MACDSignal: -0.5,
				MACDHist:   -0.5,
				BBUpper:    89,
				BBMiddle:   84,
				BBLower:    79,
			},
			action: models.SignalActionSell,
		},
		{
			name: "neutral hold",
			indicators: TimeframeIndicators{
				Price:      100,
				SMA20:      99,
				SMA50:      101,
				RSI14:      50,
				MACD:       0.1,
				MACDSignal: 0.2,
				MACDHist:   -0.1,
				BBUpper:    105,
				BBMiddle:   100,
				BBLower:    95,
			},
			action: models.SignalActionHold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := s.Evaluate("BTCUSDT", &tt.indicators)
			assert.NotNil(t, eval)
			assert.Equal(t, tt.action, eval.Action)
			assert.Equal(t, "BTCUSDT", eval.Symbol)
			assert.Len(t, eval.Components, 4)
			assert.GreaterOrEqual(t, eval.Confidence, 0.0)
			assert.LessOrEqual(t, eval.Confidence, 100.0)
		})
	}
}

func TestEvaluateScoreBounds(t *testing.T) {
	s := &StrategyService{}

	// Everything maximally bullish keeps the score within [-2, 2].
	eval := s.Evaluate("ETHUSDT", &TimeframeIndicators{
		Price:      200,
		SMA20:      180,
		SMA50:      160,
		RSI14:      10,
		MACD:       2,
		MACDSignal: 1,
		MACDHist:   1,
		BBUpper:    260,
		BBMiddle:   230,
		BBLower:    210, // price below the lower band
	})
	assert.LessOrEqual(t, eval.Score, 2.0)
	assert.Equal(t, models.SignalActionBuy, eval.Action)
	assert.Equal(t, 100.0, eval.Confidence)
}

func TestEvaluateConfidenceScales(t *testing.T) {
	s := &StrategyService{}

	weak := s.Evaluate("BTCUSDT", &TimeframeIndicators{
		Price: 102, SMA20: 101, SMA50: 100,
		RSI14: 50, MACD: 0.2, MACDSignal: 0.1, MACDHist: 0.1,
		BBUpper: 110, BBMiddle: 103, BBLower: 96,
	})
	strong := s.Evaluate("BTCUSDT", &TimeframeIndicators{
		Price: 110, SMA20: 105, SMA50: 100,
		RSI14: 15, MACD: 1, MACDSignal: 0.5, MACDHist: 0.5,
		BBUpper: 125, BBMiddle: 118, BBLower: 111,
	})

	assert.Less(t, weak.Confidence, strong.Confidence)
}

func TestComponentReasons(t *testing.T) {
	s := &StrategyService{}

	eval := s.Evaluate("BTCUSDT", &TimeframeIndicators{
		Price: 110, SMA20: 105, SMA50: 100,
		RSI14: 25, MACD: 1, MACDSignal: 0.5, MACDHist: 0.5,
		BBUpper: 125, BBMiddle: 118, BBLower: 111,
	})

	assert.NotEmpty(t, eval.Reasons)
	names := make(map[string]bool)
	for _, c := range eval.Components {
		names[c.Name] = true
	}
	assert.True(t, names["trend"])
	assert.True(t, names["rsi"])
	assert.True(t, names["macd"])
	assert.True(t, names["bollinger"])
}

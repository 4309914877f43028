package service

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tradekit/lumen/pkg/exchange"
)

func syntheticKlines(n int, price func(i int) float64) []*exchange.Kline {
	klines := make([]*exchange.Kline, n)
	base := time.Now().Add(-time.Duration(n) * time.Hour)
	for i := 0; i < n; i++ {
		p := price(i)
		klines[i] = &exchange.Kline{
			OpenTime:  base.Add(time.Duration(i) * time.Hour),
			Open:      p,
			High:      p * 1.01,
			Low:       p * 0.99,
			Close:     p,
			Volume:    100 + float64(i%10),
			CloseTime: base.Add(time.Duration(i+1) * time.Hour),
		}
	}
	return klines
}

func TestCalculateIndicatorsRequiresHistory(t *testing.T) {
	s := NewIndicatorService()

	short := syntheticKlines(30, func(i int) float64 { return 100 })
	assert.Nil(t, s.CalculateIndicators(short))
	assert.Nil(t, s.CalculateTimeSeries(short))
}

func TestCalculateIndicatorsUptrend(t *testing.T) {
	s := NewIndicatorService()

	klines := syntheticKlines(120, func(i int) float64 { return 100 + float64(i) })
	ind := s.CalculateIndicators(klines)

	assert.NotNil(t, ind)
	assert.Equal(t, 219.0, ind.Price)

	// Short averages lead long ones in an uptrend.
	assert.Greater(t, ind.SMA20, ind.SMA50)
	assert.Greater(t, ind.EMA20, ind.EMA50)
	assert.Greater(t, ind.MACD, 0.0)
	assert.InDelta(t, 100, ind.RSI14, 1e-6)

	assert.Greater(t, ind.BBUpper, ind.BBMiddle)
	assert.Greater(t, ind.BBMiddle, ind.BBLower)
	assert.Greater(t, ind.ATR14, 0.0)
	assert.Greater(t, ind.AvgVolume, 0.0)

	issues := s.ValidateIndicators(ind)
	assert.Empty(t, issues)
}

func TestCalculateTimeSeriesLength(t *testing.T) {
	s := NewIndicatorService()

	klines := syntheticKlines(120, func(i int) float64 {
		return 100 + 10*math.Sin(float64(i)/5)
	})
	series := s.CalculateTimeSeries(klines)

	assert.NotNil(t, series)
	assert.Len(t, series.Prices, 10)
	assert.Len(t, series.SMA20Series, 10)
	assert.Len(t, series.MACDSeries, 10)
	assert.Len(t, series.RSI14Series, 10)
}

func TestValidateIndicatorsFlagsBrokenData(t *testing.T) {
	s := NewIndicatorService()

	issues := s.ValidateIndicators(&TimeframeIndicators{
		Price:   -1,
		SMA20:   0,
		SMA50:   100,
		RSI14:   140,
		BBUpper: 90,
		BBLower: 100,
		Volume:  -5,
	})

	assert.Contains(t, issues, "invalid price")
	assert.Contains(t, issues, "invalid SMA20")
	assert.Contains(t, issues, "RSI14 out of range")
	assert.Contains(t, issues, "Bollinger bands inverted")
	assert.Contains(t, issues, "negative volume")
}

func TestDetectMultiTimeframeConfluence(t *testing.T) {
	s := NewIndicatorService()

	bullish := &TimeframeIndicators{SMA20: 110, SMA50: 100, MACD: 1}
	bearish := &TimeframeIndicators{SMA20: 90, SMA50: 100, MACD: -1}

	direction, hits := s.DetectMultiTimeframeConfluence(map[string]*TimeframeIndicators{
		"5m": bullish, "15m": bullish, "1h": bullish, "4h": bearish,
	})
	assert.Equal(t, "bullish", direction)
	assert.Equal(t, 3, hits)

	direction, hits = s.DetectMultiTimeframeConfluence(map[string]*TimeframeIndicators{
		"5m": bullish, "15m": bearish, "1h": bullish, "4h": bearish,
	})
	assert.Equal(t, "neutral", direction)
	assert.Equal(t, 0, hits)

	direction, _ = s.DetectMultiTimeframeConfluence(map[string]*TimeframeIndicators{
		"5m": bearish, "15m": bearish, "1h": bearish,
	})
	assert.Equal(t, "bearish", direction)
}

package ta

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func constantSeries(value float64, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = value
	}
	return s
}

func risingSeries(start, step float64, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = start + step*float64(i)
	}
	return s
}

func TestSMAConstant(t *testing.T) {
	s := SMA(constantSeries(100, 60), 20)
	assert.Len(t, s, 60)
	assert.InDelta(t, 100, Last(s, 0), 1e-9)
}

func TestSMAvsEMARising(t *testing.T) {
	closes := risingSeries(100, 1, 60)
	sma := SMA(closes, 20)
	ema := EMA(closes, 20)

	// In a steady uptrend the EMA tracks price closer than the SMA.
	price := Last(closes, 0)
	assert.Less(t, Last(sma, 0), price)
	assert.Greater(t, Last(ema, 0), Last(sma, 0))
}

func TestRSIBounds(t *testing.T) {
	up := RSI(risingSeries(100, 1, 60), 14)
	assert.InDelta(t, 100, Last(up, 0), 1e-6)

	down := RSI(risingSeries(200, -1, 60), 14)
	assert.InDelta(t, 0, Last(down, 0), 1e-6)
}

func TestMACDAlignment(t *testing.T) {
	closes := risingSeries(100, 0.5, 120)
	macd, signal, hist := MACD(closes, 12, 26, 9)

	assert.Len(t, macd, len(closes))
	assert.Len(t, signal, len(closes))
	assert.Len(t, hist, len(closes))

	// Histogram is macd minus signal.
	assert.InDelta(t, Last(macd, 0)-Last(signal, 0), Last(hist, 0), 1e-9)

	// A steady uptrend keeps MACD positive.
	assert.Greater(t, Last(macd, 0), 0.0)
}

func TestBBandsOrdering(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 5*math.Sin(float64(i)/3)
	}

	upper, middle, lower := BBands(closes, 20, 2)
	assert.Greater(t, Last(upper, 0), Last(middle, 0))
	assert.Greater(t, Last(middle, 0), Last(lower, 0))

	// The bands are symmetric around the SMA basis.
	assert.InDelta(t, Last(upper, 0)-Last(middle, 0), Last(middle, 0)-Last(lower, 0), 1e-9)
}

func TestATRPositive(t *testing.T) {
	n := 60
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = 100 + float64(i%5)
		highs[i] = closes[i] + 2
		lows[i] = closes[i] - 2
	}

	atr := ATR(highs, lows, closes, 14)
	assert.Greater(t, Last(atr, 0), 0.0)
}

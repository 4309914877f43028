package service

import (
	"github.com/tradekit/lumen/pkg/exchange"
	"github.com/tradekit/lumen/pkg/ta"
)

// IndicatorService computes technical indicators from kline data.
type IndicatorService struct{}

func NewIndicatorService() *IndicatorService {
	return &IndicatorService{}
}

// TimeframeIndicators is the indicator set for a single timeframe.
type TimeframeIndicators struct {
	Timeframe  string  `json:"timeframe"` // 5m/15m/1h/4h
	Price      float64 `json:"price"`
	SMA20      float64 `json:"sma20"`
	SMA50      float64 `json:"sma50"`
	EMA20      float64 `json:"ema20"`
	EMA50      float64 `json:"ema50"`
	MACD       float64 `json:"macd"`
	MACDSignal float64 `json:"macd_signal"`
	MACDHist   float64 `json:"macd_hist"`
	RSI7       float64 `json:"rsi7"`
	RSI14      float64 `json:"rsi14"`
	BBUpper    float64 `json:"bb_upper"`
	BBMiddle   float64 `json:"bb_middle"`
	BBLower    float64 `json:"bb_lower"`
	ATR14      float64 `json:"atr14"`
	Volume     float64 `json:"volume"`
	AvgVolume  float64 `json:"avg_volume"`
}

// TimeSeriesData holds the most recent 10 points of selected series, for the
// dashboard charts.
type TimeSeriesData struct {
	Prices      []float64 `json:"prices"`
	SMA20Series []float64 `json:"sma20_series"`
	MACDSeries  []float64 `json:"macd_series"`
	RSI14Series []float64 `json:"rsi14_series"`
}

// CalculateIndicators computes the full indicator set. Returns nil when there
// is not enough history (fewer than 50 klines).
func (s *IndicatorService) CalculateIndicators(klines []*exchange.Kline) *TimeframeIndicators {
	if len(klines) < 50 {
		return nil
	}

	closes := make([]float64, len(klines))
	highs := make([]float64, len(klines))
	lows := make([]float64, len(klines))
	volumes := make([]float64, len(klines))

	for i, k := range klines {
		closes[i] = k.Close
		highs[i] = k.High
		lows[i] = k.Low
		volumes[i] = k.Volume
	}

	sma20 := ta.SMA(closes, 20)
	sma50 := ta.SMA(closes, 50)
	ema20 := ta.EMA(closes, 20)
	ema50 := ta.EMA(closes, 50)

	macd, signal, hist := ta.MACD(closes, 12, 26, 9)

	rsi7 := ta.RSI(closes, 7)
	rsi14 := ta.RSI(closes, 14)

	bbUpper, bbMiddle, bbLower := ta.BBands(closes, 20, 2)

	atr14 := ta.ATR(highs, lows, closes, 14)

	avgVolume := 0.0
	for _, v := range volumes {
		avgVolume += v
	}
	avgVolume /= float64(len(volumes))

	lastIdx := len(closes) - 1

	return &TimeframeIndicators{
		Price:      closes[lastIdx],
		SMA20:      ta.Last(sma20, 0),
		SMA50:      ta.Last(sma50, 0),
		EMA20:      ta.Last(ema20, 0),
		EMA50:      ta.Last(ema50, 0),
		MACD:       ta.Last(macd, 0),
		MACDSignal: ta.Last(signal, 0),
		MACDHist:   ta.Last(hist, 0),
		RSI7:       ta.Last(rsi7, 0),
		RSI14:      ta.Last(rsi14, 0),
		BBUpper:    ta.Last(bbUpper, 0),
		BBMiddle:   ta.Last(bbMiddle, 0),
		BBLower:    ta.Last(bbLower, 0),
		ATR14:      ta.Last(atr14, 0),
		Volume:     volumes[lastIdx],
		AvgVolume:  avgVolume,
	}
}

// CalculateTimeSeries computes the chart series (most recent 10 points).
func (s *IndicatorService) CalculateTimeSeries(klines []*exchange.Kline) *TimeSeriesData {
	if len(klines) < 50 {
		return nil
	}

	closes := make([]float64, len(klines))
	for i, k := range klines {
		closes[i] = k.Close
	}

	sma20Series := ta.SMA(closes, 20)
	macdSeries, _, _ := ta.MACD(closes, 12, 26, 9)
	rsi14Series := ta.RSI(closes, 14)

	size := 10
	if len(closes) < size {
		size = len(closes)
	}

	return &TimeSeriesData{
		Prices:      ta.LastValues(closes, size),
		SMA20Series: ta.LastValues(sma20Series, size),
		MACDSeries:  ta.LastValues(macdSeries, size),
		RSI14Series: ta.LastValues(rsi14Series, size),
	}
}

// ValidateIndicators checks the indicator set for obviously broken values.
func (s *IndicatorService) ValidateIndicators(indicators *TimeframeIndicators) []string {
	issues := make([]string, 0)

	if indicators.Price <= 0 {
		issues = append(issues, "invalid price")
	}

	if indicators.SMA20 <= 0 {
		issues = append(issues, "invalid SMA20")
	}
	if indicators.SMA50 <= 0 {
		issues = append(issues, "invalid SMA50")
	}

	if indicators.RSI14 < 0 || indicators.RSI14 > 100 {
		issues = append(issues, "RSI14 out of range")
	}

	if indicators.BBUpper < indicators.BBLower {
		issues = append(issues, "Bollinger bands inverted")
	}

	if indicators.Volume < 0 {
		issues = append(issues, "negative volume")
	}

	return issues
}

// DetectMultiTimeframeConfluence checks whether multiple timeframes agree on
// trend direction. Returns bullish/bearish/neutral and how many timeframes
// agreed.
func (s *IndicatorService) DetectMultiTimeframeConfluence(indicators map[string]*TimeframeIndicators) (string, int) {
	bullishCount := 0
	bearishCount := 0

	for _, ind := range indicators {
		isBullish := ind.SMA20 > ind.SMA50

		// MACD has to confirm the moving-average direction.
		if ind.MACD > 0 {
			if isBullish {
				bullishCount++
			}
		} else {
			if !isBullish {
				bearishCount++
			}
		}
	}

	if bullishCount >= 3 {
		return "bullish", bullishCount
	} else if bearishCount >= 3 {
		return "bearish", bearishCount
	}

	return "neutral", 0
}

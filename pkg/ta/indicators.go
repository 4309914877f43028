package ta

import "github.com/markcheno/go-talib"

// Thin wrappers around go-talib so the rest of the codebase only depends on
// this package. All functions return series aligned with the input; warm-up
// entries are zero.

func SMA(values []float64, period int) []float64 {
	return talib.Sma(values, period)
}

func EMA(values []float64, period int) []float64 {
	return talib.Ema(values, period)
}

func RSI(values []float64, period int) []float64 {
	return talib.Rsi(values, period)
}

// MACD returns the MACD line, signal line and histogram.
func MACD(values []float64, fastPeriod, slowPeriod, signalPeriod int) ([]float64, []float64, []float64) {
	return talib.Macd(values, fastPeriod, slowPeriod, signalPeriod)
}

func ATR(highs, lows, closes []float64, period int) []float64 {
	return talib.Atr(highs, lows, closes, period)
}

// BBands returns the upper, middle and lower Bollinger Bands using an SMA
// basis and a symmetric standard-deviation multiplier.
func BBands(values []float64, period int, nbDev float64) ([]float64, []float64, []float64) {
	return talib.BBands(values, period, nbDev, nbDev, talib.SMA)
}

func StdDev(values []float64, period int, nbDev float64) []float64 {
	return talib.StdDev(values, period, nbDev)
}

package exchange

import "time"

// Kline is one OHLCV candle.
type Kline struct {
	OpenTime  time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	CloseTime time.Time
}

// Ticker24h is the rolling 24h statistics for one symbol.
type Ticker24h struct {
	Symbol             string  `json:"symbol"`
	LastPrice          float64 `json:"last_price"`
	PriceChange        float64 `json:"price_change"`
	PriceChangePercent float64 `json:"price_change_percent"`
	HighPrice          float64 `json:"high_price"`
	LowPrice           float64 `json:"low_price"`
	Volume             float64 `json:"volume"`
	QuoteVolume        float64 `json:"quote_volume"`
}

// PositionSide is the direction of a ledger position or trade.
type PositionSide string

const (
	PositionSideLong  PositionSide = "long"
	PositionSideShort PositionSide = "short"
)

func (s PositionSide) String() string {
	return string(s)
}

// Valid reports whether the side is one of the known directions.
func (s PositionSide) Valid() bool {
	return s == PositionSideLong || s == PositionSideShort
}

package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// IndicatorSnapshot is the computed indicator set for one symbol and
// timeframe at a point in time.
type IndicatorSnapshot struct {
	ID         string  `gorm:"primaryKey;type:varchar(26)" json:"id"`
	Symbol     string  `gorm:"type:varchar(20);not null;index:idx_symbol_timeframe_time" json:"symbol"`
	Timeframe  string  `gorm:"type:varchar(10);not null;index:idx_symbol_timeframe_time" json:"timeframe"` // 5m/15m/1h/4h
	Price      float64 `gorm:"type:decimal(20,8)" json:"price"`
	SMA20      float64 `gorm:"type:decimal(20,8)" json:"sma20"`
	SMA50      float64 `gorm:"type:decimal(20,8)" json:"sma50"`
	EMA20      float64 `gorm:"type:decimal(20,8)" json:"ema20"`
	EMA50      float64 `gorm:"type:decimal(20,8)" json:"ema50"`
	MACD       float64 `gorm:"type:decimal(20,8)" json:"macd"`
	MACDSignal float64 `gorm:"type:decimal(20,8)" json:"macd_signal"`
	MACDHist   float64 `gorm:"type:decimal(20,8)" json:"macd_hist"`
	RSI7       float64 `gorm:"type:decimal(10,4)" json:"rsi7"`
	RSI14      float64 `gorm:"type:decimal(10,4)" json:"rsi14"`
	BBUpper    float64 `gorm:"type:decimal(20,8)" json:"bb_upper"`
	BBMiddle   float64 `gorm:"type:decimal(20,8)" json:"bb_middle"`
	BBLower    float64 `gorm:"type:decimal(20,8)" json:"bb_lower"`
	ATR14      float64 `gorm:"type:decimal(20,8)" json:"atr14"`
	Volume     float64 `gorm:"type:decimal(20,8)" json:"volume"`
	AvgVolume  float64 `gorm:"type:decimal(20,8)" json:"avg_volume"`

	// Short series (most recent 10 points) for the dashboard charts.
	PriceSeries datatypes.JSON `gorm:"type:json" json:"price_series"`
	MACDSeries  datatypes.JSON `gorm:"type:json" json:"macd_series"`
	RSI14Series datatypes.JSON `gorm:"type:json" json:"rsi14_series"`

	CalculatedAt time.Time      `gorm:"not null;index:idx_symbol_timeframe_time" json:"calculated_at"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (IndicatorSnapshot) TableName() string {
	return "indicator_snapshots"
}

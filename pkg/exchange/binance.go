package exchange

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
)

// BinanceClient wraps the Binance spot market-data API. Only public
// endpoints are used; credentials are optional and only raise rate limits.
type BinanceClient struct {
	client *binance.Client
}

// NewBinanceClient creates a Binance spot client.
func NewBinanceClient(apiKey, secretKey, proxyURL string, testnet bool) *BinanceClient {
	var client *binance.Client
	if proxyURL != "" {
		client = binance.NewProxiedClient(apiKey, secretKey, proxyURL)
	} else {
		client = binance.NewClient(apiKey, secretKey)
	}

	if testnet {
		binance.UseTestnet = true
	}

	return &BinanceClient{client: client}
}

// NewBinanceClientWithBaseURL targets a non-default REST endpoint, e.g. a
// regional mirror or a local test server.
func NewBinanceClientWithBaseURL(apiKey, secretKey, baseURL string) *BinanceClient {
	client := binance.NewClient(apiKey, secretKey)
	client.BaseURL = baseURL
	return &BinanceClient{client: client}
}

// GetKlines fetches OHLCV candles for a symbol and interval.
func (b *BinanceClient) GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]*Kline, error) {
	klines, err := b.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get klines: %w", err)
	}

	result := make([]*Kline, 0, len(klines))
	for _, k := range klines {
		open, _ := strconv.ParseFloat(k.Open, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)
		close, _ := strconv.ParseFloat(k.Close, 64)
		volume, _ := strconv.ParseFloat(k.Volume, 64)

		result = append(result, &Kline{
			OpenTime:  time.Unix(k.OpenTime/1000, 0),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    volume,
			CloseTime: time.Unix(k.CloseTime/1000, 0),
		})
	}

	return result, nil
}

// GetCurrentPrice returns the latest traded price for a symbol.
func (b *BinanceClient) GetCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	prices, err := b.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current price: %w", err)
	}

	if len(prices) == 0 {
		return 0, fmt.Errorf("no price data for symbol %s", symbol)
	}

	price, _ := strconv.ParseFloat(prices[0].Price, 64)
	return price, nil
}

// GetTicker24h returns the 24h rolling statistics for a symbol.
func (b *BinanceClient) GetTicker24h(ctx context.Context, symbol string) (*Ticker24h, error) {
	stats, err := b.client.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get 24h ticker: %w", err)
	}

	if len(stats) == 0 {
		return nil, fmt.Errorf("no 24h ticker data for symbol %s", symbol)
	}

	s := stats[0]
	lastPrice, _ := strconv.ParseFloat(s.LastPrice, 64)
	priceChange, _ := strconv.ParseFloat(s.PriceChange, 64)
	priceChangePercent, _ := strconv.ParseFloat(s.PriceChangePercent, 64)
	highPrice, _ := strconv.ParseFloat(s.HighPrice, 64)
	lowPrice, _ := strconv.ParseFloat(s.LowPrice, 64)
	volume, _ := strconv.ParseFloat(s.Volume, 64)
	quoteVolume, _ := strconv.ParseFloat(s.QuoteVolume, 64)

	return &Ticker24h{
		Symbol:             s.Symbol,
		LastPrice:          lastPrice,
		PriceChange:        priceChange,
		PriceChangePercent: priceChangePercent,
		HighPrice:          highPrice,
		LowPrice:           lowPrice,
		Volume:             volume,
		QuoteVolume:        quoteVolume,
	}, nil
}

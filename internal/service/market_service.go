package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"github.com/tradekit/lumen/internal/config"
	"github.com/tradekit/lumen/internal/models"
	"github.com/tradekit/lumen/internal/repo"
	"github.com/tradekit/lumen/pkg/cache"
	"github.com/tradekit/lumen/pkg/exchange"
	"github.com/tradekit/lumen/pkg/feeds"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Data sources reported alongside market responses.
const (
	SourceLive     = "live"
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

// MarketService aggregates market data from the exchange and the public feed
// APIs, with a TTL cache in front of every upstream. When an upstream fails
// the last cached value is served; with a cold cache a small static dataset
// answers instead. Both are marked as fallback data.
type MarketService struct {
	logger *zap.Logger

	*orz.Service

	conf *config.Config

	binanceClient    *exchange.BinanceClient
	coinGecko        *feeds.CoinGeckoClient
	cryptoCompare    *feeds.CryptoCompareClient
	indicatorService *IndicatorService

	snapshotRepo *repo.IndicatorSnapshotRepo

	coinsCache  *cache.Cache[[]feeds.CoinMarket]
	detailCache *cache.Cache[feeds.CoinMarket]
	priceCache  *cache.Cache[float64]
	tickerCache *cache.Cache[exchange.Ticker24h]
	klineCache  *cache.Cache[[]*exchange.Kline]
}

func NewMarketService(db *gorm.DB, conf *config.Config, binanceClient *exchange.BinanceClient,
	coinGecko *feeds.CoinGeckoClient, cryptoCompare *feeds.CryptoCompareClient,
	indicatorService *IndicatorService, logger *zap.Logger) *MarketService {
	ttl := time.Duration(conf.Market.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &MarketService{
		logger:           logger,
		Service:          orz.NewService(db),
		conf:             conf,
		binanceClient:    binanceClient,
		coinGecko:        coinGecko,
		cryptoCompare:    cryptoCompare,
		indicatorService: indicatorService,
		snapshotRepo:     repo.NewIndicatorSnapshotRepo(db),
		coinsCache:       cache.New[[]feeds.CoinMarket](ttl),
		detailCache:      cache.New[feeds.CoinMarket](ttl),
		priceCache:       cache.New[float64](10 * time.Second),
		tickerCache:      cache.New[exchange.Ticker24h](10 * time.Second),
		klineCache:       cache.New[[]*exchange.Kline](ttl),
	}
}

// MarketData bundles everything the strategy needs for one symbol.
type MarketData struct {
	Symbol         string                          `json:"symbol"`
	CurrentPrice   float64                         `json:"current_price"`
	Timeframes     map[string]*TimeframeIndicators `json:"timeframes"`
	IntradaySeries *TimeSeriesData                 `json:"intraday_series"` // 5m series
	Confluence     string                          `json:"confluence"`      // bullish/bearish/neutral
	ConfluenceHits int                             `json:"confluence_hits"`
}

// ListCoins returns the top coins by market cap.
func (s *MarketService) ListCoins(ctx context.Context, limit int) ([]feeds.CoinMarket, string, error) {
	if limit <= 0 || limit > 250 {
		limit = s.conf.Market.TopCoins
	}
	key := fmt.Sprintf("coins:%d", limit)

	if coins, ok := s.coinsCache.Get(key); ok {
		return coins, SourceCache, nil
	}

	coins, err := s.coinGecko.ListMarkets(ctx, limit)
	if err != nil {
		// Serve the expired entry rather than nothing.
		if stale, ok := s.coinsCache.GetStale(key); ok {
			s.logger.Warn("coin list upstream failed, serving stale data", zap.Error(err))
			return stale, SourceFallback, nil
		}
		s.logger.Warn("coin list upstream failed with cold cache, serving fallback data",
			zap.Error(err))
		return fallbackCoinList(limit), SourceFallback, nil
	}

	s.coinsCache.Set(key, coins)
	return coins, SourceLive, nil
}

// GetCoinDetail returns one coin by its CoinGecko id.
func (s *MarketService) GetCoinDetail(ctx context.Context, id string) (feeds.CoinMarket, string, error) {
	if coin, ok := s.detailCache.Get(id); ok {
		return coin, SourceCache, nil
	}

	coin, err := s.coinGecko.GetMarket(ctx, id)
	if err != nil {
		if stale, ok := s.detailCache.GetStale(id); ok {
			s.logger.Warn("coin detail upstream failed, serving stale data",
				zap.String("id", id), zap.Error(err))
			return stale, SourceFallback, nil
		}
		if coin, ok := fallbackCoin(id); ok {
			s.logger.Warn("coin detail upstream failed with cold cache, serving fallback data",
				zap.String("id", id), zap.Error(err))
			return coin, SourceFallback, nil
		}
		return feeds.CoinMarket{}, "", err
	}

	s.detailCache.Set(id, *coin)
	return *coin, SourceLive, nil
}

// GetPrice returns the current price of a symbol, preferring the exchange and
// falling back to CryptoCompare.
func (s *MarketService) GetPrice(ctx context.Context, symbol string) (float64, error) {
	if price, ok := s.priceCache.Get(symbol); ok {
		return price, nil
	}

	price, err := s.binanceClient.GetCurrentPrice(ctx, symbol)
	if err != nil {
		s.logger.Warn("exchange price failed, trying fallback feed",
			zap.String("symbol", symbol), zap.Error(err))
		base := strings.TrimSuffix(strings.ToUpper(symbol), "USDT")
		fallbackPrice, ferr := s.cryptoCompare.GetPrice(ctx, base)
		if ferr != nil {
			return 0, err
		}
		price = fallbackPrice
	}

	s.priceCache.Set(symbol, price)
	return price, nil
}

// GetTicker24h returns the 24h rolling statistics for an exchange symbol.
func (s *MarketService) GetTicker24h(ctx context.Context, symbol string) (*exchange.Ticker24h, error) {
	if ticker, ok := s.tickerCache.Get(symbol); ok {
		return &ticker, nil
	}
	ticker, err := s.binanceClient.GetTicker24h(ctx, symbol)
	if err != nil {
		return nil, err
	}
	s.tickerCache.Set(symbol, *ticker)
	return ticker, nil
}

// getKlines fetches klines with a short cache in front of the exchange.
func (s *MarketService) getKlines(ctx context.Context, symbol, interval string, limit int) ([]*exchange.Kline, error) {
	key := fmt.Sprintf("%s:%s:%d", symbol, interval, limit)
	if klines, ok := s.klineCache.Get(key); ok {
		return klines, nil
	}
	klines, err := s.binanceClient.GetKlines(ctx, symbol, interval, limit)
	if err != nil {
		return nil, err
	}
	s.klineCache.Set(key, klines)
	return klines, nil
}

// GetIndicators computes the indicator set for one symbol and timeframe and
// persists a snapshot.
func (s *MarketService) GetIndicators(ctx context.Context, symbol, timeframe string) (*TimeframeIndicators, *TimeSeriesData, error) {
	klines, err := s.getKlines(ctx, symbol, timeframe, 120)
	if err != nil {
		return nil, nil, err
	}

	indicators := s.indicatorService.CalculateIndicators(klines)
	if indicators == nil {
		return nil, nil, fmt.Errorf("not enough kline history for %s %s", symbol, timeframe)
	}
	indicators.Timeframe = timeframe

	series := s.indicatorService.CalculateTimeSeries(klines)

	if err := s.saveSnapshot(ctx, symbol, timeframe, indicators, series); err != nil {
		s.logger.Warn("failed to save indicator snapshot",
			zap.String("symbol", symbol), zap.Error(err))
	}

	return indicators, series, nil
}

func (s *MarketService) saveSnapshot(ctx context.Context, symbol, timeframe string,
	ind *TimeframeIndicators, series *TimeSeriesData) error {
	snapshot := models.IndicatorSnapshot{
		ID:           ulid.Make().String(),
		Symbol:       symbol,
		Timeframe:    timeframe,
		Price:        ind.Price,
		SMA20:        ind.SMA20,
		SMA50:        ind.SMA50,
		EMA20:        ind.EMA20,
		EMA50:        ind.EMA50,
		MACD:         ind.MACD,
		MACDSignal:   ind.MACDSignal,
		MACDHist:     ind.MACDHist,
		RSI7:         ind.RSI7,
		RSI14:        ind.RSI14,
		BBUpper:      ind.BBUpper,
		BBMiddle:     ind.BBMiddle,
		BBLower:      ind.BBLower,
		ATR14:        ind.ATR14,
		Volume:       ind.Volume,
		AvgVolume:    ind.AvgVolume,
		CalculatedAt: time.Now(),
	}
	if series != nil {
		snapshot.PriceSeries, _ = json.Marshal(series.Prices)
		snapshot.MACDSeries, _ = json.Marshal(series.MACDSeries)
		snapshot.RSI14Series, _ = json.Marshal(series.RSI14Series)
	}
	return s.snapshotRepo.Create(ctx, &snapshot)
}

// CollectMarketData gathers indicators across all timeframes for one symbol.
func (s *MarketService) CollectMarketData(ctx context.Context, symbol string) (*MarketData, error) {
	s.logger.Info("collecting market data", zap.String("symbol", symbol))

	timeframes := []struct {
		name     string
		interval string
		limit    int
	}{
		{"5m", "5m", 120},
		{"15m", "15m", 96},
		{"1h", "1h", 120},
		{"4h", "4h", 180},
	}

	marketData := &MarketData{
		Symbol:     symbol,
		Timeframes: make(map[string]*TimeframeIndicators),
	}

	var klines5m []*exchange.Kline

	for _, tf := range timeframes {
		klines, err := s.getKlines(ctx, symbol, tf.interval, tf.limit)
		if err != nil {
			s.logger.Error("failed to get klines",
				zap.String("symbol", symbol),
				zap.String("timeframe", tf.name),
				zap.Error(err))
			continue
		}

		if tf.name == "5m" {
			klines5m = klines
		}

		indicators := s.indicatorService.CalculateIndicators(klines)
		if indicators != nil {
			indicators.Timeframe = tf.name
			marketData.Timeframes[tf.name] = indicators

			issues := s.indicatorService.ValidateIndicators(indicators)
			if len(issues) > 0 {
				s.logger.Warn("data quality issues",
					zap.String("symbol", symbol),
					zap.String("timeframe", tf.name),
					zap.Strings("issues", issues))
			}
		}
	}

	if len(marketData.Timeframes) == 0 {
		return nil, fmt.Errorf("no timeframe data for %s", symbol)
	}

	if ind, ok := marketData.Timeframes["5m"]; ok {
		marketData.CurrentPrice = ind.Price
	} else {
		for _, ind := range marketData.Timeframes {
			marketData.CurrentPrice = ind.Price
			break
		}
	}

	if len(klines5m) > 0 {
		marketData.IntradaySeries = s.indicatorService.CalculateTimeSeries(klines5m)
	}

	marketData.Confluence, marketData.ConfluenceHits =
		s.indicatorService.DetectMultiTimeframeConfluence(marketData.Timeframes)

	return marketData, nil
}

// CollectAllSymbols gathers market data for every configured symbol. Symbols
// that fail are skipped; an error is returned only when all of them fail.
func (s *MarketService) CollectAllSymbols(ctx context.Context, symbols []string) (map[string]*MarketData, error) {
	result := make(map[string]*MarketData)

	for _, symbol := range symbols {
		data, err := s.CollectMarketData(ctx, symbol)
		if err != nil {
			s.logger.Error("failed to collect market data",
				zap.String("symbol", symbol),
				zap.Error(err))
			continue
		}
		result[symbol] = data
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("failed to collect market data for any symbol")
	}

	return result, nil
}

// IndicatorHistory returns persisted indicator snapshots.
func (s *MarketService) IndicatorHistory(ctx context.Context, symbol, timeframe string, limit int) ([]models.IndicatorSnapshot, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.snapshotRepo.FindHistory(ctx, symbol, timeframe, limit)
}

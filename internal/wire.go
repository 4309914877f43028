//go:build wireinject
// +build wireinject

package internal

import (
	"net/http"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tradekit/lumen/internal/config"
	"github.com/tradekit/lumen/internal/handler"
	"github.com/tradekit/lumen/internal/service"
	"github.com/tradekit/lumen/internal/telegram"
	"github.com/tradekit/lumen/pkg/exchange"
	"github.com/tradekit/lumen/pkg/feeds"
)

const telegramHTTPTimeout = 10 * time.Second

var (
	handlerSet = wire.NewSet(
		handler.NewMarketHandler,
		handler.NewLedgerHandler,
		handler.NewBotHandler,
	)

	serviceSet = wire.NewSet(
		provideBinanceClient,
		provideCoinGeckoClient,
		provideCryptoCompareClient,
		provideNewsAPIClient,
		service.NewIndicatorService,
		service.NewMarketService,
		service.NewNewsService,
		service.NewStrategyService,
		service.NewLedgerService,
		service.NewRiskService,
		service.NewStreamService,
		service.NewBotLoop,
	)
)

// InitializeApp assembles the application graph.
func InitializeApp(logger *zap.Logger, db *gorm.DB, conf *config.Config) (*AppComponents, error) {
	wire.Build(
		handlerSet,
		serviceSet,
		provideTelegram,
		wire.Struct(new(AppComponents), "*"),
	)
	return nil, nil
}

func provideTelegram(logger *zap.Logger, conf *config.Config) *telegram.Telegram {
	if !conf.Telegram.Enabled {
		return nil
	}

	httpClient := &http.Client{Timeout: telegramHTTPTimeout}

	tg, err := telegram.NewTelegram(logger, telegram.Settings{
		Token:  conf.Telegram.Token,
		Client: httpClient,
	})
	if err != nil {
		logger.Error("failed to init telegram", zap.Error(err))
		return nil
	}

	return tg
}

func provideBinanceClient(conf *config.Config, logger *zap.Logger) *exchange.BinanceClient {
	client := exchange.NewBinanceClient(
		conf.Binance.APIKey,
		conf.Binance.Secret,
		conf.Binance.ProxyURL,
		conf.Binance.Testnet,
	)

	logger.Info("binance client initialized",
		zap.Bool("testnet", conf.Binance.Testnet),
		zap.Bool("has_credentials", conf.Binance.APIKey != "" && conf.Binance.Secret != ""),
	)
	return client
}

func provideCoinGeckoClient(conf *config.Config, logger *zap.Logger) *feeds.CoinGeckoClient {
	return feeds.NewCoinGeckoClient(feeds.CoinGeckoOptions{
		BaseURL:   conf.Feeds.CoinGecko.BaseURL,
		APIKey:    conf.Feeds.CoinGecko.APIKey,
		RateLimit: conf.Feeds.CoinGecko.RateLimit,
		Burst:     conf.Feeds.CoinGecko.Burst,
	}, logger)
}

func provideCryptoCompareClient(conf *config.Config, logger *zap.Logger) *feeds.CryptoCompareClient {
	return feeds.NewCryptoCompareClient(feeds.CryptoCompareOptions{
		BaseURL:   conf.Feeds.CryptoCompare.BaseURL,
		APIKey:    conf.Feeds.CryptoCompare.APIKey,
		RateLimit: conf.Feeds.CryptoCompare.RateLimit,
		Burst:     conf.Feeds.CryptoCompare.Burst,
	}, logger)
}

func provideNewsAPIClient(conf *config.Config, logger *zap.Logger) *feeds.NewsAPIClient {
	return feeds.NewNewsAPIClient(feeds.NewsAPIOptions{
		BaseURL:   conf.Feeds.NewsAPI.BaseURL,
		APIKey:    conf.Feeds.NewsAPI.APIKey,
		RateLimit: conf.Feeds.NewsAPI.RateLimit,
		Burst:     conf.Feeds.NewsAPI.Burst,
	}, logger)
}

package internal

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-orz/orz"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/tradekit/lumen/internal/config"
	"github.com/tradekit/lumen/internal/handler"
	"github.com/tradekit/lumen/internal/middleware"
	"github.com/tradekit/lumen/internal/models"
	"github.com/tradekit/lumen/internal/service"
	"github.com/tradekit/lumen/internal/telegram"
	"github.com/tradekit/lumen/pkg/nostd"
	"github.com/tradekit/lumen/web"
	"go.uber.org/zap"
)

func Run(configPath string) error {
	app := NewLumenApp()

	framework, err := orz.NewFramework(
		orz.WithConfig(configPath),
		orz.WithLoggerFromConfig(),
		orz.WithDatabase(),
		orz.WithHTTP(),
		orz.WithApplication(app),
	)
	if err != nil {
		return err
	}

	return framework.Run()
}

func NewLumenApp() orz.Application {
	return &LumenApp{}
}

var _ orz.Application = (*LumenApp)(nil)

type AppComponents struct {
	MarketHandler *handler.MarketHandler
	LedgerHandler *handler.LedgerHandler
	BotHandler    *handler.BotHandler

	BotLoop         *service.BotLoop
	MarketService   *service.MarketService
	NewsService     *service.NewsService
	StrategyService *service.StrategyService
	LedgerService   *service.LedgerService
	RiskService     *service.RiskService
	StreamService   *service.StreamService

	Telegram *telegram.Telegram
}

type LumenApp struct {
	components *AppComponents
	conf       *config.Config
}

func (r *LumenApp) GetComponents() *AppComponents {
	return r.components
}

func (r *LumenApp) Configure(app *orz.App) error {
	logger := app.Logger()
	e := app.GetEcho()
	db := app.GetDatabase()

	var conf config.Config
	err := app.GetConfig().App.Unmarshal(&conf)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %v", err)
	}

	components, err := InitializeApp(logger, db, &conf)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %v", err)
	}
	r.components = components
	r.conf = &conf

	if err := db.AutoMigrate(
		models.Account{}, models.Trade{}, models.Position{},
		models.BotConfig{}, models.Signal{},
		models.IndicatorSnapshot{}, models.AccountSnapshot{},
	); err != nil {
		logger.Fatal("database auto migrate failed", zap.Error(err))
	}

	if err := r.Init(logger); err != nil {
		logger.Fatal("app init failed", zap.Error(err))
	}

	e.HidePort = true
	e.HideBanner = true

	e.Use(echomiddleware.Gzip())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		Skipper:      echomiddleware.DefaultSkipper,
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
	}))
	e.Use(echomiddleware.RecoverWithConfig(echomiddleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			sugar := logger.Sugar()
			sugar.Error(fmt.Sprintf("[PANIC RECOVER] %v %s\n", err, stack))
			return err
		},
	}))
	e.Use(WithErrorHandler(logger))

	customValidator := nostd.CustomValidator{Validator: validator.New()}
	if err := customValidator.TransInit(); err != nil {
		logger.Sugar().Fatal("failed to init custom validator", zap.Error(err))
	}
	e.Validator = &customValidator

	e.Use(echomiddleware.StaticWithConfig(echomiddleware.StaticConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().RequestURI
			if strings.HasPrefix(path, "/api") {
				return true
			}
			return false
		},
		Root:       "",
		Index:      "index.html",
		HTML5:      true,
		Browse:     false,
		IgnoreBase: false,
		Filesystem: http.FS(web.Assets()),
	}))

	api := e.Group("/api")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rate:  conf.Security.APIRateLimit,
		Burst: conf.Security.APIRateBurst,
	}))

	// Mutating and control endpoints additionally require the access token
	// when one is configured. Derived from api so the rate limiter applies
	// to them as well.
	guarded := api.Group("")
	guarded.Use(middleware.TokenAuth(middleware.TokenAuthConfig{
		AccessTokenHash: conf.Security.AccessTokenHash,
		Logger:          logger,
	}))

	r.components.MarketHandler.RegisterRoutes(api)
	r.components.LedgerHandler.RegisterRoutes(api, guarded)
	r.components.BotHandler.RegisterRoutes(api, guarded)

	return nil
}

func (r *LumenApp) Init(logger *zap.Logger) error {
	logger.Info("=================================================")
	logger.Info("Lumen Trading System Starting...")
	logger.Info("=================================================")

	components := r.GetComponents()
	if components == nil {
		return fmt.Errorf("components not initialized")
	}

	ctx := context.Background()
	conf := r.conf

	// Seed the bot's ledger account and settings on first boot.
	if conf.Bot.Address != "" {
		initialBalance := conf.Bot.InitialBalance
		if initialBalance <= 0 {
			initialBalance = 10000
		}
		if err := components.LedgerService.EnsureAccount(ctx, conf.Bot.Address, initialBalance); err != nil {
			return fmt.Errorf("failed to seed bot account: %w", err)
		}

		settings, err := components.LedgerService.GetBotSettings(ctx, conf.Bot.Address)
		if err != nil {
			return fmt.Errorf("failed to load bot settings: %w", err)
		}
		if settings.CreatedAt.IsZero() {
			if _, err := components.LedgerService.ConfigureBotSettings(ctx, conf.Bot.Address,
				conf.Bot.MaxPositionSize, conf.Bot.DailyTradeLimit, conf.Bot.MinConfidence, true); err != nil {
				return fmt.Errorf("failed to seed bot settings: %w", err)
			}
		}
	}

	if components.Telegram != nil {
		components.Telegram.Start()
		logger.Info("telegram notifier started")
	}

	if conf.Bot.AutoStart {
		logger.Info("bot loop auto start enabled")
		go func() {
			if err := components.BotLoop.Start(context.Background()); err != nil {
				logger.Error("bot loop error", zap.Error(err))
			}
		}()
	}

	return nil
}

package config

type Config struct {
	Binance  BinanceConf  `json:"binance"`
	Feeds    FeedsConf    `json:"feeds"`
	Market   MarketConf   `json:"market"`
	Bot      BotConf      `json:"bot"`
	Telegram TelegramConf `json:"telegram"`
	Security SecurityConf `json:"security"`
}

type BinanceConf struct {
	APIKey   string `json:"api_key"`
	Secret   string `json:"secret"`
	ProxyURL string `json:"proxy_url"` // optional, e.g. http://127.0.0.1:7890
	Testnet  bool   `json:"testnet"`
}

// FeedConf configures one upstream HTTP feed.
type FeedConf struct {
	BaseURL   string  `json:"base_url"`
	APIKey    string  `json:"api_key"`
	RateLimit float64 `json:"rate_limit"` // requests per second
	Burst     int     `json:"burst"`
}

type FeedsConf struct {
	CoinGecko     FeedConf `json:"coingecko"`
	CryptoCompare FeedConf `json:"cryptocompare"`
	NewsAPI       FeedConf `json:"newsapi"`
}

type MarketConf struct {
	CacheTTLSeconds int `json:"cache_ttl_seconds"` // TTL for feed responses, default 30
	TopCoins        int `json:"top_coins"`         // size of the /api/coins listing, default 50
}

type BotConf struct {
	Address         string   `json:"address"`           // ledger address the bot trades for
	Symbols         []string `json:"symbols"`           // e.g. ["BTCUSDT", "ETHUSDT"]
	IntervalMinutes int      `json:"interval_minutes"`  // cycle period, default 15
	InitialBalance  float64  `json:"initial_balance"`   // seeded on first run, default 10000
	MaxPositionSize float64  `json:"max_position_size"` // max notional per trade
	DailyTradeLimit int      `json:"daily_trade_limit"` // max opens per UTC day
	MinConfidence   float64  `json:"min_confidence"`    // 0-100
	AutoStart       bool     `json:"auto_start"`        // start the loop on boot
}

type TelegramConf struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  string `json:"chat_id"`
}

type SecurityConf struct {
	// Bcrypt hash of the access token guarding control endpoints. Empty
	// leaves the whole API open (demo mode).
	AccessTokenHash string `json:"access_token_hash"`
	// Per-client request rate for the public API, requests per second.
	APIRateLimit float64 `json:"api_rate_limit"`
	APIRateBurst int     `json:"api_rate_burst"`
}

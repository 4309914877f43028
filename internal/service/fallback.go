package service

import (
	"strings"
	"time"

	"github.com/tradekit/lumen/pkg/feeds"
)

// Deterministic datasets served when an upstream is down and the cache holds
// nothing, so the demo keeps answering instead of surfacing gateway errors.
// Payloads built from them carry "source": "fallback".
var fallbackCoinRows = []feeds.CoinMarket{
	{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: 65000, MarketCap: 1_280_000_000_000, MarketCapRank: 1, TotalVolume: 28_000_000_000, High24h: 66200, Low24h: 64100, PriceChange24h: 420, PriceChangePercentage24h: 0.65},
	{ID: "ethereum", Symbol: "eth", Name: "Ethereum", CurrentPrice: 3400, MarketCap: 410_000_000_000, MarketCapRank: 2, TotalVolume: 14_000_000_000, High24h: 3460, Low24h: 3320, PriceChange24h: 28, PriceChangePercentage24h: 0.83},
	{ID: "binancecoin", Symbol: "bnb", Name: "BNB", CurrentPrice: 580, MarketCap: 85_000_000_000, MarketCapRank: 3, TotalVolume: 1_600_000_000, High24h: 592, Low24h: 571, PriceChange24h: -3.2, PriceChangePercentage24h: -0.55},
	{ID: "solana", Symbol: "sol", Name: "Solana", CurrentPrice: 150, MarketCap: 69_000_000_000, MarketCapRank: 4, TotalVolume: 2_400_000_000, High24h: 155, Low24h: 146, PriceChange24h: 1.8, PriceChangePercentage24h: 1.21},
	{ID: "ripple", Symbol: "xrp", Name: "XRP", CurrentPrice: 0.52, MarketCap: 29_000_000_000, MarketCapRank: 5, TotalVolume: 1_100_000_000, High24h: 0.53, Low24h: 0.51, PriceChange24h: 0.004, PriceChangePercentage24h: 0.77},
}

func fallbackCoinList(limit int) []feeds.CoinMarket {
	if limit > 0 && limit < len(fallbackCoinRows) {
		return fallbackCoinRows[:limit]
	}
	return fallbackCoinRows
}

// fallbackCoin looks a coin up by CoinGecko id or ticker symbol.
func fallbackCoin(id string) (feeds.CoinMarket, bool) {
	lower := strings.ToLower(id)
	for _, coin := range fallbackCoinRows {
		if coin.ID == lower || coin.Symbol == lower {
			return coin, true
		}
	}
	return feeds.CoinMarket{}, false
}

var fallbackHeadlines = []NewsItem{
	{Title: "Bitcoin holds steady as traders await macro data", Description: "BTC trades in a narrow band while markets look for direction.", URL: "https://www.coindesk.com/markets", Source: "Lumen Offline Digest", Sentiment: "neutral"},
	{Title: "Ethereum network activity stays elevated after upgrade", Description: "Layer-2 settlement volume keeps gas demand firm.", URL: "https://ethereum.org/en/community", Source: "Lumen Offline Digest", Sentiment: "neutral"},
	{Title: "Stablecoin supply grows for a third straight month", Description: "Issuance data points to fresh capital parked on-chain.", URL: "https://www.coingecko.com/en/categories/stablecoins", Source: "Lumen Offline Digest", Sentiment: "neutral"},
	{Title: "Exchange volumes cool from last week's highs", Description: "Spot turnover normalizes across major venues.", URL: "https://www.coingecko.com/en/exchanges", Source: "Lumen Offline Digest", Sentiment: "neutral"},
}

func fallbackNews() []NewsItem {
	now := time.Now()
	items := make([]NewsItem, len(fallbackHeadlines))
	copy(items, fallbackHeadlines)
	for i := range items {
		items[i].PublishedAt = now.Add(-time.Duration(i+1) * time.Hour)
	}
	return items
}

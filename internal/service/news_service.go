package service

import (
	"context"
	"strings"
	"time"

	"github.com/tradekit/lumen/pkg/cache"
	"github.com/tradekit/lumen/pkg/feeds"
	"go.uber.org/zap"
)

// NewsService serves crypto headlines. NewsAPI is the primary source when an
// API key is configured; CryptoCompare's news feed is the fallback and works
// without a key.
type NewsService struct {
	logger        *zap.Logger
	newsAPI       *feeds.NewsAPIClient
	cryptoCompare *feeds.CryptoCompareClient
	newsCache     *cache.Cache[[]NewsItem]
}

func NewNewsService(newsAPI *feeds.NewsAPIClient, cryptoCompare *feeds.CryptoCompareClient, logger *zap.Logger) *NewsService {
	return &NewsService{
		logger:        logger,
		newsAPI:       newsAPI,
		cryptoCompare: cryptoCompare,
		newsCache:     cache.New[[]NewsItem](5 * time.Minute),
	}
}

// NewsItem is a normalized headline from either source.
type NewsItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Sentiment   string    `json:"sentiment"` // positive/negative/neutral
	PublishedAt time.Time `json:"published_at"`
}

var (
	positiveWords = []string{"surge", "rally", "bullish", "gain", "soar", "record", "adoption", "approval", "breakout", "upgrade"}
	negativeWords = []string{"crash", "plunge", "bearish", "drop", "hack", "ban", "lawsuit", "selloff", "fraud", "liquidation"}
)

// classifySentiment is a naive keyword count over title and description.
func classifySentiment(text string) string {
	lower := strings.ToLower(text)
	score := 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			score++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			score--
		}
	}
	if score > 0 {
		return "positive"
	}
	if score < 0 {
		return "negative"
	}
	return "neutral"
}

// Latest returns recent crypto headlines, cached for a few minutes.
func (s *NewsService) Latest(ctx context.Context, query string, limit int) ([]NewsItem, string, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	if query == "" {
		query = "cryptocurrency"
	}
	key := query

	if items, ok := s.newsCache.Get(key); ok {
		return clip(items, limit), SourceCache, nil
	}

	items, err := s.fromNewsAPI(ctx, query, limit)
	if err != nil {
		s.logger.Warn("newsapi unavailable, falling back to cryptocompare", zap.Error(err))
		items, err = s.fromCryptoCompare(ctx, limit)
	}
	if err != nil {
		if stale, ok := s.newsCache.GetStale(key); ok {
			return clip(stale, limit), SourceFallback, nil
		}
		s.logger.Warn("news upstreams failed with cold cache, serving fallback headlines",
			zap.Error(err))
		return clip(fallbackNews(), limit), SourceFallback, nil
	}

	s.newsCache.Set(key, items)
	return clip(items, limit), SourceLive, nil
}

func (s *NewsService) fromNewsAPI(ctx context.Context, query string, limit int) ([]NewsItem, error) {
	headlines, err := s.newsAPI.SearchHeadlines(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	items := make([]NewsItem, 0, len(headlines))
	for _, h := range headlines {
		items = append(items, NewsItem{
			Title:       h.Title,
			Description: h.Description,
			URL:         h.URL,
			Source:      h.Source.Name,
			Sentiment:   classifySentiment(h.Title + " " + h.Description),
			PublishedAt: h.PublishedAt,
		})
	}
	return items, nil
}

func (s *NewsService) fromCryptoCompare(ctx context.Context, limit int) ([]NewsItem, error) {
	articles, err := s.cryptoCompare.ListNews(ctx)
	if err != nil {
		return nil, err
	}
	if len(articles) > limit {
		articles = articles[:limit]
	}
	items := make([]NewsItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, NewsItem{
			Title:       a.Title,
			Description: a.Body,
			URL:         a.URL,
			Source:      a.Source,
			Sentiment:   classifySentiment(a.Title + " " + a.Body),
			PublishedAt: time.Unix(a.PublishedOn, 0),
		})
	}
	return items, nil
}

func clip(items []NewsItem, limit int) []NewsItem {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

package pricing

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"cryptofolio/pkg/helpers"
)

func quoteKey(symbol string) string {
	return "quote:usd:" + strings.ToUpper(symbol)
}

// CachedProvider fronts a QuoteProvider with a short-lived redis
// cache, so back-to-back syncs of similar portfolios do not hammer the
// upstream. Cache failures degrade to the upstream call, never to a
// request failure.
type CachedProvider struct {
	Next   QuoteProvider
	Redis  *redis.Client
	TTL    time.Duration
	Logger *logrus.Logger
}

func NewCachedProvider(next QuoteProvider, rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *CachedProvider {
	return &CachedProvider{Next: next, Redis: rdb, TTL: ttl, Logger: logger}
}

func (c *CachedProvider) Quotes(ctx context.Context, symbols []string) (map[string]float64, error) {
	out := make(map[string]float64, len(symbols))
	missing := make([]string, 0, len(symbols))

	for _, sym := range symbols {
		sym = strings.ToUpper(sym)
		var price float64
		if c.Redis != nil {
			if ok, err := helpers.RedisGetJSON(ctx, c.Redis, quoteKey(sym), &price); err == nil && ok {
				out[sym] = price
				continue
			}
		}
		missing = append(missing, sym)
	}

	if len(missing) == 0 {
		return out, nil
	}

	fresh, err := c.Next.Quotes(ctx, missing)
	if err != nil {
		return nil, err
	}
	for sym, price := range fresh {
		out[sym] = price
		if c.Redis != nil {
			if err := helpers.RedisSetJSON(ctx, c.Redis, quoteKey(sym), price, c.TTL); err != nil && c.Logger != nil {
				c.Logger.WithError(err).WithField("symbol", sym).Warn("quote cache write failed")
			}
		}
	}
	return out, nil
}

var _ QuoteProvider = (*CachedProvider)(nil)

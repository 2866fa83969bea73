package ephemeris

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/roach88/stellium/internal/astro"
)

// DefaultCacheSize is the number of positions a Cache holds before the least
// recently used ones are evicted.
const DefaultCacheSize = 1 << 16

type cacheKey struct {
	body astro.Body
	at   int64
}

// Cache memoizes successful position answers keyed by body and instant.
// Errors are never cached. House queries pass through.
type Cache struct {
	Provider

	entries *lru.Cache[cacheKey, astro.Position]
}

// NewCache wraps p. A size of zero uses DefaultCacheSize.
func NewCache(p Provider, size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[cacheKey, astro.Position](size)
	if err != nil {
		return nil, fmt.Errorf("create position cache: %w", err)
	}
	return &Cache{Provider: p, entries: entries}, nil
}

// Position implements the engine's PositionProvider.
func (c *Cache) Position(ctx context.Context, body astro.Body, t time.Time) (astro.Position, error) {
	key := cacheKey{body: body, at: t.UnixNano()}
	if pos, ok := c.entries.Get(key); ok {
		return pos, nil
	}

	pos, err := c.Provider.Position(ctx, body, t)
	if err != nil {
		return astro.Position{}, err
	}
	c.entries.Add(key, pos)
	return pos, nil
}

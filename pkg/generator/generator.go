// Package generator looks up the CSS behind utility tokens.
package generator

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/JCorners68/unot/pkg/lru"
)

// Generator translates one utility token into CSS. An empty result with a
// nil error means the token is unknown.
type Generator interface {
	Generate(ctx context.Context, token string) (string, error)
}

// Func adapts a function to Generator.
type Func func(ctx context.Context, token string) (string, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}

// warmLimit bounds concurrent lookups during Warm.
const warmLimit = 8

// Cached memoizes a Generator. Only non-empty results are stored; errors
// and unknown tokens are asked again on the next lookup.
type Cached struct {
	gen    Generator
	cache  *lru.Cache[string, string]
	flight singleflight.Group
	log    zerolog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCached wraps gen with an LRU of the given capacity.
func NewCached(gen Generator, capacity int, log zerolog.Logger) *Cached {
	return &Cached{
		gen:   gen,
		cache: lru.New[string, string](capacity),
		log:   log,
	}
}

// Generate returns the cached CSS for token or asks the wrapped generator.
// Concurrent lookups of one token share a single call.
func (c *Cached) Generate(ctx context.Context, token string) (string, error) {
	if css, ok := c.cache.Get(token); ok {
		c.hits.Add(1)
		return css, nil
	}
	c.misses.Add(1)

	v, err, _ := c.flight.Do(token, func() (interface{}, error) {
		if css, ok := c.cache.Get(token); ok {
			return css, nil
		}
		css, err := c.gen.Generate(ctx, token)
		if err != nil {
			return "", err
		}
		if css != "" {
			c.cache.Set(token, css)
		} else {
			c.log.Debug().Str("token", token).Msg("generator: no css")
		}
		return css, nil
	})
	if err != nil {
		return "", fmt.Errorf("generate %q: %w", token, err)
	}
	return v.(string), nil
}

// Warm looks up every token so later lookups hit the cache. Tokens already
// cached are skipped.
func (c *Cached) Warm(ctx context.Context, tokens []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmLimit)
	for _, tok := range tokens {
		if c.cache.Has(tok) {
			continue
		}
		tok := tok
		g.Go(func() error {
			_, err := c.Generate(gctx, tok)
			return err
		})
	}
	return g.Wait()
}

// Has reports whether token is cached.
func (c *Cached) Has(token string) bool {
	return c.cache.Has(token)
}

// Clear empties the cache.
func (c *Cached) Clear() {
	c.cache.Clear()
}

// Stats reports the cache size and hit counts.
func (c *Cached) Stats() (size int, hits, misses int64) {
	return c.cache.Len(), c.hits.Load(), c.misses.Load()
}

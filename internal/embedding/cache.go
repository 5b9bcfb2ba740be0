package embedding

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const defaultCacheTTL = 10 * time.Minute

// CachedEngine memoizes Embed results by text. Hook handlers embed the same
// prompts and memory contents repeatedly within a session; the cache keeps
// that from hitting the backend every time.
type CachedEngine struct {
	inner Engine
	cache *gocache.Cache
}

// NewCachedEngine wraps an engine with a TTL cache. ttlSeconds <= 0 uses the
// default.
func NewCachedEngine(inner Engine, ttlSeconds int) *CachedEngine {
	ttl := defaultCacheTTL
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	return &CachedEngine{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (c *CachedEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		return v.([]float32), nil
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(text, vec)
	return vec, nil
}

func (c *CachedEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))

	// Collect cache misses and embed only those.
	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		if v, ok := c.cache.Get(text); ok {
			vecs[i] = v.([]float32)
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return vecs, nil
	}

	fresh, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, vec := range fresh {
		vecs[missIdx[j]] = vec
		c.cache.SetDefault(missTexts[j], vec)
	}
	return vecs, nil
}

func (c *CachedEngine) Dimensions() int {
	return c.inner.Dimensions()
}

func (c *CachedEngine) Name() string {
	return c.inner.Name()
}

// HealthCheck delegates to the inner engine when it supports health checks.
func (c *CachedEngine) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

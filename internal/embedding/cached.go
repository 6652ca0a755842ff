package embedding

import (
	"context"
	"time"

	"docqa/pkg/util"
)

// Cached wraps an Embedding model with an LRU cache keyed by the input text.
// Repeated questions and re-indexed chunks skip the provider round trip.
type Cached struct {
	inner Embedding
	cache *util.LRUCache[string, []float32]
}

// NewCached creates a caching wrapper around inner. A ttl of 0 keeps entries
// until they are evicted by capacity.
func NewCached(inner Embedding, capacity int, ttl time.Duration) (*Cached, error) {
	cache, err := util.NewLRUCache[string, []float32](util.CacheConfig{
		Capacity: capacity,
		TTL:      ttl,
	})
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector for text, falling back to the inner model.
func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.cache.Get(text); ok {
		return vec, nil
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Put(text, vec)
	return vec, nil
}

// EmbedBatch resolves cached texts locally and asks the inner model only for
// the misses, preserving input order in the result.
func (c *Cached) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		if vec, ok := c.cache.Get(text); ok {
			result[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) > 0 {
		embeddings, err := c.inner.EmbedBatch(ctx, missTexts)
		if err != nil {
			return nil, err
		}
		for j, i := range missIdx {
			result[i] = embeddings[j]
			c.cache.Put(texts[i], embeddings[j])
		}
	}

	return result, nil
}

var _ Embedding = (*Cached)(nil)

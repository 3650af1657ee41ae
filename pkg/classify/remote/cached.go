package remote

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/designtree/pkg/cache"
	"github.com/matzehuels/designtree/pkg/classify"
	"github.com/matzehuels/designtree/pkg/design"
	"github.com/matzehuels/designtree/pkg/observability"
)

// DefaultCacheSize is the LRU capacity used when none is configured.
const DefaultCacheSize = 1024

// Cached memoises an external classifier by summary hash. Answers are kept
// in an in-process LRU and, when a store is configured, in a shared
// [cache.Cache]. Failures are never cached.
type Cached struct {
	inner classify.External
	mem   *lru.Cache[string, design.Classification]
	store cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
	log   *log.Logger
}

// CachedOption configures a [Cached] classifier.
type CachedOption func(*Cached)

// WithStore adds a shared second-level cache.
func WithStore(store cache.Cache, keyer cache.Keyer, ttl time.Duration) CachedOption {
	return func(c *Cached) {
		c.store = store
		if keyer != nil {
			c.keyer = keyer
		}
		c.ttl = ttl
	}
}

// WithCacheLogger sets the logger for store errors.
func WithCacheLogger(l *log.Logger) CachedOption {
	return func(c *Cached) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCached wraps inner with an LRU of the given size.
func NewCached(inner classify.External, size int, opts ...CachedOption) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	mem, err := lru.New[string, design.Classification](size)
	if err != nil {
		return nil, err
	}
	c := &Cached{
		inner: inner,
		mem:   mem,
		keyer: cache.NewDefaultKeyer(),
		log:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name implements [classify.External].
func (c *Cached) Name() string { return c.inner.Name() }

// CacheKey implements [classify.CacheKeyer] by forwarding to the wrapped
// classifier.
func (c *Cached) CacheKey() string { return classify.CacheKey(c.inner) }

// Len returns the number of answers held in memory.
func (c *Cached) Len() int { return c.mem.Len() }

// Classify implements [classify.External].
func (c *Cached) Classify(ctx context.Context, s classify.Summary) (design.Classification, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return design.Classification{}, err
	}
	key := c.keyer.ClassificationKey(classify.CacheKey(c.inner), cache.Hash(payload))
	hooks := observability.Cache()

	if got, ok := c.mem.Get(key); ok {
		hooks.OnCacheHit(ctx, "classification")
		return got, nil
	}
	if c.store != nil {
		if data, ok, err := c.store.Get(ctx, key); err != nil {
			c.log.Warn("classification cache read failed", "err", err)
		} else if ok {
			var got design.Classification
			if json.Unmarshal(data, &got) == nil {
				hooks.OnCacheHit(ctx, "classification")
				c.mem.Add(key, got)
				return got, nil
			}
		}
	}
	hooks.OnCacheMiss(ctx, "classification")

	got, err := c.inner.Classify(ctx, s)
	if err != nil {
		return design.Classification{}, err
	}
	c.mem.Add(key, got)
	if c.store != nil {
		if data, err := json.Marshal(got); err == nil {
			if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
				c.log.Warn("classification cache write failed", "err", err)
			} else {
				hooks.OnCacheSet(ctx, "classification", len(data))
			}
		}
	}
	return got, nil
}

var _ classify.External = (*Cached)(nil)

package charts

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/lox/genevaclimate/internal/metrics"
	"github.com/lox/genevaclimate/internal/models"
)

// Cache keeps rendered images for a short period.
type Cache struct {
	mu    sync.RWMutex
	clock clockwork.Clock
	ttl   time.Duration
	items map[string]cacheEntry
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewCache creates a cache whose entries expire after ttl.
func NewCache(clock clockwork.Clock, ttl time.Duration) *Cache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		clock: clock,
		ttl:   ttl,
		items: make(map[string]cacheEntry),
	}
}

// Get returns the cached image for key if still valid.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || c.clock.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.data, true
}

// Set stores data under key, dropping any expired entries.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	for k, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, k)
		}
	}
	c.items[key] = cacheEntry{data: data, expiresAt: now.Add(c.ttl)}
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// GetOrRender returns the cached image for key, rendering and storing it on a miss.
// Failed renders are not cached.
func (c *Cache) GetOrRender(key string, render func() ([]byte, error)) ([]byte, error) {
	if data, ok := c.Get(key); ok {
		metrics.ImageCacheTotal.WithLabelValues("hit").Inc()
		return data, nil
	}
	metrics.ImageCacheTotal.WithLabelValues("miss").Inc()

	data, err := render()
	if err != nil {
		return nil, err
	}
	c.Set(key, data)
	return data, nil
}

// Renderer renders trend charts through a cache.
type Renderer struct {
	cache *Cache
	clock clockwork.Clock
}

func NewRenderer(cache *Cache, clock clockwork.Clock) *Renderer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Renderer{cache: cache, clock: clock}
}

// Chart renders the named series for records, which must already be filtered
// to [minYear, maxYear].
func (r *Renderer) Chart(name string, records []models.WeatherRecord, minYear, maxYear int) ([]byte, error) {
	s, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	render := func() ([]byte, error) {
		start := r.clock.Now()
		defer func() {
			metrics.ChartRenderSeconds.WithLabelValues(s.Name).Observe(r.clock.Since(start).Seconds())
		}()
		return Render(s, records)
	}
	if r.cache == nil {
		return render()
	}
	return r.cache.GetOrRender(fmt.Sprintf("%s:%d:%d", s.Name, minYear, maxYear), render)
}

package geocode

import (
	"context"
	"strings"
	"sync"
	"time"

	"rental/internal/domain/model"

	"github.com/mmcloughlin/geohash"
)

// 7桁 ≒ 150m 四方
const cachePrecision = 7

type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (model.GeocodeResult, error)
	Forward(ctx context.Context, address string) (model.GeocodeResult, error)
}

type cacheEntry struct {
	result    model.GeocodeResult
	expiresAt time.Time
}

// 結果を TTL 付きで覚えるジオコーダ。
// 逆変換のキーは geohash なので近い座標は同じ住所になる。
type Cached struct {
	inner Geocoder
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	reverse map[string]cacheEntry
	forward map[string]cacheEntry
}

func NewCached(inner Geocoder, ttl time.Duration) *Cached {
	return &Cached{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		reverse: map[string]cacheEntry{},
		forward: map[string]cacheEntry{},
	}
}

func (c *Cached) Reverse(ctx context.Context, lat, lng float64) (model.GeocodeResult, error) {
	key := geohash.EncodeWithPrecision(lat, lng, cachePrecision)
	if res, ok := c.lookup(c.reverse, key); ok {
		res.Latitude, res.Longitude = lat, lng
		return res, nil
	}

	res, err := c.inner.Reverse(ctx, lat, lng)
	if err != nil {
		return model.GeocodeResult{}, err
	}
	c.store(c.reverse, key, res)
	return res, nil
}

func (c *Cached) Forward(ctx context.Context, address string) (model.GeocodeResult, error) {
	key := strings.Join(strings.Fields(address), " ")
	if res, ok := c.lookup(c.forward, key); ok {
		return res, nil
	}

	res, err := c.inner.Forward(ctx, address)
	if err != nil {
		return model.GeocodeResult{}, err
	}
	c.store(c.forward, key, res)
	return res, nil
}

func (c *Cached) lookup(m map[string]cacheEntry, key string) (model.GeocodeResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := m[key]
	if !ok {
		return model.GeocodeResult{}, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(m, key)
		return model.GeocodeResult{}, false
	}
	return e.result, true
}

func (c *Cached) store(m map[string]cacheEntry, key string, res model.GeocodeResult) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	m[key] = cacheEntry{result: res, expiresAt: c.now().Add(c.ttl)}
}

package device

import (
	"context"
	"sync"
	"time"

	"rental/internal/domain/model"
)

type Positioner interface {
	CurrentPosition(ctx context.Context, opts model.PositionOptions) (model.Position, error)
}

// MaximumAge 以内の座標があれば端末に問い合わせずに返す
type Caching struct {
	inner Positioner
	now   func() time.Time

	mu   sync.Mutex
	last *model.Position
}

func NewCaching(inner Positioner) *Caching {
	return &Caching{inner: inner, now: time.Now}
}

func (c *Caching) CurrentPosition(ctx context.Context, opts model.PositionOptions) (model.Position, error) {
	if p, ok := c.fresh(opts.MaximumAge); ok {
		return p, nil
	}

	pos, err := c.inner.CurrentPosition(ctx, opts)
	if err != nil {
		return model.Position{}, err
	}
	if pos.Timestamp.IsZero() {
		pos.Timestamp = c.now()
	}

	c.mu.Lock()
	c.last = &pos
	c.mu.Unlock()
	return pos, nil
}

func (c *Caching) fresh(maxAge time.Duration) (model.Position, bool) {
	if maxAge <= 0 {
		return model.Position{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return model.Position{}, false
	}
	if c.now().Sub(c.last.Timestamp) > maxAge {
		return model.Position{}, false
	}
	return *c.last, true
}

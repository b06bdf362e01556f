package device

import (
	"context"
	"errors"
	"sync"
	"time"

	"rental/internal/domain/model"
)

type outcome struct {
	pos model.Position
	err error
}

// ブラウザを端末として扱う。
// CurrentPosition はブラウザから座標かエラーコードが届くまで待つ。
type Relay struct {
	now func() time.Time

	mu      sync.Mutex
	waiters []chan outcome
}

func NewRelay() *Relay {
	return &Relay{now: time.Now}
}

func (r *Relay) CurrentPosition(ctx context.Context, _ model.PositionOptions) (model.Position, error) {
	ch := make(chan outcome, 1)
	r.mu.Lock()
	r.waiters = append(r.waiters, ch)
	r.mu.Unlock()

	select {
	case o := <-ch:
		return o.pos, o.err
	case <-ctx.Done():
		r.remove(ch)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return model.Position{}, model.ErrPositionTimeout
		}
		return model.Position{}, ctx.Err()
	}
}

// Report はブラウザから届いた座標を待っている全員に渡す。
// 渡した数を返す（0 なら誰も待っていない）。
func (r *Relay) Report(pos model.Position) int {
	if pos.Timestamp.IsZero() {
		pos.Timestamp = r.now()
	}
	return r.deliver(outcome{pos: pos})
}

// ReportError は W3C のエラーコードを渡す。
func (r *Relay) ReportError(code int) int {
	return r.deliver(outcome{err: model.PositionErrorFromCode(code)})
}

// Pending は待っている問い合わせの数。
func (r *Relay) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.waiters)
}

func (r *Relay) deliver(o outcome) int {
	r.mu.Lock()
	waiters := r.waiters
	r.waiters = nil
	r.mu.Unlock()

	for _, ch := range waiters {
		ch <- o
	}
	return len(waiters)
}

func (r *Relay) remove(ch chan outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, w := range r.waiters {
		if w == ch {
			r.waiters = append(r.waiters[:i], r.waiters[i+1:]...)
			return
		}
	}
}

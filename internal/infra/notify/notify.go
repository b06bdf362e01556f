// Package notify は位置の確定/失敗の通知先（ログ・RabbitMQ・Fluent）。
package notify

import (
	"context"
	"log/slog"

	"rental/internal/domain/model"
)

type Notifier interface {
	Notify(ctx context.Context, n model.Notification)
}

// ログに出すだけの通知先
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger.With("component", "notify")}
}

func (l *Log) Notify(ctx context.Context, n model.Notification) {
	attrs := []any{"id", n.ID, "kind", n.Kind, "message", n.Message}
	if n.Location != nil {
		attrs = append(attrs, "district", n.Location.District)
	}
	if n.Kind == model.NotificationError {
		l.logger.WarnContext(ctx, "location notification", append(attrs, "reason", n.Reason)...)
		return
	}
	l.logger.InfoContext(ctx, "location notification", attrs...)
}

// 複数の通知先に順に流す
type Multi struct {
	targets []Notifier
}

func NewMulti(targets ...Notifier) *Multi {
	out := make([]Notifier, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			out = append(out, t)
		}
	}
	return &Multi{targets: out}
}

func (m *Multi) Notify(ctx context.Context, n model.Notification) {
	for _, t := range m.targets {
		t.Notify(ctx, n)
	}
}

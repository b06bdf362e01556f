package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"rental/internal/domain/model"

	"github.com/fluent/fluent-logger-golang/fluent"
)

type poster interface {
	Post(tag string, message interface{}) error
}

// 通知を Fluent Bit / fluentd に送る
type Fluent struct {
	client poster
	logger *slog.Logger
	closer func() error
}

func NewFluent(client poster, logger *slog.Logger) *Fluent {
	return &Fluent{
		client: client,
		logger: logger.With("component", "notify_fluent"),
		closer: func() error { return nil },
	}
}

// DialFluent は非同期クライアントを作る。
func DialFluent(host string, port int, tagPrefix string, logger *slog.Logger) (*Fluent, error) {
	client, err := fluent.New(fluent.Config{
		FluentHost: host,
		FluentPort: port,
		TagPrefix:  tagPrefix,
		Async:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("fluent client: %w", err)
	}
	f := NewFluent(client, logger)
	f.closer = client.Close
	return f, nil
}

func (f *Fluent) Notify(_ context.Context, n model.Notification) {
	data := map[string]interface{}{
		"id":        n.ID,
		"kind":      string(n.Kind),
		"message":   n.Message,
		"timestamp": n.At.UTC().Format(time.RFC3339Nano),
	}
	if n.Reason != "" {
		data["reason"] = string(n.Reason)
	}
	if n.Location != nil {
		data["address"] = n.Location.Address
		data["district"] = n.Location.District
		data["latitude"] = n.Location.Latitude
		data["longitude"] = n.Location.Longitude
	}

	tag := "location." + strings.ToLower(string(n.Kind))
	if err := f.client.Post(tag, data); err != nil {
		f.logger.Error("fluent post failed", "id", n.ID, "error", err)
	}
}

func (f *Fluent) Close() error {
	return f.closer()
}

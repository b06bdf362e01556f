package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"rental/internal/domain/model"

	amqp "github.com/rabbitmq/amqp091-go"
)

// *amqp.Channel の publish 部分
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// 通知を JSON にして fanout exchange に流す
type AMQP struct {
	pub      publisher
	exchange string
	logger   *slog.Logger
	closer   func() error

	mu sync.Mutex
}

func NewAMQP(pub publisher, exchange string, logger *slog.Logger) *AMQP {
	return &AMQP{
		pub:      pub,
		exchange: exchange,
		logger:   logger.With("component", "notify_amqp"),
		closer:   func() error { return nil },
	}
}

// DialAMQP は接続して exchange を宣言する。
func DialAMQP(url, exchange string, logger *slog.Logger) (*AMQP, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp exchange declare: %w", err)
	}

	a := NewAMQP(ch, exchange, logger)
	a.closer = func() error {
		_ = ch.Close()
		return conn.Close()
	}
	return a, nil
}

// 失敗してもログに残すだけ（投げっぱなし）
func (a *AMQP) Notify(ctx context.Context, n model.Notification) {
	body, err := json.Marshal(n)
	if err != nil {
		a.logger.Error("marshal notification failed", "error", err)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	err = a.pub.PublishWithContext(ctx, a.exchange, string(n.Kind), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    n.ID,
		Timestamp:    n.At,
		Type:         "location." + string(n.Kind),
		Body:         body,
	})
	if err != nil {
		a.logger.Error("publish notification failed", "id", n.ID, "error", err)
	}
}

func (a *AMQP) Close() error {
	return a.closer()
}

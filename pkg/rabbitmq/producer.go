package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Publisher публикует сообщения в exchange
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte, options ...PublishOption) error
}

// Producer представляет продюсера сообщений
type Producer struct {
	conn   *Connection
	config *Config
}

// NewProducer создает нового продюсера
func NewProducer(conn *Connection, config *Config) *Producer {
	return &Producer{conn: conn, config: config}
}

// Publish публикует сообщение и ждет подтверждения брокера. Повторов нет:
// вызывающая сторона решает, критична ли потеря сообщения.
func (p *Producer) Publish(ctx context.Context, routingKey string, body []byte, options ...PublishOption) error {
	opts := &PublishOptions{
		Exchange:   p.config.Exchange,
		RoutingKey: routingKey,
	}
	for _, option := range options {
		option(opts)
	}

	if p.conn == nil || p.conn.Channel() == nil {
		return fmt.Errorf("rabbitmq channel is not initialized")
	}

	msg := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    opts.MessageID,
		Type:         opts.Type,
		Headers:      opts.Headers,
	}

	p.conn.mu.Lock()
	defer p.conn.mu.Unlock()

	if err := p.conn.Channel().PublishWithContext(ctx, opts.Exchange, opts.RoutingKey, opts.Mandatory, false, msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	timeout := p.config.ConfirmTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	select {
	case confirm, ok := <-p.conn.confirms:
		if !ok {
			return fmt.Errorf("confirmation channel closed")
		}
		if !confirm.Ack {
			return fmt.Errorf("message rejected by broker")
		}
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for confirmation: %w", ctx.Err())
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for confirmation")
	}

	return nil
}

// PublishOptions представляет опции для публикации сообщения
type PublishOptions struct {
	Exchange   string
	RoutingKey string
	Mandatory  bool
	MessageID  string
	Type       string
	Headers    amqp091.Table
}

// PublishOption функция для настройки опций публикации
type PublishOption func(*PublishOptions)

// WithExchange устанавливает exchange
func WithExchange(exchange string) PublishOption {
	return func(opts *PublishOptions) {
		opts.Exchange = exchange
	}
}

// WithMandatory устанавливает mandatory флаг
func WithMandatory(mandatory bool) PublishOption {
	return func(opts *PublishOptions) {
		opts.Mandatory = mandatory
	}
}

// WithMessageID задает идентификатор сообщения
func WithMessageID(id string) PublishOption {
	return func(opts *PublishOptions) {
		opts.MessageID = id
	}
}

// WithType задает тип события
func WithType(eventType string) PublishOption {
	return func(opts *PublishOptions) {
		opts.Type = eventType
	}
}

// WithHeaders устанавливает заголовки
func WithHeaders(headers amqp091.Table) PublishOption {
	return func(opts *PublishOptions) {
		opts.Headers = headers
	}
}

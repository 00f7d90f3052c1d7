package rabbitmq

import (
	"context"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// MessageHandler функция для обработки сообщения
type MessageHandler func(context.Context, amqp091.Delivery) error

// Consumer читает события из exchange через временную очередь
type Consumer struct {
	conn   *Connection
	config *Config
}

// NewConsumer создает нового консьюмера
func NewConsumer(conn *Connection, config *Config) *Consumer {
	return &Consumer{conn: conn, config: config}
}

// Tail привязывает эксклюзивную очередь к exchange по bindingKey и передает
// сообщения в handler до отмены контекста или ошибки обработчика.
func (c *Consumer) Tail(ctx context.Context, bindingKey string, handler MessageHandler) error {
	if c.conn == nil || c.conn.Channel() == nil {
		return fmt.Errorf("rabbitmq channel is not initialized")
	}
	if bindingKey == "" {
		bindingKey = "#"
	}

	ch := c.conn.Channel()

	queue, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(queue.Name, bindingKey, c.config.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s to exchange %s: %w", queue.Name, c.config.Exchange, err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, queue.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("consumer channel closed")
			}
			if err := handler(ctx, msg); err != nil {
				return err
			}
		}
	}
}

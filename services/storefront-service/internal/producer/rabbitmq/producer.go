package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"StorefrontPlatform/pkg/logger"
	"StorefrontPlatform/pkg/rabbitmq"
	"StorefrontPlatform/services/storefront-service/internal/domain"
	"StorefrontPlatform/services/storefront-service/internal/metrics"
)

const serviceName = "storefront-service"

// EventPublisher публикует события жизненного цикла заказа
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, eventType string, order *domain.Order)
}

// OrderProducer публикует события заказов в topic exchange.
// Ошибки брокера не возвращаются: заказ уже сохранен, событие вторично.
type OrderProducer struct {
	publisher rabbitmq.Publisher
	logger    logger.Logger
	metrics   *metrics.StoreMetrics
	timeout   time.Duration
	now       func() time.Time
}

// NewOrderProducer создает новый producer событий заказов
func NewOrderProducer(publisher rabbitmq.Publisher, log logger.Logger, m *metrics.StoreMetrics) *OrderProducer {
	return &OrderProducer{
		publisher: publisher,
		logger:    log,
		metrics:   m,
		timeout:   5 * time.Second,
		now:       time.Now,
	}
}

// PublishOrderEvent публикует событие; routing key совпадает с типом события
func (p *OrderProducer) PublishOrderEvent(ctx context.Context, eventType string, order *domain.Order) {
	if order == nil {
		return
	}

	event := domain.OrderEvent{
		EventType:  eventType,
		PurchaseID: order.PurchaseID,
		Status:     order.Status,
		ProductID:  order.ProductID,
		Price:      order.Price,
		Timestamp:  p.now().UTC(),
		Service:    serviceName,
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal order event", logger.CtxField(ctx), logger.Error(err))
		p.metrics.RecordEvent(eventType, err)
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	err = p.publisher.Publish(pubCtx, eventType, body,
		rabbitmq.WithMessageID(uuid.NewString()),
		rabbitmq.WithType(eventType),
	)
	p.metrics.RecordEvent(eventType, err)
	if err != nil {
		p.logger.Warn("Failed to publish order event",
			logger.CtxField(ctx),
			logger.String("event_type", eventType),
			logger.String("purchase_id", order.PurchaseID),
			logger.Error(err))
		return
	}

	p.logger.Debug("Order event published",
		logger.CtxField(ctx),
		logger.String("event_type", eventType),
		logger.String("purchase_id", order.PurchaseID))
}

// NoopPublisher используется, когда RabbitMQ выключен
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderEvent(context.Context, string, *domain.Order) {}

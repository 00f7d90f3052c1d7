package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"StorefrontPlatform/pkg/errors"
	"StorefrontPlatform/pkg/logger"
	"StorefrontPlatform/pkg/validation"
	"StorefrontPlatform/services/storefront-service/internal/domain"
	"StorefrontPlatform/services/storefront-service/internal/metrics"
	"StorefrontPlatform/services/storefront-service/internal/notifier"
	"StorefrontPlatform/services/storefront-service/internal/pkg/purchaseid"
	"StorefrontPlatform/services/storefront-service/internal/producer/rabbitmq"
	"StorefrontPlatform/services/storefront-service/internal/repository"
)

const (
	defaultPaymentNumber = "01576593082"
	minTransactionID     = 5
)

var tracer = otel.Tracer("StorefrontPlatform/services/storefront-service/internal/service")

// Dispatcher рассылает уведомления о заказе и возвращает итог по каналам
type Dispatcher interface {
	Dispatch(ctx context.Context, order *domain.Order, cfg *domain.Config) map[string]notifier.Result
}

// InitiateResult все, что нужно покупателю для перевода денег
type InitiateResult struct {
	PurchaseID     string   `json:"purchaseId"`
	PaymentNumber  string   `json:"paymentNumber"`
	PaymentMethods []string `json:"paymentMethods"`
	Amount         float64  `json:"amount"`
}

const errPurchaseNotFound = "Purchase ID not found. Please start checkout again."

// CompleteInput данные, которые покупатель присылает после оплаты
type CompleteInput struct {
	PurchaseID    string `json:"purchaseId"`
	TransactionID string `json:"transactionId"`
	Telegram      string `json:"telegram"`
	Email         string `json:"email"`
}

// CompleteResult итог подтверждения оплаты
type CompleteResult struct {
	PurchaseID   string `json:"purchaseId"`
	Status       string `json:"status"`
	TelegramSent bool   `json:"telegramSent"`
	EmailSent    bool   `json:"emailSent"`
}

// OrderService жизненный цикл заказа: создание, подтверждение оплаты покупателем,
// смена статуса и удаление администратором
type OrderService struct {
	configs       repository.ConfigRepository
	orders        repository.OrderRepository
	notify        Dispatcher
	events        rabbitmq.EventPublisher
	validator     *validation.Validator
	paymentNumber string
	logger        logger.Logger
	metrics       *metrics.StoreMetrics
}

// NewOrderService создает новый экземпляр OrderService.
// paymentNumber используется, если в конфигурации номер не задан.
func NewOrderService(
	configs repository.ConfigRepository,
	orders repository.OrderRepository,
	notify Dispatcher,
	events rabbitmq.EventPublisher,
	paymentNumber string,
	log logger.Logger,
	m *metrics.StoreMetrics,
) *OrderService {
	if events == nil {
		events = rabbitmq.NoopPublisher{}
	}
	return &OrderService{
		configs:       configs,
		orders:        orders,
		notify:        notify,
		events:        events,
		validator:     validation.NewValidator(),
		paymentNumber: validation.Coalesce(paymentNumber, defaultPaymentNumber),
		logger:        log,
		metrics:       m,
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(errors.CodeOf(err)))
	}
	span.End()
}

// Initiate создает заказ в статусе awaiting_payment со снимком цены товара
func (s *OrderService) Initiate(ctx context.Context, productID, ip string) (res *InitiateResult, err error) {
	ctx, span := tracer.Start(ctx, "OrderService.Initiate")
	defer func() { endSpan(span, err); s.metrics.RecordOrder("initiate", err) }()

	productID = strings.TrimSpace(productID)
	if err := s.validator.Required(productID, "Product required"); err != nil {
		return nil, err
	}

	cfg, err := s.configs.GetOrInit(ctx)
	if err != nil {
		return nil, err
	}

	product, ok := cfg.FindProduct(productID)
	if !ok {
		return nil, errors.New(errors.ErrNotFound, "Product not found")
	}

	order, err := s.orders.Create(ctx, product, ip)
	if err != nil {
		s.logger.Error("Failed to create order", logger.CtxField(ctx), logger.String("product_id", productID), logger.Error(err))
		return nil, err
	}
	span.SetAttributes(attribute.String("purchase_id", order.PurchaseID))

	s.logger.Info("Order initiated",
		logger.CtxField(ctx),
		logger.String("purchase_id", order.PurchaseID),
		logger.String("product_id", order.ProductID),
		logger.Float64("price", order.Price))
	s.events.PublishOrderEvent(ctx, domain.EventOrderInitiated, order)

	return &InitiateResult{
		PurchaseID:     order.PurchaseID,
		PaymentNumber:  validation.Coalesce(cfg.Payment.Number, s.paymentNumber),
		PaymentMethods: cfg.Payment.Methods,
		Amount:         order.Price,
	}, nil
}

func (s *OrderService) validateComplete(in CompleteInput) error {
	return validation.First(
		s.validator.Required(in.PurchaseID, "Purchase ID missing"),
		s.validator.MinLength(in.TransactionID, minTransactionID, "Invalid Transaction ID"),
		s.validator.Required(in.Telegram, "Telegram username required"),
		s.validator.Email(in.Email, "Invalid email address"),
	)
}

// Complete переводит заказ в under_review с данными оплаты и уведомляет
// администратора и покупателя. Повторная отправка перезаписывает поля.
// Ошибки уведомлений не откатывают уже сохраненный заказ.
func (s *OrderService) Complete(ctx context.Context, in CompleteInput) (res *CompleteResult, err error) {
	ctx, span := tracer.Start(ctx, "OrderService.Complete")
	defer func() { endSpan(span, err); s.metrics.RecordOrder("complete", err) }()

	in = CompleteInput{
		PurchaseID:    strings.TrimSpace(in.PurchaseID),
		TransactionID: strings.TrimSpace(in.TransactionID),
		Telegram:      strings.TrimSpace(in.Telegram),
		Email:         strings.TrimSpace(in.Email),
	}
	if err := s.validateComplete(in); err != nil {
		return nil, err
	}
	// Идентификатор не нашего формата не может существовать в хранилище
	if !purchaseid.Valid(in.PurchaseID) {
		return nil, errors.New(errors.ErrNotFound, errPurchaseNotFound)
	}

	cfg, err := s.configs.GetOrInit(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.Patch(ctx, in.PurchaseID, domain.OrderPatch{
		Status:        domain.Ptr(domain.StatusUnderReview),
		TransactionID: domain.Ptr(in.TransactionID),
		Telegram:      domain.Ptr(in.Telegram),
		Email:         domain.Ptr(in.Email),
	})
	if err != nil {
		if errors.HasCode(err, errors.ErrNotFound) {
			return nil, errors.New(errors.ErrNotFound, errPurchaseNotFound)
		}
		s.logger.Error("Failed to complete order", logger.CtxField(ctx), logger.String("purchase_id", in.PurchaseID), logger.Error(err))
		return nil, err
	}
	span.SetAttributes(attribute.String("purchase_id", order.PurchaseID))

	s.logger.Info("Order submitted for review", logger.CtxField(ctx), logger.String("purchase_id", order.PurchaseID))
	s.events.PublishOrderEvent(ctx, domain.EventOrderUnderReview, order)

	results := s.notify.Dispatch(ctx, order, cfg)

	return &CompleteResult{
		PurchaseID:   order.PurchaseID,
		Status:       order.Status,
		TelegramSent: results[notifier.ChannelTelegram].OK,
		EmailSent:    results[notifier.ChannelEmailJS].OK,
	}, nil
}

// SetStatus выставляет произвольный непустой статус
func (s *OrderService) SetStatus(ctx context.Context, purchaseID, status string) (err error) {
	ctx, span := tracer.Start(ctx, "OrderService.SetStatus")
	defer func() { endSpan(span, err); s.metrics.RecordOrder("set_status", err) }()

	purchaseID = strings.TrimSpace(purchaseID)
	status = strings.TrimSpace(status)
	if purchaseID == "" || status == "" {
		return errors.New(errors.ErrValidation, "Missing fields")
	}

	order, err := s.orders.Patch(ctx, purchaseID, domain.OrderPatch{Status: domain.Ptr(status)})
	if err != nil {
		return err
	}

	s.logger.Info("Order status changed",
		logger.CtxField(ctx),
		logger.String("purchase_id", purchaseID),
		logger.String("status", status))
	s.events.PublishOrderEvent(ctx, domain.EventOrderStatusChanged, order)
	return nil
}

// Delete удаляет заказ; повторное удаление не ошибка
func (s *OrderService) Delete(ctx context.Context, purchaseID string) (err error) {
	ctx, span := tracer.Start(ctx, "OrderService.Delete")
	defer func() { endSpan(span, err); s.metrics.RecordOrder("delete", err) }()

	purchaseID = strings.TrimSpace(purchaseID)
	if purchaseID == "" {
		return errors.New(errors.ErrValidation, "Missing purchaseId")
	}

	if err := s.orders.Delete(ctx, purchaseID); err != nil {
		return err
	}

	s.logger.Info("Order deleted", logger.CtxField(ctx), logger.String("purchase_id", purchaseID))
	s.events.PublishOrderEvent(ctx, domain.EventOrderDeleted, &domain.Order{PurchaseID: purchaseID})
	return nil
}

// List возвращает последние заказы для администратора
func (s *OrderService) List(ctx context.Context, limit int) ([]*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.List")
	orders, err := s.orders.List(ctx, limit)
	endSpan(span, err)
	return orders, err
}

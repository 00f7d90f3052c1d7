package notifier

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"StorefrontPlatform/pkg/logger"
	"StorefrontPlatform/services/storefront-service/internal/domain"
	"StorefrontPlatform/services/storefront-service/internal/metrics"
)

// Имена каналов
const (
	ChannelTelegram = "telegram"
	ChannelEmailJS  = "emailjs"
)

// Result итог одной попытки уведомления
type Result struct {
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Outcome метка для метрик: sent, skipped или failed
func (r Result) Outcome() string {
	switch {
	case r.OK:
		return "sent"
	case r.Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Notifier канал уведомлений. Send не возвращает ошибок: все сбои попадают в Result.
type Notifier interface {
	Name() string
	Send(ctx context.Context, order *domain.Order, cfg *domain.Config) Result
}

// SafeSend вызывает Send и превращает панику в неуспешный Result
func SafeSend(ctx context.Context, n Notifier, order *domain.Order, cfg *domain.Config) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{OK: false, Error: fmt.Sprintf("notifier panic: %v", r)}
		}
	}()
	return n.Send(ctx, order, cfg)
}

// Dispatcher рассылает уведомление по всем каналам параллельно и независимо
type Dispatcher struct {
	notifiers []Notifier
	timeout   time.Duration
	logger    logger.Logger
	metrics   *metrics.StoreMetrics
}

// NewDispatcher создает новый Dispatcher; timeout ограничивает каждый канал отдельно
func NewDispatcher(timeout time.Duration, log logger.Logger, m *metrics.StoreMetrics, notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{
		notifiers: notifiers,
		timeout:   timeout,
		logger:    log,
		metrics:   m,
	}
}

// Dispatch дожидается всех каналов и возвращает результат по имени канала.
// Отмена запроса покупателя не прерывает отправку, действует только timeout.
func (d *Dispatcher) Dispatch(ctx context.Context, order *domain.Order, cfg *domain.Config) map[string]Result {
	results := make([]Result, len(d.notifiers))
	base := context.WithoutCancel(ctx)

	var g errgroup.Group
	for i, n := range d.notifiers {
		i, n := i, n
		g.Go(func() error {
			sendCtx := base
			if d.timeout > 0 {
				var cancel context.CancelFunc
				sendCtx, cancel = context.WithTimeout(base, d.timeout)
				defer cancel()
			}

			start := time.Now()
			res := SafeSend(sendCtx, n, order, cfg)
			d.metrics.RecordNotification(n.Name(), res.Outcome(), time.Since(start))

			if !res.OK && !res.Skipped {
				d.logger.Warn("Notification failed",
					logger.CtxField(ctx),
					logger.String("channel", n.Name()),
					logger.String("purchase_id", order.PurchaseID),
					logger.String("error", res.Error))
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]Result, len(results))
	for i, n := range d.notifiers {
		out[n.Name()] = results[i]
	}
	return out
}

// FormatPrice печатает цену без лишних нулей: 199, 12.5
func FormatPrice(price float64) string {
	return "৳" + strconv.FormatFloat(price, 'f', -1, 64)
}

// FormatTime время в формате ISO 8601 с миллисекундами
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

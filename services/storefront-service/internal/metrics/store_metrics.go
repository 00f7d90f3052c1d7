package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"StorefrontPlatform/pkg/metrics"
)

// StoreMetrics метрики магазина поверх базовых HTTP метрик
type StoreMetrics struct {
	base *metrics.Metrics

	ordersTotal     *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	notifyDuration  *prometheus.HistogramVec
	loginsTotal     *prometheus.CounterVec
	configEdits     *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
}

// NewStoreMetrics создает метрики и регистрирует их в реестре base
func NewStoreMetrics(base *metrics.Metrics) *StoreMetrics {
	ns := base.Namespace

	ordersTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "orders",
			Name:      "transitions_total",
			Help:      "Order lifecycle transitions by operation and result",
		},
		[]string{"operation", "result"},
	)

	notifications := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Notification attempts by channel and outcome (sent, skipped, failed)",
		},
		[]string{"channel", "outcome"},
	)

	notifyDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "notify",
			Name:      "duration_seconds",
			Help:      "Duration of notification delivery attempts",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"channel"},
	)

	loginsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "admin",
			Name:      "logins_total",
			Help:      "Admin login attempts by result",
		},
		[]string{"result"},
	)

	configEdits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "config",
			Name:      "edits_total",
			Help:      "Store config edits by result",
		},
		[]string{"result"},
	)

	eventsPublished := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Order events published to the broker by type and result",
		},
		[]string{"event_type", "result"},
	)

	base.Registry.MustRegister(ordersTotal, notifications, notifyDuration, loginsTotal, configEdits, eventsPublished)

	return &StoreMetrics{
		base:            base,
		ordersTotal:     ordersTotal,
		notifications:   notifications,
		notifyDuration:  notifyDuration,
		loginsTotal:     loginsTotal,
		configEdits:     configEdits,
		eventsPublished: eventsPublished,
	}
}

// Base возвращает базовые HTTP метрики
func (m *StoreMetrics) Base() *metrics.Metrics {
	return m.base
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordOrder учитывает переход заказа: initiate, complete, set_status, delete
func (m *StoreMetrics) RecordOrder(operation string, err error) {
	if m == nil {
		return
	}
	m.ordersTotal.WithLabelValues(operation, result(err)).Inc()
}

// RecordNotification учитывает попытку уведомления
func (m *StoreMetrics) RecordNotification(channel, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(channel, outcome).Inc()
	m.notifyDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordLogin учитывает попытку входа администратора
func (m *StoreMetrics) RecordLogin(err error) {
	if m == nil {
		return
	}
	m.loginsTotal.WithLabelValues(result(err)).Inc()
}

// RecordConfigEdit учитывает правку конфигурации
func (m *StoreMetrics) RecordConfigEdit(err error) {
	if m == nil {
		return
	}
	m.configEdits.WithLabelValues(result(err)).Inc()
}

// RecordEvent учитывает публикацию события
func (m *StoreMetrics) RecordEvent(eventType string, err error) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(eventType, result(err)).Inc()
}

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"StorefrontPlatform/pkg/metrics"
)

func TestStoreMetrics(t *testing.T) {
	m := NewStoreMetrics(metrics.NewMetrics("storefront-service"))

	m.RecordOrder("initiate", nil)
	m.RecordOrder("initiate", nil)
	m.RecordOrder("complete", errors.New("boom"))
	m.RecordNotification("telegram", "sent", 120*time.Millisecond)
	m.RecordNotification("emailjs", "skipped", 0)
	m.RecordLogin(nil)
	m.RecordConfigEdit(errors.New("conflict"))
	m.RecordEvent("order.initiated", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersTotal.WithLabelValues("initiate", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersTotal.WithLabelValues("complete", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("telegram", "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("emailjs", "skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loginsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.configEdits.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsPublished.WithLabelValues("order.initiated", "success")))
	assert.NotNil(t, m.Base())
}

func TestStoreMetrics_NilSafe(t *testing.T) {
	var m *StoreMetrics
	assert.NotPanics(t, func() {
		m.RecordOrder("initiate", nil)
		m.RecordNotification("telegram", "failed", time.Second)
		m.RecordLogin(errors.New("x"))
		m.RecordConfigEdit(nil)
		m.RecordEvent("order.deleted", nil)
	})
}

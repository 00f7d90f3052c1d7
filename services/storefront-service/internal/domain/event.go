package domain

import "time"

// Типы событий заказа, они же routing key в exchange
const (
	EventOrderInitiated     = "order.initiated"
	EventOrderUnderReview   = "order.under_review"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderDeleted       = "order.deleted"
)

// OrderEvent событие жизненного цикла заказа
type OrderEvent struct {
	EventType  string    `json:"event_type"`
	PurchaseID string    `json:"purchase_id"`
	Status     string    `json:"status,omitempty"`
	ProductID  string    `json:"product_id,omitempty"`
	Price      float64   `json:"price,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Service    string    `json:"service"`
}

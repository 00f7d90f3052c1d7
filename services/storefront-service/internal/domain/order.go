package domain

import (
	"time"
)

// OrderKeyPrefix префикс ключей заказов в хранилище
const OrderKeyPrefix = "orders/"

// Статусы, которые выставляет сам магазин. Администратор может задать любой другой.
const (
	StatusAwaitingPayment = "awaiting_payment"
	StatusUnderReview     = "under_review"
)

// Order заказ покупателя. PurchaseID, ProductID, ProductName, Price и CreatedAt
// не меняются после создания.
type Order struct {
	PurchaseID    string     `json:"purchaseId"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt"`
	ProductID     string     `json:"productId"`
	ProductName   string     `json:"productName"`
	Price         float64    `json:"price"`
	TransactionID *string    `json:"transactionId"`
	Telegram      *string    `json:"telegram"`
	Email         *string    `json:"email"`
	IP            *string    `json:"ip"`
}

// OrderKey возвращает ключ хранилища для заказа
func OrderKey(purchaseID string) string {
	return OrderKeyPrefix + purchaseID
}

// NewOrder создает заказ со снимком товара в статусе awaiting_payment
func NewOrder(purchaseID string, product Product, ip string, now time.Time) *Order {
	return &Order{
		PurchaseID:  purchaseID,
		Status:      StatusAwaitingPayment,
		CreatedAt:   now.UTC(),
		ProductID:   product.ID,
		ProductName: product.Name,
		Price:       product.Price,
		IP:          optional(ip),
	}
}

// OrderPatch изменяемые поля заказа. Nil означает "не трогать".
type OrderPatch struct {
	Status        *string
	TransactionID *string
	Telegram      *string
	Email         *string
}

// Apply применяет патч и проставляет updatedAt
func (o *Order) Apply(patch OrderPatch, now time.Time) {
	if patch.Status != nil {
		o.Status = *patch.Status
	}
	if patch.TransactionID != nil {
		o.TransactionID = patch.TransactionID
	}
	if patch.Telegram != nil {
		o.Telegram = patch.Telegram
	}
	if patch.Email != nil {
		o.Email = patch.Email
	}
	t := now.UTC()
	o.UpdatedAt = &t
}

// LastChange время последнего изменения, или создания если изменений не было
func (o *Order) LastChange() time.Time {
	if o.UpdatedAt != nil {
		return *o.UpdatedAt
	}
	return o.CreatedAt
}

// Deref возвращает значение или пустую строку
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Ptr возвращает указатель на копию строки
func Ptr(s string) *string {
	return &s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

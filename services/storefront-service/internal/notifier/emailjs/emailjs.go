package emailjs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"StorefrontPlatform/pkg/logger"
	"StorefrontPlatform/pkg/validation"
	"StorefrontPlatform/services/storefront-service/internal/domain"
	"StorefrontPlatform/services/storefront-service/internal/notifier"
)

const (
	defaultAPIURL  = "https://api.emailjs.com/api/v1.0/email/send"
	defaultSupport = "@HiddenSupport"

	buyerMessage = "Thanks! Your purchase is under review. We will confirm and deliver shortly."
)

// Config учетные данные EmailJS и контакт поддержки по умолчанию
type Config struct {
	ServiceID       string
	TemplateID      string
	PublicKey       string
	APIURL          string
	Timeout         time.Duration
	SupportTelegram string
}

// Request тело запроса к EmailJS
type Request struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	TemplateParams TemplateParams `json:"template_params"`
}

// TemplateParams переменные шаблона письма покупателю
type TemplateParams struct {
	ProductName     string `json:"product_name"`
	Price           string `json:"price"`
	PurchaseID      string `json:"purchase_id"`
	TransactionID   string `json:"transaction_id"`
	SupportTelegram string `json:"support_telegram"`
	Message         string `json:"message"`
}

// Notifier отправляет покупателю письмо-подтверждение через EmailJS
type Notifier struct {
	config Config
	logger logger.Logger
	client *http.Client
}

// NewNotifier создает новый EmailJS канал
func NewNotifier(config Config, log logger.Logger) *Notifier {
	if config.APIURL == "" {
		config.APIURL = defaultAPIURL
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	return &Notifier{
		config: config,
		logger: log,
		client: &http.Client{Timeout: config.Timeout},
	}
}

func (n *Notifier) Name() string {
	return notifier.ChannelEmailJS
}

// Send отправляет письмо; без любого из идентификаторов EmailJS канал пропускается
func (n *Notifier) Send(ctx context.Context, order *domain.Order, cfg *domain.Config) notifier.Result {
	if n.config.ServiceID == "" || n.config.TemplateID == "" || n.config.PublicKey == "" {
		return notifier.Result{OK: false, Skipped: true}
	}

	if err := n.post(ctx, n.buildRequest(order, cfg)); err != nil {
		n.logger.Warn("EmailJS send failed",
			logger.CtxField(ctx),
			logger.String("purchase_id", order.PurchaseID),
			logger.Error(err))
		return notifier.Result{OK: false, Error: "EmailJS failed"}
	}

	n.logger.Info("EmailJS notification sent", logger.CtxField(ctx), logger.String("purchase_id", order.PurchaseID))
	return notifier.Result{OK: true}
}

func (n *Notifier) buildRequest(order *domain.Order, cfg *domain.Config) Request {
	var configured string
	if cfg != nil {
		configured = cfg.Support.Telegram
	}

	return Request{
		ServiceID:  n.config.ServiceID,
		TemplateID: n.config.TemplateID,
		UserID:     n.config.PublicKey,
		TemplateParams: TemplateParams{
			ProductName:     order.ProductName,
			Price:           notifier.FormatPrice(order.Price),
			PurchaseID:      order.PurchaseID,
			TransactionID:   domain.Deref(order.TransactionID),
			SupportTelegram: validation.Coalesce(configured, n.config.SupportTelegram, defaultSupport),
			Message:         buyerMessage,
		},
	}
}

func (n *Notifier) post(ctx context.Context, payload Request) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal EmailJS request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.APIURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("EmailJS status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"StorefrontPlatform/pkg/logger"
	"StorefrontPlatform/services/storefront-service/internal/domain"
	"StorefrontPlatform/services/storefront-service/internal/notifier"
)

// Config настройки Telegram бота, которому уходят новые заказы
type Config struct {
	BotToken string
	ChatID   string
	APIURL   string
	Timeout  time.Duration
}

// Message тело запроса sendMessage
type Message struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// Response ответ Telegram Bot API
type Response struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// Notifier сообщает администратору о заказе, ожидающем проверки
type Notifier struct {
	config Config
	logger logger.Logger
	client *http.Client
}

// NewNotifier создает новый Telegram канал
func NewNotifier(config Config, log logger.Logger) *Notifier {
	if config.APIURL == "" {
		config.APIURL = "https://api.telegram.org"
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
	return notifier.ChannelTelegram
}

// Send отправляет сводку заказа; без токена или chat id канал пропускается
func (n *Notifier) Send(ctx context.Context, order *domain.Order, _ *domain.Config) notifier.Result {
	if n.config.BotToken == "" || n.config.ChatID == "" {
		return notifier.Result{OK: false, Skipped: true}
	}

	if err := n.sendMessage(ctx, Message{ChatID: n.config.ChatID, Text: FormatOrder(order)}); err != nil {
		n.logger.Warn("Telegram send failed",
			logger.CtxField(ctx),
			logger.String("purchase_id", order.PurchaseID),
			logger.Error(err))
		return notifier.Result{OK: false, Error: "Telegram failed"}
	}

	n.logger.Info("Telegram notification sent", logger.CtxField(ctx), logger.String("purchase_id", order.PurchaseID))
	return notifier.Result{OK: true}
}

func (n *Notifier) sendMessage(ctx context.Context, message Message) error {
	jsonData, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal Telegram message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(n.config.APIURL, "/"), n.config.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var telegramResp Response
	decodeErr := json.NewDecoder(resp.Body).Decode(&telegramResp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Telegram API status %d: %s", resp.StatusCode, telegramResp.Description)
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if !telegramResp.OK {
		return fmt.Errorf("Telegram API error: %d - %s", telegramResp.ErrorCode, telegramResp.Description)
	}
	return nil
}

// FormatOrder текст уведомления о заказе на проверке
func FormatOrder(order *domain.Order) string {
	lines := []string{
		"🧾 New Order (Under Review)",
		"• Purchase ID: " + order.PurchaseID,
		"• Product: " + order.ProductName,
		"• Price: " + notifier.FormatPrice(order.Price),
		"• TrxID: " + domain.Deref(order.TransactionID),
		"• Telegram: " + domain.Deref(order.Telegram),
		"• Email: " + domain.Deref(order.Email),
		"• Time: " + notifier.FormatTime(order.LastChange()),
	}
	return strings.Join(lines, "\n")
}

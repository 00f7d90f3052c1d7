package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"StorefrontPlatform/pkg/errors"
	"StorefrontPlatform/pkg/logger"
	"StorefrontPlatform/services/storefront-service/internal/domain"
)

const userAgent = "storectl/1.0"

// AdminClient HTTP клиент админских функций магазина
type AdminClient struct {
	baseURL string
	token   string
	client  *http.Client
	logger  logger.Logger
}

// NewAdminClient создает клиент. baseURL без завершающего слеша, например http://localhost:8080/api
func NewAdminClient(baseURL, token string, timeout time.Duration, log logger.Logger) *AdminClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &AdminClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		logger:  log,
	}
}

// WithToken возвращает копию клиента с другим bearer токеном
func (c *AdminClient) WithToken(token string) *AdminClient {
	cp := *c
	cp.token = token
	return &cp
}

// Login обменивает пароль администратора на токен
func (c *AdminClient) Login(ctx context.Context, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "admin-login", map[string]string{"password": password}, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// ListOrders возвращает заказы, новые первыми. limit <= 0 означает значение сервера по умолчанию.
func (c *AdminClient) ListOrders(ctx context.Context, limit int) ([]*domain.Order, error) {
	path := "admin-orders-list"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}

	var resp struct {
		Orders []*domain.Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

// SetOrderStatus выставляет произвольный статус заказа
func (c *AdminClient) SetOrderStatus(ctx context.Context, purchaseID, status string) error {
	return c.do(ctx, http.MethodPost, "admin-order-status", map[string]string{
		"purchaseId": purchaseID,
		"status":     status,
	}, nil)
}

// DeleteOrder удаляет заказ
func (c *AdminClient) DeleteOrder(ctx context.Context, purchaseID string) error {
	return c.do(ctx, http.MethodPost, "admin-order-delete", map[string]string{"purchaseId": purchaseID}, nil)
}

// GetConfig возвращает текущую конфигурацию магазина
func (c *AdminClient) GetConfig(ctx context.Context) (*domain.Config, error) {
	var resp struct {
		Config *domain.Config `json:"config"`
	}
	if err := c.do(ctx, http.MethodGet, "admin-config-get", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Config, nil
}

// UpdateConfig отправляет частичное изменение конфигурации как есть и возвращает новую версию
func (c *AdminClient) UpdateConfig(ctx context.Context, edit json.RawMessage) (int64, error) {
	var resp struct {
		Version int64 `json:"version"`
	}
	if err := c.do(ctx, http.MethodPost, "admin-config-update", map[string]json.RawMessage{"config": edit}, &resp); err != nil {
		return 0, err
	}
	return resp.Version, nil
}

func (c *AdminClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + "/" + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("Sending request", logger.String("method", method), logger.String("url", endpoint))

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to read response")
	}

	c.logger.Debug("Received response", logger.String("url", endpoint), logger.Int("status", resp.StatusCode))

	var envelope errors.Response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return errors.New(codeForStatus(resp.StatusCode), fmt.Sprintf("unexpected response (status %d)", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK || !envelope.OK {
		msg := envelope.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		code := codeForStatus(resp.StatusCode)
		if code == errors.ErrUnauthorized && msg == "Session expired" {
			code = errors.ErrSessionExpired
		}
		return errors.New(code, msg)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// codeForStatus восстанавливает код ошибки по HTTP статусу ответа
func codeForStatus(status int) errors.ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return errors.ErrValidation
	case http.StatusUnauthorized:
		return errors.ErrUnauthorized
	case http.StatusForbidden:
		return errors.ErrForbidden
	case http.StatusNotFound:
		return errors.ErrNotFound
	case http.StatusConflict:
		return errors.ErrConflict
	default:
		return errors.ErrInternal
	}
}

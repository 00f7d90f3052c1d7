package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"StorefrontPlatform/pkg/errors"
	"StorefrontPlatform/pkg/health"
	"StorefrontPlatform/pkg/logger"
	"StorefrontPlatform/pkg/metrics"
	"StorefrontPlatform/pkg/ratelimit"
	"StorefrontPlatform/services/storefront-service/internal/domain"
	"StorefrontPlatform/services/storefront-service/internal/middleware"
	"StorefrontPlatform/services/storefront-service/internal/service"
)

// maxBodyBytes ограничение тела запроса; конфигурация с 200 товарами укладывается с запасом
const maxBodyBytes = 1 << 20

// OrderService операции жизненного цикла заказа
type OrderService interface {
	Initiate(ctx context.Context, productID, ip string) (*service.InitiateResult, error)
	Complete(ctx context.Context, in service.CompleteInput) (*service.CompleteResult, error)
	SetStatus(ctx context.Context, purchaseID, status string) error
	Delete(ctx context.Context, purchaseID string) error
	List(ctx context.Context, limit int) ([]*domain.Order, error)
}

// CatalogService чтение и правка конфигурации магазина
type CatalogService interface {
	PublicConfig(ctx context.Context) (*domain.Config, error)
	AdminConfig(ctx context.Context) (*domain.Config, error)
	UpdateConfig(ctx context.Context, edit *domain.ConfigEdit) (int64, error)
}

// AuthService вход и проверка администратора
type AuthService interface {
	Login(ctx context.Context, ip, password string) (string, error)
	Authorize(ctx context.Context, ip, bearer string) error
}

// Options инфраструктурные настройки HTTP слоя
type Options struct {
	AllowedOrigins    []string
	TrustProxy        bool
	Limiter           ratelimit.RateLimiter
	RequestsPerMinute int
	LoginPerMinute    int
	Health            health.HealthChecker
	Metrics           *metrics.Metrics
}

// Handler HTTP поверхность магазина
type Handler struct {
	router  chi.Router
	orders  OrderService
	catalog CatalogService
	auth    AuthService
	opts    Options
	logger  logger.Logger
}

// NewHandler создает новый экземпляр Handler
func NewHandler(orders OrderService, catalog CatalogService, auth AuthService, opts Options, log logger.Logger) *Handler {
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.NoopRateLimiter{}
	}
	h := &Handler{
		router:  chi.NewRouter(),
		orders:  orders,
		catalog: catalog,
		auth:    auth,
		opts:    opts,
		logger:  log,
	}

	h.setupRoutes()

	return h
}

// ServeHTTP реализует интерфейс http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) setupRoutes() {
	r := h.router

	r.Use(middleware.RecoveryMiddleware(h.logger))
	if h.opts.Metrics != nil {
		r.Use(h.opts.Metrics.Middleware)
	}
	r.Use(middleware.ClientIPMiddleware(h.opts.TrustProxy))
	r.Use(middleware.LoggingMiddleware(h.logger))
	r.Use(middleware.CORSMiddleware(h.opts.AllowedOrigins, h.logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errors.Response{Error: "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errors.Response{Error: "Method not allowed"})
	})

	if h.opts.Health != nil {
		r.Get("/health", health.Handler(h.opts.Health))
		r.Get("/ready", health.ReadyHandler(h.opts.Health))
	}
	r.Get("/live", health.LiveHandler())
	if h.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.opts.Metrics.GetHandler())
	}

	// Старые клиенты обращаются по путям serverless функций
	r.Route("/api", h.functionRoutes)
	r.Route("/.netlify/functions", h.functionRoutes)
}

func (h *Handler) functionRoutes(r chi.Router) {
	buyerLimit := middleware.RateLimitMiddleware(h.opts.Limiter, "buyer", h.opts.RequestsPerMinute, time.Minute, h.logger)
	loginLimit := middleware.RateLimitMiddleware(h.opts.Limiter, "login", h.opts.LoginPerMinute, time.Minute, h.logger)

	r.Get("/config-get", h.handleConfigGet)
	r.With(buyerLimit).Post("/order-init", h.handleOrderInit)
	r.With(buyerLimit).Post("/order-complete", h.handleOrderComplete)
	r.With(loginLimit).Post("/admin-login", h.handleAdminLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminMiddleware(h.auth, h.logger))

		r.Get("/admin-orders-list", h.handleOrdersList)
		r.Post("/admin-order-status", h.handleOrderStatus)
		r.Post("/admin-order-delete", h.handleOrderDelete)
		r.Get("/admin-config-get", h.handleAdminConfigGet)
		r.Post("/admin-config-update", h.handleConfigUpdate)
	})
}

func (h *Handler) handleConfigGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.catalog.PublicConfig(r.Context())
	if err != nil {
		h.writeError(w, r, err, "Config load failed")
		return
	}
	writeJSON(w, http.StatusOK, configResponse{OK: true, Config: cfg})
}

func (h *Handler) handleOrderInit(w http.ResponseWriter, r *http.Request) {
	body := readBody(r)

	res, err := h.orders.Initiate(r.Context(), body.String("productId"), middleware.ClientIP(r.Context()))
	if err != nil {
		h.writeError(w, r, err, "Could not start checkout")
		return
	}
	writeJSON(w, http.StatusOK, initResponse{OK: true, InitiateResult: res})
}

func (h *Handler) handleOrderComplete(w http.ResponseWriter, r *http.Request) {
	body := readBody(r)

	res, err := h.orders.Complete(r.Context(), service.CompleteInput{
		PurchaseID:    body.String("purchaseId"),
		TransactionID: body.String("transactionId"),
		Telegram:      body.String("telegram"),
		Email:         body.String("email"),
	})
	if err != nil {
		h.writeError(w, r, err, "Could not complete purchase")
		return
	}
	writeJSON(w, http.StatusOK, completeResponse{OK: true, CompleteResult: res})
}

func (h *Handler) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	body := readBody(r)

	token, err := h.auth.Login(r.Context(), middleware.ClientIP(r.Context()), body.String("password"))
	if err != nil {
		// Любая ошибка пароля для клиента выглядит как 401
		if e, ok := errors.As(err); ok && e.Code == errors.ErrValidation {
			err = errors.New(errors.ErrUnauthorized, e.Message)
		}
		h.writeError(w, r, err, "Login failed")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{OK: true, Token: token})
}

func (h *Handler) handleOrdersList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	orders, err := h.orders.List(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err, "Could not list orders")
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	writeJSON(w, http.StatusOK, ordersResponse{OK: true, Orders: orders})
}

func (h *Handler) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	body := readBody(r)

	if err := h.orders.SetStatus(r.Context(), body.String("purchaseId"), body.String("status")); err != nil {
		h.writeError(w, r, err, "Update failed")
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) handleOrderDelete(w http.ResponseWriter, r *http.Request) {
	body := readBody(r)

	if err := h.orders.Delete(r.Context(), body.String("purchaseId")); err != nil {
		h.writeError(w, r, err, "Delete failed")
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) handleAdminConfigGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.catalog.AdminConfig(r.Context())
	if err != nil {
		h.writeError(w, r, err, "Config load failed")
		return
	}
	writeJSON(w, http.StatusOK, configResponse{OK: true, Config: cfg})
}

func (h *Handler) handleConfigUpdate(w http.ResponseWriter, r *http.Request) {
	body := readBody(r)

	edit, err := body.ConfigEdit("config")
	if err != nil {
		h.writeError(w, r, err, "Update failed")
		return
	}

	version, err := h.catalog.UpdateConfig(r.Context(), edit)
	if err != nil {
		h.writeError(w, r, err, "Update failed")
		return
	}
	writeJSON(w, http.StatusOK, versionResponse{OK: true, Version: version})
}

// writeError логирует серверные сбои с причиной и отдает клиенту общий текст
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if e, ok := errors.As(err); !ok || e.IsServerSide() {
		h.logger.Error("Request failed",
			logger.CtxField(r.Context()),
			logger.String("path", r.URL.Path),
			logger.Error(err))
	}
	errors.WriteJSON(w, err, fallback)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// requestBody тело запроса в виде набора сырых полей.
// Нечитаемое тело эквивалентно пустому объекту.
type requestBody map[string]json.RawMessage

func readBody(r *http.Request) requestBody {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return requestBody{}
	}
	var body requestBody
	if err := json.Unmarshal(data, &body); err != nil || body == nil {
		return requestBody{}
	}
	return body
}

// String возвращает скалярное поле строкой; числа и bool приводятся к тексту
func (b requestBody) String(key string) string {
	raw, ok := b[key]
	if !ok {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// ConfigEdit разбирает правку конфигурации; отсутствующее поле дает пустую правку
func (b requestBody) ConfigEdit(key string) (*domain.ConfigEdit, error) {
	raw, ok := b[key]
	if !ok || string(raw) == "null" {
		return &domain.ConfigEdit{}, nil
	}
	var edit domain.ConfigEdit
	if err := json.Unmarshal(raw, &edit); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "Invalid config")
	}
	return &edit, nil
}

type okResponse struct {
	OK bool `json:"ok"`
}

type configResponse struct {
	OK     bool           `json:"ok"`
	Config *domain.Config `json:"config"`
}

type initResponse struct {
	OK bool `json:"ok"`
	*service.InitiateResult
}

type completeResponse struct {
	OK bool `json:"ok"`
	*service.CompleteResult
}

type loginResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token"`
}

type ordersResponse struct {
	OK     bool            `json:"ok"`
	Orders []*domain.Order `json:"orders"`
}

type versionResponse struct {
	OK      bool  `json:"ok"`
	Version int64 `json:"version"`
}

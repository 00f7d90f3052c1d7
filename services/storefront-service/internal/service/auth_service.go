package service

import (
	"context"
	"fmt"

	"StorefrontPlatform/pkg/errors"
	"StorefrontPlatform/pkg/logger"
	"StorefrontPlatform/services/storefront-service/internal/metrics"
	"StorefrontPlatform/services/storefront-service/internal/pkg/password"
	"StorefrontPlatform/services/storefront-service/internal/pkg/token"
)

// AuthService аутентификация администратора: пароль, подписанный токен и allowlist по IP
type AuthService struct {
	passwords *password.Checker
	tokens    *token.Manager
	allowedIP string
	logger    logger.Logger
	metrics   *metrics.StoreMetrics
}

// NewAuthService создает новый экземпляр AuthService. Пустой allowedIP отключает проверку адреса.
func NewAuthService(passwords *password.Checker, tokens *token.Manager, allowedIP string, log logger.Logger, m *metrics.StoreMetrics) *AuthService {
	return &AuthService{
		passwords: passwords,
		tokens:    tokens,
		allowedIP: allowedIP,
		logger:    log,
		metrics:   m,
	}
}

// CheckPassword сверяет пароль с настроенным секретом
func (s *AuthService) CheckPassword(candidate string) error {
	return s.passwords.Check(candidate)
}

// IssueToken выпускает токен сессии
func (s *AuthService) IssueToken() (string, error) {
	return s.tokens.Issue()
}

// VerifyToken проверяет токен сессии
func (s *AuthService) VerifyToken(tokenString string) error {
	return s.tokens.Verify(tokenString)
}

// CheckIPAllowlist пропускает любой адрес, если allowlist не настроен
func (s *AuthService) CheckIPAllowlist(ip string) error {
	if s.allowedIP == "" || ip == s.allowedIP {
		return nil
	}
	return errors.New(errors.ErrForbidden, fmt.Sprintf("Admin blocked for this IP (%s)", ip))
}

// Login: allowlist, затем пароль, затем выпуск токена
func (s *AuthService) Login(ctx context.Context, ip, candidate string) (string, error) {
	tok, err := s.login(ip, candidate)
	s.metrics.RecordLogin(err)
	if err != nil {
		s.logger.Warn("Admin login rejected",
			logger.CtxField(ctx),
			logger.String("ip", ip),
			logger.String("code", string(errors.CodeOf(err))))
		return "", err
	}

	s.logger.Info("Admin logged in", logger.CtxField(ctx), logger.String("ip", ip))
	return tok, nil
}

func (s *AuthService) login(ip, candidate string) (string, error) {
	if err := s.CheckIPAllowlist(ip); err != nil {
		return "", err
	}
	if err := s.CheckPassword(candidate); err != nil {
		return "", err
	}
	return s.IssueToken()
}

// Authorize проверяет административный запрос: сначала адрес, потом токен,
// чтобы запросы из чужих сетей не доходили до разбора токена
func (s *AuthService) Authorize(ctx context.Context, ip, bearer string) error {
	if err := s.CheckIPAllowlist(ip); err != nil {
		s.logger.Warn("Admin request from blocked IP", logger.CtxField(ctx), logger.String("ip", ip))
		return err
	}
	return s.VerifyToken(bearer)
}

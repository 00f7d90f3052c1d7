package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"StorefrontPlatform/pkg/logger"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error представляет кастомную ошибку с дополнительной информацией
type Error struct {
	Code    ErrorCode       `json:"code"`
	Message string          `json:"message"`
	Details string          `json:"details,omitempty"`
	Cause   error           `json:"-"`
	Context context.Context `json:"-"`
}

// ErrorCode представляет код ошибки
type ErrorCode string

// Определение кодов ошибок
const (
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrValidation     ErrorCode = "VALIDATION_ERROR"
	ErrUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrSessionExpired ErrorCode = "SESSION_EXPIRED"
	ErrForbidden      ErrorCode = "FORBIDDEN"
	ErrConfiguration  ErrorCode = "CONFIGURATION_ERROR"
	ErrStorage        ErrorCode = "STORAGE_ERROR"
	ErrInternal       ErrorCode = "INTERNAL_ERROR"
	ErrConflict       ErrorCode = "CONFLICT"
)

// errorDomain используется в ErrorInfo при передаче ошибки по gRPC
const errorDomain = "storefront"

// Error возвращает сообщение об ошибке
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap возвращает причину ошибки
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is проверяет, является ли ошибка указанного типа
func (e *Error) Is(target error) bool {
	if targetError, ok := target.(*Error); ok {
		return e.Code == targetError.Code
	}
	return false
}

// New создает новую кастомную ошибку
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap оборачивает существующую ошибку в кастомную
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WithDetails добавляет детали к ошибке
func (e *Error) WithDetails(details string) *Error {
	if e == nil {
		return nil
	}
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
		Context: e.Context,
	}
}

// WithContext добавляет контекст к ошибке
func (e *Error) WithContext(ctx context.Context) *Error {
	if e == nil {
		return nil
	}
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   e.Cause,
		Context: ctx,
	}
}

// As извлекает *Error из цепочки ошибок
func As(err error) (*Error, bool) {
	var target *Error
	if stderrors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// CodeOf возвращает код ошибки; для ошибок вне пакета ErrInternal
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Code
	}
	return ErrInternal
}

// HasCode проверяет, что в цепочке есть ошибка с указанным кодом
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsServerSide сообщает, относится ли код к внутренним сбоям (5xx)
func (e *Error) IsServerSide() bool {
	if e == nil {
		return false
	}
	return e.HTTPStatus() >= http.StatusInternalServerError
}

// ToGRPCErr переводит кастомную ошибку в gRPC статус
func (e *Error) ToGRPCErr() error {
	if e == nil {
		return nil
	}

	// Преобразуем код ошибки в gRPC код
	var grpcCode codes.Code
	switch e.Code {
	case ErrNotFound:
		grpcCode = codes.NotFound
	case ErrValidation:
		grpcCode = codes.InvalidArgument
	case ErrUnauthorized, ErrSessionExpired:
		grpcCode = codes.Unauthenticated
	case ErrForbidden:
		grpcCode = codes.PermissionDenied
	case ErrConflict:
		grpcCode = codes.Aborted
	case ErrConfiguration:
		grpcCode = codes.FailedPrecondition
	case ErrStorage:
		grpcCode = codes.Unavailable
	case ErrInternal:
		grpcCode = codes.Internal
	default:
		grpcCode = codes.Unknown
	}

	st := status.New(grpcCode, e.Message)

	info := &errdetails.ErrorInfo{
		Reason:   string(e.Code),
		Domain:   errorDomain,
		Metadata: map[string]string{},
	}
	if e.Details != "" {
		info.Metadata["details"] = e.Details
	}
	if e.Context != nil {
		if traceID := logger.TraceID(e.Context); traceID != "" {
			info.Metadata["trace_id"] = traceID
		}
	}

	if withDetails, err := st.WithDetails(info); err == nil {
		st = withDetails
	}

	return st.Err()
}

// HTTPStatus возвращает соответствующий HTTP статус для ошибки
func (e *Error) HTTPStatus() int {
	if e == nil {
		return http.StatusOK
	}

	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrValidation:
		return http.StatusBadRequest
	case ErrUnauthorized, ErrSessionExpired:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrConflict:
		return http.StatusConflict
	case ErrConfiguration, ErrStorage, ErrInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Response единый формат ответа об ошибке: {"ok": false, "error": "..."}
type Response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// WriteJSON записывает ошибку в ответ. Для 5xx клиент получает fallback,
// исходное сообщение остается только в логах.
func WriteJSON(w http.ResponseWriter, err error, fallback string) {
	e, ok := As(err)
	if !ok {
		e = &Error{Code: ErrInternal, Message: fallback, Cause: err}
	}

	message := e.Message
	if e.IsServerSide() && fallback != "" {
		message = fallback
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.HTTPStatus())

	data, jsonErr := json.Marshal(Response{OK: false, Error: message})
	if jsonErr != nil {
		w.Write([]byte(`{"ok":false,"error":"Internal server error"}`))
		return
	}
	w.Write(data)
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError представляет ошибку сервиса с HTTP-статусом
type ServiceError struct {
	Code    int    // HTTP-статус
	Message string // Сообщение для клиента
	Err     error  // Исходная ошибка
}

// NewServiceError создает новую ошибку сервиса
func NewServiceError(code int, message string, err error) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error реализует интерфейс error
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap возвращает оригинальную ошибку
func (e *ServiceError) Unwrap() error {
	return e.Err
}

func NewInvalidCredentialsError() *ServiceError {
	return NewServiceError(http.StatusUnauthorized, "Неверное имя пользователя или пароль", ErrInvalidCredentials)
}

func NewForbiddenError(reason string) *ServiceError {
	message := "Доступ запрещен"
	if reason != "" {
		message = fmt.Sprintf("%s: %s", message, reason)
	}
	return NewServiceError(http.StatusForbidden, message, ErrForbidden)
}

func NewValidationError(field, reason string) *ServiceError {
	message := fmt.Sprintf("Ошибка валидации поля '%s': %s", field, reason)
	return NewServiceError(http.StatusBadRequest, message, ErrBadRequest)
}

// StatusCode определяет HTTP-статус для ошибки по цепочке обертки
func StatusCode(err error) int {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInsufficientHistory):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrUnknownAction),
		errors.Is(err, ErrUnknownStatus),
		errors.Is(err, ErrInvalidTransition):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ToHTTPResponse преобразует ошибку в HTTP-ответ. Текст внутренних ошибок наружу не отдается.
func ToHTTPResponse(err error) (int, HTTPErrorResponse) {
	code := StatusCode(err)
	if code == http.StatusInternalServerError {
		return code, ErrorResponse("Внутренняя ошибка сервера", nil)
	}

	var se *ServiceError
	if errors.As(err, &se) {
		return code, ErrorResponse(se.Message, nil)
	}
	return code, ErrorResponse(err.Error(), nil)
}

package errors

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Общие ошибки
var (
	ErrNotFound           = errors.New("ресурс не найден")
	ErrConflict           = errors.New("конфликт с существующими данными")
	ErrInvalidCredentials = errors.New("неверные учетные данные")
	ErrUnauthorized       = errors.New("не авторизован")
	ErrForbidden          = errors.New("доступ запрещен")
	ErrBadRequest         = errors.New("некорректный запрос")
)

// Ошибки журнала статусов
var (
	// ErrInsufficientHistory отмена шага невозможна: в истории меньше двух записей
	ErrInsufficientHistory = errors.New("недостаточно записей истории для отмены")
	// ErrUnknownStatus статус отсутствует в каталоге
	ErrUnknownStatus = errors.New("неизвестный статус")
	// ErrUnknownAction быстрое действие отсутствует в таблице действий
	ErrUnknownAction = errors.New("неизвестное действие")
	// ErrInvalidTransition переход из терминального статуса при строгом режиме
	ErrInvalidTransition = errors.New("недопустимый переход статуса")
	// ErrDataIntegrity нарушение целостности данных, исправленное автоматически (только для логов)
	ErrDataIntegrity = errors.New("нарушение целостности данных")
)

// AppendPrefix добавляет префикс к сообщению об ошибке
func AppendPrefix(err error, prefix string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

// LogError логирует ошибку с контекстом
func LogError(l *zap.Logger, err error, context string) {
	if err == nil || l == nil {
		return
	}
	l.Error("ошибка", zap.String("context", context), zap.Error(err))
}

// ErrorGroup представляет группу ошибок, собранных из разных операций
type ErrorGroup struct {
	errors []error
}

// NewErrorGroup создает новую группу ошибок
func NewErrorGroup() *ErrorGroup {
	return &ErrorGroup{
		errors: make([]error, 0),
	}
}

// Add добавляет ошибку в группу (игнорирует nil)
func (g *ErrorGroup) Add(err error) {
	if err != nil {
		g.errors = append(g.errors, err)
	}
}

// AddPrefix добавляет ошибку с префиксом в группу
func (g *ErrorGroup) AddPrefix(err error, prefix string) {
	if err != nil {
		g.errors = append(g.errors, AppendPrefix(err, prefix))
	}
}

// HasErrors проверяет, есть ли ошибки в группе
func (g *ErrorGroup) HasErrors() bool {
	return len(g.errors) > 0
}

// Unwrap отдает ошибки группы для errors.Is / errors.As
func (g *ErrorGroup) Unwrap() []error {
	return g.errors
}

// Error возвращает конкатенацию всех ошибок в группе
func (g *ErrorGroup) Error() string {
	var sb strings.Builder
	for i, err := range g.errors {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

package light

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/director74/order-tracking/pkg/errors"
	"github.com/director74/order-tracking/tracking-service/internal/status"
)

// Reason почему выбран цвет
type Reason string

const (
	ReasonOnTrack        Reason = "on_track"
	ReasonElapsedYellow  Reason = "elapsed_yellow"
	ReasonElapsedRed     Reason = "elapsed_red"
	ReasonDeadlineNear   Reason = "deadline_near"
	ReasonDeadlinePassed Reason = "deadline_passed"
	ReasonTerminal       Reason = "terminal"
	ReasonUnknownStatus  Reason = "unknown_status"
)

// Snapshot входные данные для расчета по одному заказу
type Snapshot struct {
	OrderNumber          string
	Status               status.ID
	LastStatusChangeDate *time.Time
	ExpectedDeliveryDate *time.Time
}

// Evaluation результат расчета
type Evaluation struct {
	Color       Color  `json:"light"`
	Days        int    `json:"status_days"`
	Reason      Reason `json:"reason"`
	FutureDated bool   `json:"future_dated,omitempty"`
	KnownStatus bool   `json:"known_status"`
}

// Calculator чистая функция над таблицей порогов и каталогом. Безопасен для конкурентного использования.
type Calculator struct {
	rules   RuleTable
	catalog *status.Catalog
	logger  *zap.Logger
}

// NewCalculator проверяет таблицу порогов против каталога
func NewCalculator(rules RuleTable, catalog *status.Catalog, logger *zap.Logger) (*Calculator, error) {
	if catalog == nil {
		return nil, fmt.Errorf("каталог статусов не задан")
	}
	if err := rules.Validate(catalog); err != nil {
		return nil, fmt.Errorf("некорректная таблица порогов: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{
		rules:   rules.Clone(),
		catalog: catalog,
		logger:  logger.Named("LightCalculator"),
	}, nil
}

// Rules копия действующей таблицы
func (c *Calculator) Rules() RuleTable {
	return c.rules.Clone()
}

// Catalog каталог, с которым работает калькулятор
func (c *Calculator) Catalog() *status.Catalog {
	return c.catalog
}

// Compute цвет для статуса, числа дней в статусе и необязательного срока поставки.
// Никогда не возвращает ошибку: на некорректных данных дает лучший возможный ответ.
func (c *Calculator) Compute(id status.ID, daysInStatus int, deliveryDate *time.Time, today time.Time) Color {
	color, reason := c.compute(id, daysInStatus, deliveryDate, today)
	if reason == ReasonUnknownStatus {
		c.logger.Warn("неизвестный статус, светофор зеленый",
			zap.String("status", string(id)),
			zap.NamedError("cause", apperrors.ErrUnknownStatus),
		)
	}
	return color
}

// Evaluate считает дни в статусе и цвет по снимку заказа
func (c *Calculator) Evaluate(s Snapshot, today time.Time) Evaluation {
	days, future := DaysInStatus(s.LastStatusChangeDate, today)
	if future {
		c.logger.Warn("дата смены статуса в будущем, дни в статусе приняты равными нулю",
			zap.String("order_number", s.OrderNumber),
			zap.String("status", string(s.Status)),
			zap.Time("last_status_change_date", *s.LastStatusChangeDate),
			zap.NamedError("cause", apperrors.ErrDataIntegrity),
		)
	}

	color, reason := c.compute(s.Status, days, s.ExpectedDeliveryDate, today)
	if reason == ReasonUnknownStatus {
		c.logger.Warn("неизвестный статус, светофор зеленый",
			zap.String("order_number", s.OrderNumber),
			zap.String("status", string(s.Status)),
			zap.NamedError("cause", apperrors.ErrUnknownStatus),
		)
	}

	return Evaluation{
		Color:       color,
		Days:        days,
		Reason:      reason,
		FutureDated: future,
		KnownStatus: reason != ReasonUnknownStatus,
	}
}

func (c *Calculator) compute(id status.ID, days int, deliveryDate *time.Time, today time.Time) (Color, Reason) {
	if !c.catalog.IsKnown(id) {
		return Green, ReasonUnknownStatus
	}
	// терминальные статусы не отслеживаются, срок поставки тоже не учитывается
	if c.catalog.IsTerminal(id) {
		return Green, ReasonTerminal
	}

	if deliveryDate != nil {
		left := DaysBetween(today, *deliveryDate)
		if left <= 0 {
			return Red, ReasonDeadlinePassed
		}
		if left <= c.rules.DeliveryWarningDays {
			return Yellow, ReasonDeadlineNear
		}
	}

	if days < 0 {
		days = 0
	}

	rule, _, ok := c.rules.RuleFor(id)
	if !ok {
		// Validate гарантирует правило для каждого нетерминального статуса
		return Green, ReasonOnTrack
	}
	if rule.Red != nil && days >= *rule.Red {
		return Red, ReasonElapsedRed
	}
	if days >= rule.Yellow {
		return Yellow, ReasonElapsedYellow
	}
	return Green, ReasonOnTrack
}

// DateOf календарная дата момента t в его часовом поясе, как полночь UTC
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween число календарных дней от from до to (может быть отрицательным)
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)) / (24 * time.Hour))
}

// DaysInStatus max(0, today - last). Второе значение true, если дата смены статуса в будущем.
func DaysInStatus(last *time.Time, today time.Time) (int, bool) {
	if last == nil {
		return 0, false
	}
	days := DaysBetween(*last, today)
	if days < 0 {
		return 0, true
	}
	return days, false
}

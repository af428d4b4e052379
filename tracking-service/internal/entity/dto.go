package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/director74/order-tracking/tracking-service/internal/light"
	"github.com/director74/order-tracking/tracking-service/internal/status"
)

// DateLayout формат дат в API
const DateLayout = "2006-01-02"

// ParseDate разбирает дату YYYY-MM-DD
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("дата %q должна быть в формате YYYY-MM-DD", value)
	}
	return t, nil
}

// ParseOptionalDate пустая строка дает nil
func ParseOptionalDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDate дата в формате API
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatDatePtr nil остается nil
func FormatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatDate(*t)
	return &s
}

// CreateOrderCommand создание заказа. Пустой номер генерируется, пустой статус - NEW_ORDER,
// пустая дата заказа - сегодня.
type CreateOrderCommand struct {
	OrderNumber          string
	CustomerName         string
	OrderDate            *time.Time
	InitialStatus        string
	ExpectedDeliveryDate *time.Time
	ProductionType       string
	ProductName          string
	ProductCode          string
	PatternCode          string
	Quantity             string
	Factory              string
	Notes                string
	Operator             string
}

// UpdateOrderCommand частичное изменение описательных полей и срока поставки
type UpdateOrderCommand struct {
	OrderNumber          string
	CustomerName         *string
	ExpectedDeliveryDate *time.Time
	ClearDeliveryDate    bool
	ProductionType       *string
	ProductName          *string
	ProductCode          *string
	PatternCode          *string
	Quantity             *string
	Factory              *string
	Notes                *string
}

// TransitionCommand переход заказа в статус
type TransitionCommand struct {
	OrderNumber string
	ToStatus    status.ID
	ActionDate  *time.Time
	Operator    string
	Notes       string
}

// QuickActionCommand переход по имени быстрого действия
type QuickActionCommand struct {
	OrderNumber string
	Action      string
	ActionDate  *time.Time
	Operator    string
	Notes       string
}

// UndoCommand отмена последнего перехода
type UndoCommand struct {
	OrderNumber string
	Operator    string
	Reason      string
}

// EditEntryCommand правка даты и заметки записи журнала.
// OrderNumber необязателен; если задан, запись должна принадлежать этому заказу.
type EditEntryCommand struct {
	EntryID     uint
	OrderNumber string
	ActionDate  time.Time
	Notes       *string
	Operator    string
}

// RenumberCommand смена номера заказа
type RenumberCommand struct {
	OldOrderNumber string
	NewOrderNumber string
	Operator       string
	Reason         string
}

// DeleteOrderCommand удаление заказа с подтверждением номера
type DeleteOrderCommand struct {
	OrderNumber        string
	ConfirmOrderNumber string
	Operator           string
	Reason             string
}

// TransitionResult результат перехода
type TransitionResult struct {
	OrderNumber string      `json:"order_number"`
	OldStatus   status.ID   `json:"old_status"`
	NewStatus   status.ID   `json:"new_status"`
	ActionDate  string      `json:"action_date"`
	StatusLight light.Color `json:"status_light"`
	StatusDays  int         `json:"status_days"`
}

// UndoResult результат отмены
type UndoResult struct {
	OrderNumber    string      `json:"order_number"`
	RemovedStatus  status.ID   `json:"removed_status"`
	RestoredStatus status.ID   `json:"restored_status"`
	StatusLight    light.Color `json:"status_light"`
	StatusDays     int         `json:"status_days"`
}

// OrderView заказ для API: подписи, группа и светофор на сегодня
type OrderView struct {
	ID                   uint            `json:"id"`
	OrderNumber          string          `json:"order_number"`
	CustomerName         string          `json:"customer_name"`
	OrderDate            string          `json:"order_date"`
	CurrentStatus        status.ID       `json:"current_status"`
	StatusLabel          string          `json:"status_label"`
	StageGroup           string          `json:"stage_group"`
	StatusLight          light.Color     `json:"status_light"`
	StatusDays           int             `json:"status_days"`
	LightReason          light.Reason    `json:"light_reason"`
	LastStatusChangeDate *string         `json:"last_status_change_date"`
	ExpectedDeliveryDate *string         `json:"expected_delivery_date"`
	ProductionType       string          `json:"production_type"`
	ProductName          string          `json:"product_name"`
	ProductCode          string          `json:"product_code"`
	PatternCode          string          `json:"pattern_code"`
	Quantity             string          `json:"quantity"`
	Factory              string          `json:"factory"`
	Notes                string          `json:"notes"`
	AvailableActions     []status.Action `json:"available_actions"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// HistoryView запись журнала для API
type HistoryView struct {
	ID         uint       `json:"id"`
	FromStatus *status.ID `json:"from_status"`
	FromLabel  string     `json:"from_label,omitempty"`
	ToStatus   status.ID  `json:"to_status"`
	ToLabel    string     `json:"to_label"`
	ActionDate string     `json:"action_date"`
	Operator   string     `json:"operator"`
	Notes      string     `json:"notes"`
	CreatedAt  time.Time  `json:"created_at"`
}

// OrderDetails заказ с журналом переходов
type OrderDetails struct {
	Order   OrderView     `json:"order"`
	History []HistoryView `json:"history"`
}

// OrderList страница списка заказов
type OrderList struct {
	Orders []OrderView `json:"orders"`
	Total  int64       `json:"total"`
}

// LightView расчет светофора без сохранения
type LightView struct {
	OrderNumber string       `json:"order_number"`
	Status      status.ID    `json:"status"`
	Light       light.Color  `json:"light"`
	StatusDays  int          `json:"status_days"`
	Reason      light.Reason `json:"reason"`
	FutureDated bool         `json:"future_dated,omitempty"`
	Stored      light.Color  `json:"stored_light"`
}

// RefreshReport итог массового пересчета
type RefreshReport struct {
	Total       int                 `json:"total"`
	Updated     int                 `json:"updated"`
	Failed      int                 `json:"failed"`
	FutureDated int                 `json:"future_dated"`
	ByLight     map[light.Color]int `json:"by_light"`
	StartedAt   time.Time           `json:"started_at"`
	Duration    time.Duration       `json:"duration"`
}

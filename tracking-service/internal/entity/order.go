package entity

import (
	"time"

	"github.com/director74/order-tracking/tracking-service/internal/light"
	"github.com/director74/order-tracking/tracking-service/internal/status"
)

// Order производственный заказ. Поля светофора (StatusLight, StatusDays) - кэш,
// который пересчитывается при каждом изменении статуса, даты смены статуса или срока поставки.
type Order struct {
	ID                   uint        `json:"id" gorm:"primaryKey"`
	OrderNumber          string      `json:"order_number" gorm:"size:50;not null;uniqueIndex"`
	CustomerName         string      `json:"customer_name" gorm:"size:200;not null;index"`
	OrderDate            time.Time   `json:"order_date" gorm:"type:date;not null"`
	CurrentStatus        status.ID   `json:"current_status" gorm:"size:50;not null;index"`
	StatusLight          light.Color `json:"status_light" gorm:"size:10;not null;default:green;index"`
	StatusDays           int         `json:"status_days" gorm:"not null;default:0"`
	LastStatusChangeDate *time.Time  `json:"last_status_change_date" gorm:"type:date"`
	ExpectedDeliveryDate *time.Time  `json:"expected_delivery_date" gorm:"type:date"`
	ProductionType       string      `json:"production_type" gorm:"size:100"`
	ProductName          string      `json:"product_name" gorm:"size:200"`
	ProductCode          string      `json:"product_code" gorm:"size:100;index"`
	PatternCode          string      `json:"pattern_code" gorm:"size:100"`
	Quantity             string      `json:"quantity" gorm:"size:50"`
	Factory              string      `json:"factory" gorm:"size:100"`
	Notes                string      `json:"notes" gorm:"type:text"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// Snapshot входные данные светофора
func (o *Order) Snapshot() light.Snapshot {
	return light.Snapshot{
		OrderNumber:          o.OrderNumber,
		Status:               o.CurrentStatus,
		LastStatusChangeDate: o.LastStatusChangeDate,
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
	}
}

// ApplyEvaluation записывает результат расчета в кэшированные поля
func (o *Order) ApplyEvaluation(ev light.Evaluation) {
	o.StatusLight = ev.Color
	o.StatusDays = ev.Days
}

// OrderFilter параметры выборки списка заказов
type OrderFilter struct {
	Group    string
	Statuses []status.ID
	Light    light.Color
	Search   string
	Limit    int
	Offset   int
}

// OrderStats сводка по заказам
type OrderStats struct {
	Total    int64               `json:"total"`
	Active   int64               `json:"active"`
	Red      int64               `json:"red"`
	Yellow   int64               `json:"yellow"`
	Green    int64               `json:"green"`
	ByGroup  map[string]int64    `json:"by_group"`
	ByStatus map[status.ID]int64 `json:"by_status"`
}

// StatusCount число заказов в статусе и светофоре (для сводки)
type StatusCount struct {
	Status status.ID
	Light  light.Color
	Count  int64
}

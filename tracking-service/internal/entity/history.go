package entity

import (
	"time"

	"gorm.io/datatypes"

	"github.com/director74/order-tracking/tracking-service/internal/status"
)

// StatusHistory запись журнала переходов. Порядок записей: (action_date, id).
// Последняя запись определяет текущий статус заказа и дату его смены.
type StatusHistory struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	OrderID     uint       `json:"order_id" gorm:"not null;index"`
	OrderNumber string     `json:"order_number" gorm:"size:50;not null;index:idx_history_order_date,priority:1"`
	FromStatus  *status.ID `json:"from_status" gorm:"size:50"`
	ToStatus    status.ID  `json:"to_status" gorm:"size:50;not null"`
	ActionDate  time.Time  `json:"action_date" gorm:"type:date;not null;index:idx_history_order_date,priority:2"`
	Operator    string     `json:"operator" gorm:"size:100"`
	Notes       string     `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time  `json:"created_at"`
	Order       *Order     `json:"-" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName таблица журнала переходов
func (StatusHistory) TableName() string {
	return "status_history"
}

// HistoryBefore true, если запись a идет раньше b в журнале
func HistoryBefore(a, b StatusHistory) bool {
	if !a.ActionDate.Equal(b.ActionDate) {
		return a.ActionDate.Before(b.ActionDate)
	}
	return a.ID < b.ID
}

// AuditAction тип записи аудита
type AuditAction string

const (
	AuditStatusUpdate AuditAction = "STATUS_UPDATE"
	AuditUndoStep     AuditAction = "UNDO_STEP"
	AuditEditHistory  AuditAction = "EDIT_HISTORY"
	AuditRenumber     AuditAction = "CHANGE_ORDER_NUMBER"
	AuditDeleteOrder  AuditAction = "DELETE_ORDER"
)

// AuditLog журнал ручных вмешательств. Записи только добавляются;
// единственное изменение - каскадное переименование номера заказа.
type AuditLog struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	ActionType  AuditAction       `json:"action_type" gorm:"size:30;not null;index"`
	OrderNumber string            `json:"order_number" gorm:"size:50;not null;index"`
	OldValue    string            `json:"old_value" gorm:"size:100"`
	NewValue    string            `json:"new_value" gorm:"size:100"`
	Operator    string            `json:"operator" gorm:"size:100"`
	Reason      string            `json:"reason" gorm:"type:text"`
	Details     datatypes.JSONMap `json:"details,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time         `json:"created_at"`
}

// TableName таблица аудита
func (AuditLog) TableName() string {
	return "audit_logs"
}

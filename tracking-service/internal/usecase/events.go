package usecase

import (
	"github.com/director74/order-tracking/tracking-service/internal/light"
	"github.com/director74/order-tracking/tracking-service/internal/status"
)

// OrderCreatedEvent данные события order.created
type OrderCreatedEvent struct {
	CustomerName string      `json:"customer_name"`
	Status       status.ID   `json:"status"`
	OrderDate    string      `json:"order_date"`
	StatusLight  light.Color `json:"status_light"`
	Operator     string      `json:"operator"`
}

// OrderUpdatedEvent данные события order.updated
type OrderUpdatedEvent struct {
	ExpectedDeliveryDate *string     `json:"expected_delivery_date"`
	StatusLight          light.Color `json:"status_light"`
	StatusDays           int         `json:"status_days"`
}

// StatusChangedEvent данные события order.status.changed
type StatusChangedEvent struct {
	OldStatus   status.ID   `json:"old_status"`
	NewStatus   status.ID   `json:"new_status"`
	ActionDate  string      `json:"action_date"`
	Action      string      `json:"action,omitempty"`
	Operator    string      `json:"operator"`
	Notes       string      `json:"notes,omitempty"`
	StatusLight light.Color `json:"status_light"`
}

// StatusUndoneEvent данные события order.status.undone
type StatusUndoneEvent struct {
	RemovedStatus  status.ID   `json:"removed_status"`
	RestoredStatus status.ID   `json:"restored_status"`
	Operator       string      `json:"operator"`
	Reason         string      `json:"reason"`
	StatusLight    light.Color `json:"status_light"`
}

// HistoryEditedEvent данные события order.history.edited
type HistoryEditedEvent struct {
	EntryID       uint   `json:"entry_id"`
	OldActionDate string `json:"old_action_date"`
	NewActionDate string `json:"new_action_date"`
	OrderSynced   bool   `json:"order_synced"`
	Operator      string `json:"operator"`
}

// OrderRenumberedEvent данные события order.renumbered
type OrderRenumberedEvent struct {
	OldOrderNumber string `json:"old_order_number"`
	NewOrderNumber string `json:"new_order_number"`
	Operator       string `json:"operator"`
}

// OrderDeletedEvent данные события order.deleted
type OrderDeletedEvent struct {
	Operator string `json:"operator"`
	Reason   string `json:"reason"`
}

package entity

import (
	"github.com/director74/order-tracking/tracking-service/internal/light"
	"github.com/director74/order-tracking/tracking-service/internal/status"
)

// CatalogView каталог статусов на выбранном языке
type CatalogView struct {
	Lang     status.Lang  `json:"lang"`
	Statuses []StatusView `json:"statuses"`
	Groups   []GroupView  `json:"groups"`
	Rules    RulesView    `json:"rules"`
}

// StatusView статус с подписью и доступными действиями
type StatusView struct {
	ID       status.ID    `json:"id"`
	Label    string       `json:"label"`
	Group    string       `json:"group"`
	Terminal bool         `json:"terminal"`
	Bucket   light.Bucket `json:"bucket,omitempty"`
	Actions  []ActionView `json:"actions"`
}

// ActionView быстрое действие с подписью целевого статуса
type ActionView struct {
	Name        string    `json:"name"`
	Target      status.ID `json:"target"`
	TargetLabel string    `json:"target_label"`
}

// GroupView группа этапов
type GroupView struct {
	Key     string      `json:"key"`
	Label   string      `json:"label"`
	Members []status.ID `json:"members"`
	Filter  bool        `json:"filter,omitempty"`
}

// RulesView действующие пороги светофора
type RulesView struct {
	DeliveryWarningDays int          `json:"delivery_warning_days"`
	Buckets             []BucketView `json:"buckets"`
}

// BucketView пороги одного этапа
type BucketView struct {
	Name     light.Bucket `json:"name"`
	Yellow   int          `json:"yellow_days"`
	Red      *int         `json:"red_days"`
	Statuses []status.ID  `json:"statuses"`
}

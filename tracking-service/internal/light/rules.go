// Package light вычисляет светофор срочности заказа по статусу, дням в статусе
// и сроку поставки.
package light

import (
	"fmt"
	"sort"

	"github.com/director74/order-tracking/tracking-service/internal/status"
)

// Color цвет светофора
type Color string

const (
	Green  Color = "green"
	Yellow Color = "yellow"
	Red    Color = "red"
)

// Severity порядок для сортировки: красный важнее желтого, желтый важнее зеленого
func (c Color) Severity() int {
	switch c {
	case Red:
		return 2
	case Yellow:
		return 1
	default:
		return 0
	}
}

// Bucket логический этап, к которому привязаны пороги
type Bucket string

// Rule пороги в днях. Red == nil: только желтый, по времени красным не становится.
type Rule struct {
	Yellow int  `json:"yellow_days"`
	Red    *int `json:"red_days,omitempty"`
}

// Days указатель на число, для литералов Rule
func Days(n int) *int {
	return &n
}

// DefaultDeliveryWarningDays окно предупреждения о сроке поставки
const DefaultDeliveryWarningDays = 3

// RuleTable пороги по этапам и статическое назначение статусов этапам.
// Несколько статусов могут делить этап (подстатус доработки берет пороги родителя).
type RuleTable struct {
	DeliveryWarningDays int                  `json:"delivery_warning_days"`
	Buckets             map[Bucket]Rule      `json:"buckets"`
	Assignments         map[status.ID]Bucket `json:"assignments"`
}

// DefaultRuleTable стандартные пороги
func DefaultRuleTable() RuleTable {
	return RuleTable{
		DeliveryWarningDays: DefaultDeliveryWarningDays,
		Buckets: map[Bucket]Rule{
			"new_order":          {Yellow: 5, Red: Days(7)},
			"quote_confirming":   {Yellow: 4, Red: Days(7)},
			"draft_making":       {Yellow: 2, Red: Days(4)},
			"draft_confirming":   {Yellow: 3, Red: Days(5)},
			"pending_sample":     {Yellow: 5, Red: Days(7)},
			"sampling":           {Yellow: 10},
			"sample_confirming":  {Yellow: 2, Red: Days(4)},
			"sample_revising":    {Yellow: 3, Red: Days(5)},
			"pending_production": {Yellow: 3, Red: Days(5)},
			"producing":          {Yellow: 14, Red: Days(21)},
		},
		Assignments: map[status.ID]Bucket{
			status.NewOrder:          "new_order",
			status.QuoteConfirming:   "quote_confirming",
			status.DraftMaking:       "draft_making",
			status.DraftRevising:     "draft_making",
			status.DraftConfirming:   "draft_confirming",
			status.PendingSample:     "pending_sample",
			status.Sampling:          "sampling",
			status.SampleConfirming:  "sample_confirming",
			status.SampleRevising:    "sample_revising",
			status.PendingProduction: "pending_production",
			status.Producing:         "producing",
		},
	}
}

// Clone глубокая копия, чтобы переопределения конфигурации не трогали исходную таблицу
func (t RuleTable) Clone() RuleTable {
	out := RuleTable{
		DeliveryWarningDays: t.DeliveryWarningDays,
		Buckets:             make(map[Bucket]Rule, len(t.Buckets)),
		Assignments:         make(map[status.ID]Bucket, len(t.Assignments)),
	}
	for b, r := range t.Buckets {
		if r.Red != nil {
			r.Red = Days(*r.Red)
		}
		out.Buckets[b] = r
	}
	for id, b := range t.Assignments {
		out.Assignments[id] = b
	}
	return out
}

// BucketNames имена этапов по алфавиту
func (t RuleTable) BucketNames() []Bucket {
	names := make([]Bucket, 0, len(t.Buckets))
	for b := range t.Buckets {
		names = append(names, b)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// RuleFor правило для статуса
func (t RuleTable) RuleFor(id status.ID) (Rule, Bucket, bool) {
	bucket, ok := t.Assignments[id]
	if !ok {
		return Rule{}, "", false
	}
	rule, ok := t.Buckets[bucket]
	return rule, bucket, ok
}

// Validate проверяет таблицу против каталога: каждый нетерминальный статус привязан
// ровно к одному существующему этапу, терминальные не привязаны, пороги согласованы.
func (t RuleTable) Validate(catalog *status.Catalog) error {
	if t.DeliveryWarningDays < 0 {
		return fmt.Errorf("окно предупреждения о поставке не может быть отрицательным: %d", t.DeliveryWarningDays)
	}

	for bucket, rule := range t.Buckets {
		if rule.Yellow < 0 {
			return fmt.Errorf("этап %s: отрицательный желтый порог", bucket)
		}
		if rule.Red != nil && *rule.Red <= rule.Yellow {
			return fmt.Errorf("этап %s: красный порог %d должен быть больше желтого %d", bucket, *rule.Red, rule.Yellow)
		}
	}

	for id, bucket := range t.Assignments {
		if !catalog.IsKnown(id) {
			return fmt.Errorf("этап %s назначен неизвестному статусу %s", bucket, id)
		}
		if catalog.IsTerminal(id) {
			return fmt.Errorf("терминальный статус %s не отслеживается светофором", id)
		}
		if _, ok := t.Buckets[bucket]; !ok {
			return fmt.Errorf("статус %s ссылается на неизвестный этап %s", id, bucket)
		}
	}

	for _, def := range catalog.Statuses() {
		if def.Terminal {
			continue
		}
		if _, ok := t.Assignments[def.ID]; !ok {
			return fmt.Errorf("статус %s не привязан к этапу", def.ID)
		}
	}

	return nil
}

package usecase

import (
	"time"

	"github.com/director74/order-tracking/tracking-service/internal/entity"
	"github.com/director74/order-tracking/tracking-service/internal/light"
)

// Clock источник текущей даты в часовом поясе производства
type Clock struct {
	Location *time.Location
	Now      func() time.Time
}

// Today сегодняшняя календарная дата
func (c Clock) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return light.DateOf(now().In(loc))
}

// dateOrToday дата без времени; nil заменяется сегодняшней датой
func (c Clock) dateOrToday(t *time.Time) time.Time {
	if t == nil {
		return c.Today()
	}
	return light.DateOf(*t)
}

// evaluateOrder расчет светофора с учетом старых значений статуса
func evaluateOrder(calc *light.Calculator, order *entity.Order, today time.Time) light.Evaluation {
	snap := order.Snapshot()
	if id, ok := calc.Catalog().Normalize(string(snap.Status)); ok {
		snap.Status = id
	}
	return calc.Evaluate(snap, today)
}

func datePtr(t time.Time) *time.Time {
	d := light.DateOf(t)
	return &d
}

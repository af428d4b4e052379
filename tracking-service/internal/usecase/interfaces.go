package usecase

import (
	"context"

	"github.com/director74/order-tracking/tracking-service/internal/repo"
)

// Store хранилище с единицей работы
type Store interface {
	Repos() repo.Repositories
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos repo.Repositories) error) error
}

// EventPublisher публикует события после фиксации изменений
type EventPublisher interface {
	Publish(ctx context.Context, eventType, orderNumber string, payload interface{})
}

// Locker блокировка для массовых операций
type Locker interface {
	TryLock(ctx context.Context, key string) (func(context.Context) error, error)
}

// Типы событий заказа, они же routing key в exchange событий
const (
	EventOrderCreated    = "order.created"
	EventOrderUpdated    = "order.updated"
	EventStatusChanged   = "order.status.changed"
	EventStatusUndone    = "order.status.undone"
	EventHistoryEdited   = "order.history.edited"
	EventOrderRenumbered = "order.renumbered"
	EventOrderDeleted    = "order.deleted"
	EventLightsRefreshed = "order.lights.refreshed"
)

// RefreshLockKey ключ блокировки массового пересчета
const RefreshLockKey = "tracking:lights:refresh"

const (
	defaultUndoReason     = "undo last step"
	defaultCreatedNotes   = "order created"
	deletedMarker         = "DELETED"
	defaultAuditListLimit = 200
	orderNumberDigits     = 5
)

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, string, interface{}) {}

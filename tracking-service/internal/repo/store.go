package repo

import (
	"context"

	"gorm.io/gorm"
)

// Repositories набор репозиториев, работающих в одном соединении или одной транзакции
type Repositories struct {
	Orders  OrderRepository
	History HistoryRepository
	Audit   AuditRepository
}

// NewRepositories репозитории поверх db (это может быть и транзакция)
func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Orders:  NewOrderRepository(db),
		History: NewHistoryRepository(db),
		Audit:   NewAuditRepository(db),
	}
}

// Store точка входа в хранилище заказов
type Store struct {
	db    *gorm.DB
	repos Repositories
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:    db,
		repos: NewRepositories(db),
	}
}

// Repos репозитории вне транзакции (для чтения)
func (s *Store) Repos() Repositories {
	return s.repos
}

// WithinTransaction выполняет fn в транзакции. Ошибка или паника внутри fn откатывает все изменения.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepositories(tx))
	})
}

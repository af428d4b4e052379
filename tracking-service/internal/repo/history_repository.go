package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "github.com/director74/order-tracking/pkg/errors"
	"github.com/director74/order-tracking/tracking-service/internal/entity"
)

// HistoryRepository журнал переходов статусов
type HistoryRepository interface {
	Create(ctx context.Context, entry *entity.StatusHistory) error
	GetByID(ctx context.Context, id uint) (*entity.StatusHistory, error)
	ListByOrder(ctx context.Context, orderID uint) ([]entity.StatusHistory, error)
	Latest(ctx context.Context, orderID uint, n int) ([]entity.StatusHistory, error)
	Update(ctx context.Context, entry *entity.StatusHistory) error
	Delete(ctx context.Context, id uint) error
	DeleteByOrder(ctx context.Context, orderID uint) (int64, error)
	RenameOrderNumber(ctx context.Context, orderID uint, newNumber string) (int64, error)
}

// ErrHistoryNotFound запись журнала не найдена
var ErrHistoryNotFound = fmt.Errorf("запись истории не найдена: %w", apperrors.ErrNotFound)

type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository создает репозиторий журнала переходов
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Create(ctx context.Context, entry *entity.StatusHistory) error {
	if err := r.db.WithContext(ctx).Omit("Order").Create(entry).Error; err != nil {
		return fmt.Errorf("ошибка записи истории заказа %s: %w", entry.OrderNumber, err)
	}
	return nil
}

func (r *historyRepository) GetByID(ctx context.Context, id uint) (*entity.StatusHistory, error) {
	var entry entity.StatusHistory
	result := r.db.WithContext(ctx).First(&entry, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrHistoryNotFound
		}
		return nil, result.Error
	}
	return &entry, nil
}

// ListByOrder все записи заказа по возрастанию (action_date, id)
func (r *historyRepository) ListByOrder(ctx context.Context, orderID uint) ([]entity.StatusHistory, error) {
	var entries []entity.StatusHistory
	result := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("action_date ASC").
		Order("id ASC").
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}
	return entries, nil
}

// Latest последние n записей, самая новая первой
func (r *historyRepository) Latest(ctx context.Context, orderID uint, n int) ([]entity.StatusHistory, error) {
	var entries []entity.StatusHistory
	result := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("action_date DESC").
		Order("id DESC").
		Limit(n).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}
	return entries, nil
}

func (r *historyRepository) Update(ctx context.Context, entry *entity.StatusHistory) error {
	result := r.db.WithContext(ctx).
		Model(&entity.StatusHistory{}).
		Where("id = ?", entry.ID).
		Updates(map[string]interface{}{
			"action_date": entry.ActionDate,
			"notes":       entry.Notes,
		})
	if result.Error != nil {
		return fmt.Errorf("ошибка обновления записи истории %d: %w", entry.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrHistoryNotFound
	}
	return nil
}

func (r *historyRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.StatusHistory{}, id)
	if result.Error != nil {
		return fmt.Errorf("ошибка удаления записи истории %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrHistoryNotFound
	}
	return nil
}

// DeleteByOrder удаляет журнал заказа, возвращает число удаленных записей
func (r *historyRepository) DeleteByOrder(ctx context.Context, orderID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&entity.StatusHistory{})
	if result.Error != nil {
		return 0, fmt.Errorf("ошибка удаления истории заказа %d: %w", orderID, result.Error)
	}
	return result.RowsAffected, nil
}

// RenameOrderNumber переносит журнал на новый номер заказа
func (r *historyRepository) RenameOrderNumber(ctx context.Context, orderID uint, newNumber string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.StatusHistory{}).
		Where("order_id = ?", orderID).
		Update("order_number", newNumber)
	if result.Error != nil {
		return 0, fmt.Errorf("ошибка переименования истории заказа %d: %w", orderID, result.Error)
	}
	return result.RowsAffected, nil
}

package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/director74/order-tracking/pkg/errors"
	"github.com/director74/order-tracking/tracking-service/internal/entity"
	"github.com/director74/order-tracking/tracking-service/internal/light"
)

// OrderRepository интерфейс репозитория для работы с заказами
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByNumber(ctx context.Context, number string) (*entity.Order, error)
	GetByNumberForUpdate(ctx context.Context, number string) (*entity.Order, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*entity.Order, error)
	Exists(ctx context.Context, number string) (bool, error)
	Update(ctx context.Context, order *entity.Order) error
	UpdateLight(ctx context.Context, id uint, color light.Color, days int) error
	Delete(ctx context.Context, id uint) error
	Rename(ctx context.Context, id uint, newNumber string) error
	List(ctx context.Context, filter entity.OrderFilter) ([]entity.Order, int64, error)
	ListIDs(ctx context.Context) ([]uint, error)
	MaxSequence(ctx context.Context, prefix string) (int, error)
	CountByStatusLight(ctx context.Context) ([]entity.StatusCount, error)
}

// ErrOrderNotFound ошибка, когда заказ не найден
var ErrOrderNotFound = fmt.Errorf("заказ не найден: %w", apperrors.ErrNotFound)

// ErrOrderNumberTaken номер заказа уже занят
var ErrOrderNumberTaken = fmt.Errorf("номер заказа уже существует: %w", apperrors.ErrConflict)

// OrderRepositoryImpl реализация репозитория заказов на GORM
type OrderRepositoryImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &OrderRepositoryImpl{
		db: db,
	}
}

func (r *OrderRepositoryImpl) Create(ctx context.Context, order *entity.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrOrderNumberTaken
		}
		return err
	}
	return nil
}

func (r *OrderRepositoryImpl) GetByNumber(ctx context.Context, number string) (*entity.Order, error) {
	return r.first(r.db.WithContext(ctx), "order_number = ?", number)
}

// GetByNumberForUpdate читает заказ с блокировкой строки до конца транзакции
func (r *OrderRepositoryImpl) GetByNumberForUpdate(ctx context.Context, number string) (*entity.Order, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "order_number = ?", number)
}

func (r *OrderRepositoryImpl) GetByIDForUpdate(ctx context.Context, id uint) (*entity.Order, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

func (r *OrderRepositoryImpl) first(db *gorm.DB, query string, args ...interface{}) (*entity.Order, error) {
	var order entity.Order
	result := db.Where(query, args...).First(&order)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, result.Error
	}
	return &order, nil
}

func (r *OrderRepositoryImpl) Exists(ctx context.Context, number string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Where("order_number = ?", number).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// Update обновляет заказ
func (r *OrderRepositoryImpl) Update(ctx context.Context, order *entity.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(order).Error
}

// UpdateLight обновляет только кэшированные поля светофора
func (r *OrderRepositoryImpl) UpdateLight(ctx context.Context, id uint, color light.Color, days int) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status_light": color,
			"status_days":  days,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// Delete удаляет заказ; записи журнала удаляются каскадно
func (r *OrderRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Order{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// Rename меняет номер заказа
func (r *OrderRepositoryImpl) Rename(ctx context.Context, id uint, newNumber string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Where("id = ?", id).
		Update("order_number", newNumber)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrOrderNumberTaken
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// severityOrder красные сверху, затем желтые
const severityOrder = "CASE status_light WHEN 'red' THEN 0 WHEN 'yellow' THEN 1 ELSE 2 END"

// List выборка с фильтрами. Сортировка: светофор по тяжести, дни в статусе, дата заказа.
func (r *OrderRepositoryImpl) List(ctx context.Context, filter entity.OrderFilter) ([]entity.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Order{})

	if len(filter.Statuses) > 0 {
		query = query.Where("current_status IN ?", filter.Statuses)
	}
	if filter.Light != "" {
		query = query.Where("status_light = ?", filter.Light)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"order_number ILIKE ? OR customer_name ILIKE ? OR product_name ILIKE ? OR product_code ILIKE ? OR factory ILIKE ?",
			like, like, like, like, like,
		)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.
		Order(severityOrder).
		Order("status_days DESC").
		Order("order_date DESC").
		Order("id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var orders []entity.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListIDs идентификаторы всех заказов в порядке создания
func (r *OrderRepositoryImpl) ListIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	result := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Order("id ASC").
		Pluck("id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	return ids, nil
}

// MaxSequence наибольшая числовая часть номеров вида <префикс><цифры>; 0, если таких нет
func (r *OrderRepositoryImpl) MaxSequence(ctx context.Context, prefix string) (int, error) {
	return maxSequence(r.db.WithContext(ctx), &entity.Order{}, prefix)
}

// CountByStatusLight число заказов по паре (статус, светофор)
func (r *OrderRepositoryImpl) CountByStatusLight(ctx context.Context) ([]entity.StatusCount, error) {
	var counts []entity.StatusCount
	result := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Select("current_status AS status, status_light AS light, COUNT(*) AS count").
		Group("current_status, status_light").
		Scan(&counts)
	if result.Error != nil {
		return nil, result.Error
	}
	return counts, nil
}

package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/director74/order-tracking/tracking-service/internal/entity"
)

// AuditRepository журнал ручных вмешательств. Записи не изменяются,
// кроме переноса на новый номер при переименовании заказа.
type AuditRepository interface {
	Create(ctx context.Context, record *entity.AuditLog) error
	ListByOrderNumber(ctx context.Context, number string, limit int) ([]entity.AuditLog, error)
	RenameOrderNumber(ctx context.Context, oldNumber, newNumber string) (int64, error)
	MaxSequence(ctx context.Context, prefix string) (int, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, record *entity.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("ошибка записи аудита %s для заказа %s: %w", record.ActionType, record.OrderNumber, err)
	}
	return nil
}

// ListByOrderNumber записи аудита заказа, новые первыми
func (r *auditRepository) ListByOrderNumber(ctx context.Context, number string, limit int) ([]entity.AuditLog, error) {
	var records []entity.AuditLog
	query := r.db.WithContext(ctx).
		Where("order_number = ?", number).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *auditRepository) RenameOrderNumber(ctx context.Context, oldNumber, newNumber string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.AuditLog{}).
		Where("order_number = ?", oldNumber).
		Update("order_number", newNumber)
	if result.Error != nil {
		return 0, fmt.Errorf("ошибка переименования аудита %s: %w", oldNumber, result.Error)
	}
	return result.RowsAffected, nil
}

// MaxSequence наибольший номер из аудита, включая номера удаленных заказов
func (r *auditRepository) MaxSequence(ctx context.Context, prefix string) (int, error) {
	return maxSequence(r.db.WithContext(ctx), &entity.AuditLog{}, prefix)
}

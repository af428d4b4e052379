package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/director74/order-tracking/pkg/errors"
	"github.com/director74/order-tracking/tracking-service/internal/entity"
)

// OperatorRepository интерфейс репозитория для работы с операторами
type OperatorRepository interface {
	Create(ctx context.Context, operator *entity.Operator) error
	GetByID(ctx context.Context, id uint) (*entity.Operator, error)
	GetByUsername(ctx context.Context, username string) (*entity.Operator, error)
	Update(ctx context.Context, operator *entity.Operator) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}

// ErrOperatorNotFound ошибка, когда оператор не найден
var ErrOperatorNotFound = fmt.Errorf("оператор не найден: %w", apperrors.ErrNotFound)

// ErrOperatorExists оператор с таким логином уже есть
var ErrOperatorExists = fmt.Errorf("оператор с таким логином уже существует: %w", apperrors.ErrConflict)

// OperatorRepositoryImpl реализация репозитория операторов на GORM
type OperatorRepositoryImpl struct {
	db *gorm.DB
}

func NewOperatorRepository(db *gorm.DB) OperatorRepository {
	return &OperatorRepositoryImpl{
		db: db,
	}
}

func (r *OperatorRepositoryImpl) Create(ctx context.Context, operator *entity.Operator) error {
	if err := r.db.WithContext(ctx).Create(operator).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrOperatorExists
		}
		return err
	}
	return nil
}

func (r *OperatorRepositoryImpl) GetByID(ctx context.Context, id uint) (*entity.Operator, error) {
	var operator entity.Operator
	result := r.db.WithContext(ctx).First(&operator, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOperatorNotFound
		}
		return nil, result.Error
	}
	return &operator, nil
}

func (r *OperatorRepositoryImpl) GetByUsername(ctx context.Context, username string) (*entity.Operator, error) {
	var operator entity.Operator
	result := r.db.WithContext(ctx).Where("username = ?", username).First(&operator)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOperatorNotFound
		}
		return nil, result.Error
	}
	return &operator, nil
}

// Update обновляет оператора
func (r *OperatorRepositoryImpl) Update(ctx context.Context, operator *entity.Operator) error {
	return r.db.WithContext(ctx).Save(operator).Error
}

// TouchLastLogin запоминает время последнего входа
func (r *OperatorRepositoryImpl) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.Operator{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

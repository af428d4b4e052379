package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/director74/order-tracking/pkg/auth"
	apperrors "github.com/director74/order-tracking/pkg/errors"
	"github.com/director74/order-tracking/tracking-service/internal/entity"
	"github.com/director74/order-tracking/tracking-service/internal/repo"
)

const minPasswordLength = 6

// AuthUseCase вход операторов и управление учетными записями
type AuthUseCase struct {
	operators  repo.OperatorRepository
	jwtManager *auth.JWTManager
	now        func() time.Time
	logger     *zap.Logger
}

func NewAuthUseCase(operators repo.OperatorRepository, jwtManager *auth.JWTManager, logger *zap.Logger) *AuthUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthUseCase{
		operators:  operators,
		jwtManager: jwtManager,
		now:        time.Now,
		logger:     logger.Named("AuthUseCase"),
	}
}

// Login проверяет пароль и возвращает JWT токен
func (uc *AuthUseCase) Login(ctx context.Context, req entity.LoginRequest) (*entity.LoginResponse, error) {
	operator, err := uc.operators.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repo.ErrOperatorNotFound) {
			return nil, apperrors.NewInvalidCredentialsError()
		}
		return nil, err
	}

	if !auth.CheckPasswordHash(req.Password, operator.PasswordHash) {
		return nil, apperrors.NewInvalidCredentialsError()
	}
	if !operator.Active {
		return nil, apperrors.NewForbiddenError("учетная запись отключена")
	}

	token, err := uc.jwtManager.GenerateToken(operator.ID, operator.Username, operator.DisplayName, operator.Role)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания токена: %w", err)
	}

	if err := uc.operators.TouchLastLogin(ctx, operator.ID, uc.now()); err != nil {
		uc.logger.Warn("не удалось сохранить время входа", zap.String("username", operator.Username), zap.Error(err))
	}

	return &entity.LoginResponse{
		ID:          operator.ID,
		Username:    operator.Username,
		DisplayName: operator.DisplayName,
		Role:        operator.Role,
		Token:       token,
	}, nil
}

// CreateOperator создает учетную запись оператора
func (uc *AuthUseCase) CreateOperator(ctx context.Context, req entity.CreateOperatorRequest) (*entity.Operator, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, apperrors.NewValidationError("username", "обязательное поле")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password", fmt.Sprintf("не короче %d символов", minPasswordLength))
	}

	role := strings.TrimSpace(req.Role)
	switch role {
	case "":
		role = auth.RoleOperator
	case auth.RoleAdmin, auth.RoleOperator:
	default:
		return nil, apperrors.NewValidationError("role", fmt.Sprintf("неизвестная роль %q", role))
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	operator := &entity.Operator{
		Username:     username,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := uc.operators.Create(ctx, operator); err != nil {
		return nil, err
	}

	uc.logger.Info("оператор создан", zap.String("username", username), zap.String("role", role))
	return operator, nil
}

// EnsureAdmin создает администратора, если логин и пароль заданы, а такого оператора еще нет
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}

	_, err := uc.operators.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrOperatorNotFound) {
		return fmt.Errorf("ошибка поиска администратора: %w", err)
	}

	_, err = uc.CreateOperator(ctx, entity.CreateOperatorRequest{
		Username: username,
		Password: password,
		Role:     auth.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("ошибка создания администратора: %w", err)
	}
	return nil
}

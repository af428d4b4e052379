package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/director74/order-tracking/pkg/errors"
	"github.com/director74/order-tracking/pkg/logger"
	"github.com/director74/order-tracking/tracking-service/config"
	"github.com/director74/order-tracking/tracking-service/internal/entity"
	"github.com/director74/order-tracking/tracking-service/internal/usecase"
)

// RefreshOnce выполняет один массовый пересчет светофоров и завершается
func RefreshOnce(ctx context.Context, cfg *config.Config) (*entity.RefreshReport, error) {
	l, err := logger.New(cfg.Log)
	if err != nil {
		return nil, errors.AppendPrefix(err, "не удалось создать логгер")
	}
	defer l.Sync()

	c, err := newCore(cfg, l)
	if err != nil {
		return nil, err
	}
	defer c.close(l)

	return c.refresher(l).RefreshAll(ctx)
}

// CreateOperator создает учетную запись оператора
func CreateOperator(ctx context.Context, cfg *config.Config, req entity.CreateOperatorRequest) (*entity.Operator, error) {
	l, err := logger.New(cfg.Log)
	if err != nil {
		return nil, errors.AppendPrefix(err, "не удалось создать логгер")
	}
	defer l.Sync()

	c, err := newCore(cfg, l)
	if err != nil {
		return nil, err
	}
	defer c.close(l)

	uc := usecase.NewAuthUseCase(c.operators, jwtManager(cfg), l)
	operator, err := uc.CreateOperator(ctx, req)
	if err != nil {
		l.Error("не удалось создать оператора", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}
	return operator, nil
}

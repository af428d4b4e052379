package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/director74/order-tracking/pkg/messaging"
	"github.com/director74/order-tracking/tracking-service/internal/entity"
	"github.com/director74/order-tracking/tracking-service/internal/usecase"
)

// RefreshRoutingKey команда массового пересчета светофоров
const RefreshRoutingKey = "lights.refresh"

// Refresher массовый пересчет, который запускает команда
type Refresher interface {
	RefreshAll(ctx context.Context) (*entity.RefreshReport, error)
}

// RefreshCommand тело команды lights.refresh; пустое тело тоже допустимо
type RefreshCommand struct {
	RequestedBy string `json:"requested_by"`
	Reason      string `json:"reason"`
}

// RefreshConsumer обработчик команд пересчета из очереди
type RefreshConsumer struct {
	refresher Refresher
	broker    messaging.MessageConsumer
	exchange  string
	queue     string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewRefreshConsumer создает обработчик
func NewRefreshConsumer(refresher Refresher, broker messaging.MessageConsumer, exchange, queue string, timeout time.Duration, logger *zap.Logger) *RefreshConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &RefreshConsumer{
		refresher: refresher,
		broker:    broker,
		exchange:  exchange,
		queue:     queue,
		timeout:   timeout,
		logger:    logger.Named("RefreshConsumer"),
	}
}

// HandleRefresh выполняет пересчет. Пересчет, уже идущий в другом экземпляре, не считается ошибкой.
func (c *RefreshConsumer) HandleRefresh(data []byte) error {
	var cmd RefreshCommand
	if len(data) > 0 {
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.logger.Error("не удалось разобрать команду пересчета", zap.Error(err))
			return fmt.Errorf("ошибка десериализации %s: %w", RefreshRoutingKey, err)
		}
	}

	c.logger.Info("получена команда пересчета",
		zap.String("requested_by", cmd.RequestedBy),
		zap.String("reason", cmd.Reason),
	)

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	report, err := c.refresher.RefreshAll(ctx)
	if err != nil {
		if errors.Is(err, usecase.ErrRefreshInProgress) {
			c.logger.Info("пересчет уже выполняется, команда пропущена")
			return nil
		}
		return fmt.Errorf("ошибка пересчета светофоров: %w", err)
	}

	c.logger.Info("пересчет по команде завершен",
		zap.Int("total", report.Total),
		zap.Int("updated", report.Updated),
	)
	return nil
}

// Setup объявляет очередь, привязывает ее к exchange команд и запускает обработку
func (c *RefreshConsumer) Setup() error {
	if err := c.broker.DeclareQueue(c.queue); err != nil {
		return fmt.Errorf("ошибка при объявлении очереди %s: %w", c.queue, err)
	}

	if err := c.broker.BindQueue(c.queue, c.exchange, RefreshRoutingKey); err != nil {
		return fmt.Errorf("ошибка при привязке очереди %s к ключу %s: %w", c.queue, RefreshRoutingKey, err)
	}

	if err := c.broker.ConsumeMessages(c.queue, "tracking-service-refresh-handler", c.HandleRefresh); err != nil {
		return fmt.Errorf("ошибка при настройке обработчика сообщений для %s: %w", c.queue, err)
	}

	c.logger.Info("настроена обработка команд пересчета", zap.String("queue", c.queue))
	return nil
}

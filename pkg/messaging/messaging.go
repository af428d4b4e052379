package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/director74/order-tracking/pkg/config"
	"github.com/director74/order-tracking/pkg/rabbitmq"
)

// MessagePublisher интерфейс для публикации сообщений
type MessagePublisher interface {
	PublishMessage(ctx context.Context, exchange, routingKey string, message interface{}) error
	PublishMessageWithRetry(ctx context.Context, exchange, routingKey string, message interface{}, retries int) error
}

// MessageConsumer интерфейс для получения сообщений
type MessageConsumer interface {
	DeclareQueue(name string) error
	BindQueue(queueName, exchangeName, routingKey string) error
	ConsumeMessages(queueName, consumerName string, handler func([]byte) error) error
}

// MessageBroker объединяет публикацию и обработку сообщений
type MessageBroker interface {
	MessagePublisher
	MessageConsumer
	DeclareExchange(name string, kind string) error
	Close() error
}

// Envelope общая обертка событий сервиса
type Envelope struct {
	EventID     string      `json:"event_id"`
	Type        string      `json:"type"`
	OrderNumber string      `json:"order_number,omitempty"`
	OccurredAt  time.Time   `json:"occurred_at"`
	Payload     interface{} `json:"payload,omitempty"`
}

// NewEnvelope создает событие с новым идентификатором
func NewEnvelope(eventType, orderNumber string, payload interface{}) Envelope {
	return Envelope{
		EventID:     uuid.NewString(),
		Type:        eventType,
		OrderNumber: orderNumber,
		OccurredAt:  time.Now().UTC(),
		Payload:     payload,
	}
}

// InitRabbitMQ инициализирует подключение к RabbitMQ
func InitRabbitMQ(cfg config.RabbitMQConfig, logger *zap.Logger) (*rabbitmq.RabbitMQ, error) {
	return rabbitmq.NewRabbitMQ(rabbitmq.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		VHost:    cfg.VHost,
	}, logger)
}

// EventPublisher публикует события в topic exchange. Ошибки публикации только логируются:
// изменение уже зафиксировано в базе.
type EventPublisher struct {
	publisher MessagePublisher
	exchange  string
	retries   int
	logger    *zap.Logger
}

// NewEventPublisher создает публикатор событий. publisher == nil дает no-op.
func NewEventPublisher(publisher MessagePublisher, exchange string, retries int, logger *zap.Logger) *EventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventPublisher{
		publisher: publisher,
		exchange:  exchange,
		retries:   retries,
		logger:    logger.Named("EventPublisher"),
	}
}

// Publish отправляет событие с routing key = тип события
func (p *EventPublisher) Publish(ctx context.Context, eventType, orderNumber string, payload interface{}) {
	if p == nil || p.publisher == nil {
		return
	}

	envelope := NewEnvelope(eventType, orderNumber, payload)
	err := p.publisher.PublishMessageWithRetry(ctx, p.exchange, eventType, envelope, p.retries)
	if err != nil {
		p.logger.Error("не удалось опубликовать событие",
			zap.String("event_type", eventType),
			zap.String("event_id", envelope.EventID),
			zap.String("order_number", orderNumber),
			zap.Error(err),
		)
		return
	}

	p.logger.Debug("событие опубликовано",
		zap.String("event_type", eventType),
		zap.String("event_id", envelope.EventID),
		zap.String("order_number", orderNumber),
	)
}

// SetupExchangesAndQueues объявляет exchanges, очереди и их привязки (очередь -> exchange -> routing key)
func SetupExchangesAndQueues(broker MessageBroker, exchanges map[string]string, queues map[string]map[string]string) error {
	for name, kind := range exchanges {
		if err := broker.DeclareExchange(name, kind); err != nil {
			return err
		}
	}

	for queueName, bindings := range queues {
		if err := broker.DeclareQueue(queueName); err != nil {
			return err
		}

		for exchangeName, routingKey := range bindings {
			if err := broker.BindQueue(queueName, exchangeName, routingKey); err != nil {
				return err
			}
		}
	}

	return nil
}

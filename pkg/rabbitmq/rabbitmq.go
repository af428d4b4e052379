package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Config содержит настройки подключения к RabbitMQ
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	VHost    string
}

// URL строка подключения, vhost экранируется ("/" -> "%2F")
func (c Config) URL() string {
	u := url.URL{
		Scheme:  "amqp",
		User:    url.UserPassword(c.User, c.Password),
		Host:    c.Host + ":" + c.Port,
		Path:    "/" + c.VHost,
		RawPath: "/" + url.PathEscape(c.VHost),
	}
	return u.String()
}

// RabbitMQ клиент с одним каналом и ленивым переподключением
type RabbitMQ struct {
	config     Config
	logger     *zap.Logger
	mu         sync.Mutex
	connection *amqp.Connection
	channel    *amqp.Channel
}

func NewRabbitMQ(cfg Config, logger *zap.Logger) (*RabbitMQ, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rmq := &RabbitMQ{
		config: cfg,
		logger: logger.Named("RabbitMQ"),
	}

	rmq.mu.Lock()
	defer rmq.mu.Unlock()
	if err := rmq.connect(); err != nil {
		return nil, err
	}

	return rmq, nil
}

// connect вызывается под mu
func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(r.config.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	r.connection = conn
	r.channel = ch
	return nil
}

// ensureChannel переподключается, если соединение или канал закрыты
func (r *RabbitMQ) ensureChannel() (*amqp.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connection != nil && !r.connection.IsClosed() && r.channel != nil && !r.channel.IsClosed() {
		return r.channel, nil
	}

	r.logger.Warn("соединение с RabbitMQ потеряно, переподключаемся")
	if r.connection != nil && !r.connection.IsClosed() {
		r.connection.Close()
	}
	if err := r.connect(); err != nil {
		return nil, err
	}
	return r.channel, nil
}

// Close закрывает канал и соединение
func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel != nil && !r.channel.IsClosed() {
		if err := r.channel.Close(); err != nil {
			return fmt.Errorf("ошибка при закрытии канала: %w", err)
		}
	}
	if r.connection != nil && !r.connection.IsClosed() {
		if err := r.connection.Close(); err != nil {
			return fmt.Errorf("ошибка при закрытии соединения: %w", err)
		}
	}
	return nil
}

// DeclareExchange объявляет durable exchange
func (r *RabbitMQ) DeclareExchange(name string, kind string) error {
	ch, err := r.ensureChannel()
	if err != nil {
		return fmt.Errorf("ошибка переподключения перед объявлением exchange: %w", err)
	}

	return ch.ExchangeDeclare(
		name,  // name
		kind,  // type
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
}

// DeclareQueue объявляет durable очередь
func (r *RabbitMQ) DeclareQueue(name string) error {
	ch, err := r.ensureChannel()
	if err != nil {
		return fmt.Errorf("ошибка переподключения перед объявлением очереди: %w", err)
	}

	_, err = ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	return err
}

// BindQueue привязывает очередь к exchange
func (r *RabbitMQ) BindQueue(queueName, exchangeName, routingKey string) error {
	ch, err := r.ensureChannel()
	if err != nil {
		return fmt.Errorf("ошибка переподключения перед привязкой очереди: %w", err)
	}

	return ch.QueueBind(
		queueName,    // queue name
		routingKey,   // routing key
		exchangeName, // exchange
		false,        // no-wait
		nil,          // arguments
	)
}

// PublishMessage публикует сообщение как persistent JSON
func (r *RabbitMQ) PublishMessage(ctx context.Context, exchange, routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ch, err := r.ensureChannel()
	if err != nil {
		return fmt.Errorf("ошибка переподключения перед публикацией сообщения: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return ch.PublishWithContext(
		ctx,
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// PublishMessageWithRetry публикует сообщение с линейной задержкой между попытками
func (r *RabbitMQ) PublishMessageWithRetry(ctx context.Context, exchange, routingKey string, message interface{}, retries int) error {
	var err error
	for i := 0; i <= retries; i++ {
		if err = r.PublishMessage(ctx, exchange, routingKey, message); err == nil {
			return nil
		}

		r.logger.Warn("ошибка публикации сообщения",
			zap.String("exchange", exchange),
			zap.String("routing_key", routingKey),
			zap.Int("attempt", i+1),
			zap.Error(err),
		)

		if i < retries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i+1) * time.Second):
			}
		}
	}

	return fmt.Errorf("не удалось опубликовать сообщение после %d попыток: %w", retries+1, err)
}

// ConsumeMessages запускает обработку очереди в отдельной горутине
func (r *RabbitMQ) ConsumeMessages(queueName, consumerName string, handler func([]byte) error) error {
	ch, err := r.ensureChannel()
	if err != nil {
		return fmt.Errorf("ошибка переподключения перед обработкой сообщений: %w", err)
	}

	// по одному сообщению за раз: пересчет тяжелый
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("ошибка настройки prefetch: %w", err)
	}

	msgs, err := ch.Consume(
		queueName,
		fmt.Sprintf("%s-%d", consumerName, time.Now().UnixNano()),
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("ошибка при начале обработки сообщений: %w", err)
	}

	go r.HandleMessages(msgs, handler)

	return nil
}

// HandleMessages подтверждает успешно обработанные сообщения. Сообщение с ошибкой
// возвращается в очередь только один раз, повторная ошибка отбрасывает его.
func (r *RabbitMQ) HandleMessages(msgs <-chan amqp.Delivery, handler func([]byte) error) {
	for msg := range msgs {
		if err := handler(msg.Body); err != nil {
			r.logger.Error("ошибка обработки сообщения",
				zap.String("routing_key", msg.RoutingKey),
				zap.Bool("redelivered", msg.Redelivered),
				zap.Error(err),
			)
			msg.Nack(false, !msg.Redelivered)
			continue
		}
		msg.Ack(false)
	}
	r.logger.Info("канал доставки закрыт, обработка остановлена")
}

// Package redislock реализует простую распределенную блокировку на SET NX с TTL.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/director74/order-tracking/pkg/config"
)

// ErrNotAcquired блокировка занята другим процессом
var ErrNotAcquired = errors.New("блокировка уже захвачена")

// releaseScript удаляет ключ только если он принадлежит владельцу токена
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Client подмножество команд go-redis, которое нужно блокировке
type Client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	redis.Scripter
}

// Locker выдает блокировки с фиксированным TTL
type Locker struct {
	client Client
	ttl    time.Duration
}

func New(client Client, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl}
}

// NewClient создает клиент Redis по конфигурации
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// TryLock пытается захватить ключ. Возвращает функцию освобождения или ErrNotAcquired.
func (l *Locker) TryLock(ctx context.Context, key string) (func(context.Context) error, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("ошибка захвата блокировки %s: %w", key, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("ошибка освобождения блокировки %s: %w", key, err)
		}
		return nil
	}
	return release, nil
}

// LocalLocker блокировка в пределах процесса, когда Redis не настроен
type LocalLocker struct {
	held chan struct{}
}

func NewLocal() *LocalLocker {
	return &LocalLocker{held: make(chan struct{}, 1)}
}

// TryLock не различает ключи: в процессе одна массовая операция за раз
func (l *LocalLocker) TryLock(_ context.Context, _ string) (func(context.Context) error, error) {
	select {
	case l.held <- struct{}{}:
		return func(context.Context) error {
			<-l.held
			return nil
		}, nil
	default:
		return nil, ErrNotAcquired
	}
}

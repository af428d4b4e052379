package repo

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/director74/order-tracking/tracking-service/internal/entity"
)

const (
	// StatsCacheKey префикс ключей сводки в Redis, полный ключ tracking:stats:<поколение>
	StatsCacheKey = "tracking:stats"
	// StatsGenerationKey счетчик поколений сводки, Invalidate его увеличивает
	StatsGenerationKey = "tracking:stats:gen"
)

// NoGeneration поколение неизвестно, Set с ним ничего не пишет
const NoGeneration int64 = -1

// StatsCache кэш сводки по заказам. Ошибки кэша не мешают работе: промах и только лог.
//
// Get всегда отдает текущее поколение. Сводку, посчитанную после промаха, нужно
// класть через Set с этим поколением: если между чтением и записью был Invalidate,
// запись уйдет в устаревшее поколение и читателям не достанется.
type StatsCache interface {
	Get(ctx context.Context) (stats *entity.OrderStats, generation int64, ok bool)
	Set(ctx context.Context, generation int64, stats *entity.OrderStats)
	Invalidate(ctx context.Context)
}

// StatsRedis подмножество команд go-redis, которое нужно кэшу сводки
type StatsRedis interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

type redisStatsCache struct {
	rdb    StatsRedis
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStatsCache кэш сводки в Redis. Если rdb == nil или ttl <= 0, кэш отключен.
func NewRedisStatsCache(rdb StatsRedis, ttl time.Duration, logger *zap.Logger) StatsCache {
	if rdb == nil || ttl <= 0 {
		return NopStatsCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisStatsCache{rdb: rdb, ttl: ttl, logger: logger.Named("StatsCache")}
}

func statsKey(generation int64) string {
	return StatsCacheKey + ":" + strconv.FormatInt(generation, 10)
}

func (c *redisStatsCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, StatsGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *redisStatsCache) Get(ctx context.Context) (*entity.OrderStats, int64, bool) {
	gen, err := c.generation(ctx)
	if err != nil {
		c.logger.Warn("ошибка чтения поколения сводки", zap.Error(err))
		return nil, NoGeneration, false
	}

	raw, err := c.rdb.Get(ctx, statsKey(gen)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("ошибка чтения сводки из кэша", zap.Error(err))
		}
		return nil, gen, false
	}

	var stats entity.OrderStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		c.logger.Warn("поврежденная сводка в кэше", zap.Int64("generation", gen), zap.Error(err))
		return nil, gen, false
	}
	return &stats, gen, true
}

func (c *redisStatsCache) Set(ctx context.Context, generation int64, stats *entity.OrderStats) {
	if generation < 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		c.logger.Warn("ошибка сериализации сводки", zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, statsKey(generation), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("ошибка записи сводки в кэш", zap.Error(err))
	}
}

// Invalidate переводит кэш на новое поколение, старые ключи истекают по TTL
func (c *redisStatsCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Incr(ctx, StatsGenerationKey).Err(); err != nil {
		c.logger.Warn("ошибка сброса кэша сводки", zap.Error(err))
	}
}

// NopStatsCache кэш, который ничего не хранит
type NopStatsCache struct{}

func (NopStatsCache) Get(context.Context) (*entity.OrderStats, int64, bool) {
	return nil, NoGeneration, false
}
func (NopStatsCache) Set(context.Context, int64, *entity.OrderStats) {}
func (NopStatsCache) Invalidate(context.Context)                     {}

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/director74/order-tracking/pkg/config"
	"github.com/director74/order-tracking/pkg/middleware"
	"github.com/director74/order-tracking/tracking-service/internal/light"
)

// Config содержит конфигурацию сервиса отслеживания заказов
type Config struct {
	HTTP        config.HTTPConfig
	Postgres    config.PostgresConfig
	RabbitMQ    config.RabbitMQConfig
	Redis       config.RedisConfig
	Log         config.LogConfig
	JWT         config.JWTConfig
	InternalAPI middleware.InternalAPIConfig
	Tracking    TrackingConfig
}

// TrackingConfig настройки журнала статусов и светофора
type TrackingConfig struct {
	Timezone          string
	OrderNumberPrefix string
	StrictTransitions bool
	// RefreshInterval 0 отключает периодический пересчет
	RefreshInterval time.Duration
	RefreshLockTTL  time.Duration
	StatsCacheTTL   time.Duration
	EventsExchange  string
	CommandExchange string
	RefreshQueue    string
	PublishRetries  int
	AdminUsername   string
	AdminPassword   string
	Rules           light.RuleTable
}

// Location часовой пояс производства
func (c TrackingConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("неизвестный часовой пояс %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func NewConfig() (*Config, error) {
	commonConfig := config.LoadCommonConfig("tracking", "8080")
	jwtConfig := config.LoadJWTConfig("order-tracking")

	rules, err := LoadLightRules(light.DefaultRuleTable())
	if err != nil {
		return nil, err
	}

	tracking := TrackingConfig{
		Timezone:          config.GetEnv("TRACKING_TIMEZONE", "Asia/Shanghai"),
		OrderNumberPrefix: config.GetEnv("ORDER_NUMBER_PREFIX", "KC"),
		StrictTransitions: config.GetEnvAsBool("STRICT_TRANSITIONS", false),
		RefreshInterval:   config.GetEnvAsDuration("LIGHT_REFRESH_INTERVAL", 24*time.Hour),
		RefreshLockTTL:    config.GetEnvAsDuration("LIGHT_REFRESH_LOCK_TTL", 10*time.Minute),
		StatsCacheTTL:     config.GetEnvAsDuration("STATS_CACHE_TTL", time.Minute),
		EventsExchange:    config.GetEnv("EVENTS_EXCHANGE", "order_events"),
		CommandExchange:   config.GetEnv("COMMANDS_EXCHANGE", "tracking_commands"),
		RefreshQueue:      config.GetEnv("REFRESH_QUEUE", "tracking_refresh_queue"),
		PublishRetries:    config.GetEnvAsInt("EVENTS_PUBLISH_RETRIES", 3),
		AdminUsername:     config.GetEnv("ADMIN_USERNAME", ""),
		AdminPassword:     config.GetEnv("ADMIN_PASSWORD", ""),
		Rules:             rules,
	}
	if _, err := tracking.Location(); err != nil {
		return nil, err
	}

	return &Config{
		HTTP:        commonConfig.HTTP,
		Postgres:    commonConfig.Postgres,
		RabbitMQ:    commonConfig.RabbitMQ,
		Redis:       commonConfig.Redis,
		Log:         commonConfig.Log,
		JWT:         *jwtConfig,
		InternalAPI: *middleware.LoadInternalAPIConfig(),
		Tracking:    tracking,
	}, nil
}

// LoadLightRules применяет к таблице порогов переопределения из окружения:
// LIGHT_DELIVERY_WARNING_DAYS, LIGHT_<ЭТАП>_YELLOW_DAYS, LIGHT_<ЭТАП>_RED_DAYS.
// Красный порог <= 0 убирает красный цвет для этапа.
func LoadLightRules(base light.RuleTable) (light.RuleTable, error) {
	rules := base.Clone()

	if v, ok, err := envInt("LIGHT_DELIVERY_WARNING_DAYS"); err != nil {
		return rules, err
	} else if ok {
		rules.DeliveryWarningDays = v
	}

	for _, bucket := range rules.BucketNames() {
		rule := rules.Buckets[bucket]
		prefix := "LIGHT_" + strings.ToUpper(string(bucket))

		if v, ok, err := envInt(prefix + "_YELLOW_DAYS"); err != nil {
			return rules, err
		} else if ok {
			rule.Yellow = v
		}

		if v, ok, err := envInt(prefix + "_RED_DAYS"); err != nil {
			return rules, err
		} else if ok {
			if v <= 0 {
				rule.Red = nil
			} else {
				rule.Red = light.Days(v)
			}
		}

		rules.Buckets[bucket] = rule
	}
	return rules, nil
}

func envInt(key string) (int, bool, error) {
	raw := strings.TrimSpace(config.GetEnv(key, ""))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s: ожидается целое число, получено %q", key, raw)
	}
	return v, true, nil
}

package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CommonConfig содержит инфраструктурную конфигурацию сервиса
type CommonConfig struct {
	HTTP     HTTPConfig
	Postgres PostgresConfig
	RabbitMQ RabbitMQConfig
	Redis    RedisConfig
	Log      LogConfig
}

// HTTPConfig содержит настройки HTTP сервера
type HTTPConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	GinMode         string
}

// PostgresConfig содержит настройки базы данных PostgreSQL
type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
}

// RabbitMQConfig содержит настройки RabbitMQ
type RabbitMQConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	VHost    string
}

// RedisConfig содержит настройки Redis. Пустой Addr отключает Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// Enabled сообщает, настроен ли Redis
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// LogConfig содержит настройки логирования
type LogConfig struct {
	Level  string
	Format string
}

// JWTConfig содержит настройки для JWT
type JWTConfig struct {
	SigningKey     string
	TokenTTL       time.Duration
	TokenIssuer    string
	TokenAudiences []string
}

// LoadCommonConfig загружает общую конфигурацию из переменных окружения
func LoadCommonConfig(serviceName string, port string) *CommonConfig {
	// .env необязателен
	_ = godotenv.Load()

	return &CommonConfig{
		HTTP: HTTPConfig{
			Port:            GetEnv("HTTP_PORT", port),
			ReadTimeout:     GetEnvAsDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    GetEnvAsDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: GetEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 5*time.Second),
			GinMode:         GetEnv("GIN_MODE", "release"),
		},
		Postgres: PostgresConfig{
			Host:            GetEnv("POSTGRES_HOST", "localhost"),
			Port:            GetEnv("POSTGRES_PORT", "5432"),
			User:            GetEnv("POSTGRES_USER", "postgres"),
			Password:        GetEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:          GetEnv("POSTGRES_DB", serviceName),
			SSLMode:         GetEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    GetEnvAsInt("POSTGRES_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    GetEnvAsInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: GetEnvAsDuration("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
			LogLevel:        GetEnv("POSTGRES_LOG_LEVEL", "warn"),
		},
		RabbitMQ: RabbitMQConfig{
			Enabled:  GetEnvAsBool("RABBITMQ_ENABLED", true),
			Host:     GetEnv("RABBITMQ_HOST", "localhost"),
			Port:     GetEnv("RABBITMQ_PORT", "5672"),
			User:     GetEnv("RABBITMQ_USER", "guest"),
			Password: GetEnv("RABBITMQ_PASSWORD", "guest"),
			VHost:    GetEnv("RABBITMQ_VHOST", "/"),
		},
		Redis: RedisConfig{
			Addr:     GetEnv("REDIS_ADDR", ""),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
			PoolSize: GetEnvAsInt("REDIS_POOL_SIZE", 10),
		},
		Log: LogConfig{
			Level:  GetEnv("LOG_LEVEL", "info"),
			Format: GetEnv("LOG_FORMAT", "json"),
		},
	}
}

// LoadJWTConfig загружает конфигурацию JWT из переменных окружения
func LoadJWTConfig(issuer string) *JWTConfig {
	signingKey := GetEnv("JWT_SIGNING_KEY", "")
	if signingKey == "" {
		signingKey = GenerateRandomKey(32)
		log.Println("ВНИМАНИЕ: JWT_SIGNING_KEY не задан! Сгенерирован случайный ключ, токены станут недействительны после перезапуска.")
	}

	return &JWTConfig{
		SigningKey:     signingKey,
		TokenTTL:       GetEnvAsDuration("JWT_TOKEN_TTL", 12*time.Hour),
		TokenIssuer:    GetEnv("JWT_TOKEN_ISSUER", issuer),
		TokenAudiences: GetEnvAsSlice("JWT_TOKEN_AUDIENCES", []string{"order-tracking"}),
	}
}

// GenerateRandomKey генерирует случайный hex-ключ из length байт
func GenerateRandomKey(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand не должен отказывать, но ключ нужен в любом случае
		return strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return hex.EncodeToString(b)
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(strings.TrimSpace(valueStr)); err == nil {
		return value
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := GetEnv(key, "")
	if value, err := strconv.ParseBool(strings.TrimSpace(valueStr)); err == nil {
		return value
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := GetEnv(key, "")
	if value, err := time.ParseDuration(strings.TrimSpace(valueStr)); err == nil {
		return value
	}
	return defaultValue
}

// GetEnvAsSlice читает список значений через запятую, пустые элементы отбрасываются
func GetEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var result []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}

package middleware

import (
	"crypto/subtle"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/director74/order-tracking/pkg/config"
)

// DefaultInternalHeader заголовок для ключа внутреннего API
const DefaultInternalHeader = "X-Internal-API-Key"

// InternalAPIConfig конфигурация для внутреннего API
type InternalAPIConfig struct {
	// TrustedNetworks CIDR диапазоны, которым доступ разрешен без ключа
	TrustedNetworks []string
	// APIKey ключ, пустой ключ отключает проверку по заголовку
	APIKey string
	// HeaderName имя заголовка для передачи ключа API
	HeaderName string
}

// LoadInternalAPIConfig читает INTERNAL_API_KEY и INTERNAL_TRUSTED_NETWORKS
func LoadInternalAPIConfig() *InternalAPIConfig {
	return &InternalAPIConfig{
		TrustedNetworks: config.GetEnvAsSlice("INTERNAL_TRUSTED_NETWORKS", []string{
			"10.0.0.0/8",
			"172.16.0.0/12",
			"192.168.0.0/16",
			"127.0.0.0/8",
		}),
		APIKey:     config.GetEnv("INTERNAL_API_KEY", ""),
		HeaderName: DefaultInternalHeader,
	}
}

// InternalAuthMiddleware защищает служебные эндпоинты (пересчет светофоров и т.п.)
type InternalAuthMiddleware struct {
	config   *InternalAPIConfig
	networks []*net.IPNet
	logger   *zap.Logger
}

// NewInternalAuthMiddleware создает middleware, некорректные CIDR пропускаются с предупреждением
func NewInternalAuthMiddleware(cfg *InternalAPIConfig, logger *zap.Logger) *InternalAuthMiddleware {
	if cfg == nil {
		cfg = LoadInternalAPIConfig()
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultInternalHeader
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &InternalAuthMiddleware{config: cfg, logger: logger.Named("InternalAPI")}
	for _, network := range cfg.TrustedNetworks {
		_, ipNet, err := net.ParseCIDR(network)
		if err != nil {
			m.logger.Warn("некорректная доверенная сеть", zap.String("cidr", network), zap.Error(err))
			continue
		}
		m.networks = append(m.networks, ipNet)
	}
	return m
}

// Required пропускает запрос с корректным ключом или из доверенной сети
func (m *InternalAuthMiddleware) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.config.APIKey != "" {
			headerKey := c.GetHeader(m.config.HeaderName)
			if subtle.ConstantTimeCompare([]byte(headerKey), []byte(m.config.APIKey)) == 1 {
				c.Next()
				return
			}
		}

		if m.isTrusted(c.ClientIP()) {
			c.Next()
			return
		}

		m.logger.Warn("отказ в доступе к внутреннему API", zap.String("client_ip", c.ClientIP()), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "доступ запрещен, этот API доступен только для внутренних сервисов",
		})
	}
}

func (m *InternalAuthMiddleware) isTrusted(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	for _, ipNet := range m.networks {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Роли операторов
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// TokenClaims содержит данные оператора и стандартные JWT claims
type TokenClaims struct {
	OperatorID  uint   `json:"operator_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// OperatorName имя, которое попадает в историю статусов и журнал аудита
func (c *TokenClaims) OperatorName() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Username
}

// Config содержит настройки для JWT токенов
type Config struct {
	SigningKey     string
	TokenTTL       time.Duration
	SigningMethod  jwt.SigningMethod
	TokenIssuer    string
	TokenAudiences []string
}

func NewConfig(signingKey string) *Config {
	return &Config{
		SigningKey:     signingKey,
		TokenTTL:       12 * time.Hour,
		SigningMethod:  jwt.SigningMethodHS256,
		TokenIssuer:    "order-tracking",
		TokenAudiences: []string{"order-tracking"},
	}
}

// JWTManager управляет JWT токенами
type JWTManager struct {
	config *Config
	now    func() time.Time
}

func NewJWTManager(config *Config) *JWTManager {
	return &JWTManager{
		config: config,
		now:    time.Now,
	}
}

// GenerateToken создает JWT токен оператора со сроком жизни из конфигурации
func (m *JWTManager) GenerateToken(operatorID uint, username, displayName, role string) (string, error) {
	now := m.now()
	claims := TokenClaims{
		OperatorID:  operatorID,
		Username:    username,
		DisplayName: displayName,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.config.TokenIssuer,
			Audience:  m.config.TokenAudiences,
		},
	}

	token := jwt.NewWithClaims(m.config.SigningMethod, claims)
	return token.SignedString([]byte(m.config.SigningKey))
}

// ParseToken проверяет валидность JWT токена и извлекает из него данные
func (m *JWTManager) ParseToken(tokenString string) (*TokenClaims, error) {
	opts := []jwt.ParserOption{jwt.WithIssuer(m.config.TokenIssuer)}
	if len(m.config.TokenAudiences) > 0 {
		opts = append(opts, jwt.WithAudience(m.config.TokenAudiences[0]))
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return []byte(m.config.SigningKey), nil
	}, opts...)

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("недействительный токен")
}

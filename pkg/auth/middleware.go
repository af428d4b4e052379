package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const claimsKey = "auth_claims"

// AuthMiddleware middleware для проверки JWT токена
type AuthMiddleware struct {
	jwtManager *JWTManager
}

// NewAuthMiddleware создает новый middleware для проверки авторизации
func NewAuthMiddleware(jwtManager *JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
	}
}

// AuthRequired требует валидный Bearer токен
func (m *AuthMiddleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "отсутствует токен авторизации"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "неверный формат токена авторизации"})
			return
		}

		claims, err := m.jwtManager.ParseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "недействительный токен: " + err.Error()})
			return
		}

		SetClaims(c, claims)
		c.Next()
	}
}

// RoleRequired пропускает только операторов с одной из ролей. Ставится после AuthRequired.
func (m *AuthMiddleware) RoleRequired(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "пользователь не авторизован"})
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "недостаточно прав для операции"})
	}
}

// SetClaims кладет claims в контекст запроса
func SetClaims(c *gin.Context, claims *TokenClaims) {
	c.Set(claimsKey, claims)
}

// GetClaims достает claims из контекста, nil если запрос не авторизован
func GetClaims(c *gin.Context) *TokenClaims {
	value, exists := c.Get(claimsKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*TokenClaims)
	return claims
}

// GetOperatorName имя оператора из токена
func GetOperatorName(c *gin.Context) string {
	if claims := GetClaims(c); claims != nil {
		return claims.OperatorName()
	}
	return ""
}

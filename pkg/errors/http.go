package errors

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HTTPErrorResponse представляет структуру HTTP ответа об ошибке
type HTTPErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

func ErrorResponse(message string, details interface{}) HTTPErrorResponse {
	return HTTPErrorResponse{
		Error:   message,
		Details: details,
	}
}

// ErrorMiddleware отдает ответ по последней ошибке, добавленной через c.Error
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			code, response := ToHTTPResponse(c.Errors.Last().Err)
			c.JSON(code, response)
			c.Abort()
		}
	}
}

// HandleGinError пишет ответ об ошибке и прерывает цепочку. Возвращает true, если err != nil.
func HandleGinError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	_ = c.Error(err)
	code, response := ToHTTPResponse(err)
	c.AbortWithStatusJSON(code, response)
	return true
}

// BindJSON привязывает JSON к структуре и обрабатывает ошибки
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse(
			fmt.Sprintf("Ошибка в JSON данных: %v", err), nil,
		))
		return false
	}
	return true
}

// BindQuery привязывает параметры запроса к структуре, при ошибке отвечает 400
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse(
			fmt.Sprintf("Ошибка в параметрах запроса: %v", err), nil,
		))
		return false
	}
	return true
}

func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse(
			fmt.Sprintf("Путь не найден: %s", c.Request.URL.Path), nil,
		))
	}
}

func MethodNotAllowedHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, ErrorResponse(
			fmt.Sprintf("Метод %s не поддерживается для пути %s", c.Request.Method, c.Request.URL.Path), nil,
		))
	}
}

func RecoveryMiddleware(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				var err error
				switch t := r.(type) {
				case string:
					err = fmt.Errorf("паника: %s", t)
				case error:
					err = fmt.Errorf("паника: %w", t)
				default:
					err = fmt.Errorf("паника: %v", r)
				}
				LogError(l, err, "Recovery")
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse("Внутренняя ошибка сервера", nil))
			}
		}()
		c.Next()
	}
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/director74/order-tracking/pkg/errors"
	"github.com/director74/order-tracking/tracking-service/internal/entity"
)

type AuthHandler struct {
	authService AuthService
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.Engine) {
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", h.Login)
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req entity.LoginRequest
	if !apperrors.BindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if apperrors.HandleGinError(c, err) {
		return
	}

	c.JSON(http.StatusOK, resp)
}

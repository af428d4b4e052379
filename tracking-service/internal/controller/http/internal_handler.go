package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/director74/order-tracking/pkg/errors"
	"github.com/director74/order-tracking/pkg/middleware"
)

// InternalHandler служебные эндпоинты для других сервисов и планировщика
type InternalHandler struct {
	refresher  RefreshService
	internalMw *middleware.InternalAuthMiddleware
}

func NewInternalHandler(refresher RefreshService, internalMw *middleware.InternalAuthMiddleware) *InternalHandler {
	return &InternalHandler{
		refresher:  refresher,
		internalMw: internalMw,
	}
}

func (h *InternalHandler) RegisterRoutes(router *gin.Engine) {
	internal := router.Group("/internal")
	internal.Use(h.internalMw.Required())
	{
		internal.POST("/lights/refresh", h.RefreshLights)
	}
}

func (h *InternalHandler) RefreshLights(c *gin.Context) {
	report, err := h.refresher.RefreshAll(c.Request.Context())
	if apperrors.HandleGinError(c, err) {
		return
	}

	c.JSON(http.StatusOK, report)
}

package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/director74/order-tracking/pkg/auth"
	apperrors "github.com/director74/order-tracking/pkg/errors"
	"github.com/director74/order-tracking/tracking-service/internal/entity"
	"github.com/director74/order-tracking/tracking-service/internal/status"
	"github.com/director74/order-tracking/tracking-service/internal/usecase"
)

type OrderHandler struct {
	ledger         LedgerService
	queries        QueryService
	authMiddleware *auth.AuthMiddleware
	logger         *zap.Logger
}

func NewOrderHandler(ledger LedgerService, queries QueryService, authMiddleware *auth.AuthMiddleware, logger *zap.Logger) *OrderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandler{
		ledger:         ledger,
		queries:        queries,
		authMiddleware: authMiddleware,
		logger:         logger.Named("OrderHandler"),
	}
}

func (h *OrderHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)

	api := router.Group("/api/v1")
	{
		// Публичные эндпоинты
		api.GET("/catalog", h.Catalog)
		api.GET("/orders", h.ListOrders)
		api.GET("/orders/stats", h.Stats)
		api.GET("/orders/check-number", h.CheckNumber)
		api.GET("/orders/:number", h.GetOrder)
		api.GET("/orders/:number/light", h.ComputeLight)

		// Защищенные эндпоинты
		authorized := api.Group("")
		authorized.Use(h.authMiddleware.AuthRequired())
		{
			authorized.POST("/orders", h.CreateOrder)
			authorized.POST("/orders/quick-update", h.QuickUpdate)
			authorized.PUT("/orders/:number", h.UpdateOrder)
			authorized.POST("/orders/:number/status", h.SetStatus)
			authorized.POST("/orders/:number/undo", h.Undo)
			authorized.PUT("/orders/:number/history/:id", h.EditHistory)
			authorized.GET("/orders/:number/audit", h.Audit)
		}

		admin := api.Group("")
		admin.Use(h.authMiddleware.AuthRequired(), h.authMiddleware.RoleRequired(auth.RoleAdmin))
		{
			admin.POST("/orders/:number/renumber", h.Renumber)
			admin.DELETE("/orders/:number", h.DeleteOrder)
		}
	}
}

func (h *OrderHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *OrderHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.queries.Catalog(langOf(c.Query("lang"))))
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	var q listOrdersQuery
	if !apperrors.BindQuery(c, &q) {
		return
	}

	list, err := h.queries.ListOrders(c.Request.Context(), q.query())
	if h.fail(c, err) {
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *OrderHandler) Stats(c *gin.Context) {
	stats, err := h.queries.Stats(c.Request.Context())
	if h.fail(c, err) {
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *OrderHandler) CheckNumber(c *gin.Context) {
	number := c.Query("order_number")
	available, err := h.queries.CheckNumber(c.Request.Context(), number)
	if h.fail(c, err) {
		return
	}

	c.JSON(http.StatusOK, checkNumberResponse{OrderNumber: number, Available: available})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	details, err := h.queries.GetOrder(c.Request.Context(), c.Param("number"), langOf(c.Query("lang")))
	if h.fail(c, err) {
		return
	}

	c.JSON(http.StatusOK, details)
}

func (h *OrderHandler) ComputeLight(c *gin.Context) {
	lv, err := h.queries.ComputeLight(c.Request.Context(), c.Param("number"))
	if h.fail(c, err) {
		return
	}

	c.JSON(http.StatusOK, lv)
}

func (h *OrderHandler) Audit(c *gin.Context) {
	records, err := h.queries.Audit(c.Request.Context(), c.Param("number"))
	if h.fail(c, err) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"order_number": c.Param("number"), "entries": records})
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if !apperrors.BindJSON(c, &req) {
		return
	}

	cmd, err := req.command(auth.GetOperatorName(c))
	if h.fail(c, err) {
		return
	}

	order, err := h.ledger.CreateOrder(c.Request.Context(), cmd)
	if h.fail(c, err) {
		return
	}

	details, err := h.queries.GetOrder(c.Request.Context(), order.OrderNumber, langOf(c.Query("lang")))
	if h.fail(c, err) {
		return
	}

	c.JSON(http.StatusCreated, details)
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req updateOrderRequest
	if !apperrors.BindJSON(c, &req) {
		return
	}

	cmd, err := req.command(c.Param("number"))
	if h.fail(c, err) {
		return
	}

	order, err := h.ledger.UpdateOrderDetails(c.Request.Context(), cmd)
	if h.fail(c, err) {
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) SetStatus(c *gin.Context) {
	var req statusRequest
	if !apperrors.BindJSON(c, &req) {
		return
	}

	actionDate, err := optionalDate("action_date", req.ActionDate)
	if h.fail(c, err) {
		return
	}

	res, err := h.ledger.SetStatus(c.Request.Context(), entity.TransitionCommand{
		OrderNumber: c.Param("number"),
		ToStatus:    status.ID(req.Status),
		ActionDate:  actionDate,
		Operator:    auth.GetOperatorName(c),
		Notes:       req.Notes,
	})
	if h.fail(c, err) {
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *OrderHandler) QuickUpdate(c *gin.Context) {
	var req quickUpdateRequest
	if !apperrors.BindJSON(c, &req) {
		return
	}

	actionDate, err := optionalDate("action_date", req.ActionDate)
	if h.fail(c, err) {
		return
	}

	res, err := h.ledger.QuickAction(c.Request.Context(), entity.QuickActionCommand{
		OrderNumber: req.OrderNumber,
		Action:      req.Action,
		ActionDate:  actionDate,
		Operator:    auth.GetOperatorName(c),
		Notes:       req.Notes,
	})
	if h.fail(c, err) {
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *OrderHandler) Undo(c *gin.Context) {
	var req undoRequest
	// тело необязательно
	if c.Request.ContentLength > 0 && !apperrors.BindJSON(c, &req) {
		return
	}

	res, err := h.ledger.UndoLast(c.Request.Context(), entity.UndoCommand{
		OrderNumber: c.Param("number"),
		Operator:    auth.GetOperatorName(c),
		Reason:      req.Reason,
	})
	if h.fail(c, err) {
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *OrderHandler) EditHistory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		h.fail(c, apperrors.NewValidationError("id", "некорректный ID записи"))
		return
	}

	var req editHistoryRequest
	if !apperrors.BindJSON(c, &req) {
		return
	}

	actionDate, err := requiredDate("action_date", req.ActionDate)
	if h.fail(c, err) {
		return
	}

	entry, err := h.ledger.EditEntry(c.Request.Context(), entity.EditEntryCommand{
		EntryID:     uint(id),
		OrderNumber: c.Param("number"),
		ActionDate:  actionDate,
		Notes:       req.Notes,
		Operator:    auth.GetOperatorName(c),
	})
	if h.fail(c, err) {
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *OrderHandler) Renumber(c *gin.Context) {
	var req renumberRequest
	if !apperrors.BindJSON(c, &req) {
		return
	}

	order, err := h.ledger.RenumberOrder(c.Request.Context(), entity.RenumberCommand{
		OldOrderNumber: c.Param("number"),
		NewOrderNumber: req.NewOrderNumber,
		Operator:       auth.GetOperatorName(c),
		Reason:         req.Reason,
	})
	if h.fail(c, err) {
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	var req deleteOrderRequest
	if !apperrors.BindJSON(c, &req) {
		return
	}

	err := h.ledger.DeleteOrder(c.Request.Context(), entity.DeleteOrderCommand{
		OrderNumber:        c.Param("number"),
		ConfirmOrderNumber: req.ConfirmOrderNumber,
		Operator:           auth.GetOperatorName(c),
		Reason:             req.Reason,
	})
	if h.fail(c, err) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"order_number": c.Param("number"), "deleted": true})
}

// fail отвечает ошибкой; сбои (не ошибки оператора) дополнительно пишутся в лог
func (h *OrderHandler) fail(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	if !usecase.IsUserError(err) {
		h.logger.Error("ошибка обработки запроса",
			zap.String("path", c.FullPath()),
			zap.String("order_number", c.Param("number")),
			zap.Error(err),
		)
	}
	return apperrors.HandleGinError(c, err)
}

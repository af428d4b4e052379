package http

import (
	"strings"
	"time"

	apperrors "github.com/director74/order-tracking/pkg/errors"
	"github.com/director74/order-tracking/tracking-service/internal/entity"
	"github.com/director74/order-tracking/tracking-service/internal/status"
	"github.com/director74/order-tracking/tracking-service/internal/usecase"
)

// Даты в запросах передаются строками YYYY-MM-DD

type createOrderRequest struct {
	OrderNumber          string `json:"order_number"`
	CustomerName         string `json:"customer_name" binding:"required"`
	OrderDate            string `json:"order_date"`
	InitialStatus        string `json:"initial_status"`
	ExpectedDeliveryDate string `json:"expected_delivery_date"`
	ProductionType       string `json:"production_type"`
	ProductName          string `json:"product_name"`
	ProductCode          string `json:"product_code"`
	PatternCode          string `json:"pattern_code"`
	Quantity             string `json:"quantity"`
	Factory              string `json:"factory"`
	Notes                string `json:"notes"`
}

func (r createOrderRequest) command(operator string) (entity.CreateOrderCommand, error) {
	orderDate, err := optionalDate("order_date", r.OrderDate)
	if err != nil {
		return entity.CreateOrderCommand{}, err
	}
	delivery, err := optionalDate("expected_delivery_date", r.ExpectedDeliveryDate)
	if err != nil {
		return entity.CreateOrderCommand{}, err
	}
	return entity.CreateOrderCommand{
		OrderNumber:          r.OrderNumber,
		CustomerName:         r.CustomerName,
		OrderDate:            orderDate,
		InitialStatus:        r.InitialStatus,
		ExpectedDeliveryDate: delivery,
		ProductionType:       r.ProductionType,
		ProductName:          r.ProductName,
		ProductCode:          r.ProductCode,
		PatternCode:          r.PatternCode,
		Quantity:             r.Quantity,
		Factory:              r.Factory,
		Notes:                r.Notes,
		Operator:             operator,
	}, nil
}

// updateOrderRequest отсутствующее поле не меняется; пустой expected_delivery_date снимает срок
type updateOrderRequest struct {
	CustomerName         *string `json:"customer_name"`
	ExpectedDeliveryDate *string `json:"expected_delivery_date"`
	ProductionType       *string `json:"production_type"`
	ProductName          *string `json:"product_name"`
	ProductCode          *string `json:"product_code"`
	PatternCode          *string `json:"pattern_code"`
	Quantity             *string `json:"quantity"`
	Factory              *string `json:"factory"`
	Notes                *string `json:"notes"`
}

func (r updateOrderRequest) command(number string) (entity.UpdateOrderCommand, error) {
	cmd := entity.UpdateOrderCommand{
		OrderNumber:    number,
		CustomerName:   r.CustomerName,
		ProductionType: r.ProductionType,
		ProductName:    r.ProductName,
		ProductCode:    r.ProductCode,
		PatternCode:    r.PatternCode,
		Quantity:       r.Quantity,
		Factory:        r.Factory,
		Notes:          r.Notes,
	}
	if r.ExpectedDeliveryDate != nil {
		delivery, err := optionalDate("expected_delivery_date", *r.ExpectedDeliveryDate)
		if err != nil {
			return cmd, err
		}
		cmd.ExpectedDeliveryDate = delivery
		cmd.ClearDeliveryDate = delivery == nil
	}
	return cmd, nil
}

type statusRequest struct {
	Status     string `json:"status" binding:"required"`
	ActionDate string `json:"action_date"`
	Notes      string `json:"notes"`
}

type quickUpdateRequest struct {
	OrderNumber string `json:"order_number" binding:"required"`
	Action      string `json:"action" binding:"required"`
	ActionDate  string `json:"action_date"`
	Notes       string `json:"notes"`
}

type undoRequest struct {
	Reason string `json:"reason"`
}

type editHistoryRequest struct {
	ActionDate string  `json:"action_date" binding:"required"`
	Notes      *string `json:"notes"`
}

type renumberRequest struct {
	NewOrderNumber string `json:"new_order_number" binding:"required"`
	Reason         string `json:"reason"`
}

type deleteOrderRequest struct {
	ConfirmOrderNumber string `json:"confirm_order_number" binding:"required"`
	Reason             string `json:"reason"`
}

// listOrdersQuery limit=0 означает размер страницы по умолчанию
type listOrdersQuery struct {
	Group  string `form:"group"`
	Status string `form:"status"`
	Light  string `form:"light"`
	Search string `form:"search"`
	Lang   string `form:"lang"`
	Limit  int    `form:"limit" binding:"min=0"`
	Offset int    `form:"offset" binding:"min=0"`
}

func (q listOrdersQuery) query() usecase.OrderQuery {
	return usecase.OrderQuery{
		Group:  q.Group,
		Status: q.Status,
		Light:  q.Light,
		Search: q.Search,
		Lang:   langOf(q.Lang),
		Limit:  q.Limit,
		Offset: q.Offset,
	}
}

type checkNumberResponse struct {
	OrderNumber string `json:"order_number"`
	Available   bool   `json:"available"`
}

func optionalDate(field, value string) (*time.Time, error) {
	t, err := entity.ParseOptionalDate(value)
	if err != nil {
		return nil, apperrors.NewValidationError(field, err.Error())
	}
	return t, nil
}

func requiredDate(field, value string) (time.Time, error) {
	t, err := entity.ParseDate(value)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(field, err.Error())
	}
	return t, nil
}

func langOf(raw string) status.Lang {
	return status.Lang(strings.ToLower(strings.TrimSpace(raw)))
}

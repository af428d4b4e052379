package http

import (
	"context"

	"github.com/director74/order-tracking/tracking-service/internal/entity"
	"github.com/director74/order-tracking/tracking-service/internal/status"
	"github.com/director74/order-tracking/tracking-service/internal/usecase"
)

// LedgerService операции, меняющие заказ и журнал переходов
type LedgerService interface {
	CreateOrder(ctx context.Context, cmd entity.CreateOrderCommand) (*entity.Order, error)
	UpdateOrderDetails(ctx context.Context, cmd entity.UpdateOrderCommand) (*entity.Order, error)
	SetStatus(ctx context.Context, cmd entity.TransitionCommand) (*entity.TransitionResult, error)
	QuickAction(ctx context.Context, cmd entity.QuickActionCommand) (*entity.TransitionResult, error)
	UndoLast(ctx context.Context, cmd entity.UndoCommand) (*entity.UndoResult, error)
	EditEntry(ctx context.Context, cmd entity.EditEntryCommand) (*entity.StatusHistory, error)
	RenumberOrder(ctx context.Context, cmd entity.RenumberCommand) (*entity.Order, error)
	DeleteOrder(ctx context.Context, cmd entity.DeleteOrderCommand) error
}

// QueryService чтение заказов
type QueryService interface {
	GetOrder(ctx context.Context, number string, lang status.Lang) (*entity.OrderDetails, error)
	ListOrders(ctx context.Context, q usecase.OrderQuery) (*entity.OrderList, error)
	ComputeLight(ctx context.Context, number string) (*entity.LightView, error)
	CheckNumber(ctx context.Context, number string) (bool, error)
	Audit(ctx context.Context, number string) ([]entity.AuditLog, error)
	Stats(ctx context.Context) (*entity.OrderStats, error)
	Catalog(lang status.Lang) entity.CatalogView
}

// RefreshService массовый пересчет светофоров
type RefreshService interface {
	RefreshAll(ctx context.Context) (*entity.RefreshReport, error)
}

// AuthService вход операторов
type AuthService interface {
	Login(ctx context.Context, req entity.LoginRequest) (*entity.LoginResponse, error)
}

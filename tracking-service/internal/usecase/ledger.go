package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	apperrors "github.com/director74/order-tracking/pkg/errors"
	"github.com/director74/order-tracking/tracking-service/internal/entity"
	"github.com/director74/order-tracking/tracking-service/internal/light"
	"github.com/director74/order-tracking/tracking-service/internal/repo"
	"github.com/director74/order-tracking/tracking-service/internal/status"
)

// LedgerOptions настройки журнала переходов
type LedgerOptions struct {
	Clock             Clock
	OrderNumberPrefix string
	StrictTransitions bool
}

// Ledger журнал переходов статусов. Каждая операция меняет заказ и его историю
// в одной транзакции и пересчитывает светофор до возврата.
type Ledger struct {
	store   Store
	calc    *light.Calculator
	catalog *status.Catalog
	events  EventPublisher
	cache   repo.StatsCache
	opts    LedgerOptions
	logger  *zap.Logger
}

// NewLedger создает журнал переходов. events и cache могут быть nil.
func NewLedger(store Store, calc *light.Calculator, events EventPublisher, cache repo.StatsCache, opts LedgerOptions, logger *zap.Logger) *Ledger {
	if events == nil {
		events = noopPublisher{}
	}
	if cache == nil {
		cache = repo.NopStatsCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.OrderNumberPrefix == "" {
		opts.OrderNumberPrefix = "KC"
	}
	return &Ledger{
		store:   store,
		calc:    calc,
		catalog: calc.Catalog(),
		events:  events,
		cache:   cache,
		opts:    opts,
		logger:  logger.Named("Ledger"),
	}
}

// CreateOrder создает заказ с первой записью истории (from_status = null)
func (l *Ledger) CreateOrder(ctx context.Context, cmd entity.CreateOrderCommand) (*entity.Order, error) {
	customer := strings.TrimSpace(cmd.CustomerName)
	if customer == "" {
		return nil, apperrors.NewValidationError("customer_name", "обязательное поле")
	}

	initial := status.NewOrder
	if raw := strings.TrimSpace(cmd.InitialStatus); raw != "" {
		id, ok := l.catalog.Normalize(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownStatus, raw)
		}
		initial = id
	}

	today := l.opts.Clock.Today()
	orderDate := l.opts.Clock.dateOrToday(cmd.OrderDate)
	operator := operatorName(cmd.Operator)

	order := &entity.Order{
		CustomerName:         customer,
		OrderDate:            orderDate,
		CurrentStatus:        initial,
		LastStatusChangeDate: datePtr(orderDate),
		ProductionType:       strings.TrimSpace(cmd.ProductionType),
		ProductName:          strings.TrimSpace(cmd.ProductName),
		ProductCode:          strings.TrimSpace(cmd.ProductCode),
		PatternCode:          strings.TrimSpace(cmd.PatternCode),
		Quantity:             strings.TrimSpace(cmd.Quantity),
		Factory:              strings.TrimSpace(cmd.Factory),
		Notes:                cmd.Notes,
	}
	if cmd.ExpectedDeliveryDate != nil {
		order.ExpectedDeliveryDate = datePtr(*cmd.ExpectedDeliveryDate)
	}

	err := l.store.WithinTransaction(ctx, func(ctx context.Context, repos repo.Repositories) error {
		number := strings.TrimSpace(cmd.OrderNumber)
		if number == "" {
			next, err := l.nextOrderNumber(ctx, repos)
			if err != nil {
				return err
			}
			number = next
		} else {
			exists, err := repos.Orders.Exists(ctx, number)
			if err != nil {
				return fmt.Errorf("ошибка проверки номера заказа: %w", err)
			}
			if exists {
				return fmt.Errorf("%s: %w", number, repo.ErrOrderNumberTaken)
			}
		}

		order.OrderNumber = number
		order.ApplyEvaluation(l.calc.Evaluate(order.Snapshot(), today))
		if err := repos.Orders.Create(ctx, order); err != nil {
			return fmt.Errorf("ошибка создания заказа %s: %w", number, err)
		}

		return repos.History.Create(ctx, &entity.StatusHistory{
			OrderID:     order.ID,
			OrderNumber: number,
			ToStatus:    initial,
			ActionDate:  orderDate,
			Operator:    operator,
			Notes:       defaultCreatedNotes,
		})
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("заказ создан",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", string(order.CurrentStatus)),
		zap.String("operator", operator),
	)
	l.afterCommit(ctx, EventOrderCreated, order.OrderNumber, OrderCreatedEvent{
		CustomerName: order.CustomerName,
		Status:       order.CurrentStatus,
		OrderDate:    entity.FormatDate(order.OrderDate),
		StatusLight:  order.StatusLight,
		Operator:     operator,
	})
	return order, nil
}

// nextOrderNumber следующий номер вида <префикс>00001 после наибольшего выданного.
// Номера удаленных заказов остаются в аудите и повторно не выдаются.
func (l *Ledger) nextOrderNumber(ctx context.Context, repos repo.Repositories) (string, error) {
	prefix := l.opts.OrderNumberPrefix

	seq, err := repos.Orders.MaxSequence(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("ошибка получения последнего номера заказа: %w", err)
	}
	audited, err := repos.Audit.MaxSequence(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("ошибка получения номеров из аудита: %w", err)
	}
	if audited > seq {
		seq = audited
	}

	candidate := fmt.Sprintf("%s%0*d", prefix, orderNumberDigits, seq+1)
	exists, err := repos.Orders.Exists(ctx, candidate)
	if err != nil {
		return "", fmt.Errorf("ошибка проверки номера заказа: %w", err)
	}
	if exists {
		return "", fmt.Errorf("%s: %w", candidate, repo.ErrOrderNumberTaken)
	}
	return candidate, nil
}

// UpdateOrderDetails меняет описательные поля и срок поставки, пересчитывает светофор
func (l *Ledger) UpdateOrderDetails(ctx context.Context, cmd entity.UpdateOrderCommand) (*entity.Order, error) {
	if cmd.CustomerName != nil && strings.TrimSpace(*cmd.CustomerName) == "" {
		return nil, apperrors.NewValidationError("customer_name", "не может быть пустым")
	}

	today := l.opts.Clock.Today()
	var order *entity.Order
	err := l.store.WithinTransaction(ctx, func(ctx context.Context, repos repo.Repositories) error {
		var err error
		order, err = repos.Orders.GetByNumberForUpdate(ctx, cmd.OrderNumber)
		if err != nil {
			return err
		}

		setString(&order.CustomerName, cmd.CustomerName)
		setString(&order.ProductionType, cmd.ProductionType)
		setString(&order.ProductName, cmd.ProductName)
		setString(&order.ProductCode, cmd.ProductCode)
		setString(&order.PatternCode, cmd.PatternCode)
		setString(&order.Quantity, cmd.Quantity)
		setString(&order.Factory, cmd.Factory)
		if cmd.Notes != nil {
			order.Notes = *cmd.Notes
		}
		switch {
		case cmd.ClearDeliveryDate:
			order.ExpectedDeliveryDate = nil
		case cmd.ExpectedDeliveryDate != nil:
			order.ExpectedDeliveryDate = datePtr(*cmd.ExpectedDeliveryDate)
		}

		order.ApplyEvaluation(evaluateOrder(l.calc, order, today))
		if err := repos.Orders.Update(ctx, order); err != nil {
			return fmt.Errorf("ошибка обновления заказа %s: %w", order.OrderNumber, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.afterCommit(ctx, EventOrderUpdated, order.OrderNumber, OrderUpdatedEvent{
		ExpectedDeliveryDate: entity.FormatDatePtr(order.ExpectedDeliveryDate),
		StatusLight:          order.StatusLight,
		StatusDays:           order.StatusDays,
	})
	return order, nil
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}

// RecordTransition переводит заказ в статус: новая запись истории и обновление заказа атомарно
func (l *Ledger) RecordTransition(ctx context.Context, cmd entity.TransitionCommand) (*entity.TransitionResult, error) {
	return l.transition(ctx, cmd, "", false)
}

// SetStatus прямая установка статуса оператором; дополнительно пишет аудит STATUS_UPDATE
func (l *Ledger) SetStatus(ctx context.Context, cmd entity.TransitionCommand) (*entity.TransitionResult, error) {
	return l.transition(ctx, cmd, "", true)
}

// QuickAction переход по быстрому действию
func (l *Ledger) QuickAction(ctx context.Context, cmd entity.QuickActionCommand) (*entity.TransitionResult, error) {
	target, err := l.catalog.ResolveAction(cmd.Action)
	if err != nil {
		return nil, err
	}
	return l.transition(ctx, entity.TransitionCommand{
		OrderNumber: cmd.OrderNumber,
		ToStatus:    target,
		ActionDate:  cmd.ActionDate,
		Operator:    cmd.Operator,
		Notes:       cmd.Notes,
	}, strings.TrimSpace(cmd.Action), false)
}

func (l *Ledger) transition(ctx context.Context, cmd entity.TransitionCommand, action string, audit bool) (*entity.TransitionResult, error) {
	target, ok := l.catalog.Normalize(string(cmd.ToStatus))
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownStatus, cmd.ToStatus)
	}

	today := l.opts.Clock.Today()
	actionDate := l.opts.Clock.dateOrToday(cmd.ActionDate)
	operator := operatorName(cmd.Operator)

	var (
		order *entity.Order
		from  status.ID
	)
	err := l.store.WithinTransaction(ctx, func(ctx context.Context, repos repo.Repositories) error {
		var err error
		order, err = repos.Orders.GetByNumberForUpdate(ctx, cmd.OrderNumber)
		if err != nil {
			return err
		}

		from, err = l.appendTransition(ctx, repos, order, target, actionDate, operator, cmd.Notes, today)
		if err != nil {
			return err
		}

		if !audit {
			return nil
		}
		return repos.Audit.Create(ctx, &entity.AuditLog{
			ActionType:  entity.AuditStatusUpdate,
			OrderNumber: order.OrderNumber,
			OldValue:    string(from),
			NewValue:    string(target),
			Operator:    operator,
			Reason:      cmd.Notes,
			Details: datatypes.JSONMap{
				"action_date": entity.FormatDate(actionDate),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("статус заказа изменен",
		zap.String("order_number", order.OrderNumber),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
		zap.String("action", action),
		zap.String("operator", operator),
	)
	l.afterCommit(ctx, EventStatusChanged, order.OrderNumber, StatusChangedEvent{
		OldStatus:   from,
		NewStatus:   target,
		ActionDate:  entity.FormatDate(actionDate),
		Action:      action,
		Operator:    operator,
		Notes:       cmd.Notes,
		StatusLight: order.StatusLight,
	})

	return &entity.TransitionResult{
		OrderNumber: order.OrderNumber,
		OldStatus:   from,
		NewStatus:   target,
		ActionDate:  entity.FormatDate(actionDate),
		StatusLight: order.StatusLight,
		StatusDays:  order.StatusDays,
	}, nil
}

// appendTransition добавляет запись и переписывает производные поля заказа. Вызывается внутри транзакции.
func (l *Ledger) appendTransition(ctx context.Context, repos repo.Repositories, order *entity.Order, to status.ID, actionDate time.Time, operator, notes string, today time.Time) (status.ID, error) {
	from, _ := l.catalog.Normalize(string(order.CurrentStatus))

	if l.catalog.IsTerminal(from) {
		if l.opts.StrictTransitions {
			return "", fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, from, to)
		}
		l.logger.Warn("переход из терминального статуса",
			zap.String("order_number", order.OrderNumber),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.NamedError("cause", apperrors.ErrInvalidTransition),
		)
	}

	latest, err := repos.History.Latest(ctx, order.ID, 1)
	if err != nil {
		return "", fmt.Errorf("ошибка чтения истории заказа %s: %w", order.OrderNumber, err)
	}
	if len(latest) > 0 && actionDate.Before(light.DateOf(latest[0].ActionDate)) {
		return "", apperrors.NewValidationError("action_date",
			fmt.Sprintf("дата %s раньше последней записи истории %s",
				entity.FormatDate(actionDate), entity.FormatDate(latest[0].ActionDate)))
	}

	entry := &entity.StatusHistory{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		ToStatus:    to,
		ActionDate:  actionDate,
		Operator:    operator,
		Notes:       notes,
	}
	if from != "" {
		prev := from
		entry.FromStatus = &prev
	}
	if err := repos.History.Create(ctx, entry); err != nil {
		return "", err
	}

	order.CurrentStatus = to
	order.LastStatusChangeDate = datePtr(actionDate)
	order.ApplyEvaluation(l.calc.Evaluate(order.Snapshot(), today))
	if err := repos.Orders.Update(ctx, order); err != nil {
		return "", fmt.Errorf("ошибка обновления заказа %s: %w", order.OrderNumber, err)
	}
	return from, nil
}

// UndoLast удаляет последнюю запись истории и возвращает заказ в предыдущий статус
func (l *Ledger) UndoLast(ctx context.Context, cmd entity.UndoCommand) (*entity.UndoResult, error) {
	today := l.opts.Clock.Today()
	operator := operatorName(cmd.Operator)
	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		reason = defaultUndoReason
	}

	var (
		order          *entity.Order
		last, previous entity.StatusHistory
	)
	err := l.store.WithinTransaction(ctx, func(ctx context.Context, repos repo.Repositories) error {
		var err error
		order, err = repos.Orders.GetByNumberForUpdate(ctx, cmd.OrderNumber)
		if err != nil {
			return err
		}

		entries, err := repos.History.Latest(ctx, order.ID, 2)
		if err != nil {
			return fmt.Errorf("ошибка чтения истории заказа %s: %w", order.OrderNumber, err)
		}
		if len(entries) < 2 {
			return fmt.Errorf("%w: заказ %s", apperrors.ErrInsufficientHistory, order.OrderNumber)
		}
		last, previous = entries[0], entries[1]

		if err := repos.Audit.Create(ctx, &entity.AuditLog{
			ActionType:  entity.AuditUndoStep,
			OrderNumber: order.OrderNumber,
			OldValue:    string(last.ToStatus),
			NewValue:    string(previous.ToStatus),
			Operator:    operator,
			Reason:      reason,
			Details: datatypes.JSONMap{
				"removed_entry_id":     last.ID,
				"removed_action_date":  entity.FormatDate(last.ActionDate),
				"restored_action_date": entity.FormatDate(previous.ActionDate),
			},
		}); err != nil {
			return err
		}

		if err := repos.History.Delete(ctx, last.ID); err != nil {
			return err
		}

		order.CurrentStatus = previous.ToStatus
		order.LastStatusChangeDate = datePtr(previous.ActionDate)
		order.ApplyEvaluation(evaluateOrder(l.calc, order, today))
		if err := repos.Orders.Update(ctx, order); err != nil {
			return fmt.Errorf("ошибка обновления заказа %s: %w", order.OrderNumber, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("последний шаг отменен",
		zap.String("order_number", order.OrderNumber),
		zap.String("removed", string(last.ToStatus)),
		zap.String("restored", string(previous.ToStatus)),
		zap.String("operator", operator),
	)
	l.afterCommit(ctx, EventStatusUndone, order.OrderNumber, StatusUndoneEvent{
		RemovedStatus:  last.ToStatus,
		RestoredStatus: previous.ToStatus,
		Operator:       operator,
		Reason:         reason,
		StatusLight:    order.StatusLight,
	})

	return &entity.UndoResult{
		OrderNumber:    order.OrderNumber,
		RemovedStatus:  last.ToStatus,
		RestoredStatus: previous.ToStatus,
		StatusLight:    order.StatusLight,
		StatusDays:     order.StatusDays,
	}, nil
}

// EditEntry меняет дату и заметку записи истории. Заказ пересчитывается только если
// запись была или стала последней; правка более ранних записей заказ не трогает.
func (l *Ledger) EditEntry(ctx context.Context, cmd entity.EditEntryCommand) (*entity.StatusHistory, error) {
	if cmd.ActionDate.IsZero() {
		return nil, apperrors.NewValidationError("action_date", "обязательное поле")
	}

	today := l.opts.Clock.Today()
	operator := operatorName(cmd.Operator)
	newDate := light.DateOf(cmd.ActionDate)

	var (
		entry   *entity.StatusHistory
		oldDate time.Time
		synced  bool
	)
	err := l.store.WithinTransaction(ctx, func(ctx context.Context, repos repo.Repositories) error {
		var err error
		entry, err = repos.History.GetByID(ctx, cmd.EntryID)
		if err != nil {
			return err
		}
		if cmd.OrderNumber != "" && entry.OrderNumber != cmd.OrderNumber {
			return fmt.Errorf("%d в заказе %s: %w", cmd.EntryID, cmd.OrderNumber, repo.ErrHistoryNotFound)
		}

		order, err := repos.Orders.GetByIDForUpdate(ctx, entry.OrderID)
		if err != nil {
			return err
		}

		before, err := repos.History.Latest(ctx, order.ID, 1)
		if err != nil {
			return fmt.Errorf("ошибка чтения истории заказа %s: %w", order.OrderNumber, err)
		}
		wasLatest := len(before) > 0 && before[0].ID == entry.ID

		oldDate = entry.ActionDate
		oldNotes := entry.Notes
		entry.ActionDate = newDate
		if cmd.Notes != nil {
			entry.Notes = *cmd.Notes
		}
		if err := repos.History.Update(ctx, entry); err != nil {
			return err
		}

		after, err := repos.History.Latest(ctx, order.ID, 1)
		if err != nil {
			return fmt.Errorf("ошибка чтения истории заказа %s: %w", order.OrderNumber, err)
		}
		if len(after) > 0 && (wasLatest || after[0].ID == entry.ID) {
			// последняя запись определяет текущий статус и дату его смены
			order.CurrentStatus = after[0].ToStatus
			order.LastStatusChangeDate = datePtr(after[0].ActionDate)
			order.ApplyEvaluation(evaluateOrder(l.calc, order, today))
			if err := repos.Orders.Update(ctx, order); err != nil {
				return fmt.Errorf("ошибка обновления заказа %s: %w", order.OrderNumber, err)
			}
			synced = true
		}

		return repos.Audit.Create(ctx, &entity.AuditLog{
			ActionType:  entity.AuditEditHistory,
			OrderNumber: order.OrderNumber,
			OldValue:    entity.FormatDate(oldDate),
			NewValue:    entity.FormatDate(newDate),
			Operator:    operator,
			Details: datatypes.JSONMap{
				"entry_id":     entry.ID,
				"old_notes":    oldNotes,
				"new_notes":    entry.Notes,
				"order_synced": synced,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	l.afterCommit(ctx, EventHistoryEdited, entry.OrderNumber, HistoryEditedEvent{
		EntryID:       entry.ID,
		OldActionDate: entity.FormatDate(oldDate),
		NewActionDate: entity.FormatDate(newDate),
		OrderSynced:   synced,
		Operator:      operator,
	})
	return entry, nil
}

// RenumberOrder меняет номер заказа в заказе, истории и аудите одной транзакцией
func (l *Ledger) RenumberOrder(ctx context.Context, cmd entity.RenumberCommand) (*entity.Order, error) {
	oldNumber := strings.TrimSpace(cmd.OldOrderNumber)
	newNumber := strings.TrimSpace(cmd.NewOrderNumber)
	if newNumber == "" {
		return nil, apperrors.NewValidationError("new_order_number", "обязательное поле")
	}
	if newNumber == oldNumber {
		return nil, apperrors.NewValidationError("new_order_number", "совпадает с текущим номером")
	}
	operator := operatorName(cmd.Operator)

	var order *entity.Order
	err := l.store.WithinTransaction(ctx, func(ctx context.Context, repos repo.Repositories) error {
		var err error
		order, err = repos.Orders.GetByNumberForUpdate(ctx, oldNumber)
		if err != nil {
			return err
		}

		exists, err := repos.Orders.Exists(ctx, newNumber)
		if err != nil {
			return fmt.Errorf("ошибка проверки номера заказа: %w", err)
		}
		if exists {
			return fmt.Errorf("%s: %w", newNumber, repo.ErrOrderNumberTaken)
		}

		if err := repos.Orders.Rename(ctx, order.ID, newNumber); err != nil {
			return err
		}
		historyRows, err := repos.History.RenameOrderNumber(ctx, order.ID, newNumber)
		if err != nil {
			return err
		}
		auditRows, err := repos.Audit.RenameOrderNumber(ctx, oldNumber, newNumber)
		if err != nil {
			return err
		}
		order.OrderNumber = newNumber

		return repos.Audit.Create(ctx, &entity.AuditLog{
			ActionType:  entity.AuditRenumber,
			OrderNumber: newNumber,
			OldValue:    oldNumber,
			NewValue:    newNumber,
			Operator:    operator,
			Reason:      cmd.Reason,
			Details: datatypes.JSONMap{
				"history_rows": historyRows,
				"audit_rows":   auditRows,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("номер заказа изменен",
		zap.String("old_order_number", oldNumber),
		zap.String("new_order_number", newNumber),
		zap.String("operator", operator),
	)
	l.afterCommit(ctx, EventOrderRenumbered, newNumber, OrderRenumberedEvent{
		OldOrderNumber: oldNumber,
		NewOrderNumber: newNumber,
		Operator:       operator,
	})
	return order, nil
}

// DeleteOrder удаляет заказ и его историю. Записи аудита сохраняются.
func (l *Ledger) DeleteOrder(ctx context.Context, cmd entity.DeleteOrderCommand) error {
	number := strings.TrimSpace(cmd.OrderNumber)
	if strings.TrimSpace(cmd.ConfirmOrderNumber) != number {
		return apperrors.NewValidationError("confirm_order_number", "не совпадает с номером заказа")
	}
	operator := operatorName(cmd.Operator)

	err := l.store.WithinTransaction(ctx, func(ctx context.Context, repos repo.Repositories) error {
		order, err := repos.Orders.GetByNumberForUpdate(ctx, number)
		if err != nil {
			return err
		}

		if err := repos.Audit.Create(ctx, &entity.AuditLog{
			ActionType:  entity.AuditDeleteOrder,
			OrderNumber: number,
			OldValue:    number,
			NewValue:    deletedMarker,
			Operator:    operator,
			Reason:      cmd.Reason,
			Details: datatypes.JSONMap{
				"customer_name":  order.CustomerName,
				"current_status": string(order.CurrentStatus),
			},
		}); err != nil {
			return err
		}

		if _, err := repos.History.DeleteByOrder(ctx, order.ID); err != nil {
			return err
		}
		return repos.Orders.Delete(ctx, order.ID)
	})
	if err != nil {
		return err
	}

	l.logger.Warn("заказ удален",
		zap.String("order_number", number),
		zap.String("operator", operator),
		zap.String("reason", cmd.Reason),
	)
	l.afterCommit(ctx, EventOrderDeleted, number, OrderDeletedEvent{
		Operator: operator,
		Reason:   cmd.Reason,
	})
	return nil
}

// afterCommit сбрасывает кэш сводки и публикует событие. Ошибки здесь изменение не откатывают.
func (l *Ledger) afterCommit(ctx context.Context, eventType, orderNumber string, payload interface{}) {
	l.cache.Invalidate(ctx)
	l.events.Publish(ctx, eventType, orderNumber, payload)
}

func operatorName(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return "system"
}

// IsUserError ошибка, которую нужно показать оператору, а не логировать как сбой
func IsUserError(err error) bool {
	var serviceErr *apperrors.ServiceError
	return errors.As(err, &serviceErr) ||
		errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrConflict) ||
		errors.Is(err, apperrors.ErrInsufficientHistory) ||
		errors.Is(err, apperrors.ErrUnknownAction) ||
		errors.Is(err, apperrors.ErrUnknownStatus) ||
		errors.Is(err, apperrors.ErrInvalidTransition)
}

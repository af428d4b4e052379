package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/director74/order-tracking/pkg/errors"
	"github.com/director74/order-tracking/tracking-service/internal/entity"
	"github.com/director74/order-tracking/tracking-service/internal/light"
	"github.com/director74/order-tracking/tracking-service/internal/status"
)

var day0 = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return day0.AddDate(0, 0, n)
}

func dayPtr(n int) *time.Time {
	d := day(n)
	return &d
}

// fixture связка журнала, запросов и хранилища в памяти с управляемой датой
type fixture struct {
	now       time.Time
	store     *memStore
	events    *recordingPublisher
	ledger    *Ledger
	tracking  *TrackingUseCase
	refresher *Refresher
	logs      *observer.ObservedLogs
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()

	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	f := &fixture{now: day0, store: newMemStore(), events: &recordingPublisher{}, logs: logs}
	clock := Clock{Location: time.UTC, Now: func() time.Time { return f.now }}

	calc, err := light.NewCalculator(light.DefaultRuleTable(), status.Default(), logger)
	require.NoError(t, err)

	f.ledger = NewLedger(f.store, calc, f.events, nil, LedgerOptions{
		Clock:             clock,
		OrderNumberPrefix: "KC",
		StrictTransitions: strict,
	}, logger)
	f.tracking = NewTrackingUseCase(f.store, calc, nil, clock, logger)
	f.refresher = NewRefresher(f.store, calc, nil, f.events, nil, clock, logger)
	return f
}

func (f *fixture) create(t *testing.T, number string) *entity.Order {
	t.Helper()
	order, err := f.ledger.CreateOrder(context.Background(), entity.CreateOrderCommand{
		OrderNumber:  number,
		CustomerName: "Acme",
		Operator:     "alice",
	})
	require.NoError(t, err)
	return order
}

func (f *fixture) quick(t *testing.T, number, action string) *entity.TransitionResult {
	t.Helper()
	res, err := f.ledger.QuickAction(context.Background(), entity.QuickActionCommand{
		OrderNumber: number,
		Action:      action,
		Operator:    "alice",
	})
	require.NoError(t, err)
	return res
}

func TestCreateOrderGeneratesNumberAndInitialEntry(t *testing.T) {
	f := newFixture(t, false)

	first := f.create(t, "")
	second := f.create(t, "")

	assert.Equal(t, "KC00001", first.OrderNumber)
	assert.Equal(t, "KC00002", second.OrderNumber)
	assert.Equal(t, status.NewOrder, first.CurrentStatus)
	assert.Equal(t, light.Green, first.StatusLight)
	assert.Equal(t, 0, first.StatusDays)
	require.NotNil(t, first.LastStatusChangeDate)
	assert.True(t, first.LastStatusChangeDate.Equal(day0))

	history := f.store.historyOf("KC00001")
	require.Len(t, history, 1)
	assert.Nil(t, history[0].FromStatus)
	assert.Equal(t, status.NewOrder, history[0].ToStatus)
	assert.True(t, history[0].ActionDate.Equal(day0))
	assert.Equal(t, "alice", history[0].Operator)
	assert.Equal(t, defaultCreatedNotes, history[0].Notes)

	assert.Equal(t, []string{EventOrderCreated, EventOrderCreated}, f.events.types())
}

func TestCreateOrderContinuesAfterImportedNumbers(t *testing.T) {
	f := newFixture(t, false)
	f.store.insertOrder(entity.Order{OrderNumber: "KC00041", CurrentStatus: status.Producing})

	order := f.create(t, "")
	assert.Equal(t, "KC00042", order.OrderNumber)
}

func TestCreateOrderSkipsSuffixedNumbers(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	for i := 1; i <= 150; i++ {
		f.store.insertOrder(entity.Order{OrderNumber: fmt.Sprintf("KC%05d", i), CurrentStatus: status.Producing})
	}

	_, err := f.ledger.RenumberOrder(ctx, entity.RenumberCommand{
		OldOrderNumber: "KC00150",
		NewOrderNumber: "KC00150-A",
		Operator:       "admin",
	})
	require.NoError(t, err)

	order, err := f.ledger.CreateOrder(ctx, entity.CreateOrderCommand{CustomerName: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "KC00150", order.OrderNumber)

	order, err = f.ledger.CreateOrder(ctx, entity.CreateOrderCommand{CustomerName: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "KC00151", order.OrderNumber)
}

func TestCreateOrderDoesNotReuseDeletedNumber(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.create(t, "")
	f.create(t, "")
	f.create(t, "KC00003-A")

	err := f.ledger.DeleteOrder(ctx, entity.DeleteOrderCommand{
		OrderNumber:        "KC00002",
		ConfirmOrderNumber: "KC00002",
		Reason:             "dup",
	})
	require.NoError(t, err)

	order := f.create(t, "")
	assert.Equal(t, "KC00003", order.OrderNumber)
	assert.Empty(t, f.store.auditOf("KC00003"))
	assert.Len(t, f.store.auditOf("KC00002"), 1)

	err = f.ledger.DeleteOrder(ctx, entity.DeleteOrderCommand{OrderNumber: "KC00001", ConfirmOrderNumber: "KC00001"})
	require.NoError(t, err)
	order = f.create(t, "")
	assert.Equal(t, "KC00004", order.OrderNumber)
}

func TestCreateOrderRejectsDuplicateNumber(t *testing.T) {
	f := newFixture(t, false)
	f.create(t, "KC10001")

	_, err := f.ledger.CreateOrder(context.Background(), entity.CreateOrderCommand{
		OrderNumber:  "KC10001",
		CustomerName: "Other",
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Len(t, f.store.historyOf("KC10001"), 1)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.ledger.CreateOrder(context.Background(), entity.CreateOrderCommand{CustomerName: "  "})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = f.ledger.CreateOrder(context.Background(), entity.CreateOrderCommand{
		CustomerName:  "Acme",
		InitialStatus: "SHIPPING",
	})
	assert.ErrorIs(t, err, apperrors.ErrUnknownStatus)
	assert.Empty(t, f.store.state.orders)
}

func TestCreateOrderAcceptsLegacyInitialStatus(t *testing.T) {
	f := newFixture(t, false)

	order, err := f.ledger.CreateOrder(context.Background(), entity.CreateOrderCommand{
		CustomerName:  "Acme",
		InitialStatus: "打樣中",
		OrderDate:     dayPtr(-12),
	})
	require.NoError(t, err)

	assert.Equal(t, status.Sampling, order.CurrentStatus)
	assert.Equal(t, 12, order.StatusDays)
	assert.Equal(t, light.Yellow, order.StatusLight)
}

func TestScenarioNewOrderAgesAndResetsOnTransition(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.create(t, "KC00100")

	f.now = day(4)
	lv, err := f.tracking.ComputeLight(ctx, "KC00100")
	require.NoError(t, err)
	assert.Equal(t, light.Green, lv.Light)

	f.now = day(5)
	lv, err = f.tracking.ComputeLight(ctx, "KC00100")
	require.NoError(t, err)
	assert.Equal(t, light.Yellow, lv.Light)
	assert.Equal(t, 5, lv.StatusDays)

	f.now = day(7)
	lv, err = f.tracking.ComputeLight(ctx, "KC00100")
	require.NoError(t, err)
	assert.Equal(t, light.Red, lv.Light)
	// сохраненный светофор не меняется от чтения
	assert.Equal(t, light.Green, lv.Stored)

	res := f.quick(t, "KC00100", "skip_to_draft")
	assert.Equal(t, status.NewOrder, res.OldStatus)
	assert.Equal(t, status.DraftConfirming, res.NewStatus)
	assert.Equal(t, "2024-05-13", res.ActionDate)
	assert.Equal(t, 0, res.StatusDays)
	assert.Equal(t, light.Green, res.StatusLight)

	order, ok := f.store.order("KC00100")
	require.True(t, ok)
	assert.Equal(t, status.DraftConfirming, order.CurrentStatus)
	assert.True(t, order.LastStatusChangeDate.Equal(day(7)))
}

func TestLatestEntryMatchesOrderAfterEveryOperation(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.create(t, "KC00200")

	check := func() {
		t.Helper()
		order, ok := f.store.order("KC00200")
		require.True(t, ok)
		history := f.store.historyOf("KC00200")
		require.NotEmpty(t, history)
		last := history[len(history)-1]
		assert.Equal(t, order.CurrentStatus, last.ToStatus)
		assert.True(t, order.LastStatusChangeDate.Equal(last.ActionDate))
	}

	f.now = day(1)
	f.quick(t, "KC00200", "to_quote")
	check()
	f.now = day(3)
	f.quick(t, "KC00200", "quote_confirmed")
	check()
	_, err := f.ledger.UndoLast(ctx, entity.UndoCommand{OrderNumber: "KC00200"})
	require.NoError(t, err)
	check()

	history := f.store.historyOf("KC00200")
	_, err = f.ledger.EditEntry(ctx, entity.EditEntryCommand{EntryID: history[1].ID, ActionDate: day(2)})
	require.NoError(t, err)
	check()
}

func TestUndoRoundTrip(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.create(t, "KC00300")

	f.now = day(2)
	_, err := f.ledger.SetStatus(ctx, entity.TransitionCommand{
		OrderNumber: "KC00300",
		ToStatus:    status.QuoteConfirming,
		Operator:    "bob",
		Notes:       "customer asked for a quote",
	})
	require.NoError(t, err)
	require.Len(t, f.store.historyOf("KC00300"), 2)

	res, err := f.ledger.UndoLast(ctx, entity.UndoCommand{OrderNumber: "KC00300", Operator: "bob"})
	require.NoError(t, err)
	assert.Equal(t, status.QuoteConfirming, res.RemovedStatus)
	assert.Equal(t, status.NewOrder, res.RestoredStatus)
	assert.Equal(t, 2, res.StatusDays)

	order, _ := f.store.order("KC00300")
	assert.Equal(t, status.NewOrder, order.CurrentStatus)
	assert.True(t, order.LastStatusChangeDate.Equal(day0))
	assert.Len(t, f.store.historyOf("KC00300"), 1)

	audit := f.store.auditOf("KC00300")
	require.Len(t, audit, 2)
	assert.Equal(t, entity.AuditStatusUpdate, audit[0].ActionType)
	assert.Equal(t, entity.AuditUndoStep, audit[1].ActionType)
	assert.Equal(t, string(status.QuoteConfirming), audit[1].OldValue)
	assert.Equal(t, string(status.NewOrder), audit[1].NewValue)
	assert.Equal(t, defaultUndoReason, audit[1].Reason)

	_, err = f.ledger.UndoLast(ctx, entity.UndoCommand{OrderNumber: "KC00300"})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientHistory)
	assert.Len(t, f.store.historyOf("KC00300"), 1)
	assert.Len(t, f.store.auditOf("KC00300"), 2)
}

func TestUndoUnknownOrder(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.ledger.UndoLast(context.Background(), entity.UndoCommand{OrderNumber: "NOPE"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUndoRollsBackWhenOrderUpdateFails(t *testing.T) {
	f := newFixture(t, false)
	f.create(t, "KC00400")
	f.quick(t, "KC00400", "to_quote")

	f.store.failOrderUpdate = errors.New("connection reset")
	_, err := f.ledger.UndoLast(context.Background(), entity.UndoCommand{OrderNumber: "KC00400"})
	require.Error(t, err)

	order, _ := f.store.order("KC00400")
	assert.Equal(t, status.QuoteConfirming, order.CurrentStatus)
	assert.Len(t, f.store.historyOf("KC00400"), 2)
	assert.Empty(t, f.store.auditOf("KC00400"))
	assert.NotContains(t, f.events.types(), EventStatusUndone)
}

func TestTransitionRollsBackWhenOrderUpdateFails(t *testing.T) {
	f := newFixture(t, false)
	f.create(t, "KC00500")

	f.store.failOrderUpdate = errors.New("connection reset")
	_, err := f.ledger.QuickAction(context.Background(), entity.QuickActionCommand{
		OrderNumber: "KC00500",
		Action:      "to_quote",
	})
	require.Error(t, err)

	order, _ := f.store.order("KC00500")
	assert.Equal(t, status.NewOrder, order.CurrentStatus)
	assert.Len(t, f.store.historyOf("KC00500"), 1)
}

func TestSetStatusRollsBackWhenAuditFails(t *testing.T) {
	f := newFixture(t, false)
	f.create(t, "KC00550")

	f.store.failAuditCreate = errors.New("disk full")
	_, err := f.ledger.SetStatus(context.Background(), entity.TransitionCommand{
		OrderNumber: "KC00550",
		ToStatus:    status.Cancelled,
	})
	require.Error(t, err)

	order, _ := f.store.order("KC00550")
	assert.Equal(t, status.NewOrder, order.CurrentStatus)
	assert.Len(t, f.store.historyOf("KC00550"), 1)
}

func TestQuickActionResolution(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.create(t, "KC00600")

	_, err := f.ledger.QuickAction(ctx, entity.QuickActionCommand{OrderNumber: "KC00600", Action: "teleport"})
	assert.ErrorIs(t, err, apperrors.ErrUnknownAction)
	assert.Len(t, f.store.historyOf("KC00600"), 1)

	// старое имя действия
	res := f.quick(t, "KC00600", "sample_done")
	assert.Equal(t, status.SampleConfirming, res.NewStatus)

	_, err = f.ledger.QuickAction(ctx, entity.QuickActionCommand{OrderNumber: "NOPE", Action: "cancel"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t, false)
	f.create(t, "KC00650")

	_, err := f.ledger.SetStatus(context.Background(), entity.TransitionCommand{
		OrderNumber: "KC00650",
		ToStatus:    status.ID("SHIPPING"),
	})
	assert.ErrorIs(t, err, apperrors.ErrUnknownStatus)
}

func TestLeavingTerminalStatus(t *testing.T) {
	t.Run("strict", func(t *testing.T) {
		f := newFixture(t, true)
		f.create(t, "KC00700")
		f.quick(t, "KC00700", "cancel")

		_, err := f.ledger.SetStatus(context.Background(), entity.TransitionCommand{
			OrderNumber: "KC00700",
			ToStatus:    status.NewOrder,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
		order, _ := f.store.order("KC00700")
		assert.Equal(t, status.Cancelled, order.CurrentStatus)
	})

	t.Run("lenient", func(t *testing.T) {
		f := newFixture(t, false)
		f.create(t, "KC00701")
		f.quick(t, "KC00701", "cancel")

		_, err := f.ledger.SetStatus(context.Background(), entity.TransitionCommand{
			OrderNumber: "KC00701",
			ToStatus:    status.NewOrder,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, f.logs.FilterMessage("переход из терминального статуса").Len())
	})
}

func TestTransitionRejectsDateBeforeLatestEntry(t *testing.T) {
	f := newFixture(t, false)
	f.now = day(10)
	f.create(t, "KC00800")

	_, err := f.ledger.QuickAction(context.Background(), entity.QuickActionCommand{
		OrderNumber: "KC00800",
		Action:      "to_quote",
		ActionDate:  dayPtr(3),
	})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Len(t, f.store.historyOf("KC00800"), 1)
}

func TestBackdatedTransitionCountsDaysFromActionDate(t *testing.T) {
	f := newFixture(t, false)
	f.create(t, "KC00850")
	f.now = day(20)

	res, err := f.ledger.QuickAction(context.Background(), entity.QuickActionCommand{
		OrderNumber: "KC00850",
		Action:      "skip_to_draft",
		ActionDate:  dayPtr(15),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res.StatusDays)
	assert.Equal(t, light.Red, res.StatusLight)
}

func TestEditLatestEntryResyncsOrder(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.create(t, "KC00900")
	f.now = day(3)
	f.quick(t, "KC00900", "to_quote")
	f.now = day(5)

	history := f.store.historyOf("KC00900")
	latest := history[1]
	notes := "date corrected"

	entry, err := f.ledger.EditEntry(ctx, entity.EditEntryCommand{
		EntryID:     latest.ID,
		OrderNumber: "KC00900",
		ActionDate:  day(1),
		Notes:       &notes,
		Operator:    "carol",
	})
	require.NoError(t, err)
	assert.Equal(t, notes, entry.Notes)

	order, _ := f.store.order("KC00900")
	assert.True(t, order.LastStatusChangeDate.Equal(day(1)))
	assert.Equal(t, 4, order.StatusDays)
	assert.Equal(t, light.Yellow, order.StatusLight)

	audit := f.store.auditOf("KC00900")
	require.Len(t, audit, 1)
	assert.Equal(t, entity.AuditEditHistory, audit[0].ActionType)
	assert.Equal(t, "2024-05-09", audit[0].OldValue)
	assert.Equal(t, "2024-05-07", audit[0].NewValue)
	assert.Equal(t, true, audit[0].Details["order_synced"])
}

func TestEditEarlierEntryLeavesOrderAlone(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.create(t, "KC01000")
	f.now = day(3)
	f.quick(t, "KC01000", "to_quote")

	before, _ := f.store.order("KC01000")
	first := f.store.historyOf("KC01000")[0]

	_, err := f.ledger.EditEntry(ctx, entity.EditEntryCommand{EntryID: first.ID, ActionDate: day(-2)})
	require.NoError(t, err)

	after, _ := f.store.order("KC01000")
	assert.Equal(t, before.CurrentStatus, after.CurrentStatus)
	assert.True(t, after.LastStatusChangeDate.Equal(*before.LastStatusChangeDate))
	assert.True(t, f.store.historyOf("KC01000")[0].ActionDate.Equal(day(-2)))
}

func TestEditEntryValidation(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.create(t, "KC01100")
	f.create(t, "KC01101")
	entry := f.store.historyOf("KC01100")[0]

	_, err := f.ledger.EditEntry(ctx, entity.EditEntryCommand{EntryID: entry.ID, OrderNumber: "KC01101", ActionDate: day(1)})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.ledger.EditEntry(ctx, entity.EditEntryCommand{EntryID: 9999, ActionDate: day(1)})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.ledger.EditEntry(ctx, entity.EditEntryCommand{EntryID: entry.ID})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestRenumberCascades(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.create(t, "KC01200")
	_, err := f.ledger.SetStatus(ctx, entity.TransitionCommand{OrderNumber: "KC01200", ToStatus: status.DraftMaking})
	require.NoError(t, err)

	order, err := f.ledger.RenumberOrder(ctx, entity.RenumberCommand{
		OldOrderNumber: "KC01200",
		NewOrderNumber: "KC01200-A",
		Operator:       "admin",
		Reason:         "typo",
	})
	require.NoError(t, err)
	assert.Equal(t, "KC01200-A", order.OrderNumber)

	_, ok := f.store.order("KC01200")
	assert.False(t, ok)
	assert.Empty(t, f.store.historyOf("KC01200"))
	assert.Empty(t, f.store.auditOf("KC01200"))

	assert.Len(t, f.store.historyOf("KC01200-A"), 2)
	audit := f.store.auditOf("KC01200-A")
	require.Len(t, audit, 2)
	assert.Equal(t, entity.AuditStatusUpdate, audit[0].ActionType)
	assert.Equal(t, entity.AuditRenumber, audit[1].ActionType)
	assert.Equal(t, "KC01200", audit[1].OldValue)
	assert.Equal(t, "KC01200-A", audit[1].NewValue)

	f.create(t, "KC01300")
	_, err = f.ledger.RenumberOrder(ctx, entity.RenumberCommand{OldOrderNumber: "KC01300", NewOrderNumber: "KC01200-A"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	_, ok = f.store.order("KC01300")
	assert.True(t, ok)
	assert.Len(t, f.store.historyOf("KC01300"), 1)

	_, err = f.ledger.RenumberOrder(ctx, entity.RenumberCommand{OldOrderNumber: "KC01300", NewOrderNumber: "KC01300"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	assert.Contains(t, f.events.types(), EventOrderRenumbered)
}

func TestDeleteOrder(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.create(t, "KC01400")
	f.quick(t, "KC01400", "to_quote")

	err := f.ledger.DeleteOrder(ctx, entity.DeleteOrderCommand{OrderNumber: "KC01400", ConfirmOrderNumber: "KC0140"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	_, ok := f.store.order("KC01400")
	assert.True(t, ok)

	err = f.ledger.DeleteOrder(ctx, entity.DeleteOrderCommand{
		OrderNumber:        "KC01400",
		ConfirmOrderNumber: "KC01400",
		Operator:           "admin",
		Reason:             "duplicate",
	})
	require.NoError(t, err)

	_, ok = f.store.order("KC01400")
	assert.False(t, ok)
	assert.Empty(t, f.store.historyOf("KC01400"))

	audit := f.store.auditOf("KC01400")
	require.Len(t, audit, 1)
	assert.Equal(t, entity.AuditDeleteOrder, audit[0].ActionType)
	assert.Equal(t, deletedMarker, audit[0].NewValue)

	err = f.ledger.DeleteOrder(ctx, entity.DeleteOrderCommand{OrderNumber: "KC01400", ConfirmOrderNumber: "KC01400"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateOrderDetailsRecomputesLight(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.create(t, "KC01500")

	factory := "  Plant 2 "
	order, err := f.ledger.UpdateOrderDetails(ctx, entity.UpdateOrderCommand{
		OrderNumber:          "KC01500",
		Factory:              &factory,
		ExpectedDeliveryDate: dayPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, "Plant 2", order.Factory)
	assert.Equal(t, light.Yellow, order.StatusLight)

	order, err = f.ledger.UpdateOrderDetails(ctx, entity.UpdateOrderCommand{
		OrderNumber:          "KC01500",
		ExpectedDeliveryDate: dayPtr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, light.Red, order.StatusLight)

	order, err = f.ledger.UpdateOrderDetails(ctx, entity.UpdateOrderCommand{
		OrderNumber:       "KC01500",
		ClearDeliveryDate: true,
	})
	require.NoError(t, err)
	assert.Nil(t, order.ExpectedDeliveryDate)
	assert.Equal(t, light.Green, order.StatusLight)
	assert.Equal(t, "Plant 2", order.Factory)

	empty := ""
	_, err = f.ledger.UpdateOrderDetails(ctx, entity.UpdateOrderCommand{OrderNumber: "KC01500", CustomerName: &empty})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestTransitionPublishesEventAfterCommit(t *testing.T) {
	f := newFixture(t, false)
	f.create(t, "KC01600")
	f.quick(t, "KC01600", "to_quote")

	require.Len(t, f.events.events, 2)
	ev := f.events.events[1]
	assert.Equal(t, EventStatusChanged, ev.Type)
	assert.Equal(t, "KC01600", ev.OrderNumber)

	payload, ok := ev.Payload.(StatusChangedEvent)
	require.True(t, ok)
	assert.Equal(t, status.NewOrder, payload.OldStatus)
	assert.Equal(t, status.QuoteConfirming, payload.NewStatus)
	assert.Equal(t, "to_quote", payload.Action)
	assert.Equal(t, "alice", payload.Operator)
}

package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/director74/order-tracking/pkg/errors"
	"github.com/director74/order-tracking/tracking-service/internal/entity"
	"github.com/director74/order-tracking/tracking-service/internal/light"
	"github.com/director74/order-tracking/tracking-service/internal/status"
)

// memStatsCache кэш сводки в памяти с поколениями и счетчиками обращений
type memStatsCache struct {
	stats       *entity.OrderStats
	statsGen    int64
	gen         int64
	hits        int
	invalidated int
	// onMiss вызывается после промаха, до пересчета сводки
	onMiss func()
}

func (c *memStatsCache) Get(context.Context) (*entity.OrderStats, int64, bool) {
	if c.stats == nil || c.statsGen != c.gen {
		gen := c.gen
		if c.onMiss != nil {
			c.onMiss()
		}
		return nil, gen, false
	}
	c.hits++
	return c.stats, c.gen, true
}

func (c *memStatsCache) Set(_ context.Context, gen int64, stats *entity.OrderStats) {
	if gen != c.gen {
		return
	}
	c.stats = stats
	c.statsGen = gen
}

func (c *memStatsCache) Invalidate(context.Context) {
	c.gen++
	c.stats = nil
	c.invalidated++
}

func seedOrders(f *fixture) {
	last := day(-1)
	f.store.insertOrder(entity.Order{OrderNumber: "P-1", CustomerName: "Acme", CurrentStatus: status.Producing, StatusLight: light.Red, StatusDays: 30, LastStatusChangeDate: &last})
	f.store.insertOrder(entity.Order{OrderNumber: "P-2", CustomerName: "Globex", CurrentStatus: status.Producing, StatusLight: light.Green, StatusDays: 1, LastStatusChangeDate: &last})
	f.store.insertOrder(entity.Order{OrderNumber: "P-3", CustomerName: "Initech", CurrentStatus: "生產中", StatusLight: light.Green, LastStatusChangeDate: &last})
	f.store.insertOrder(entity.Order{OrderNumber: "Q-1", CustomerName: "Acme", CurrentStatus: "詢價中", StatusLight: light.Yellow, StatusDays: 5, LastStatusChangeDate: &last})
	f.store.insertOrder(entity.Order{OrderNumber: "C-1", CustomerName: "Acme", CurrentStatus: status.Completed, StatusLight: light.Green})
	f.store.insertOrder(entity.Order{OrderNumber: "X-1", CustomerName: "Umbrella", CurrentStatus: status.Cancelled, StatusLight: light.Green})
}

func TestStatsCountsLightsOnlyForActiveOrders(t *testing.T) {
	f := newFixture(t, false)
	seedOrders(f)

	stats, err := f.tracking.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(6), stats.Total)
	assert.Equal(t, int64(4), stats.Active)
	assert.Equal(t, int64(1), stats.Red)
	assert.Equal(t, int64(1), stats.Yellow)
	assert.Equal(t, int64(2), stats.Green)

	assert.Equal(t, int64(3), stats.ByStatus[status.Producing])
	assert.Equal(t, int64(1), stats.ByStatus[status.QuoteConfirming])

	assert.Equal(t, int64(6), stats.ByGroup[status.GroupAll])
	assert.Equal(t, int64(3), stats.ByGroup["production"])
	assert.Equal(t, int64(1), stats.ByGroup["waiting_confirm"])
	assert.Equal(t, int64(1), stats.ByGroup["new_and_quote"])
	assert.Equal(t, int64(1), stats.ByGroup["completed"])
	assert.Equal(t, int64(1), stats.ByGroup["cancelled"])
	assert.Equal(t, int64(0), stats.ByGroup["draft"])
}

func TestStatsUsesCacheUntilLedgerChange(t *testing.T) {
	f := newFixture(t, false)
	cache := &memStatsCache{}
	calc, err := light.NewCalculator(light.DefaultRuleTable(), status.Default(), nil)
	require.NoError(t, err)
	clock := Clock{Now: func() time.Time { return f.now }}
	tracking := NewTrackingUseCase(f.store, calc, cache, clock, nil)
	ledger := NewLedger(f.store, calc, nil, cache, LedgerOptions{Clock: clock}, nil)
	ctx := context.Background()

	first, err := tracking.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.Total)

	_, err = tracking.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)

	_, err = ledger.CreateOrder(ctx, entity.CreateOrderCommand{CustomerName: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)

	second, err := tracking.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), second.Total)
}

func TestStatsNotCachedWhenInvalidatedDuringRecount(t *testing.T) {
	f := newFixture(t, false)
	cache := &memStatsCache{}
	calc, err := light.NewCalculator(light.DefaultRuleTable(), status.Default(), nil)
	require.NoError(t, err)
	clock := Clock{Now: func() time.Time { return f.now }}
	tracking := NewTrackingUseCase(f.store, calc, cache, clock, nil)
	ledger := NewLedger(f.store, calc, nil, cache, LedgerOptions{Clock: clock}, nil)
	ctx := context.Background()

	// заказ создается между промахом кэша и записью пересчитанной сводки
	cache.onMiss = func() {
		cache.onMiss = nil
		_, err := ledger.CreateOrder(ctx, entity.CreateOrderCommand{CustomerName: "Acme"})
		require.NoError(t, err)
	}

	_, err = tracking.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)
	assert.Nil(t, cache.stats)

	fresh, err := tracking.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fresh.Total)
	assert.Equal(t, 0, cache.hits)

	_, err = tracking.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
}

func TestListOrdersByGroupIncludesLegacyValues(t *testing.T) {
	f := newFixture(t, false)
	seedOrders(f)

	list, err := f.tracking.ListOrders(context.Background(), OrderQuery{Group: "production", Lang: status.LangEN})
	require.NoError(t, err)
	require.Equal(t, int64(3), list.Total)

	// красный первым
	assert.Equal(t, "P-1", list.Orders[0].OrderNumber)

	var legacy *entity.OrderView
	for i := range list.Orders {
		if list.Orders[i].OrderNumber == "P-3" {
			legacy = &list.Orders[i]
		}
	}
	require.NotNil(t, legacy)
	assert.Equal(t, status.Producing, legacy.CurrentStatus)
	assert.Equal(t, "Producing", legacy.StatusLabel)
	assert.Equal(t, "production", legacy.StageGroup)
}

func TestListOrdersFilters(t *testing.T) {
	f := newFixture(t, false)
	seedOrders(f)
	ctx := context.Background()

	list, err := f.tracking.ListOrders(ctx, OrderQuery{Light: "RED"})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, "P-1", list.Orders[0].OrderNumber)

	list, err = f.tracking.ListOrders(ctx, OrderQuery{Group: "waiting_confirm", Status: string(status.QuoteConfirming)})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, "Q-1", list.Orders[0].OrderNumber)

	list, err = f.tracking.ListOrders(ctx, OrderQuery{Group: "draft", Status: string(status.Producing)})
	require.NoError(t, err)
	assert.Empty(t, list.Orders)
	assert.Equal(t, int64(0), list.Total)

	list, err = f.tracking.ListOrders(ctx, OrderQuery{Group: status.GroupAll, Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, list.Orders, 2)
	assert.Equal(t, int64(6), list.Total)

	_, err = f.tracking.ListOrders(ctx, OrderQuery{Group: "shipping"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = f.tracking.ListOrders(ctx, OrderQuery{Light: "blue"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = f.tracking.ListOrders(ctx, OrderQuery{Status: "SHIPPING"})
	assert.ErrorIs(t, err, apperrors.ErrUnknownStatus)
}

func TestGetOrderReturnsHistoryAscending(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.create(t, "KC02000")
	f.now = day(1)
	f.quick(t, "KC02000", "to_quote")
	f.now = day(2)
	f.quick(t, "KC02000", "quote_confirmed")

	details, err := f.tracking.GetOrder(ctx, "KC02000", status.LangEN)
	require.NoError(t, err)

	require.Len(t, details.History, 3)
	assert.Nil(t, details.History[0].FromStatus)
	assert.Equal(t, status.NewOrder, details.History[0].ToStatus)
	assert.Equal(t, status.DraftMaking, details.History[2].ToStatus)
	assert.Equal(t, "Quote Pending Confirmation", details.History[2].FromLabel)
	assert.Equal(t, "2024-05-08", details.History[2].ActionDate)

	assert.Equal(t, status.DraftMaking, details.Order.CurrentStatus)
	assert.Equal(t, "draft", details.Order.StageGroup)
	require.Len(t, details.Order.AvailableActions, 2)
	assert.Equal(t, "draft_sent", details.Order.AvailableActions[0].Name)
	assert.Equal(t, status.CancelAction, details.Order.AvailableActions[1].Name)

	_, err = f.tracking.GetOrder(ctx, "NOPE", status.LangEN)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOrderViewUsesDefaultLanguage(t *testing.T) {
	f := newFixture(t, false)
	f.create(t, "KC02100")

	details, err := f.tracking.GetOrder(context.Background(), "KC02100", "fr")
	require.NoError(t, err)
	assert.Equal(t, "新订单", details.Order.StatusLabel)
}

func TestCheckNumberAndAudit(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.create(t, "KC02200")

	available, err := f.tracking.CheckNumber(ctx, "KC02200")
	require.NoError(t, err)
	assert.False(t, available)

	available, err = f.tracking.CheckNumber(ctx, "KC02201")
	require.NoError(t, err)
	assert.True(t, available)

	_, err = f.tracking.CheckNumber(ctx, " ")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = f.ledger.SetStatus(ctx, entity.TransitionCommand{OrderNumber: "KC02200", ToStatus: status.DraftMaking})
	require.NoError(t, err)
	require.NoError(t, f.ledger.DeleteOrder(ctx, entity.DeleteOrderCommand{OrderNumber: "KC02200", ConfirmOrderNumber: "KC02200"}))

	records, err := f.tracking.Audit(ctx, "KC02200")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, entity.AuditDeleteOrder, records[0].ActionType)
	assert.Equal(t, entity.AuditStatusUpdate, records[1].ActionType)
}

func TestComputeLightFutureDated(t *testing.T) {
	f := newFixture(t, false)
	future := day(3)
	f.store.insertOrder(entity.Order{OrderNumber: "F-1", CurrentStatus: status.NewOrder, LastStatusChangeDate: &future})

	lv, err := f.tracking.ComputeLight(context.Background(), "F-1")
	require.NoError(t, err)
	assert.True(t, lv.FutureDated)
	assert.Equal(t, 0, lv.StatusDays)
	assert.Equal(t, light.Green, lv.Light)
}

func TestCatalogView(t *testing.T) {
	f := newFixture(t, false)

	view := f.tracking.Catalog(status.LangEN)

	assert.Equal(t, status.LangEN, view.Lang)
	require.Len(t, view.Statuses, 13)
	assert.Equal(t, "New Order", view.Statuses[0].Label)
	assert.Equal(t, "new_and_quote", view.Statuses[0].Group)

	require.NotEmpty(t, view.Groups)
	assert.Equal(t, "waiting_confirm", view.Groups[0].Key)
	assert.True(t, view.Groups[0].Filter)

	assert.Equal(t, light.DefaultDeliveryWarningDays, view.Rules.DeliveryWarningDays)
	require.Len(t, view.Rules.Buckets, 10)

	for _, b := range view.Rules.Buckets {
		if b.Name == "draft_making" {
			assert.ElementsMatch(t, []status.ID{status.DraftMaking, status.DraftRevising}, b.Statuses)
		}
		if b.Name == "sampling" {
			assert.Nil(t, b.Red)
		}
	}

	for _, s := range view.Statuses {
		if s.Terminal {
			assert.Empty(t, s.Actions)
			assert.Empty(t, s.Bucket)
		}
	}
}

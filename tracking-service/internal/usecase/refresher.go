package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/director74/order-tracking/pkg/errors"
	"github.com/director74/order-tracking/pkg/redislock"
	"github.com/director74/order-tracking/tracking-service/internal/entity"
	"github.com/director74/order-tracking/tracking-service/internal/light"
	"github.com/director74/order-tracking/tracking-service/internal/repo"
)

// ErrRefreshInProgress массовый пересчет уже идет в другом процессе
var ErrRefreshInProgress = fmt.Errorf("массовый пересчет светофоров уже выполняется: %w", apperrors.ErrConflict)

// Refresher пересчитывает светофор и дни в статусе для всех заказов.
// Каждый заказ обновляется в своей транзакции с блокировкой строки, поэтому
// пересчет можно запускать параллельно с переходами по другим заказам.
type Refresher struct {
	store  Store
	calc   *light.Calculator
	locker Locker
	events EventPublisher
	cache  repo.StatsCache
	clock  Clock
	logger *zap.Logger
}

func NewRefresher(store Store, calc *light.Calculator, locker Locker, events EventPublisher, cache repo.StatsCache, clock Clock, logger *zap.Logger) *Refresher {
	if locker == nil {
		locker = redislock.NewLocal()
	}
	if events == nil {
		events = noopPublisher{}
	}
	if cache == nil {
		cache = repo.NopStatsCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		store:  store,
		calc:   calc,
		locker: locker,
		events: events,
		cache:  cache,
		clock:  clock,
		logger: logger.Named("Refresher"),
	}
}

// RefreshAll пересчитывает все заказы. Повторный запуск без изменения данных ничего не меняет.
func (r *Refresher) RefreshAll(ctx context.Context) (*entity.RefreshReport, error) {
	release, err := r.locker.TryLock(ctx, RefreshLockKey)
	if err != nil {
		if errors.Is(err, redislock.ErrNotAcquired) {
			return nil, ErrRefreshInProgress
		}
		return nil, err
	}
	defer func() {
		if err := release(context.Background()); err != nil {
			r.logger.Warn("не удалось освободить блокировку пересчета", zap.Error(err))
		}
	}()

	started := time.Now()
	today := r.clock.Today()

	ids, err := r.store.Repos().Orders.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка заказов: %w", err)
	}

	report := &entity.RefreshReport{
		ByLight:   make(map[light.Color]int),
		StartedAt: started,
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ev, changed, err := r.refreshOne(ctx, id, today)
		if err != nil {
			if errors.Is(err, repo.ErrOrderNotFound) {
				// заказ удален во время пересчета
				continue
			}
			report.Failed++
			r.logger.Error("ошибка пересчета заказа", zap.Uint("order_id", id), zap.Error(err))
			continue
		}

		report.Total++
		report.ByLight[ev.Color]++
		if ev.FutureDated {
			report.FutureDated++
		}
		if changed {
			report.Updated++
		}
	}
	report.Duration = time.Since(started)

	if report.Updated > 0 {
		r.cache.Invalidate(ctx)
	}
	r.logger.Info("пересчет светофоров завершен",
		zap.Int("total", report.Total),
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed),
		zap.Int("future_dated", report.FutureDated),
		zap.Duration("duration", report.Duration),
	)
	r.events.Publish(ctx, EventLightsRefreshed, "", report)

	return report, nil
}

// refreshOne тот же атомарный путь, что и у перехода: блокировка строки, расчет, запись
func (r *Refresher) refreshOne(ctx context.Context, id uint, today time.Time) (light.Evaluation, bool, error) {
	var (
		ev      light.Evaluation
		changed bool
	)
	err := r.store.WithinTransaction(ctx, func(ctx context.Context, repos repo.Repositories) error {
		order, err := repos.Orders.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		ev = evaluateOrder(r.calc, order, today)
		if order.StatusLight == ev.Color && order.StatusDays == ev.Days {
			return nil
		}
		changed = true
		return repos.Orders.UpdateLight(ctx, order.ID, ev.Color, ev.Days)
	})
	return ev, changed, err
}

// Run пересчитывает при старте и далее с заданным интервалом до отмены ctx.
// interval <= 0 отключает периодический пересчет.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		r.logger.Info("периодический пересчет светофоров отключен")
		return
	}

	r.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Refresher) runOnce(ctx context.Context) {
	if _, err := r.RefreshAll(ctx); err != nil {
		if errors.Is(err, ErrRefreshInProgress) {
			r.logger.Info("пересчет уже выполняется другим экземпляром")
			return
		}
		if ctx.Err() != nil {
			return
		}
		r.logger.Error("ошибка периодического пересчета", zap.Error(err))
	}
}

package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/director74/order-tracking/pkg/errors"
	"github.com/director74/order-tracking/tracking-service/internal/entity"
	"github.com/director74/order-tracking/tracking-service/internal/light"
	"github.com/director74/order-tracking/tracking-service/internal/repo"
	"github.com/director74/order-tracking/tracking-service/internal/status"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// OrderQuery параметры списка заказов
type OrderQuery struct {
	Group  string
	Status string
	Light  string
	Search string
	Lang   status.Lang
	Limit  int
	Offset int
}

// TrackingUseCase чтение заказов: карточка, список, сводка, аудит, каталог.
// Светофор в ответах пересчитывается на сегодня, в базе ничего не меняется.
type TrackingUseCase struct {
	store   Store
	calc    *light.Calculator
	catalog *status.Catalog
	cache   repo.StatsCache
	clock   Clock
	logger  *zap.Logger
}

func NewTrackingUseCase(store Store, calc *light.Calculator, cache repo.StatsCache, clock Clock, logger *zap.Logger) *TrackingUseCase {
	if cache == nil {
		cache = repo.NopStatsCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackingUseCase{
		store:   store,
		calc:    calc,
		catalog: calc.Catalog(),
		cache:   cache,
		clock:   clock,
		logger:  logger.Named("TrackingUseCase"),
	}
}

// GetOrder заказ с историей по возрастанию даты
func (uc *TrackingUseCase) GetOrder(ctx context.Context, number string, lang status.Lang) (*entity.OrderDetails, error) {
	repos := uc.store.Repos()

	order, err := repos.Orders.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	entries, err := repos.History.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории заказа %s: %w", number, err)
	}

	today := uc.clock.Today()
	details := &entity.OrderDetails{
		Order:   uc.orderView(order, lang, today),
		History: make([]entity.HistoryView, 0, len(entries)),
	}
	for _, e := range entries {
		details.History = append(details.History, uc.historyView(e, lang))
	}
	return details, nil
}

// ListOrders список с фильтрами по группе, статусу, светофору и строке поиска
func (uc *TrackingUseCase) ListOrders(ctx context.Context, q OrderQuery) (*entity.OrderList, error) {
	filter := entity.OrderFilter{
		Search: q.Search,
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	group := strings.TrimSpace(q.Group)
	if group != "" && group != status.GroupAll {
		if !uc.catalog.HasGroup(group) {
			return nil, apperrors.NewValidationError("group", fmt.Sprintf("неизвестная группа %q", group))
		}
		filter.Statuses = uc.catalog.StoredValues(uc.catalog.MembersOf(group)...)
	}

	if raw := strings.TrimSpace(q.Status); raw != "" && raw != status.GroupAll {
		id, ok := uc.catalog.Normalize(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownStatus, raw)
		}
		if group != "" && group != status.GroupAll && !containsID(uc.catalog.MembersOf(group), id) {
			return &entity.OrderList{Orders: []entity.OrderView{}}, nil
		}
		filter.Statuses = uc.catalog.StoredValues(id)
	}

	switch c := light.Color(strings.ToLower(strings.TrimSpace(q.Light))); c {
	case "":
	case light.Green, light.Yellow, light.Red:
		filter.Light = c
	default:
		return nil, apperrors.NewValidationError("light", fmt.Sprintf("неизвестный цвет %q", q.Light))
	}

	orders, total, err := uc.store.Repos().Orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка заказов: %w", err)
	}

	today := uc.clock.Today()
	list := &entity.OrderList{
		Orders: make([]entity.OrderView, 0, len(orders)),
		Total:  total,
	}
	for i := range orders {
		list.Orders = append(list.Orders, uc.orderView(&orders[i], q.Lang, today))
	}
	return list, nil
}

func containsID(ids []status.ID, id status.ID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// ComputeLight светофор сохраненного заказа на сегодня, без записи
func (uc *TrackingUseCase) ComputeLight(ctx context.Context, number string) (*entity.LightView, error) {
	order, err := uc.store.Repos().Orders.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	ev := evaluateOrder(uc.calc, order, uc.clock.Today())
	id, _ := uc.catalog.Normalize(string(order.CurrentStatus))
	return &entity.LightView{
		OrderNumber: order.OrderNumber,
		Status:      id,
		Light:       ev.Color,
		StatusDays:  ev.Days,
		Reason:      ev.Reason,
		FutureDated: ev.FutureDated,
		Stored:      order.StatusLight,
	}, nil
}

// CheckNumber свободен ли номер заказа
func (uc *TrackingUseCase) CheckNumber(ctx context.Context, number string) (bool, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return false, apperrors.NewValidationError("order_number", "обязательное поле")
	}
	exists, err := uc.store.Repos().Orders.Exists(ctx, number)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки номера заказа: %w", err)
	}
	return !exists, nil
}

// Audit записи аудита заказа, новые первыми. Для удаленных заказов аудит тоже доступен.
func (uc *TrackingUseCase) Audit(ctx context.Context, number string) ([]entity.AuditLog, error) {
	records, err := uc.store.Repos().Audit.ListByOrderNumber(ctx, strings.TrimSpace(number), defaultAuditListLimit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения аудита заказа %s: %w", number, err)
	}
	return records, nil
}

// Stats сводка по сохраненным светофорам. Светофор считается только по активным заказам.
func (uc *TrackingUseCase) Stats(ctx context.Context) (*entity.OrderStats, error) {
	cached, gen, ok := uc.cache.Get(ctx)
	if ok {
		return cached, nil
	}

	counts, err := uc.store.Repos().Orders.CountByStatusLight(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчета заказов: %w", err)
	}

	stats := &entity.OrderStats{
		ByGroup:  make(map[string]int64),
		ByStatus: make(map[status.ID]int64),
	}
	for _, c := range counts {
		id, _ := uc.catalog.Normalize(string(c.Status))
		stats.Total += c.Count
		stats.ByStatus[id] += c.Count

		if uc.catalog.IsTerminal(id) {
			continue
		}
		stats.Active += c.Count
		switch c.Light {
		case light.Red:
			stats.Red += c.Count
		case light.Yellow:
			stats.Yellow += c.Count
		default:
			stats.Green += c.Count
		}
	}

	stats.ByGroup[status.GroupAll] = stats.Total
	for _, g := range uc.catalog.Groups() {
		var n int64
		for _, id := range g.Members {
			n += stats.ByStatus[id]
		}
		stats.ByGroup[g.Key] = n
	}

	uc.logger.Debug("сводка пересчитана",
		zap.Int64("total", stats.Total),
		zap.Int64("red", stats.Red),
		zap.Int64("yellow", stats.Yellow),
	)
	uc.cache.Set(ctx, gen, stats)
	return stats, nil
}

// Catalog статусы, группы, действия и пороги на выбранном языке
func (uc *TrackingUseCase) Catalog(lang status.Lang) entity.CatalogView {
	lang = normalizeLang(lang)
	rules := uc.calc.Rules()

	view := entity.CatalogView{Lang: lang}
	for _, def := range uc.catalog.Statuses() {
		sv := entity.StatusView{
			ID:       def.ID,
			Label:    uc.catalog.Label(def.ID, lang),
			Group:    uc.catalog.GroupOf(def.ID),
			Terminal: def.Terminal,
			Bucket:   rules.Assignments[def.ID],
			Actions:  uc.actionViews(def.ID, lang),
		}
		view.Statuses = append(view.Statuses, sv)
	}

	for _, g := range uc.catalog.Groups() {
		view.Groups = append(view.Groups, entity.GroupView{
			Key:     g.Key,
			Label:   labelFor(g.Labels, lang, g.Key),
			Members: g.Members,
			Filter:  g.Filter,
		})
	}

	view.Rules.DeliveryWarningDays = rules.DeliveryWarningDays
	byBucket := make(map[light.Bucket][]status.ID)
	for _, def := range uc.catalog.Statuses() {
		if b, ok := rules.Assignments[def.ID]; ok {
			byBucket[b] = append(byBucket[b], def.ID)
		}
	}
	for _, name := range rules.BucketNames() {
		rule := rules.Buckets[name]
		view.Rules.Buckets = append(view.Rules.Buckets, entity.BucketView{
			Name:     name,
			Yellow:   rule.Yellow,
			Red:      rule.Red,
			Statuses: byBucket[name],
		})
	}
	return view
}

func (uc *TrackingUseCase) actionViews(id status.ID, lang status.Lang) []entity.ActionView {
	actions := uc.catalog.ActionsFor(id)
	views := make([]entity.ActionView, 0, len(actions))
	for _, a := range actions {
		views = append(views, entity.ActionView{
			Name:        a.Name,
			Target:      a.Target,
			TargetLabel: uc.catalog.Label(a.Target, lang),
		})
	}
	return views
}

func (uc *TrackingUseCase) orderView(o *entity.Order, lang status.Lang, today time.Time) entity.OrderView {
	lang = normalizeLang(lang)
	ev := evaluateOrder(uc.calc, o, today)
	id, _ := uc.catalog.Normalize(string(o.CurrentStatus))

	actions := uc.catalog.ActionsFor(id)
	if actions == nil {
		actions = []status.Action{}
	}

	return entity.OrderView{
		ID:                   o.ID,
		OrderNumber:          o.OrderNumber,
		CustomerName:         o.CustomerName,
		OrderDate:            entity.FormatDate(o.OrderDate),
		CurrentStatus:        id,
		StatusLabel:          uc.catalog.Label(id, lang),
		StageGroup:           uc.catalog.GroupOf(id),
		StatusLight:          ev.Color,
		StatusDays:           ev.Days,
		LightReason:          ev.Reason,
		LastStatusChangeDate: entity.FormatDatePtr(o.LastStatusChangeDate),
		ExpectedDeliveryDate: entity.FormatDatePtr(o.ExpectedDeliveryDate),
		ProductionType:       o.ProductionType,
		ProductName:          o.ProductName,
		ProductCode:          o.ProductCode,
		PatternCode:          o.PatternCode,
		Quantity:             o.Quantity,
		Factory:              o.Factory,
		Notes:                o.Notes,
		AvailableActions:     actions,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}

func (uc *TrackingUseCase) historyView(e entity.StatusHistory, lang status.Lang) entity.HistoryView {
	lang = normalizeLang(lang)
	to, _ := uc.catalog.Normalize(string(e.ToStatus))
	view := entity.HistoryView{
		ID:         e.ID,
		ToStatus:   to,
		ToLabel:    uc.catalog.Label(to, lang),
		ActionDate: entity.FormatDate(e.ActionDate),
		Operator:   e.Operator,
		Notes:      e.Notes,
		CreatedAt:  e.CreatedAt,
	}
	if e.FromStatus != nil {
		from, _ := uc.catalog.Normalize(string(*e.FromStatus))
		view.FromStatus = &from
		view.FromLabel = uc.catalog.Label(from, lang)
	}
	return view
}

func normalizeLang(lang status.Lang) status.Lang {
	switch lang {
	case status.LangZhCN, status.LangZhTW, status.LangEN:
		return lang
	default:
		return status.DefaultLang
	}
}

func labelFor(labels status.Labels, lang status.Lang, fallback string) string {
	if l, ok := labels[lang]; ok && l != "" {
		return l
	}
	if l, ok := labels[status.DefaultLang]; ok && l != "" {
		return l
	}
	return fallback
}

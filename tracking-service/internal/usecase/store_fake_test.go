package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/director74/order-tracking/tracking-service/internal/entity"
	"github.com/director74/order-tracking/tracking-service/internal/light"
	"github.com/director74/order-tracking/tracking-service/internal/repo"
	"github.com/director74/order-tracking/tracking-service/internal/status"
)

// memState содержимое хранилища, которое копируется на входе в транзакцию
type memState struct {
	orders  map[uint]entity.Order
	history map[uint]entity.StatusHistory
	audit   []entity.AuditLog
	nextID  uint
}

func (s *memState) clone() *memState {
	c := &memState{
		orders:  make(map[uint]entity.Order, len(s.orders)),
		history: make(map[uint]entity.StatusHistory, len(s.history)),
		audit:   append([]entity.AuditLog(nil), s.audit...),
		nextID:  s.nextID,
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.history {
		c.history[k] = v
	}
	return c
}

func (s *memState) id() uint {
	s.nextID++
	return s.nextID
}

// memStore хранилище в памяти: ошибка внутри транзакции восстанавливает снимок
type memStore struct {
	state           *memState
	failOrderUpdate error
	failAuditCreate error
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		orders:  make(map[uint]entity.Order),
		history: make(map[uint]entity.StatusHistory),
	}}
}

func (m *memStore) Repos() repo.Repositories {
	return repo.Repositories{
		Orders:  &memOrders{m},
		History: &memHistory{m},
		Audit:   &memAudit{m},
	}
}

func (m *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos repo.Repositories) error) error {
	snapshot := m.state.clone()
	if err := fn(ctx, m.Repos()); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

// вспомогательные методы для проверок

func (m *memStore) order(number string) (entity.Order, bool) {
	for _, o := range m.state.orders {
		if o.OrderNumber == number {
			return o, true
		}
	}
	return entity.Order{}, false
}

func (m *memStore) historyOf(number string) []entity.StatusHistory {
	var out []entity.StatusHistory
	for _, h := range m.state.history {
		if h.OrderNumber == number {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return entity.HistoryBefore(out[i], out[j]) })
	return out
}

func (m *memStore) auditOf(number string) []entity.AuditLog {
	var out []entity.AuditLog
	for _, a := range m.state.audit {
		if a.OrderNumber == number {
			out = append(out, a)
		}
	}
	return out
}

// insertOrder кладет заказ в обход журнала (старые данные)
func (m *memStore) insertOrder(o entity.Order) entity.Order {
	o.ID = m.state.id()
	m.state.orders[o.ID] = o
	return o
}

type memOrders struct{ m *memStore }

func (r *memOrders) Create(_ context.Context, order *entity.Order) error {
	if _, ok := r.m.order(order.OrderNumber); ok {
		return repo.ErrOrderNumberTaken
	}
	order.ID = r.m.state.id()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	r.m.state.orders[order.ID] = *order
	return nil
}

func (r *memOrders) GetByNumber(_ context.Context, number string) (*entity.Order, error) {
	o, ok := r.m.order(number)
	if !ok {
		return nil, repo.ErrOrderNotFound
	}
	return &o, nil
}

func (r *memOrders) GetByNumberForUpdate(ctx context.Context, number string) (*entity.Order, error) {
	return r.GetByNumber(ctx, number)
}

func (r *memOrders) GetByIDForUpdate(_ context.Context, id uint) (*entity.Order, error) {
	o, ok := r.m.state.orders[id]
	if !ok {
		return nil, repo.ErrOrderNotFound
	}
	return &o, nil
}

func (r *memOrders) Exists(_ context.Context, number string) (bool, error) {
	_, ok := r.m.order(number)
	return ok, nil
}

func (r *memOrders) Update(_ context.Context, order *entity.Order) error {
	if r.m.failOrderUpdate != nil {
		return r.m.failOrderUpdate
	}
	if _, ok := r.m.state.orders[order.ID]; !ok {
		return repo.ErrOrderNotFound
	}
	order.UpdatedAt = time.Now()
	r.m.state.orders[order.ID] = *order
	return nil
}

func (r *memOrders) UpdateLight(_ context.Context, id uint, color light.Color, days int) error {
	o, ok := r.m.state.orders[id]
	if !ok {
		return repo.ErrOrderNotFound
	}
	o.StatusLight = color
	o.StatusDays = days
	r.m.state.orders[id] = o
	return nil
}

func (r *memOrders) Delete(_ context.Context, id uint) error {
	if _, ok := r.m.state.orders[id]; !ok {
		return repo.ErrOrderNotFound
	}
	delete(r.m.state.orders, id)
	return nil
}

func (r *memOrders) Rename(_ context.Context, id uint, newNumber string) error {
	if _, taken := r.m.order(newNumber); taken {
		return repo.ErrOrderNumberTaken
	}
	o, ok := r.m.state.orders[id]
	if !ok {
		return repo.ErrOrderNotFound
	}
	o.OrderNumber = newNumber
	r.m.state.orders[id] = o
	return nil
}

func (r *memOrders) List(_ context.Context, filter entity.OrderFilter) ([]entity.Order, int64, error) {
	var out []entity.Order
	for _, o := range r.m.state.orders {
		if len(filter.Statuses) > 0 {
			match := false
			for _, s := range filter.Statuses {
				if o.CurrentStatus == s {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		if filter.Light != "" && o.StatusLight != filter.Light {
			continue
		}
		if filter.Search != "" && !strings.Contains(o.OrderNumber+" "+o.CustomerName, filter.Search) {
			continue
		}
		out = append(out, o)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.StatusLight.Severity() != b.StatusLight.Severity() {
			return a.StatusLight.Severity() > b.StatusLight.Severity()
		}
		if a.StatusDays != b.StatusDays {
			return a.StatusDays > b.StatusDays
		}
		if !a.OrderDate.Equal(b.OrderDate) {
			return a.OrderDate.After(b.OrderDate)
		}
		return a.ID > b.ID
	})

	total := int64(len(out))
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			out = nil
		} else {
			out = out[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (r *memOrders) ListIDs(context.Context) ([]uint, error) {
	ids := make([]uint, 0, len(r.m.state.orders))
	for id := range r.m.state.orders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *memOrders) MaxSequence(_ context.Context, prefix string) (int, error) {
	max := 0
	for _, o := range r.m.state.orders {
		if n, ok := repo.SequenceOf(o.OrderNumber, prefix); ok && n > max {
			max = n
		}
	}
	return max, nil
}

func (r *memOrders) CountByStatusLight(context.Context) ([]entity.StatusCount, error) {
	type key struct {
		s status.ID
		l light.Color
	}
	counts := make(map[key]int64)
	for _, o := range r.m.state.orders {
		counts[key{o.CurrentStatus, o.StatusLight}]++
	}
	var out []entity.StatusCount
	for k, n := range counts {
		out = append(out, entity.StatusCount{Status: k.s, Light: k.l, Count: n})
	}
	return out, nil
}

type memHistory struct{ m *memStore }

func (r *memHistory) Create(_ context.Context, entry *entity.StatusHistory) error {
	entry.ID = r.m.state.id()
	entry.CreatedAt = time.Now()
	r.m.state.history[entry.ID] = *entry
	return nil
}

func (r *memHistory) GetByID(_ context.Context, id uint) (*entity.StatusHistory, error) {
	h, ok := r.m.state.history[id]
	if !ok {
		return nil, repo.ErrHistoryNotFound
	}
	return &h, nil
}

func (r *memHistory) ListByOrder(_ context.Context, orderID uint) ([]entity.StatusHistory, error) {
	var out []entity.StatusHistory
	for _, h := range r.m.state.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return entity.HistoryBefore(out[i], out[j]) })
	return out, nil
}

func (r *memHistory) Latest(ctx context.Context, orderID uint, n int) ([]entity.StatusHistory, error) {
	asc, _ := r.ListByOrder(ctx, orderID)
	var out []entity.StatusHistory
	for i := len(asc) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, asc[i])
	}
	return out, nil
}

func (r *memHistory) Update(_ context.Context, entry *entity.StatusHistory) error {
	h, ok := r.m.state.history[entry.ID]
	if !ok {
		return repo.ErrHistoryNotFound
	}
	h.ActionDate = entry.ActionDate
	h.Notes = entry.Notes
	r.m.state.history[entry.ID] = h
	return nil
}

func (r *memHistory) Delete(_ context.Context, id uint) error {
	if _, ok := r.m.state.history[id]; !ok {
		return repo.ErrHistoryNotFound
	}
	delete(r.m.state.history, id)
	return nil
}

func (r *memHistory) DeleteByOrder(_ context.Context, orderID uint) (int64, error) {
	var n int64
	for id, h := range r.m.state.history {
		if h.OrderID == orderID {
			delete(r.m.state.history, id)
			n++
		}
	}
	return n, nil
}

func (r *memHistory) RenameOrderNumber(_ context.Context, orderID uint, newNumber string) (int64, error) {
	var n int64
	for id, h := range r.m.state.history {
		if h.OrderID == orderID {
			h.OrderNumber = newNumber
			r.m.state.history[id] = h
			n++
		}
	}
	return n, nil
}

type memAudit struct{ m *memStore }

func (r *memAudit) Create(_ context.Context, record *entity.AuditLog) error {
	if r.m.failAuditCreate != nil {
		return r.m.failAuditCreate
	}
	record.ID = r.m.state.id()
	record.CreatedAt = time.Now()
	r.m.state.audit = append(r.m.state.audit, *record)
	return nil
}

func (r *memAudit) ListByOrderNumber(_ context.Context, number string, limit int) ([]entity.AuditLog, error) {
	var out []entity.AuditLog
	for i := len(r.m.state.audit) - 1; i >= 0; i-- {
		if r.m.state.audit[i].OrderNumber == number {
			out = append(out, r.m.state.audit[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memAudit) RenameOrderNumber(_ context.Context, oldNumber, newNumber string) (int64, error) {
	var n int64
	for i := range r.m.state.audit {
		if r.m.state.audit[i].OrderNumber == oldNumber {
			r.m.state.audit[i].OrderNumber = newNumber
			n++
		}
	}
	return n, nil
}

func (r *memAudit) MaxSequence(_ context.Context, prefix string) (int, error) {
	max := 0
	for _, a := range r.m.state.audit {
		if n, ok := repo.SequenceOf(a.OrderNumber, prefix); ok && n > max {
			max = n
		}
	}
	return max, nil
}

// recordingPublisher запоминает опубликованные события
type recordingPublisher struct {
	events []publishedEvent
}

type publishedEvent struct {
	Type        string
	OrderNumber string
	Payload     interface{}
}

func (p *recordingPublisher) Publish(_ context.Context, eventType, orderNumber string, payload interface{}) {
	p.events = append(p.events, publishedEvent{Type: eventType, OrderNumber: orderNumber, Payload: payload})
}

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

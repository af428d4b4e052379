package status

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/director74/order-tracking/pkg/errors"
)

// Config исходные данные каталога
type Config struct {
	Statuses  []Definition
	Groups    []Group
	Actions   []Action
	Aliases   map[string]ID
	Available map[ID][]string
	Legacy    map[string]ID
}

// Catalog неизменяемый каталог статусов. Создается один раз при старте и передается явно.
type Catalog struct {
	statuses  []Definition
	byID      map[ID]Definition
	groups    []Group
	members   map[string]map[ID]struct{}
	actions   []Action
	resolve   map[string]ID
	available map[ID][]Action
	legacy    map[string]ID
	edges     map[ID]map[ID]struct{}
}

// NewCatalog проверяет конфигурацию и строит индексы
func NewCatalog(cfg Config) (*Catalog, error) {
	c := &Catalog{
		byID:      make(map[ID]Definition, len(cfg.Statuses)),
		members:   make(map[string]map[ID]struct{}, len(cfg.Groups)),
		resolve:   make(map[string]ID),
		available: make(map[ID][]Action),
		legacy:    make(map[string]ID),
		edges:     make(map[ID]map[ID]struct{}),
	}

	for _, def := range cfg.Statuses {
		if def.ID == "" {
			return nil, fmt.Errorf("статус без идентификатора")
		}
		if _, dup := c.byID[def.ID]; dup {
			return nil, fmt.Errorf("статус %s объявлен дважды", def.ID)
		}
		c.byID[def.ID] = def
		c.statuses = append(c.statuses, def)
	}

	for _, g := range cfg.Groups {
		if g.Key == "" || g.Key == GroupAll {
			return nil, fmt.Errorf("недопустимый ключ группы %q", g.Key)
		}
		if _, dup := c.members[g.Key]; dup {
			return nil, fmt.Errorf("группа %s объявлена дважды", g.Key)
		}
		set := make(map[ID]struct{}, len(g.Members))
		hasTerminal := false
		for _, id := range g.Members {
			def, ok := c.byID[id]
			if !ok {
				return nil, fmt.Errorf("группа %s ссылается на неизвестный статус %s", g.Key, id)
			}
			hasTerminal = hasTerminal || def.Terminal
			set[id] = struct{}{}
		}
		// терминальный статус не смешивается с рабочими
		if hasTerminal && len(set) > 1 {
			return nil, fmt.Errorf("группа %s смешивает терминальные и рабочие статусы", g.Key)
		}
		c.members[g.Key] = set
		c.groups = append(c.groups, g)
	}

	for _, a := range cfg.Actions {
		if _, ok := c.byID[a.Target]; !ok {
			return nil, fmt.Errorf("действие %s ведет в неизвестный статус %s", a.Name, a.Target)
		}
		if _, dup := c.resolve[a.Name]; dup {
			return nil, fmt.Errorf("действие %s объявлено дважды", a.Name)
		}
		c.resolve[a.Name] = a.Target
		c.actions = append(c.actions, a)
	}
	for alias, target := range cfg.Aliases {
		if _, ok := c.byID[target]; !ok {
			return nil, fmt.Errorf("синоним %s ведет в неизвестный статус %s", alias, target)
		}
		if _, dup := c.resolve[alias]; dup {
			return nil, fmt.Errorf("синоним %s совпадает с действием", alias)
		}
		c.resolve[alias] = target
	}

	var cancel *Action
	for i := range c.actions {
		if c.actions[i].Name == CancelAction {
			cancel = &c.actions[i]
		}
	}

	for _, def := range c.statuses {
		if def.Terminal {
			if len(cfg.Available[def.ID]) > 0 {
				return nil, fmt.Errorf("у терминального статуса %s есть действия", def.ID)
			}
			continue
		}

		var list []Action
		for _, name := range cfg.Available[def.ID] {
			target, ok := c.resolve[name]
			if !ok {
				return nil, fmt.Errorf("статусу %s назначено неизвестное действие %s", def.ID, name)
			}
			list = append(list, Action{Name: name, Target: target})
		}
		if cancel != nil {
			list = append(list, *cancel)
		}
		c.available[def.ID] = list

		edges := make(map[ID]struct{}, len(list))
		for _, a := range list {
			edges[a.Target] = struct{}{}
		}
		c.edges[def.ID] = edges
	}

	// Таблица старых значений: подписи на всех языках плюс явные исторические подписи
	addLegacy := func(raw string, id ID) error {
		key := strings.TrimSpace(raw)
		if key == "" {
			return nil
		}
		if prev, ok := c.legacy[key]; ok && prev != id {
			return fmt.Errorf("старое значение %q указывает и на %s, и на %s", key, prev, id)
		}
		c.legacy[key] = id
		return nil
	}
	for _, def := range c.statuses {
		for _, label := range def.Labels {
			if err := addLegacy(label, def.ID); err != nil {
				return nil, err
			}
		}
	}
	for raw, id := range cfg.Legacy {
		if _, ok := c.byID[id]; !ok {
			return nil, fmt.Errorf("старое значение %q ведет в неизвестный статус %s", raw, id)
		}
		if err := addLegacy(raw, id); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// MustCatalog как NewCatalog, но паникует на ошибке конфигурации
func MustCatalog(cfg Config) *Catalog {
	c, err := NewCatalog(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// Statuses все статусы в порядке объявления
func (c *Catalog) Statuses() []Definition {
	return append([]Definition(nil), c.statuses...)
}

// Groups группы в порядке проверки
func (c *Catalog) Groups() []Group {
	return append([]Group(nil), c.groups...)
}

// IsKnown есть ли статус в каталоге
func (c *Catalog) IsKnown(id ID) bool {
	_, ok := c.byID[id]
	return ok
}

// IsTerminal терминальный ли статус. Неизвестный статус терминальным не считается.
func (c *Catalog) IsTerminal(id ID) bool {
	return c.byID[id].Terminal
}

// TerminalIDs терминальные статусы
func (c *Catalog) TerminalIDs() []ID {
	var ids []ID
	for _, def := range c.statuses {
		if def.Terminal {
			ids = append(ids, def.ID)
		}
	}
	return ids
}

// Label подпись статуса. Неизвестный статус возвращается как есть,
// отсутствующий язык заменяется языком по умолчанию.
func (c *Catalog) Label(id ID, lang Lang) string {
	def, ok := c.byID[id]
	if !ok {
		return string(id)
	}
	if label, ok := def.Labels[lang]; ok && label != "" {
		return label
	}
	if label, ok := def.Labels[DefaultLang]; ok && label != "" {
		return label
	}
	return string(id)
}

// GroupOf первая группа, содержащая статус, либо GroupAll
func (c *Catalog) GroupOf(id ID) string {
	for _, g := range c.groups {
		if _, ok := c.members[g.Key][id]; ok {
			return g.Key
		}
	}
	return GroupAll
}

// MembersOf статусы группы в порядке объявления группы. Для GroupAll - все статусы.
func (c *Catalog) MembersOf(group string) []ID {
	if group == GroupAll {
		ids := make([]ID, 0, len(c.statuses))
		for _, def := range c.statuses {
			ids = append(ids, def.ID)
		}
		return ids
	}
	for _, g := range c.groups {
		if g.Key == group {
			return append([]ID(nil), g.Members...)
		}
	}
	return nil
}

// HasGroup известна ли группа
func (c *Catalog) HasGroup(group string) bool {
	if group == GroupAll {
		return true
	}
	_, ok := c.members[group]
	return ok
}

// Normalize переводит сохраненное значение в идентификатор. Второе значение false,
// если значение не удалось сопоставить: тогда возвращается исходная строка без пробелов.
func (c *Catalog) Normalize(raw string) (ID, bool) {
	value := strings.TrimSpace(raw)
	if _, ok := c.byID[ID(value)]; ok {
		return ID(value), true
	}
	if id, ok := c.legacy[value]; ok {
		return id, true
	}
	if upper := ID(strings.ToUpper(value)); c.IsKnown(upper) {
		return upper, true
	}
	return ID(value), false
}

// StoredValues значения, под которыми статусы могут лежать в базе: сами идентификаторы
// и старые подписи, которые Normalize сводит к ним
func (c *Catalog) StoredValues(ids ...ID) []ID {
	want := make(map[ID]struct{}, len(ids))
	values := make([]ID, 0, len(ids))
	for _, id := range ids {
		if _, dup := want[id]; dup {
			continue
		}
		want[id] = struct{}{}
		values = append(values, id)
	}

	var legacy []string
	for raw, id := range c.legacy {
		if _, ok := want[id]; ok && ID(raw) != id {
			legacy = append(legacy, raw)
		}
	}
	sort.Strings(legacy)
	for _, raw := range legacy {
		values = append(values, ID(raw))
	}
	return values
}

// ResolveAction целевой статус быстрого действия (включая старые имена)
func (c *Catalog) ResolveAction(action string) (ID, error) {
	target, ok := c.resolve[strings.TrimSpace(action)]
	if !ok {
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownAction, action)
	}
	return target, nil
}

// Actions все быстрые действия без старых синонимов
func (c *Catalog) Actions() []Action {
	return append([]Action(nil), c.actions...)
}

// ActionsFor быстрые действия, доступные из статуса
func (c *Catalog) ActionsFor(id ID) []Action {
	return append([]Action(nil), c.available[id]...)
}

// CanTransition есть ли ребро from -> to в графе статусов.
// Из терминальных статусов переходов нет.
func (c *Catalog) CanTransition(from, to ID) bool {
	_, ok := c.edges[from][to]
	return ok
}

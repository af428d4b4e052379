// Package status содержит каталог статусов заказа: идентификаторы, подписи,
// группы этапов, быстрые действия и граф переходов.
package status

// ID идентификатор статуса заказа. В базе хранится строкой.
type ID string

const (
	NewOrder          ID = "NEW_ORDER"
	QuoteConfirming   ID = "QUOTE_CONFIRMING"
	DraftMaking       ID = "DRAFT_MAKING"
	DraftConfirming   ID = "DRAFT_CONFIRMING"
	DraftRevising     ID = "DRAFT_REVISING"
	PendingSample     ID = "PENDING_SAMPLE"
	Sampling          ID = "SAMPLING"
	SampleConfirming  ID = "SAMPLE_CONFIRMING"
	SampleRevising    ID = "SAMPLE_REVISING"
	PendingProduction ID = "PENDING_PRODUCTION"
	Producing         ID = "PRODUCING"
	Completed         ID = "COMPLETED"
	Cancelled         ID = "CANCELLED"
)

// String реализует fmt.Stringer
func (id ID) String() string {
	return string(id)
}

// Lang язык подписи
type Lang string

const (
	LangZhCN Lang = "zh_cn"
	LangZhTW Lang = "zh_tw"
	LangEN   Lang = "en"
)

// DefaultLang язык подписей по умолчанию
const DefaultLang = LangZhCN

// GroupAll группа для статусов, не входящих ни в одну группу этапов
const GroupAll = "all"

// Labels подписи по языкам
type Labels map[Lang]string

// Definition описание одного статуса
type Definition struct {
	ID       ID     `json:"id"`
	Labels   Labels `json:"labels"`
	Terminal bool   `json:"terminal"`
}

// Group группа этапов. Filter отмечает виртуальную группу-фильтр, пересекающуюся с этапами.
type Group struct {
	Key     string `json:"key"`
	Labels  Labels `json:"labels"`
	Members []ID   `json:"members"`
	Filter  bool   `json:"filter,omitempty"`
}

// Action быстрое действие и его целевой статус
type Action struct {
	Name   string `json:"name"`
	Target ID     `json:"target"`
}

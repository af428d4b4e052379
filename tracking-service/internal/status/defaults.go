package status

// DefaultConfig стандартный каталог производственного цикла:
// запрос цены -> графика -> образец -> производство -> завершение.
func DefaultConfig() Config {
	return Config{
		Statuses: []Definition{
			{ID: NewOrder, Labels: Labels{LangZhCN: "新订单", LangZhTW: "新訂單", LangEN: "New Order"}},
			{ID: QuoteConfirming, Labels: Labels{LangZhCN: "报价待确认", LangZhTW: "報價待確認", LangEN: "Quote Pending Confirmation"}},
			{ID: DraftMaking, Labels: Labels{LangZhCN: "图稿制作中", LangZhTW: "圖稿製作中", LangEN: "Artwork in Progress"}},
			{ID: DraftConfirming, Labels: Labels{LangZhCN: "图稿待确认", LangZhTW: "圖稿待確認", LangEN: "Artwork Pending Confirmation"}},
			{ID: DraftRevising, Labels: Labels{LangZhCN: "图稿修改中", LangZhTW: "圖稿修改中", LangEN: "Artwork Revising"}},
			{ID: PendingSample, Labels: Labels{LangZhCN: "待打样", LangZhTW: "待打樣", LangEN: "Pending Sample"}},
			{ID: Sampling, Labels: Labels{LangZhCN: "打样中", LangZhTW: "打樣中", LangEN: "Sampling"}},
			{ID: SampleConfirming, Labels: Labels{LangZhCN: "打样待确认", LangZhTW: "打樣待確認", LangEN: "Sample Pending Confirmation"}},
			{ID: SampleRevising, Labels: Labels{LangZhCN: "打样修改中", LangZhTW: "打樣修改中", LangEN: "Sample Revising"}},
			{ID: PendingProduction, Labels: Labels{LangZhCN: "待生产", LangZhTW: "待生產", LangEN: "Pending Production"}},
			{ID: Producing, Labels: Labels{LangZhCN: "生产中", LangZhTW: "生產中", LangEN: "Producing"}},
			{ID: Completed, Labels: Labels{LangZhCN: "已完成", LangZhTW: "已完成", LangEN: "Completed"}, Terminal: true},
			{ID: Cancelled, Labels: Labels{LangZhCN: "已取消", LangZhTW: "已取消", LangEN: "Cancelled"}, Terminal: true},
		},

		// Порядок важен: GroupOf берет первую подходящую группу,
		// поэтому фильтр "ждем подтверждения" стоит раньше этапов.
		Groups: []Group{
			{
				Key:     "waiting_confirm",
				Labels:  Labels{LangZhCN: "等国外确认/询价", LangZhTW: "等國外確認/詢價", LangEN: "Waiting for Overseas Confirmation"},
				Members: []ID{QuoteConfirming, DraftConfirming, SampleConfirming},
				Filter:  true,
			},
			{
				Key:     "new_and_quote",
				Labels:  Labels{LangZhCN: "新订单/询价", LangZhTW: "新訂單/詢價", LangEN: "New Order/Quote"},
				Members: []ID{NewOrder, QuoteConfirming},
			},
			{
				Key:     "draft",
				Labels:  Labels{LangZhCN: "图稿阶段", LangZhTW: "圖稿階段", LangEN: "Draft Stage"},
				Members: []ID{DraftMaking, DraftConfirming, DraftRevising},
			},
			{
				Key:     "sampling",
				Labels:  Labels{LangZhCN: "打样阶段", LangZhTW: "打樣階段", LangEN: "Sampling Stage"},
				Members: []ID{PendingSample, Sampling, SampleConfirming, SampleRevising},
			},
			{
				Key:     "production",
				Labels:  Labels{LangZhCN: "生产阶段", LangZhTW: "生產階段", LangEN: "Production Stage"},
				Members: []ID{PendingProduction, Producing},
			},
			{
				Key:     "completed",
				Labels:  Labels{LangZhCN: "已完成", LangZhTW: "已完成", LangEN: "Completed"},
				Members: []ID{Completed},
			},
			{
				Key:     "cancelled",
				Labels:  Labels{LangZhCN: "已取消", LangZhTW: "已取消", LangEN: "Cancelled"},
				Members: []ID{Cancelled},
			},
		},

		Actions: []Action{
			{Name: "to_quote", Target: QuoteConfirming},
			{Name: "skip_to_draft", Target: DraftConfirming},
			{Name: "quote_confirmed", Target: DraftMaking},
			{Name: "draft_sent", Target: DraftConfirming},
			{Name: "draft_confirm", Target: PendingSample},
			{Name: "draft_modify", Target: DraftRevising},
			{Name: "draft_resent", Target: DraftConfirming},
			{Name: "sampling_start", Target: Sampling},
			{Name: "skip_sampling", Target: PendingProduction},
			{Name: "sampling_sent", Target: SampleConfirming},
			{Name: "sampling_confirm", Target: PendingProduction},
			{Name: "sampling_modify", Target: SampleRevising},
			{Name: "sampling_restart", Target: Sampling},
			{Name: "production_start", Target: Producing},
			{Name: "production_complete", Target: Completed},
			{Name: CancelAction, Target: Cancelled},
		},

		// Имена действий из старых версий клиента
		Aliases: map[string]ID{
			"draft_revise":    DraftRevising,
			"draft_modified":  DraftConfirming,
			"sample_start":    Sampling,
			"sample_done":     SampleConfirming,
			"sample_confirm":  PendingProduction,
			"sample_revise":   SampleRevising,
			"sample_modified": SampleConfirming,
			"complete":        Completed,
		},

		// Отмена доступна из любого нетерминального статуса и сюда не входит
		Available: map[ID][]string{
			NewOrder:          {"to_quote", "skip_to_draft"},
			QuoteConfirming:   {"quote_confirmed"},
			DraftMaking:       {"draft_sent"},
			DraftConfirming:   {"draft_confirm", "draft_modify"},
			DraftRevising:     {"draft_resent"},
			PendingSample:     {"sampling_start", "skip_sampling"},
			Sampling:          {"sampling_sent"},
			SampleConfirming:  {"sampling_confirm", "sampling_modify"},
			SampleRevising:    {"sampling_restart"},
			PendingProduction: {"production_start"},
			Producing:         {"production_complete"},
		},

		// Подписи из ранних схем, которые встречаются в старых строках базы
		Legacy: map[string]ID{
			"詢價中":   QuoteConfirming,
			"询价中":   QuoteConfirming,
			"圖稿確認中": DraftConfirming,
			"图稿确认中": DraftConfirming,
			"打樣確認中": SampleConfirming,
			"打样确认中": SampleConfirming,
		},
	}
}

// CancelAction универсальное действие отмены
const CancelAction = "cancel"

var defaultCatalog = MustCatalog(DefaultConfig())

// Default стандартный каталог. Каталог неизменяем, поэтому общий экземпляр безопасен.
func Default() *Catalog {
	return defaultCatalog
}

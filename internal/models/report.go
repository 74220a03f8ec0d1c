package models

import "time"

// Категории отчёта по итоговому баллу (меньше балл — лучше сделка).
const (
	CategoryExcellent = "Excellent"
	CategoryFair      = "Fair"
	CategoryRisky     = "Risky"
	CategoryBad       = "Bad"
)

// Report — сгенерированный анализ сделки: балл, найденные "красные флаги",
// целевой диапазон цены и скрипты для переговоров.
//
// Отчёт создаётся не более одного раза на сделку (cache-first), повторные
// просмотры читают сохранённую запись. Degraded помечает запасной отчёт,
// подставленный при сбое внешнего анализа; такой отчёт не кэшируется и
// перегенерируется при следующем запросе.
type Report struct {
	DealID         string         `json:"-"`
	Score          int            `json:"score"`
	Category       string         `json:"category"`
	RedFlags       []RedFlag      `json:"red_flags"`
	TargetOTDRange TargetOTDRange `json:"target_otd_range"`
	Scripts        Scripts        `json:"scripts"`
	Summary        string         `json:"summary"`
	Degraded       bool           `json:"-"`
	CreatedAt      time.Time      `json:"-"`
}

// RedFlag — один подозрительный или завышенный сбор в сделке.
type RedFlag struct {
	Title            string  `json:"title"`
	Severity         string  `json:"severity"` // high, medium или low
	Explanation      string  `json:"explanation"`
	EstimatedSavings float64 `json:"estimated_savings"`
	NegotiationLine  string  `json:"negotiation_line"`
}

// TargetOTDRange — целевой диапазон полной цены "из салона".
type TargetOTDRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Scripts — готовые тексты для переговоров с дилером.
type Scripts struct {
	Email    string `json:"email"`
	InPerson string `json:"in_person"`
}

// CategoryForScore возвращает категорию сделки по итоговому баллу.
// Единая таблица из четырёх диапазонов.
func CategoryForScore(score int) string {
	switch {
	case score > 80:
		return CategoryExcellent
	case score > 60:
		return CategoryFair
	case score > 40:
		return CategoryRisky
	default:
		return CategoryBad
	}
}

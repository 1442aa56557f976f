package analytics

import (
	"sort"
	"time"

	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/sirupsen/logrus"
)

// Granularity - ширина временной корзины при агрегации
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// DateRange - необязательное включительное временное окно.
// Nil-граница означает "без ограничения" с этой стороны.
type DateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// TimeBucket - одна корзина временного ряда
type TimeBucket struct {
	Date       string         `json:"date"`
	Total      int            `json:"total"`
	ByType     map[string]int `json:"byType"`
	RollingAvg float64        `json:"rollingAvg"`
}

// TypeStat - счетчики по одному типу инцидента.
// Инвариант: Total == Resolved + Pending. В Pending попадает все,
// что не resolved, включая verified и disputed.
type TypeStat struct {
	Total    int `json:"total"`
	Resolved int `json:"resolved"`
	Pending  int `json:"pending"`
}

// Engine - чистый конвейер аналитики над срезом инцидентов в памяти.
// Ни одна стадия не мутирует вход и не обращается к внешним системам,
// поэтому пересчет всегда выполняется целиком с нуля.
type Engine struct {
	logger *logrus.Logger
}

func NewEngine(logger *logrus.Logger) *Engine {
	return &Engine{logger: logger}
}

// FilterByDateRange оставляет инциденты внутри включительного окна.
// Пустое окно - тождественное преобразование. Фильтр применяется один раз
// перед всеми остальными стадиями, чтобы карточки, графики и экспорт
// считались по одному и тому же набору.
func (e *Engine) FilterByDateRange(incidents []*models.Incident, r DateRange) []*models.Incident {
	if r.Start == nil && r.End == nil {
		return incidents
	}

	filtered := make([]*models.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if r.Start != nil && inc.CreatedAt.Before(*r.Start) {
			continue
		}
		if r.End != nil && inc.CreatedAt.After(*r.End) {
			continue
		}
		filtered = append(filtered, inc)
	}
	return filtered
}

// Summary - сводные счетчики по отфильтрованному набору
type Summary struct {
	Total    int `json:"total"`
	Resolved int `json:"resolved"`
	Pending  int `json:"pending"`
}

// Summarize считает общее число инцидентов и разбивку resolved/pending
func (e *Engine) Summarize(incidents []*models.Incident) Summary {
	s := Summary{Total: len(incidents)}
	for _, inc := range incidents {
		if inc.Status == models.StatusResolved {
			s.Resolved++
		} else {
			s.Pending++
		}
	}
	return s
}

// Breakdown строит счетчики по каждому наблюдаемому типу за один проход.
// Хранятся только сырые количества: проценты и доля решенных выводятся
// на стороне отображения, где известен нужный знаменатель.
func (e *Engine) Breakdown(incidents []*models.Incident) map[string]TypeStat {
	stats := make(map[string]TypeStat)
	for _, inc := range incidents {
		stat := stats[inc.IncidentType]
		stat.Total++
		if inc.Status == models.StatusResolved {
			stat.Resolved++
		} else {
			stat.Pending++
		}
		stats[inc.IncidentType] = stat
	}
	return stats
}

// Types возвращает отсортированный список уникальных типов инцидентов
func (e *Engine) Types(incidents []*models.Incident) []string {
	seen := make(map[string]struct{})
	for _, inc := range incidents {
		seen[inc.IncidentType] = struct{}{}
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

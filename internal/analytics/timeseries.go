package analytics

import (
	"sort"
	"time"

	"github.com/shenikar/incident_reporting_system/internal/models"
)

// DefaultRollingWindow - ширина окна скользящего среднего по умолчанию
const DefaultRollingWindow = 7

// Aggregate раскладывает инциденты по корзинам выбранной ширины.
// Ключ корзины детерминированно выводится из createdAt:
//
//	day   -> 2024-01-10
//	week  -> дата воскресенья, с которого начинается неделя инцидента
//	month -> 2024-01
//	year  -> 2024
//
// Инцидент с нулевым createdAt (непарсящаяся метка на этапе нормализации)
// пропускается с записью в лог, агрегация из-за него не падает.
// Результат отсортирован хронологически, а не лексикографически.
func (e *Engine) Aggregate(incidents []*models.Incident, granularity Granularity) []TimeBucket {
	type bucketAcc struct {
		at     time.Time
		bucket TimeBucket
	}
	grouped := make(map[string]*bucketAcc)

	for _, inc := range incidents {
		if inc.CreatedAt.IsZero() {
			e.logger.WithField("incident_id", inc.ID).Warn("Skipping incident without parseable createdAt")
			continue
		}

		key, at := bucketKey(inc.CreatedAt, granularity)
		acc, ok := grouped[key]
		if !ok {
			acc = &bucketAcc{
				at:     at,
				bucket: TimeBucket{Date: key, ByType: make(map[string]int)},
			}
			grouped[key] = acc
		}
		acc.bucket.Total++
		acc.bucket.ByType[inc.IncidentType]++
	}

	accs := make([]*bucketAcc, 0, len(grouped))
	for _, acc := range grouped {
		accs = append(accs, acc)
	}
	sort.Slice(accs, func(i, j int) bool {
		return accs[i].at.Before(accs[j].at)
	})

	series := make([]TimeBucket, len(accs))
	for i, acc := range accs {
		series[i] = acc.bucket
	}
	return series
}

// bucketKey возвращает ключ корзины и его хронологическое значение
func bucketKey(t time.Time, granularity Granularity) (string, time.Time) {
	switch granularity {
	case GranularityDay:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return day.Format("2006-01-02"), day
	case GranularityMonth:
		month := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		return month.Format("2006-01"), month
	case GranularityYear:
		year := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
		return year.Format("2006"), year
	default: // week
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		sunday := day.AddDate(0, 0, -int(day.Weekday()))
		return sunday.Format("2006-01-02"), sunday
	}
}

// RollingAverage дополняет ряд скользящим средним по хвостовому окну,
// заканчивающемуся на текущей корзине. В начале ряда окно просто короче -
// нулями ничего не добивается. Вход не мутируется, возвращается копия.
func (e *Engine) RollingAverage(series []TimeBucket, windowSize int) []TimeBucket {
	if windowSize < 1 {
		windowSize = DefaultRollingWindow
	}

	smoothed := make([]TimeBucket, len(series))
	copy(smoothed, series)
	for i := range smoothed {
		start := i - windowSize + 1
		if start < 0 {
			start = 0
		}
		sum := 0
		for j := start; j <= i; j++ {
			sum += series[j].Total
		}
		smoothed[i].RollingAvg = float64(sum) / float64(i-start+1)
	}
	return smoothed
}

// PercentChange - изменение суммы последних 7 корзин относительно
// предыдущих 7, в процентах
type PercentChange struct {
	Value     float64 `json:"value"`
	Direction string  `json:"direction"` // up | down | neutral
}

// ChangeVsPreviousPeriod сравнивает два последних семикорзинных периода.
// Меньше 8 корзин или нулевой предыдущий период дают нейтральный результат.
func (e *Engine) ChangeVsPreviousPeriod(series []TimeBucket) PercentChange {
	if len(series) < 8 {
		return PercentChange{Direction: "neutral"}
	}

	current, previous := 0, 0
	for _, b := range series[len(series)-7:] {
		current += b.Total
	}
	prevStart := len(series) - 14
	if prevStart < 0 {
		prevStart = 0
	}
	for _, b := range series[prevStart : len(series)-7] {
		previous += b.Total
	}
	if previous == 0 {
		return PercentChange{Direction: "neutral"}
	}

	change := float64(current-previous) / float64(previous) * 100
	direction := "neutral"
	if change > 0 {
		direction = "up"
	} else if change < 0 {
		direction = "down"
		change = -change
	}
	return PercentChange{Value: change, Direction: direction}
}

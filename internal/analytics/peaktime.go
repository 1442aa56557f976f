package analytics

import (
	"github.com/shenikar/incident_reporting_system/internal/models"
)

// PeakTimeAnalysis - гистограммы частоты по часу суток и дню недели.
// DayCounts индексируется как time.Weekday: воскресенье = 0.
type PeakTimeAnalysis struct {
	HourCounts [24]int `json:"hourCounts"`
	DayCounts  [7]int  `json:"dayCounts"`
	PeakHour   int     `json:"peakHour"`
	PeakDay    int     `json:"peakDay"`
}

// PeakTimes строит гистограммы по всему (уже отфильтрованному по датам)
// набору, независимо от выбранной ширины корзин временного ряда.
// Час берется в локальном времени метки. При равенстве максимумов
// побеждает меньший индекс.
func (e *Engine) PeakTimes(incidents []*models.Incident) PeakTimeAnalysis {
	var analysis PeakTimeAnalysis
	for _, inc := range incidents {
		if inc.CreatedAt.IsZero() {
			continue
		}
		analysis.HourCounts[inc.CreatedAt.Hour()]++
		analysis.DayCounts[int(inc.CreatedAt.Weekday())]++
	}

	for i, count := range analysis.HourCounts {
		if count > analysis.HourCounts[analysis.PeakHour] {
			analysis.PeakHour = i
		}
	}
	for i, count := range analysis.DayCounts {
		if count > analysis.DayCounts[analysis.PeakDay] {
			analysis.PeakDay = i
		}
	}
	return analysis
}

// PeakDayName возвращает английское название пикового дня недели
func (p PeakTimeAnalysis) PeakDayName() string {
	return weekdayNames[p.PeakDay]
}

var weekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

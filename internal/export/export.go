// Package export сериализует выводы аналитического движка в выгружаемые
// отчеты. Все четыре формата строятся только из результатов движка и
// текущего состояния фильтров - без дополнительных обращений к хранилищу.
package export

import (
	"fmt"
	"time"

	"github.com/shenikar/incident_reporting_system/internal/analytics"
	"github.com/shenikar/incident_reporting_system/internal/models"
)

// Bundle - снимок выводов движка, общий вход всех экспортеров.
// Все поля посчитаны по одному и тому же отфильтрованному набору.
type Bundle struct {
	GeneratedAt time.Time
	DateRange   analytics.DateRange
	Incidents   []*models.Incident
	Summary     analytics.Summary
	PeakTimes   analytics.PeakTimeAnalysis
	TypeStats   map[string]analytics.TypeStat
	TimeSeries  []analytics.TimeBucket
}

// Шаблоны имен файлов выгрузки
const (
	csvFilenamePattern     = "incidents-data-%s.csv"
	jsonFilenamePattern    = "analytics-data-%s.json"
	summaryFilenamePattern = "analytics-report-%s.txt"
	excelFilenamePattern   = "incident-report-%s.xlsx"
)

func CSVFilename(now time.Time) string {
	return fmt.Sprintf(csvFilenamePattern, now.Format("2006-01-02"))
}

func JSONFilename(now time.Time) string {
	return fmt.Sprintf(jsonFilenamePattern, now.Format("2006-01-02"))
}

func SummaryFilename(now time.Time) string {
	return fmt.Sprintf(summaryFilenamePattern, now.Format("2006-01-02"))
}

func ExcelFilename(now time.Time) string {
	return fmt.Sprintf(excelFilenamePattern, now.Format("2006-01-02"))
}

// responseTimeHours - время реакции в часах с двумя знаками,
// "N/A" для нерешенных инцидентов
func responseTimeHours(inc *models.Incident) string {
	if inc.ResolvedAt == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", inc.ResolvedAt.Sub(inc.CreatedAt).Hours())
}

package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shenikar/incident_reporting_system/internal/analytics"
)

// jsonSnapshot - структурированный снимок аналитики.
// Набор верхнеуровневых ключей зафиксирован форматом выгрузки.
type jsonSnapshot struct {
	GeneratedAt   string                        `json:"generatedAt"`
	DateRange     jsonDateRange                 `json:"dateRange"`
	Summary       analytics.Summary             `json:"summary"`
	PeakTimes     jsonPeakTimes                 `json:"peakTimes"`
	TypeBreakdown map[string]analytics.TypeStat `json:"typeBreakdown"`
	TimeSeries    []analytics.TimeBucket        `json:"timeSeries"`
	Incidents     []jsonIncident                `json:"incidents"`
}

type jsonDateRange struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

type jsonPeakTimes struct {
	PeakHour   int    `json:"peakHour"`
	PeakDay    string `json:"peakDay"`
	HourlyData [24]int `json:"hourlyData"`
	DailyData  [7]int  `json:"dailyData"`
}

type jsonIncident struct {
	ID                string  `json:"id"`
	CreatedAt         string  `json:"createdAt"`
	ResolvedAt        *string `json:"resolvedAt"`
	IncidentType      string  `json:"incidentType"`
	Status            string  `json:"status"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	Description       string  `json:"description"`
	ResponseTimeHours string  `json:"responseTimeHours"`
}

// JSON сериализует полный снимок аналитики
func JSON(b Bundle) ([]byte, error) {
	snapshot := jsonSnapshot{
		GeneratedAt: b.GeneratedAt.UTC().Format(time.RFC3339),
		DateRange: jsonDateRange{
			Start: formatOptionalTime(b.DateRange.Start),
			End:   formatOptionalTime(b.DateRange.End),
		},
		Summary: b.Summary,
		PeakTimes: jsonPeakTimes{
			PeakHour:   b.PeakTimes.PeakHour,
			PeakDay:    b.PeakTimes.PeakDayName(),
			HourlyData: b.PeakTimes.HourCounts,
			DailyData:  b.PeakTimes.DayCounts,
		},
		TypeBreakdown: b.TypeStats,
		TimeSeries:    b.TimeSeries,
		Incidents:     make([]jsonIncident, 0, len(b.Incidents)),
	}

	for _, inc := range b.Incidents {
		rec := jsonIncident{
			ID:                inc.ID.String(),
			CreatedAt:         inc.CreatedAt.UTC().Format(time.RFC3339),
			IncidentType:      inc.IncidentType,
			Status:            inc.Status,
			Latitude:          inc.Latitude,
			Longitude:         inc.Longitude,
			Description:       inc.Description,
			ResponseTimeHours: responseTimeHours(inc),
		}
		rec.ResolvedAt = formatOptionalTime(inc.ResolvedAt)
		snapshot.Incidents = append(snapshot.Incidents, rec)
	}

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analytics snapshot: %w", err)
	}
	return payload, nil
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}

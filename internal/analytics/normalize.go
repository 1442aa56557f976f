package analytics

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/incident_reporting_system/internal/models"
)

// RawIncident - запись инцидента в том виде, в каком она приходит из
// унаследованного хранилища. Временные метки - RFC3339-текст, координаты
// могут быть числом или строкой. Шероховатости формата гасятся здесь,
// дальше движка сырой формат не проникает.
type RawIncident struct {
	ID           string         `json:"id"`
	CreatedAt    string         `json:"createdAt"`
	ResolvedAt   string         `json:"resolvedAt"`
	IncidentType string         `json:"incidentType"`
	Status       string         `json:"status"`
	Latitude     any            `json:"latitude"`
	Longitude    any            `json:"longitude"`
	Description  string         `json:"description"`
	ReporterID   string         `json:"reporterId"`
	ReporterInfo map[string]any `json:"reporterInfo"`
}

// Normalize приводит разнородные сырые записи к канонической форме.
// Ошибок не бывает: хранилище содержит частично заполненные записи,
// и терпимость к ним - намеренная политика, а не упущение.
//   - пустой incidentType -> "unknown", пустой status -> "pending"
//   - нечисловая или отсутствующая координата -> 0
//   - отсутствующий createdAt -> текущее время
//   - непарсящийся createdAt -> нулевое время (агрегатор такие пропустит)
func (e *Engine) Normalize(raws []RawIncident) []*models.Incident {
	incidents := make([]*models.Incident, 0, len(raws))
	for _, raw := range raws {
		inc := &models.Incident{
			IncidentType: raw.IncidentType,
			Status:       raw.Status,
			Description:  raw.Description,
			Latitude:     parseCoordinate(raw.Latitude),
			Longitude:    parseCoordinate(raw.Longitude),
			ReporterID:   raw.ReporterID,
			ReporterInfo: raw.ReporterInfo,
		}

		if id, err := uuid.Parse(raw.ID); err == nil {
			inc.ID = id
		}
		if inc.IncidentType == "" {
			inc.IncidentType = "unknown"
		}
		if inc.Status == "" {
			inc.Status = models.StatusPending
		}

		switch {
		case raw.CreatedAt == "":
			inc.CreatedAt = time.Now()
		default:
			ts, err := time.Parse(time.RFC3339, raw.CreatedAt)
			if err != nil {
				e.logger.WithField("created_at", raw.CreatedAt).Warn("Unparseable createdAt in raw incident, record will be excluded from time series")
				// нулевое время, агрегатор отфильтрует
			} else {
				inc.CreatedAt = ts
			}
		}

		if raw.ResolvedAt != "" {
			if ts, err := time.Parse(time.RFC3339, raw.ResolvedAt); err == nil {
				inc.ResolvedAt = &ts
			}
		}

		incidents = append(incidents, inc)
	}
	return incidents
}

// parseCoordinate принимает число или строку, при неудаче возвращает 0
func parseCoordinate(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

package analytics

import (
	"github.com/shenikar/incident_reporting_system/internal/models"
)

// FilterAll - значение фильтра "пропускать все"
const FilterAll = "all"

// Статусные значения пространственного фильтра
const (
	FilterResolved   = "resolved"
	FilterUnresolved = "unresolved"
)

// heatPointWeight - постоянный вес точки: плотность на карте складывается
// из наложения точек, а не из индивидуальной интенсивности
const heatPointWeight = 0.5

// HeatPoint - точка тепловой карты
type HeatPoint struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Weight float64 `json:"weight"`
}

// HeatmapFilter - активные фильтры тепловой карты
type HeatmapFilter struct {
	Type   string `json:"type"`   // "all" или точное совпадение типа
	Status string `json:"status"` // "all" | "resolved" | "unresolved"
}

// HeatPoints отбирает инциденты под тепловую карту.
// Координаты (0,0) и NaN считаются непригодными и исключаются - только
// из пространственных видов, на временную агрегацию это не влияет.
func (e *Engine) HeatPoints(incidents []*models.Incident, filter HeatmapFilter) []HeatPoint {
	points := make([]HeatPoint, 0, len(incidents))
	for _, inc := range incidents {
		if !matchesHeatmapFilter(inc, filter) {
			continue
		}
		if !inc.HasValidLocation() {
			continue
		}
		points = append(points, HeatPoint{
			Lat:    inc.Latitude,
			Lng:    inc.Longitude,
			Weight: heatPointWeight,
		})
	}
	return points
}

func matchesHeatmapFilter(inc *models.Incident, filter HeatmapFilter) bool {
	if filter.Type != "" && filter.Type != FilterAll && inc.IncidentType != filter.Type {
		return false
	}
	switch filter.Status {
	case FilterResolved:
		return inc.Status == models.StatusResolved
	case FilterUnresolved:
		return inc.Status != models.StatusResolved
	default:
		return true
	}
}

// Gradient подбирает цветовую рампу под активный фильтр: отдельные рампы
// для "только решенные" и "только нерешенные", иначе рампа строится из
// цвета выбранного типа. Чисто презентационная вещь, но параметризована
// тем же состоянием фильтра, что и точки, для согласованности.
func (e *Engine) Gradient(filter HeatmapFilter, knownTypes []string) map[string]string {
	switch filter.Status {
	case FilterResolved:
		return map[string]string{"0.4": "#4ade80", "0.6": "#22c55e", "0.8": "#16a34a", "1": "#15803d"}
	case FilterUnresolved:
		return map[string]string{"0.4": "#fbbf24", "0.6": "#f59e0b", "0.8": "#ef4444", "1": "#dc2626"}
	}

	color := "#3b82f6"
	if filter.Type != "" && filter.Type != FilterAll {
		color = TypeColor(filter.Type, knownTypes)
	}
	return map[string]string{
		"0.4": color + "66",
		"0.6": color + "99",
		"0.8": color + "cc",
		"1":   color,
	}
}

package analytics

// Закрепленные цвета известных типов инцидентов
var typeColors = map[string]string{
	"flood":    "#3b82f6",
	"fire":     "#ef4444",
	"accident": "#f59e0b",
	"medical":  "#10b981",
	"crime":    "#8b5cf6",
	"unknown":  "#6b7280",
}

// fallbackPalette - фиксированная палитра для нераспознанных типов
var fallbackPalette = []string{"#ec4899", "#14b8a6", "#f97316", "#a855f7", "#06b6d4"}

// TypeColor возвращает цвет типа. Для типа вне известного набора цвет
// выбирается детерминированно: индекс типа в отсортированном списке
// наблюдаемых типов по модулю размера палитры.
func TypeColor(incidentType string, knownTypes []string) string {
	if color, ok := typeColors[incidentType]; ok {
		return color
	}
	idx := 0
	for i, t := range knownTypes {
		if t == incidentType {
			idx = i
			break
		}
	}
	return fallbackPalette[idx%len(fallbackPalette)]
}

// TypeColors строит карту цветов для всех наблюдаемых типов
func TypeColors(knownTypes []string) map[string]string {
	colors := make(map[string]string, len(knownTypes))
	for _, t := range knownTypes {
		colors[t] = TypeColor(t, knownTypes)
	}
	return colors
}

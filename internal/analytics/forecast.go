package analytics

import "math"

// Тренды прогноза
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// ForecastResult - ожидание на следующую корзину
type ForecastResult struct {
	Forecast int    `json:"forecast"`
	Trend    string `json:"trend"`
}

// forecastWindow - сколько хвостовых корзин участвует в экстраполяции
const forecastWindow = 4

// Forecast экстраполирует следующую корзину из средней дельты трех
// последних переходов. Линейная экстраполяция первого порядка, не
// статистическая модель. Меньше четырех корзин - nil: данных недостаточно,
// это не ошибка, вызывающая сторона обязана проверить.
// Прогноз никогда не отрицателен.
func (e *Engine) Forecast(series []TimeBucket) *ForecastResult {
	if len(series) < forecastWindow {
		return nil
	}

	tail := series[len(series)-forecastWindow:]
	deltaSum := 0
	for i := 1; i < len(tail); i++ {
		deltaSum += tail[i].Total - tail[i-1].Total
	}
	meanDelta := float64(deltaSum) / float64(forecastWindow-1)

	forecast := int(math.Round(float64(tail[len(tail)-1].Total) + meanDelta))
	if forecast < 0 {
		forecast = 0
	}

	trend := TrendStable
	if meanDelta > 0 {
		trend = TrendIncreasing
	} else if meanDelta < 0 {
		trend = TrendDecreasing
	}

	return &ForecastResult{Forecast: forecast, Trend: trend}
}

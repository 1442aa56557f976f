package export

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Summary строит текстовый отчет с фиксированными заголовками секций.
// Типы перечисляются в алфавитном порядке, чтобы отчет был детерминирован.
func Summary(b Bundle) []byte {
	var sb strings.Builder

	sb.WriteString("INCIDENT ANALYTICS REPORT\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n", b.GeneratedAt.UTC().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Date range: %s\n\n", formatDateRange(b)))

	sb.WriteString("SUMMARY STATISTICS\n")
	sb.WriteString(fmt.Sprintf("Total incidents: %d\n", b.Summary.Total))
	sb.WriteString(fmt.Sprintf("Resolved: %d\n", b.Summary.Resolved))
	sb.WriteString(fmt.Sprintf("Pending: %d\n\n", b.Summary.Pending))

	sb.WriteString("PEAK TIME ANALYSIS\n")
	sb.WriteString(fmt.Sprintf("Peak hour: %d:00\n", b.PeakTimes.PeakHour))
	sb.WriteString(fmt.Sprintf("Peak day: %s\n\n", b.PeakTimes.PeakDayName()))

	sb.WriteString("INCIDENT BREAKDOWN BY TYPE\n")
	types := make([]string, 0, len(b.TypeStats))
	for incidentType := range b.TypeStats {
		types = append(types, incidentType)
	}
	sort.Strings(types)
	for _, incidentType := range types {
		stat := b.TypeStats[incidentType]
		rate := 0.0
		if stat.Total > 0 {
			rate = float64(stat.Resolved) / float64(stat.Total) * 100
		}
		sb.WriteString(fmt.Sprintf("%s: %d total, %d resolved (%.1f%% resolution rate)\n",
			incidentType, stat.Total, stat.Resolved, rate))
	}
	sb.WriteByte('\n')

	sb.WriteString("TIME SERIES DATA (Last 10 Periods)\n")
	series := b.TimeSeries
	if len(series) > 10 {
		series = series[len(series)-10:]
	}
	for _, bucket := range series {
		sb.WriteString(fmt.Sprintf("%s: %d incidents (rolling avg %.2f)\n",
			bucket.Date, bucket.Total, bucket.RollingAvg))
	}

	return []byte(sb.String())
}

func formatDateRange(b Bundle) string {
	if b.DateRange.Start == nil && b.DateRange.End == nil {
		return "all time"
	}
	start, end := "...", "..."
	if b.DateRange.Start != nil {
		start = b.DateRange.Start.UTC().Format("2006-01-02")
	}
	if b.DateRange.End != nil {
		end = b.DateRange.End.UTC().Format("2006-01-02")
	}
	return fmt.Sprintf("%s - %s", start, end)
}

package export

import (
	"strconv"
	"strings"
)

// csvHeader - фиксированная шапка выгрузки сырых данных
const csvHeader = "ID,Date,Type,Status,Latitude,Longitude,Description,Response Time (hours)"

// CSV строит построчную выгрузку инцидентов: одна строка на инцидент,
// даты в ISO-8601, описание всегда в двойных кавычках с удвоением
// внутренних кавычек.
func CSV(b Bundle) []byte {
	var sb strings.Builder
	sb.WriteString(csvHeader)
	sb.WriteByte('\n')

	for _, inc := range b.Incidents {
		sb.WriteString(inc.ID.String())
		sb.WriteByte(',')
		sb.WriteString(inc.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"))
		sb.WriteByte(',')
		sb.WriteString(inc.IncidentType)
		sb.WriteByte(',')
		sb.WriteString(inc.Status)
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatFloat(inc.Latitude, 'f', -1, 64))
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatFloat(inc.Longitude, 'f', -1, 64))
		sb.WriteByte(',')
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(inc.Description, `"`, `""`))
		sb.WriteByte('"')
		sb.WriteByte(',')
		sb.WriteString(responseTimeHours(inc))
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

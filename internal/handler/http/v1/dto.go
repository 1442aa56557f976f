package v1

import (
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/incident_reporting_system/internal/analytics"
)

// CreateIncidentRequest DTO для создания отчета об инциденте.
// Координаты необязательны: отчет без местоположения хранится с (0,0)
// и исключается из пространственной аналитики.
// @Description DTO для создания отчета об инциденте
type CreateIncidentRequest struct {
	IncidentType string         `json:"incident_type" validate:"required,min=2,max=64"`
	Description  string         `json:"description,omitempty"`
	Latitude     float64        `json:"latitude" validate:"latitude"`
	Longitude    float64        `json:"longitude" validate:"longitude"`
	ReporterID   string         `json:"reporter_id" validate:"required"`
	ReporterInfo map[string]any `json:"reporter_info,omitempty"`
}

// EndorseIncidentRequest DTO для голоса сообщества по отчету
// @Description DTO для голоса сообщества по отчету
type EndorseIncidentRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// ImportIncidentsRequest DTO для пакетного импорта сырых записей
// @Description DTO для пакетного импорта сырых записей
type ImportIncidentsRequest struct {
	Incidents []analytics.RawIncident `json:"incidents" validate:"required,min=1"`
}

// ImportIncidentsResponse DTO с результатом импорта
// @Description DTO с результатом импорта
type ImportIncidentsResponse struct {
	Imported int `json:"imported"`
}

// IncidentResponse DTO для ответа с информацией об отчете
// @Description DTO для ответа с информацией об отчете
type IncidentResponse struct {
	ID           uuid.UUID      `json:"id"`
	IncidentType string         `json:"incident_type"`
	Status       string         `json:"status"`
	Description  string         `json:"description,omitempty"`
	Latitude     float64        `json:"latitude"`
	Longitude    float64        `json:"longitude"`
	ReporterID   string         `json:"reporter_id,omitempty"`
	ReporterInfo map[string]any `json:"reporter_info,omitempty"`
	VerifiedBy   []string       `json:"verified_by"`
	DisputedBy   []string       `json:"disputed_by"`
	ResolvedBy   []string       `json:"resolved_by"`
	CreatedAt    time.Time      `json:"created_at"`
	ResolvedAt   *time.Time     `json:"resolved_at,omitempty"`
}

// StatsResponse DTO для ответа со статистикой недавних отчетов
// @Description DTO для ответа со статистикой недавних отчетов
type StatsResponse struct {
	ReportCount int `json:"report_count"`
}

package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Статусы инцидента. Голоса сообщества переводят отчет между ними.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusResolved = "resolved"
	StatusDisputed = "disputed"
)

// Incident представляет отчет об инциденте, поданный жителем
type Incident struct {
	ID           uuid.UUID      `json:"id"`
	IncidentType string         `json:"incident_type"`
	Status       string         `json:"status"`
	Description  string         `json:"description"`
	Latitude     float64        `json:"latitude"`
	Longitude    float64        `json:"longitude"`
	ReporterID   string         `json:"reporter_id"`
	ReporterInfo map[string]any `json:"reporter_info,omitempty"`
	VerifiedBy   []string       `json:"verified_by,omitempty"`
	DisputedBy   []string       `json:"disputed_by,omitempty"`
	ResolvedBy   []string       `json:"resolved_by,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	ResolvedAt   *time.Time     `json:"resolved_at,omitempty"`
}

// HasValidLocation сообщает, пригодны ли координаты для пространственной
// агрегации. (0,0) трактуется как "координаты не определены": реальный отчет
// ровно в этой точке будет отброшен, риск принят осознанно.
func (i *Incident) HasValidLocation() bool {
	if math.IsNaN(i.Latitude) || math.IsNaN(i.Longitude) {
		return false
	}
	return i.Latitude != 0 || i.Longitude != 0
}

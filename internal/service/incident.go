package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/incident_reporting_system/internal/analytics"
	"github.com/shenikar/incident_reporting_system/internal/config"
	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/shenikar/incident_reporting_system/internal/webhook"
	"github.com/sirupsen/logrus"
)

// EndorsementKind - вид голоса сообщества по отчету
type EndorsementKind string

const (
	EndorsementVerify  EndorsementKind = "verify"
	EndorsementDispute EndorsementKind = "dispute"
	EndorsementResolve EndorsementKind = "resolve"
)

// ErrAlreadyEndorsed возвращается при повторном голосе одного пользователя
var ErrAlreadyEndorsed = errors.New("user has already endorsed this incident")

// IncidentRepository определяет контракт для работы с бд инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error)
	ListAllIncidents(ctx context.Context) ([]*models.Incident, error)
	AddEndorsement(ctx context.Context, id uuid.UUID, userID string, kind EndorsementKind) (int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	CountRecentReports(ctx context.Context, minutes int) (int, error)
	GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	SetIncidentCache(ctx context.Context, incident *models.Incident) error
	InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error
	GetDashboardCache(ctx context.Context, key string) ([]byte, error)
	SetDashboardCache(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

// IncidentService определяет контракт для бизнес-логики работы с отчетами
type IncidentService interface {
	CreateIncident(ctx context.Context, incident *models.Incident) error
	ImportIncidents(ctx context.Context, raws []analytics.RawIncident) (int, error)
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error)
	EndorseIncident(ctx context.Context, id uuid.UUID, userID string, kind EndorsementKind) (*models.Incident, error)
	GetStats(ctx context.Context) (int, error)
}

type incidentService struct {
	repo      IncidentRepository
	logger    *logrus.Logger
	cfg       *config.Config
	publisher webhook.WebhookPublisher
	engine    *analytics.Engine
}

func NewIncidentService(repo IncidentRepository, logger *logrus.Logger, cfg *config.Config, publisher webhook.WebhookPublisher) IncidentService {
	return &incidentService{
		repo:      repo,
		logger:    logger,
		cfg:       cfg,
		publisher: publisher,
		engine:    analytics.NewEngine(logger),
	}
}

// CreateIncident создает отчет об инциденте
func (s *incidentService) CreateIncident(ctx context.Context, incident *models.Incident) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":       "incident",
		"method":        "CreateIncident",
		"incident_type": incident.IncidentType,
	})
	log.Info("Attempting to create a new incident report")

	if incident.IncidentType == "" {
		incident.IncidentType = "unknown"
	}
	incident.Status = models.StatusPending
	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return fmt.Errorf("service: could not create incident: %w", err)
	}

	log.WithField("incident_id", incident.ID).Info("Incident report created successfully")
	return nil
}

// ImportIncidents прогоняет сырые записи из унаследованного хранилища через
// нормализатор и сохраняет их. Возвращает число импортированных записей.
func (s *incidentService) ImportIncidents(ctx context.Context, raws []analytics.RawIncident) (int, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ImportIncidents",
		"count":   len(raws),
	})
	log.Info("Importing raw incident records")

	incidents := s.engine.Normalize(raws)
	imported := 0
	for _, inc := range incidents {
		if err := s.repo.Create(ctx, inc); err != nil {
			log.WithError(err).Error("Failed to import incident record")
			return imported, fmt.Errorf("service: could not import incidents: %w", err)
		}
		imported++
	}

	log.WithField("imported", imported).Info("Raw incident records imported successfully")
	return imported, nil
}

// GetIncident получает отчет по ID, сперва пробуя кэш
func (s *incidentService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})
	log.Info("Fetching incident by ID")

	cached, err := s.repo.GetIncidentFromCache(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to read incident cache, falling back to database")
	}
	if cached != nil {
		log.Debug("Incident served from cache")
		return cached, nil
	}

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to get incident from repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	if err := s.repo.SetIncidentCache(ctx, incident); err != nil {
		log.WithError(err).Warn("Failed to cache incident")
	}

	log.Info("Incident fetched successfully")
	return incident, nil
}

// ListIncidents возвращает список отчетов с пагинацией
func (s *incidentService) ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error) {
	if page < 1 {
		page = 1
	}

	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":   "incident",
		"method":    "ListIncidents",
		"page":      page,
		"page_size": pageSize,
	})
	log.Info("Listing incidents")

	incidents, err := s.repo.ListIncidents(ctx, page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, nil
}

// EndorseIncident регистрирует голос пользователя (verify/dispute/resolve).
// Когда число голосов достигает настроенного порога, статус отчета меняется,
// и в очередь вебхуков публикуется событие перехода.
func (s *incidentService) EndorseIncident(ctx context.Context, id uuid.UUID, userID string, kind EndorsementKind) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "EndorseIncident",
		"incident_id": id,
		"user_id":     userID,
		"kind":        kind,
	})
	log.Info("Recording community endorsement")

	count, err := s.repo.AddEndorsement(ctx, id, userID, kind)
	if err != nil {
		if errors.Is(err, ErrAlreadyEndorsed) {
			log.Warn("User has already endorsed this incident")
			return nil, err
		}
		log.WithError(err).Error("Failed to add endorsement in repository")
		return nil, fmt.Errorf("service: could not endorse incident: %w", err)
	}

	threshold, targetStatus := s.thresholdFor(kind)
	if count >= threshold {
		incident, err := s.repo.GetByID(ctx, id)
		if err != nil {
			log.WithError(err).Error("Failed to load incident for status transition")
			return nil, fmt.Errorf("service: could not endorse incident: %w", err)
		}

		if incident.Status != targetStatus {
			if err := s.repo.UpdateStatus(ctx, id, targetStatus); err != nil {
				log.WithError(err).Error("Failed to update incident status")
				return nil, fmt.Errorf("service: could not update incident status: %w", err)
			}
			s.publishStatusChange(ctx, incident, targetStatus, userID, kind)
		}
	}

	if err := s.repo.InvalidateIncidentCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache")
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to reload incident after endorsement")
		return nil, fmt.Errorf("service: could not reload incident: %w", err)
	}

	log.WithField("status", updated.Status).Info("Endorsement recorded successfully")
	return updated, nil
}

// GetStats возвращает количество отчетов за настроенное окно времени
func (s *incidentService) GetStats(ctx context.Context) (int, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "GetStats",
		"minutes": s.cfg.StatsTimeWindowMinutes,
	})
	log.Info("Fetching recent report stats")

	count, err := s.repo.CountRecentReports(ctx, s.cfg.StatsTimeWindowMinutes)
	if err != nil {
		log.WithError(err).Error("Failed to count recent reports")
		return 0, fmt.Errorf("service: could not get stats: %w", err)
	}
	return count, nil
}

// thresholdFor возвращает порог голосов и целевой статус для вида голоса.
// Пороги - явные значения конфигурации, не зашитые константы.
func (s *incidentService) thresholdFor(kind EndorsementKind) (int, string) {
	switch kind {
	case EndorsementDispute:
		return s.cfg.DisputeThreshold, models.StatusDisputed
	case EndorsementResolve:
		return s.cfg.ResolveThreshold, models.StatusResolved
	default:
		return s.cfg.VerificationThreshold, models.StatusVerified
	}
}

// publishStatusChange отправляет событие смены статуса в очередь вебхуков.
// Доставка best-effort: неудача публикации логируется и не валит запрос.
func (s *incidentService) publishStatusChange(ctx context.Context, incident *models.Incident, newStatus, actorID string, kind EndorsementKind) {
	event := webhook.WebhookEvent{
		IncidentID:   incident.ID,
		IncidentType: incident.IncidentType,
		OldStatus:    incident.Status,
		NewStatus:    newStatus,
		ActorID:      actorID,
		Kind:         string(kind),
		Timestamp:    time.Now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithField("incident_id", incident.ID).Warn("Failed to publish status change webhook event")
	}
}

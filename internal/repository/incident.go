package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/shenikar/incident_reporting_system/internal/service"
)

// Колонки голосов сообщества. Белый список: имя колонки подставляется
// в запрос и не должно приходить снаружи.
var endorsementColumns = map[service.EndorsementKind]string{
	service.EndorsementVerify:  "verified_by",
	service.EndorsementDispute: "disputed_by",
	service.EndorsementResolve: "resolved_by",
}

const incidentColumns = `
			id,
			incident_type,
			status,
			description,
			ST_Y(location::geometry) as latitude,
			ST_X(location::geometry) as longitude,
			reporter_id,
			reporter_info,
			verified_by,
			disputed_by,
			resolved_by,
			created_at,
			resolved_at`

type IncidentRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
}

func NewIncidentRepository(db *pgxpool.Pool, redisClient *redis.Client) service.IncidentRepository {
	return &IncidentRepository{
		db:          db,
		redisClient: redisClient,
	}
}

// Create создает новую запись об инциденте в бд.
// resolved_at пишется как nullable: импортированные решенные записи
// сохраняют свою метку, свежие отчеты получают NULL.
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents (incident_type, status, description, location, reporter_id, reporter_info, created_at, resolved_at)
		VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326), $6, $7, COALESCE($8, NOW()), $9)
		RETURNING id, created_at;
	`
	var createdAt any
	if !incident.CreatedAt.IsZero() {
		createdAt = incident.CreatedAt
	}
	err := r.db.QueryRow(ctx, query,
		incident.IncidentType,
		incident.Status,
		incident.Description,
		incident.Longitude,
		incident.Latitude,
		incident.ReporterID,
		incident.ReporterInfo,
		createdAt,
		incident.ResolvedAt,
	).Scan(&incident.ID, &incident.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// GetByID возвращает инцидент по его UUID
func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		WHERE id = $1;
	`
	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s not found", id)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	return incident, nil
}

// ListIncidents возвращает список инцидентов с пагинацией
func (r *IncidentRepository) ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error) {
	// рассчитываем смещение
	offset := (page - 1) * pageSize

	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	return collectIncidents(rows, "ListIncidents")
}

// ListAllIncidents возвращает весь набор инцидентов для аналитики.
// Движок работает по снимку в памяти, поэтому выборка без пагинации.
func (r *IncidentRepository) ListAllIncidents(ctx context.Context) ([]*models.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		ORDER BY created_at ASC;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list all incidents: %w", err)
	}
	defer rows.Close()

	return collectIncidents(rows, "ListAllIncidents")
}

// AddEndorsement дописывает голос пользователя в соответствующий список,
// если он еще не голосовал, и возвращает новый размер списка.
// Повторный голос того же пользователя возвращает service.ErrAlreadyEndorsed.
func (r *IncidentRepository) AddEndorsement(ctx context.Context, id uuid.UUID, userID string, kind service.EndorsementKind) (int, error) {
	column, ok := endorsementColumns[kind]
	if !ok {
		return 0, fmt.Errorf("unknown endorsement kind: %s", kind)
	}

	query := fmt.Sprintf(`
		UPDATE incidents
		SET %[1]s = array_append(%[1]s, $2)
		WHERE id = $1 AND NOT ($2 = ANY(%[1]s))
		RETURNING cardinality(%[1]s);
	`, column)

	var count int
	err := r.db.QueryRow(ctx, query, id, userID).Scan(&count)
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to add %s endorsement: %w", kind, err)
	}

	// Либо инцидента нет, либо пользователь уже голосовал
	existsQuery := fmt.Sprintf(`SELECT cardinality(%s) FROM incidents WHERE id = $1;`, column)
	if err := r.db.QueryRow(ctx, existsQuery, id).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("incident with id %s not found", id)
		}
		return 0, fmt.Errorf("failed to check %s endorsement: %w", kind, err)
	}
	return count, service.ErrAlreadyEndorsed
}

// UpdateStatus меняет статус инцидента. При переходе в resolved проставляется
// resolved_at (однократно - повторно метка не перезаписывается).
func (r *IncidentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE incidents SET
			status = $2,
			resolved_at = CASE WHEN $2 = 'resolved' AND resolved_at IS NULL THEN NOW() ELSE resolved_at END
		WHERE id = $1;
	`
	cmdTag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update incident status: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("incident with id %s not found for status update", id)
	}
	return nil
}

// CountRecentReports возвращает число отчетов, поданных за последние minutes минут
func (r *IncidentRepository) CountRecentReports(ctx context.Context, minutes int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM incidents
		WHERE created_at >= NOW() - ($1 * INTERVAL '1 minute');
	`
	var count int
	err := r.db.QueryRow(ctx, query, minutes).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count recent reports: %w", err)
	}
	return count, nil
}

// GetIncidentFromCache пытается получить инцидент из Redis
func (r *IncidentRepository) GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	key := fmt.Sprintf("incident:%s", id.String())
	val, err := r.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident from cache: %w", err)
	}

	incident := &models.Incident{}
	if err := json.Unmarshal(val, incident); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident from cache: %w", err)
	}
	return incident, nil
}

// SetIncidentCache сохраняет инцидент в Redis
func (r *IncidentRepository) SetIncidentCache(ctx context.Context, incident *models.Incident) error {
	key := fmt.Sprintf("incident:%s", incident.ID.String())
	val, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("failed to marshal incident for cache: %w", err)
	}
	// Устанавливаем срок жизни кэша, например, 5 минут
	if err := r.redisClient.Set(ctx, key, val, 5*time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to set incident in cache: %w", err)
	}
	return nil
}

// InvalidateIncidentCache удаляет инцидент из Redis кэша
func (r *IncidentRepository) InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error {
	key := fmt.Sprintf("incident:%s", id.String())
	if err := r.redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate incident cache: %w", err)
	}
	return nil
}

// GetDashboardCache читает кэшированный снимок аналитики по ключу параметров
func (r *IncidentRepository) GetDashboardCache(ctx context.Context, key string) ([]byte, error) {
	val, err := r.redisClient.Get(ctx, "dashboard:"+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get dashboard snapshot from cache: %w", err)
	}
	return val, nil
}

// SetDashboardCache сохраняет снимок аналитики с коротким TTL.
// Истечение TTL - единственный механизм консистентности: снимок
// пересчитывается целиком, инкрементальных обновлений нет.
func (r *IncidentRepository) SetDashboardCache(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := r.redisClient.Set(ctx, "dashboard:"+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set dashboard snapshot in cache: %w", err)
	}
	return nil
}

func scanIncident(row pgx.Row) (*models.Incident, error) {
	incident := &models.Incident{}
	err := row.Scan(
		&incident.ID,
		&incident.IncidentType,
		&incident.Status,
		&incident.Description,
		&incident.Latitude,
		&incident.Longitude,
		&incident.ReporterID,
		&incident.ReporterInfo,
		&incident.VerifiedBy,
		&incident.DisputedBy,
		&incident.ResolvedBy,
		&incident.CreatedAt,
		&incident.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return incident, nil
}

func collectIncidents(rows pgx.Rows, method string) ([]*models.Incident, error) {
	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row in %s: %w", method, err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration in %s: %w", method, err)
	}
	return incidents, nil
}

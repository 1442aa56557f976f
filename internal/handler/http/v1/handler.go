package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/incident_reporting_system/internal/config"
	"github.com/shenikar/incident_reporting_system/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	incidentService  service.IncidentService
	analyticsService service.AnalyticsService
	logger           *logrus.Logger
	validate         *validator.Validate
	cfg              *config.Config
}

func NewHandler(incidentService service.IncidentService, analyticsService service.AnalyticsService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		incidentService:  incidentService,
		analyticsService: analyticsService,
		logger:           logger,
		validate:         validator.New(),
		cfg:              cfg,
	}
}

// @Summary Create a new incident report
// @Description Create a new community incident report. New reports always start in pending status. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param incident body CreateIncidentRequest true "Incident report creation request"
// @Success 201 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [post]
func (h *Handler) createIncident(c *gin.Context) {
	var input CreateIncidentRequest
	log := h.logger.WithField("method", "createIncident")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model := DTOToIncidentModel(input)
	if err := h.incidentService.CreateIncident(c.Request.Context(), model); err != nil {
		log.WithError(err).Error("Failed to create incident in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, ModelToIncidentResponse(model))
}

// @Summary Import raw incident records
// @Description Import a batch of raw incident records from the legacy store. Records are normalized before saving. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param incidents body ImportIncidentsRequest true "Raw incident records"
// @Success 200 {object} ImportIncidentsResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/import [post]
func (h *Handler) importIncidents(c *gin.Context) {
	var input ImportIncidentsRequest
	log := h.logger.WithField("method", "importIncidents")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imported, err := h.incidentService.ImportIncidents(c.Request.Context(), input.Incidents)
	if err != nil {
		log.WithError(err).Error("Failed to import incidents in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ImportIncidentsResponse{Imported: imported})
}

// @Summary Get a list of incident reports
// @Description Get a paginated list of all incident reports. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(20)
// @Success 200 {array} IncidentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	incidents, err := h.incidentService.ListIncidents(c.Request.Context(), page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Get incident report by ID
// @Description Get a single incident report by its ID. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	incident, err := h.incidentService.GetIncident(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident from service")
		c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Verify an incident report
// @Description Record a community verification vote. When enough distinct users verify, the report becomes verified. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Param vote body EndorseIncidentRequest true "Verification vote"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "User has already voted"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id}/verify [post]
func (h *Handler) verifyIncident(c *gin.Context) {
	h.endorseIncident(c, service.EndorsementVerify)
}

// @Summary Dispute an incident report
// @Description Record a community dispute vote. When enough distinct users dispute, the report becomes disputed. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Param vote body EndorseIncidentRequest true "Dispute vote"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "User has already voted"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id}/dispute [post]
func (h *Handler) disputeIncident(c *gin.Context) {
	h.endorseIncident(c, service.EndorsementDispute)
}

// @Summary Mark an incident report as resolved
// @Description Record a community resolution vote. When enough distinct users confirm, the report becomes resolved. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Param vote body EndorseIncidentRequest true "Resolution vote"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "User has already voted"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id}/resolve [post]
func (h *Handler) resolveIncident(c *gin.Context) {
	h.endorseIncident(c, service.EndorsementResolve)
}

func (h *Handler) endorseIncident(c *gin.Context, kind service.EndorsementKind) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "endorseIncident").WithField("id", id).WithField("kind", kind)

	var input EndorseIncidentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, err := h.incidentService.EndorseIncident(c.Request.Context(), id, input.UserID, kind)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyEndorsed) {
			c.JSON(http.StatusConflict, gin.H{"error": "user has already voted on this incident"})
			return
		}
		log.WithError(err).Error("Failed to endorse incident in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Get recent report statistics
// @Description Get the count of incident reports created within the configured time window. Requires API key.
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StatsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	log := h.logger.WithField("method", "getStats")

	reportCount, err := h.incidentService.GetStats(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to get stats from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{ReportCount: reportCount})
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

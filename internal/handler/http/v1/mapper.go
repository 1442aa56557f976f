package v1

import "github.com/shenikar/incident_reporting_system/internal/models"

// DTOToIncidentModel преобразует DTO создания в доменную модель
func DTOToIncidentModel(dto CreateIncidentRequest) *models.Incident {
	return &models.Incident{
		IncidentType: dto.IncidentType,
		Description:  dto.Description,
		Latitude:     dto.Latitude,
		Longitude:    dto.Longitude,
		ReporterID:   dto.ReporterID,
		ReporterInfo: dto.ReporterInfo,
	}
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	return &IncidentResponse{
		ID:           model.ID,
		IncidentType: model.IncidentType,
		Status:       model.Status,
		Description:  model.Description,
		Latitude:     model.Latitude,
		Longitude:    model.Longitude,
		ReporterID:   model.ReporterID,
		ReporterInfo: model.ReporterInfo,
		VerifiedBy:   model.VerifiedBy,
		DisputedBy:   model.DisputedBy,
		ResolvedBy:   model.ResolvedBy,
		CreatedAt:    model.CreatedAt,
		ResolvedAt:   model.ResolvedAt,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

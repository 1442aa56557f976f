package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/incident_reporting_system/internal/analytics"
	"github.com/shenikar/incident_reporting_system/internal/config"
	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/shenikar/incident_reporting_system/internal/service"
	"github.com/shenikar/incident_reporting_system/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestHandler создает новый экземпляр Handler с мокированными сервисами
func newTestHandler(t *testing.T) (*mocks.MockIncidentService, *mocks.MockAnalyticsService, *gin.Engine) {
	ctrl := gomock.NewController(t)
	mockIncidents := mocks.NewMockIncidentService(ctrl)
	mockAnalytics := mocks.NewMockAnalyticsService(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		APIKeys:                []string{"test-api-key"},
		StatsTimeWindowMinutes: 60,
	}

	handler := NewHandler(mockIncidents, mockAnalytics, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return mockIncidents, mockAnalytics, router
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateIncident_Success(t *testing.T) {
	mockIncidents, _, router := newTestHandler(t)
	incidentID := uuid.New()
	reqBody := CreateIncidentRequest{
		IncidentType: "flood",
		Description:  "Затопленный перекресток",
		Latitude:     55.75,
		Longitude:    37.61,
		ReporterID:   "user-123",
	}

	mockIncidents.EXPECT().
		CreateIncident(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inc *models.Incident) error {
			inc.ID = incidentID
			inc.Status = models.StatusPending
			inc.CreatedAt = time.Now()
			return nil
		}).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/incidents", bytes.NewBuffer(bodyBytes), map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp IncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, incidentID, resp.ID)
	assert.Equal(t, reqBody.IncidentType, resp.IncidentType)
	assert.Equal(t, models.StatusPending, resp.Status)
}

func TestCreateIncident_InvalidJSON(t *testing.T) {
	mockIncidents, _, router := newTestHandler(t)

	mockIncidents.EXPECT().CreateIncident(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "POST", "/api/v1/incidents", bytes.NewBufferString(`{"incident_type": "fire"`), map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestCreateIncident_ValidationError(t *testing.T) {
	mockIncidents, _, router := newTestHandler(t)
	reqBody := CreateIncidentRequest{ // Отсутствует IncidentType
		Description: "Описание",
		Latitude:    55.75,
		Longitude:   37.61,
		ReporterID:  "user-123",
	}

	mockIncidents.EXPECT().CreateIncident(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/incidents", bytes.NewBuffer(bodyBytes), map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'IncidentType' failed on the 'required' tag")
}

func TestCreateIncident_ServiceError(t *testing.T) {
	mockIncidents, _, router := newTestHandler(t)
	reqBody := CreateIncidentRequest{
		IncidentType: "fire",
		Latitude:     55.75,
		Longitude:    37.61,
		ReporterID:   "user-123",
	}
	serviceError := errors.New("failed to create incident in service")

	mockIncidents.EXPECT().
		CreateIncident(gomock.Any(), gomock.Any()).
		Return(serviceError).
		Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/incidents", bytes.NewBuffer(bodyBytes), map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestImportIncidents_Success(t *testing.T) {
	mockIncidents, _, router := newTestHandler(t)
	reqBody := ImportIncidentsRequest{
		Incidents: []analytics.RawIncident{
			{IncidentType: "fire", CreatedAt: "2024-01-10T08:00:00Z"},
			{IncidentType: "flood", CreatedAt: "2024-01-11T09:30:00Z"},
		},
	}

	mockIncidents.EXPECT().ImportIncidents(gomock.Any(), gomock.Len(2)).Return(2, nil).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/incidents/import", bytes.NewBuffer(bodyBytes), map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp ImportIncidentsResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Imported)
}

func TestImportIncidents_EmptyBatch(t *testing.T) {
	mockIncidents, _, router := newTestHandler(t)
	reqBody := ImportIncidentsRequest{Incidents: []analytics.RawIncident{}}

	mockIncidents.EXPECT().ImportIncidents(gomock.Any(), gomock.Any()).Times(0)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/incidents/import", bytes.NewBuffer(bodyBytes), map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetIncident_Success(t *testing.T) {
	mockIncidents, _, router := newTestHandler(t)
	incidentID := uuid.New()
	expectedIncident := &models.Incident{
		ID:           incidentID,
		IncidentType: "accident",
		Status:       models.StatusVerified,
		Latitude:     55.75,
		Longitude:    37.61,
	}

	mockIncidents.EXPECT().GetIncident(gomock.Any(), incidentID).Return(expectedIncident, nil).Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/incidents/%s", incidentID.String()), nil, map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp IncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, incidentID, resp.ID)
	assert.Equal(t, expectedIncident.IncidentType, resp.IncidentType)
}

func TestGetIncident_InvalidID(t *testing.T) {
	mockIncidents, _, router := newTestHandler(t)

	mockIncidents.EXPECT().GetIncident(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "GET", "/api/v1/incidents/invalid-uuid", nil, map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid incident ID")
}

func TestGetIncident_NotFound(t *testing.T) {
	mockIncidents, _, router := newTestHandler(t)
	incidentID := uuid.New()
	serviceError := errors.New("incident not found")

	mockIncidents.EXPECT().GetIncident(gomock.Any(), incidentID).Return(nil, serviceError).Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/incidents/%s", incidentID.String()), nil, map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "incident not found")
}

func TestListIncidents_Success(t *testing.T) {
	mockIncidents, _, router := newTestHandler(t)
	expectedIncidents := []*models.Incident{
		{ID: uuid.New(), IncidentType: "fire", Status: models.StatusPending},
		{ID: uuid.New(), IncidentType: "flood", Status: models.StatusResolved},
	}

	mockIncidents.EXPECT().ListIncidents(gomock.Any(), 1, 10).Return(expectedIncidents, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents?page=1&pageSize=10", nil, map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []IncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Len(t, resp, 2)
	assert.Equal(t, expectedIncidents[0].IncidentType, resp[0].IncidentType)
}

func TestVerifyIncident_Success(t *testing.T) {
	mockIncidents, _, router := newTestHandler(t)
	incidentID := uuid.New()
	reqBody := EndorseIncidentRequest{UserID: "user-123"}
	verifiedIncident := &models.Incident{
		ID:         incidentID,
		Status:     models.StatusVerified,
		VerifiedBy: []string{"user-123"},
	}

	mockIncidents.EXPECT().
		EndorseIncident(gomock.Any(), incidentID, "user-123", service.EndorsementVerify).
		Return(verifiedIncident, nil).
		Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/incidents/%s/verify", incidentID.String()), bytes.NewBuffer(bodyBytes), map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp IncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, resp.Status)
	assert.Contains(t, resp.VerifiedBy, "user-123")
}

func TestDisputeIncident_AlreadyVoted(t *testing.T) {
	mockIncidents, _, router := newTestHandler(t)
	incidentID := uuid.New()
	reqBody := EndorseIncidentRequest{UserID: "user-123"}

	mockIncidents.EXPECT().
		EndorseIncident(gomock.Any(), incidentID, "user-123", service.EndorsementDispute).
		Return(nil, service.ErrAlreadyEndorsed).
		Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/incidents/%s/dispute", incidentID.String()), bytes.NewBuffer(bodyBytes), map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already voted")
}

func TestResolveIncident_ValidationError(t *testing.T) {
	mockIncidents, _, router := newTestHandler(t)
	incidentID := uuid.New()
	reqBody := EndorseIncidentRequest{} // Отсутствует UserID

	mockIncidents.EXPECT().EndorseIncident(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/incidents/%s/resolve", incidentID.String()), bytes.NewBuffer(bodyBytes), map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'UserID' failed on the 'required' tag")
}

func TestGetStats_Success(t *testing.T) {
	mockIncidents, _, router := newTestHandler(t)
	expectedCount := 123

	mockIncidents.EXPECT().GetStats(gomock.Any()).Return(expectedCount, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents/stats", nil, map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp StatsResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, expectedCount, resp.ReportCount)
}

func TestGetDashboard_Success(t *testing.T) {
	_, mockAnalytics, router := newTestHandler(t)
	expectedData := &service.DashboardData{
		Summary: analytics.Summary{Total: 5, Resolved: 2, Pending: 3},
	}

	mockAnalytics.EXPECT().
		Dashboard(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q service.DashboardQuery) (*service.DashboardData, error) {
			assert.Equal(t, analytics.GranularityDay, q.Granularity)
			require.NotNil(t, q.Range.Start)
			require.NotNil(t, q.Range.End)
			// Конечная дата расширена до конца суток
			assert.Equal(t, 23, q.Range.End.Hour())
			return expectedData, nil
		}).Times(1)

	w := makeRequest(router, "GET", "/api/v1/analytics/dashboard?granularity=day&start=2024-01-01&end=2024-01-31", nil, map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp service.DashboardData
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Summary.Total)
}

func TestGetDashboard_InvalidGranularity(t *testing.T) {
	_, mockAnalytics, router := newTestHandler(t)

	mockAnalytics.EXPECT().Dashboard(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/v1/analytics/dashboard?granularity=hour", nil, map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid granularity")
}

func TestGetDashboard_InvalidDateOrder(t *testing.T) {
	_, mockAnalytics, router := newTestHandler(t)

	mockAnalytics.EXPECT().Dashboard(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/v1/analytics/dashboard?start=2024-02-01&end=2024-01-01", nil, map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "end date is before start date")
}

func TestGetHeatmap_Success(t *testing.T) {
	_, mockAnalytics, router := newTestHandler(t)
	expectedData := &service.HeatmapData{
		Points: []analytics.HeatPoint{{Lat: 55.75, Lng: 37.61, Weight: 0.5}},
		Total:  1,
	}

	mockAnalytics.EXPECT().
		Heatmap(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q service.HeatmapQuery) (*service.HeatmapData, error) {
			assert.Equal(t, "fire", q.Filter.Type)
			assert.Equal(t, "all", q.Filter.Status)
			return expectedData, nil
		}).Times(1)

	w := makeRequest(router, "GET", "/api/v1/analytics/heatmap?type=fire", nil, map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp service.HeatmapData
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
}

func TestExportAnalytics_CSV(t *testing.T) {
	_, mockAnalytics, router := newTestHandler(t)
	expectedResult := &service.ExportResult{
		Data:        []byte("ID,Date,Type,Status,Latitude,Longitude,Description,Response Time (hours)\n"),
		Filename:    "incidents-data-2024-01-15.csv",
		ContentType: "text/csv",
	}

	mockAnalytics.EXPECT().
		Export(gomock.Any(), service.ExportFormatCSV, gomock.Any()).
		Return(expectedResult, nil).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/analytics/export/csv", nil, map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "incidents-data-2024-01-15.csv")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "Response Time (hours)")
}

func TestExportAnalytics_UnsupportedFormat(t *testing.T) {
	_, mockAnalytics, router := newTestHandler(t)

	mockAnalytics.EXPECT().Export(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/v1/analytics/export/pdf", nil, map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported export format")
}

func TestHealthCheck_Success(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestAPIKeyAuthMiddleware_Success(t *testing.T) {
	// Создаем Gin-роутер и добавляем middleware
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil, map[string]string{"X-API-Key": "valid-key"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyAuthMiddleware_MissingKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil) // Нет API ключа
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "API key required")
}

func TestAPIKeyAuthMiddleware_InvalidKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil, map[string]string{"X-API-Key": "invalid-key"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid API key")
}

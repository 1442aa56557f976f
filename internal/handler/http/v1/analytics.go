package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/incident_reporting_system/internal/analytics"
	"github.com/shenikar/incident_reporting_system/internal/service"
)

// dateLayout - формат дат в query-параметрах аналитики
const dateLayout = "2006-01-02"

// @Summary Get analytics dashboard
// @Description Get the full analytics snapshot: summary counters, time series with rolling average, peak times, forecast and type breakdown. Requires API key.
// @Tags Analytics
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param granularity query string false "Bucket width: day, week, month or year" default(week)
// @Param start query string false "Start date (YYYY-MM-DD, inclusive)"
// @Param end query string false "End date (YYYY-MM-DD, inclusive)"
// @Success 200 {object} service.DashboardData
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /analytics/dashboard [get]
func (h *Handler) getDashboard(c *gin.Context) {
	log := h.logger.WithField("method", "getDashboard")

	query, err := parseDashboardQuery(c)
	if err != nil {
		log.WithError(err).Warn("Invalid dashboard query")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := h.analyticsService.Dashboard(c.Request.Context(), query)
	if err != nil {
		log.WithError(err).Error("Failed to build dashboard in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, data)
}

// @Summary Get heatmap points
// @Description Get weighted heat points and the gradient matching the active filter. Reports without a real location are excluded. Requires API key.
// @Tags Analytics
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param start query string false "Start date (YYYY-MM-DD, inclusive)"
// @Param end query string false "End date (YYYY-MM-DD, inclusive)"
// @Param type query string false "Incident type filter" default(all)
// @Param status query string false "Status filter: all, resolved or unresolved" default(all)
// @Success 200 {object} service.HeatmapData
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /analytics/heatmap [get]
func (h *Handler) getHeatmap(c *gin.Context) {
	log := h.logger.WithField("method", "getHeatmap")

	dateRange, err := parseDateRange(c)
	if err != nil {
		log.WithError(err).Warn("Invalid heatmap query")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := service.HeatmapQuery{
		Range: dateRange,
		Filter: analytics.HeatmapFilter{
			Type:   c.DefaultQuery("type", "all"),
			Status: c.DefaultQuery("status", "all"),
		},
	}

	data, err := h.analyticsService.Heatmap(c.Request.Context(), query)
	if err != nil {
		log.WithError(err).Error("Failed to build heatmap in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, data)
}

// @Summary Export analytics report
// @Description Download the current analytics snapshot as a file. Supported formats: csv, json, summary (plain text), excel. Requires API key.
// @Tags Analytics
// @Accept json
// @Produce octet-stream
// @Security ApiKeyAuth
// @Param format path string true "Export format: csv, json, summary or excel"
// @Param granularity query string false "Bucket width: day, week, month or year" default(week)
// @Param start query string false "Start date (YYYY-MM-DD, inclusive)"
// @Param end query string false "End date (YYYY-MM-DD, inclusive)"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string "Invalid format or query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /analytics/export/{format} [get]
func (h *Handler) exportAnalytics(c *gin.Context) {
	format := c.Param("format")
	log := h.logger.WithField("method", "exportAnalytics").WithField("format", format)

	query, err := parseDashboardQuery(c)
	if err != nil {
		log.WithError(err).Warn("Invalid export query")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch format {
	case service.ExportFormatCSV, service.ExportFormatJSON, service.ExportFormatSummary, service.ExportFormatExcel:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported export format"})
		return
	}

	result, err := h.analyticsService.Export(c.Request.Context(), format, query)
	if err != nil {
		log.WithError(err).Error("Failed to build export in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// parseDashboardQuery разбирает гранулярность и временное окно панели
func parseDashboardQuery(c *gin.Context) (service.DashboardQuery, error) {
	granularity := analytics.Granularity(c.DefaultQuery("granularity", string(analytics.GranularityWeek)))
	switch granularity {
	case analytics.GranularityDay, analytics.GranularityWeek, analytics.GranularityMonth, analytics.GranularityYear:
	default:
		return service.DashboardQuery{}, fmt.Errorf("invalid granularity: %s", granularity)
	}

	dateRange, err := parseDateRange(c)
	if err != nil {
		return service.DashboardQuery{}, err
	}

	return service.DashboardQuery{Granularity: granularity, Range: dateRange}, nil
}

// parseDateRange разбирает включительное окно start/end. Конечная дата
// расширяется до конца суток, чтобы "end=2024-01-15" включал весь день.
func parseDateRange(c *gin.Context) (analytics.DateRange, error) {
	var dateRange analytics.DateRange

	if raw := c.Query("start"); raw != "" {
		start, err := time.Parse(dateLayout, raw)
		if err != nil {
			return analytics.DateRange{}, fmt.Errorf("invalid start date: %s", raw)
		}
		dateRange.Start = &start
	}

	if raw := c.Query("end"); raw != "" {
		end, err := time.Parse(dateLayout, raw)
		if err != nil {
			return analytics.DateRange{}, fmt.Errorf("invalid end date: %s", raw)
		}
		endOfDay := end.Add(24*time.Hour - time.Nanosecond)
		dateRange.End = &endOfDay
	}

	if dateRange.Start != nil && dateRange.End != nil && dateRange.End.Before(*dateRange.Start) {
		return analytics.DateRange{}, fmt.Errorf("end date is before start date")
	}

	return dateRange, nil
}

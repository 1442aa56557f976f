package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shenikar/incident_reporting_system/internal/analytics"
	"github.com/shenikar/incident_reporting_system/internal/config"
	"github.com/shenikar/incident_reporting_system/internal/export"
	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/sirupsen/logrus"
)

// Форматы выгрузки аналитики
const (
	ExportFormatCSV     = "csv"
	ExportFormatJSON    = "json"
	ExportFormatSummary = "summary"
	ExportFormatExcel   = "excel"
)

// DashboardQuery - параметры аналитической панели
type DashboardQuery struct {
	Granularity analytics.Granularity
	Range       analytics.DateRange
}

// HeatmapQuery - параметры тепловой карты
type HeatmapQuery struct {
	Range  analytics.DateRange
	Filter analytics.HeatmapFilter
}

// DashboardData - снимок панели аналитики: все карточки, график и прогноз
// посчитаны по одному и тому же отфильтрованному набору инцидентов
type DashboardData struct {
	Summary       analytics.Summary             `json:"summary"`
	TimeSeries    []analytics.TimeBucket        `json:"time_series"`
	Change        analytics.PercentChange       `json:"change"`
	PeakTimes     analytics.PeakTimeAnalysis    `json:"peak_times"`
	PeakDayName   string                        `json:"peak_day_name"`
	Forecast      *analytics.ForecastResult     `json:"forecast"` // null при нехватке данных
	TypeBreakdown map[string]analytics.TypeStat `json:"type_breakdown"`
	TypeColors    map[string]string             `json:"type_colors"`
}

// HeatmapData - точки и градиент под активный фильтр
type HeatmapData struct {
	Points   []analytics.HeatPoint `json:"points"`
	Gradient map[string]string     `json:"gradient"`
	Total    int                   `json:"total"`
}

// ExportResult - готовый к выгрузке отчет
type ExportResult struct {
	Data        []byte
	Filename    string
	ContentType string
}

// AnalyticsService определяет контракт аналитики для админской панели
type AnalyticsService interface {
	Dashboard(ctx context.Context, q DashboardQuery) (*DashboardData, error)
	Heatmap(ctx context.Context, q HeatmapQuery) (*HeatmapData, error)
	Export(ctx context.Context, format string, q DashboardQuery) (*ExportResult, error)
}

type analyticsService struct {
	repo   IncidentRepository
	logger *logrus.Logger
	cfg    *config.Config
	engine *analytics.Engine
}

func NewAnalyticsService(repo IncidentRepository, logger *logrus.Logger, cfg *config.Config) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		logger: logger,
		cfg:    cfg,
		engine: analytics.NewEngine(logger),
	}
}

// Dashboard собирает снимок панели. Снимок кэшируется в Redis с коротким
// TTL по ключу параметров; по истечении пересчитывается целиком с нуля -
// инкрементальных обновлений у движка нет намеренно.
func (s *analyticsService) Dashboard(ctx context.Context, q DashboardQuery) (*DashboardData, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "analytics",
		"method":      "Dashboard",
		"granularity": q.Granularity,
	})
	log.Info("Building analytics dashboard snapshot")

	cacheKey := dashboardCacheKey(q)
	if cached, err := s.repo.GetDashboardCache(ctx, cacheKey); err != nil {
		log.WithError(err).Warn("Failed to read dashboard cache, recomputing")
	} else if cached != nil {
		data := &DashboardData{}
		if err := json.Unmarshal(cached, data); err == nil {
			log.Debug("Dashboard served from cache")
			return data, nil
		}
		log.Warn("Failed to unmarshal cached dashboard snapshot, recomputing")
	}

	incidents, err := s.filteredIncidents(ctx, q.Range)
	if err != nil {
		log.WithError(err).Error("Failed to load incidents for dashboard")
		return nil, fmt.Errorf("service: could not build dashboard: %w", err)
	}

	series := s.engine.Aggregate(incidents, q.Granularity)
	series = s.engine.RollingAverage(series, s.cfg.RollingWindowSize)
	peaks := s.engine.PeakTimes(incidents)
	types := s.engine.Types(incidents)

	data := &DashboardData{
		Summary:       s.engine.Summarize(incidents),
		TimeSeries:    series,
		Change:        s.engine.ChangeVsPreviousPeriod(series),
		PeakTimes:     peaks,
		PeakDayName:   peaks.PeakDayName(),
		Forecast:      s.engine.Forecast(series),
		TypeBreakdown: s.engine.Breakdown(incidents),
		TypeColors:    analytics.TypeColors(types),
	}

	if payload, err := json.Marshal(data); err == nil {
		if err := s.repo.SetDashboardCache(ctx, cacheKey, payload, s.cfg.AnalyticsCacheTTL); err != nil {
			log.WithError(err).Warn("Failed to cache dashboard snapshot")
		}
	}

	log.WithField("total", data.Summary.Total).Info("Dashboard snapshot built successfully")
	return data, nil
}

// Heatmap строит точки тепловой карты и градиент под активный фильтр
func (s *analyticsService) Heatmap(ctx context.Context, q HeatmapQuery) (*HeatmapData, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "analytics",
		"method":  "Heatmap",
		"type":    q.Filter.Type,
		"status":  q.Filter.Status,
	})
	log.Info("Building heatmap point set")

	incidents, err := s.filteredIncidents(ctx, q.Range)
	if err != nil {
		log.WithError(err).Error("Failed to load incidents for heatmap")
		return nil, fmt.Errorf("service: could not build heatmap: %w", err)
	}

	points := s.engine.HeatPoints(incidents, q.Filter)
	types := s.engine.Types(incidents)

	log.WithField("points", len(points)).Info("Heatmap point set built successfully")
	return &HeatmapData{
		Points:   points,
		Gradient: s.engine.Gradient(q.Filter, types),
		Total:    len(points),
	}, nil
}

// Export сериализует текущий отфильтрованный набор и его агрегаты в один
// из четырех форматов. Дополнительных походов в хранилище, кроме общей
// выборки, не делается.
func (s *analyticsService) Export(ctx context.Context, format string, q DashboardQuery) (*ExportResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "analytics",
		"method":  "Export",
		"format":  format,
	})
	log.Info("Building analytics export")

	incidents, err := s.filteredIncidents(ctx, q.Range)
	if err != nil {
		log.WithError(err).Error("Failed to load incidents for export")
		return nil, fmt.Errorf("service: could not build export: %w", err)
	}

	series := s.engine.Aggregate(incidents, q.Granularity)
	series = s.engine.RollingAverage(series, s.cfg.RollingWindowSize)

	now := time.Now()
	bundle := export.Bundle{
		GeneratedAt: now,
		DateRange:   q.Range,
		Incidents:   incidents,
		Summary:     s.engine.Summarize(incidents),
		PeakTimes:   s.engine.PeakTimes(incidents),
		TypeStats:   s.engine.Breakdown(incidents),
		TimeSeries:  series,
	}

	result := &ExportResult{}
	switch format {
	case ExportFormatCSV:
		result.Data = export.CSV(bundle)
		result.Filename = export.CSVFilename(now)
		result.ContentType = "text/csv"
	case ExportFormatJSON:
		result.Data, err = export.JSON(bundle)
		result.Filename = export.JSONFilename(now)
		result.ContentType = "application/json"
	case ExportFormatSummary:
		result.Data = export.Summary(bundle)
		result.Filename = export.SummaryFilename(now)
		result.ContentType = "text/plain"
	case ExportFormatExcel:
		result.Data, err = export.Excel(bundle)
		result.Filename = export.ExcelFilename(now)
		result.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return nil, fmt.Errorf("service: unknown export format: %s", format)
	}
	if err != nil {
		log.WithError(err).Error("Failed to serialize export")
		return nil, fmt.Errorf("service: could not serialize export: %w", err)
	}

	log.WithField("filename", result.Filename).Info("Analytics export built successfully")
	return result, nil
}

// filteredIncidents выбирает весь набор и один раз применяет фильтр по датам.
// Все последующие стадии работают по одному и тому же срезу.
func (s *analyticsService) filteredIncidents(ctx context.Context, r analytics.DateRange) ([]*models.Incident, error) {
	incidents, err := s.repo.ListAllIncidents(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.FilterByDateRange(incidents, r), nil
}

func dashboardCacheKey(q DashboardQuery) string {
	start, end := "", ""
	if q.Range.Start != nil {
		start = q.Range.Start.UTC().Format(time.RFC3339)
	}
	if q.Range.End != nil {
		end = q.Range.End.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%s:%s:%s", q.Granularity, start, end)
}

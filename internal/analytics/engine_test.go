package analytics

import (
	"bytes"
	"testing"
	"time"

	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEngine создает движок с заглушенным логгером
func newTestEngine() *Engine {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return NewEngine(logger)
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func incidentAt(t *testing.T, created string, incidentType, status string) *models.Incident {
	t.Helper()
	return &models.Incident{
		IncidentType: incidentType,
		Status:       status,
		CreatedAt:    mustTime(t, created),
	}
}

func TestFilterByDateRange_NoBoundsIsIdentity(t *testing.T) {
	engine := newTestEngine()
	incidents := []*models.Incident{
		incidentAt(t, "2024-01-10T08:00:00Z", "flood", "pending"),
		incidentAt(t, "2024-02-15T12:00:00Z", "fire", "resolved"),
	}

	filtered := engine.FilterByDateRange(incidents, DateRange{})

	assert.Len(t, filtered, 2)
}

func TestFilterByDateRange_InclusiveBounds(t *testing.T) {
	engine := newTestEngine()
	start := mustTime(t, "2024-01-10T08:00:00Z")
	end := mustTime(t, "2024-01-20T08:00:00Z")
	incidents := []*models.Incident{
		incidentAt(t, "2024-01-09T23:59:59Z", "flood", "pending"), // до окна
		incidentAt(t, "2024-01-10T08:00:00Z", "flood", "pending"), // ровно на старте
		incidentAt(t, "2024-01-15T00:00:00Z", "fire", "pending"),  // внутри
		incidentAt(t, "2024-01-20T08:00:00Z", "fire", "pending"),  // ровно на конце
		incidentAt(t, "2024-01-20T08:00:01Z", "fire", "pending"),  // после окна
	}

	filtered := engine.FilterByDateRange(incidents, DateRange{Start: &start, End: &end})

	require.Len(t, filtered, 3)
	// Сужение окна никогда не увеличивает набор
	assert.LessOrEqual(t, len(filtered), len(incidents))
}

func TestFilterByDateRange_OnlyStart(t *testing.T) {
	engine := newTestEngine()
	start := mustTime(t, "2024-01-15T00:00:00Z")
	incidents := []*models.Incident{
		incidentAt(t, "2024-01-10T08:00:00Z", "flood", "pending"),
		incidentAt(t, "2024-01-20T08:00:00Z", "fire", "pending"),
	}

	filtered := engine.FilterByDateRange(incidents, DateRange{Start: &start})

	require.Len(t, filtered, 1)
	assert.Equal(t, "fire", filtered[0].IncidentType)
}

func TestSummarize_ResolvedVersusEverythingElse(t *testing.T) {
	engine := newTestEngine()
	incidents := []*models.Incident{
		incidentAt(t, "2024-01-10T08:00:00Z", "flood", "resolved"),
		incidentAt(t, "2024-01-11T08:00:00Z", "fire", "pending"),
		incidentAt(t, "2024-01-12T08:00:00Z", "fire", "verified"),
		incidentAt(t, "2024-01-13T08:00:00Z", "crime", "disputed"),
	}

	summary := engine.Summarize(incidents)

	// verified и disputed учитываются как pending - двухстороннее
	// разбиение сохранено намеренно
	assert.Equal(t, Summary{Total: 4, Resolved: 1, Pending: 3}, summary)
}

func TestBreakdown_Conservation(t *testing.T) {
	engine := newTestEngine()
	incidents := []*models.Incident{
		incidentAt(t, "2024-01-10T08:00:00Z", "flood", "resolved"),
		incidentAt(t, "2024-01-11T08:00:00Z", "flood", "pending"),
		incidentAt(t, "2024-01-12T08:00:00Z", "fire", "verified"),
		incidentAt(t, "2024-01-13T08:00:00Z", "fire", "disputed"),
		incidentAt(t, "2024-01-14T08:00:00Z", "crime", "resolved"),
	}

	stats := engine.Breakdown(incidents)

	require.Len(t, stats, 3)
	total := 0
	for incidentType, stat := range stats {
		assert.Equalf(t, stat.Total, stat.Resolved+stat.Pending, "тип %s нарушает инвариант", incidentType)
		total += stat.Total
	}
	assert.Equal(t, len(incidents), total)
	assert.Equal(t, TypeStat{Total: 2, Resolved: 1, Pending: 1}, stats["flood"])
	assert.Equal(t, TypeStat{Total: 2, Resolved: 0, Pending: 2}, stats["fire"])
}

func TestBreakdown_EmptyInput(t *testing.T) {
	engine := newTestEngine()

	stats := engine.Breakdown(nil)

	assert.Empty(t, stats)
}

func TestTypes_SortedAndUnique(t *testing.T) {
	engine := newTestEngine()
	incidents := []*models.Incident{
		incidentAt(t, "2024-01-10T08:00:00Z", "flood", "pending"),
		incidentAt(t, "2024-01-11T08:00:00Z", "accident", "pending"),
		incidentAt(t, "2024-01-12T08:00:00Z", "flood", "pending"),
	}

	types := engine.Types(incidents)

	assert.Equal(t, []string{"accident", "flood"}, types)
}

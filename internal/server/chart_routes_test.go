package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/mingshi/bazi-engine/internal/config"
	"github.com/mingshi/bazi-engine/internal/database"
	"github.com/mingshi/bazi-engine/internal/database/repositories"
	"github.com/mingshi/bazi-engine/internal/domain"
	"github.com/mingshi/bazi-engine/internal/events"
	"github.com/mingshi/bazi-engine/internal/modules/analysis"
	"github.com/mingshi/bazi-engine/internal/output"
	"github.com/mingshi/bazi-engine/internal/report"
	"github.com/mingshi/bazi-engine/internal/rules"
)

// stubReports replaces the Gemini client in handler tests
type stubReports struct {
	text      string
	err       error
	calls     int
	lastLevel report.Level
}

func (s *stubReports) Generate(ctx context.Context, analysis *domain.ChartAnalysis, level report.Level) (string, error) {
	s.calls++
	s.lastLevel = level
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func newTestServer(t *testing.T, reports ReportGenerator) *Server {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(database.Schema)
	require.NoError(t, err)

	rulesRepo := rules.NewRepository("", zerolog.Nop())
	tables, err := rulesRepo.Load()
	require.NoError(t, err)

	ev := events.NewManager(zerolog.Nop())
	svc := analysis.NewService(tables, analysis.Options{AnnualYears: 3}, ev, zerolog.Nop())

	cfg := &config.Config{
		Port:         8001,
		AnnualYears:  3,
		ReportDetail: "detailed",
		OutputDir:    t.TempDir(),
	}

	return New(Config{
		Port:    cfg.Port,
		DevMode: true,
		Log:     zerolog.Nop(),
		Cfg:     cfg,
		Service: svc,
		Charts:  repositories.NewChartRepository(db, zerolog.Nop()),
		Reports: reports,
		Writer:  output.NewWriter(cfg.OutputDir, zerolog.Nop()),
		Rules:   rulesRepo,
		Events:  ev,
	})
}

func createChart(t *testing.T, srv *Server) string {
	t.Helper()

	body := `{"name":"张三","gender":"male","year":1990,"month":1,"day":1,"hour":12}`
	req := httptest.NewRequest("POST", "/api/charts", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var created domain.ChartAnalysis
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	require.NotEmpty(t, created.ID)

	return created.ID
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "bazi-engine", response["service"])
}

func TestHandleSystemStatus(t *testing.T) {
	srv := newTestServer(t, nil)
	createChart(t, srv)

	req := httptest.NewRequest("GET", "/api/system/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "running", response["status"])
	assert.Equal(t, analysis.Version, response["version"])
	assert.NotEmpty(t, response["uptime"])
	assert.Equal(t, float64(1), response["charts"])

	categories := response["rules"].([]interface{})
	assert.Len(t, categories, 5)
}

func TestHandleCreateChart(t *testing.T) {
	srv := newTestServer(t, nil)

	body := `{"name":"张三","gender":"male","year":1990,"month":1,"day":1,"hour":12}`
	req := httptest.NewRequest("POST", "/api/charts", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var created domain.ChartAnalysis
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.GenderMale, created.Input.Gender)
	assert.Equal(t, "丙辰", created.Chart.Day.Label())
	assert.NotEmpty(t, created.Pattern.Name)
	assert.Len(t, created.Annual, 3)
	assert.Empty(t, created.Report)

	// The chart must be retrievable afterwards.
	req = httptest.NewRequest("GET", "/api/charts/"+created.ID, nil)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var stored domain.ChartAnalysis
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stored))
	assert.Equal(t, created.ID, stored.ID)
}

func TestHandleCreateChartInvalidInput(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		url  string
		body string
	}{
		{"malformed json", "/api/charts", `{"name":`},
		{"impossible date", "/api/charts", `{"gender":"male","year":1990,"month":2,"day":30,"hour":12}`},
		{"missing gender", "/api/charts", `{"year":1990,"month":1,"day":1,"hour":12}`},
		{"unknown report level", "/api/charts?report=verbose", `{"gender":"male","year":1990,"month":1,"day":1,"hour":12}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", tt.url, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandleListCharts(t *testing.T) {
	srv := newTestServer(t, nil)
	createChart(t, srv)

	req := httptest.NewRequest("GET", "/api/charts", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, float64(1), response["count"])

	charts := response["charts"].([]interface{})
	require.Len(t, charts, 1)
	summary := charts[0].(map[string]interface{})
	assert.Equal(t, "张三", summary["name"])
	assert.Equal(t, "1990-01-01", summary["birth_date"])
}

func TestHandleGetChartNotFound(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/api/charts/no-such-id", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "chart not found")
}

func TestHandleChartAnnual(t *testing.T) {
	srv := newTestServer(t, nil)
	id := createChart(t, srv)

	url := fmt.Sprintf("/api/charts/%s/annual?from=2030&years=2", id)

	req := httptest.NewRequest("GET", url, nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		ChartID string               `json:"chart_id"`
		From    int                  `json:"from"`
		Years   int                  `json:"years"`
		Cached  bool                 `json:"cached"`
		Annual  []domain.AnnualCycle `json:"annual"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, id, response.ChartID)
	assert.Equal(t, 2030, response.From)
	assert.False(t, response.Cached)
	require.Len(t, response.Annual, 2)
	assert.Equal(t, 2030, response.Annual[0].Year)
	assert.Equal(t, 2031, response.Annual[1].Year)

	// The second request for the same window is served from the cache.
	req = httptest.NewRequest("GET", url, nil)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.True(t, response.Cached)
	require.Len(t, response.Annual, 2)
	assert.Equal(t, 2030, response.Annual[0].Year)
}

func TestHandleChartAnnualValidation(t *testing.T) {
	srv := newTestServer(t, nil)
	id := createChart(t, srv)

	tests := []struct {
		name  string
		query string
	}{
		{"non-numeric from", "from=abc"},
		{"negative years", "years=-1"},
		{"years too large", "years=101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", fmt.Sprintf("/api/charts/%s/annual?%s", id, tt.query), nil)
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandleChartReport(t *testing.T) {
	stub := &stubReports{text: "综合分析：日主偏旺，宜从事木属性行业。"}
	srv := newTestServer(t, stub)
	id := createChart(t, srv)

	req := httptest.NewRequest("POST", "/api/charts/"+id+"/report", strings.NewReader(`{"detail_level":"simple"}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "simple", response["detail_level"])
	assert.Equal(t, stub.text, response["report"])
	assert.Equal(t, report.LevelSimple, stub.lastLevel)

	// The report text is stored with the chart.
	stored, err := srv.charts.Get(id)
	require.NoError(t, err)
	assert.Equal(t, stub.text, stored.Report)
}

func TestHandleChartReportDefaultLevel(t *testing.T) {
	stub := &stubReports{text: "示例报告。"}
	srv := newTestServer(t, stub)
	id := createChart(t, srv)

	req := httptest.NewRequest("POST", "/api/charts/"+id+"/report", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, report.LevelDetailed, stub.lastLevel)
}

func TestHandleChartReportFailure(t *testing.T) {
	stub := &stubReports{err: fmt.Errorf("gemini unavailable")}
	srv := newTestServer(t, stub)
	id := createChart(t, srv)

	req := httptest.NewRequest("POST", "/api/charts/"+id+"/report", strings.NewReader(`{"detail_level":"normal"}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)

	// The stored analysis keeps its empty report.
	stored, err := srv.charts.Get(id)
	require.NoError(t, err)
	assert.Empty(t, stored.Report)
}

func TestHandleChartReportUnconfigured(t *testing.T) {
	srv := newTestServer(t, nil)
	id := createChart(t, srv)

	req := httptest.NewRequest("POST", "/api/charts/"+id+"/report", strings.NewReader(`{"detail_level":"normal"}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleCreateChartWithReport(t *testing.T) {
	stub := &stubReports{text: "性格分析示例。"}
	srv := newTestServer(t, stub)

	body := `{"name":"李四","gender":"female","year":1994,"month":10,"day":18,"hour":8}`
	req := httptest.NewRequest("POST", "/api/charts?report=normal", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var created domain.ChartAnalysis
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.Equal(t, stub.text, created.Report)
	assert.Equal(t, report.LevelNormal, stub.lastLevel)
}

func TestHandleCreateChartReportDegradesOnFailure(t *testing.T) {
	stub := &stubReports{err: fmt.Errorf("gemini unavailable")}
	srv := newTestServer(t, stub)

	body := `{"name":"李四","gender":"female","year":1994,"month":10,"day":18,"hour":8}`
	req := httptest.NewRequest("POST", "/api/charts?report=normal", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	// The analysis itself still succeeds without report text.
	assert.Equal(t, http.StatusOK, w.Code)

	var created domain.ChartAnalysis
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Empty(t, created.Report)
}

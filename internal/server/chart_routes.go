package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mingshi/bazi-engine/internal/domain"
	"github.com/mingshi/bazi-engine/internal/events"
	"github.com/mingshi/bazi-engine/internal/report"
)

// setupChartRoutes configures chart module routes
func (s *Server) setupChartRoutes(r chi.Router) {
	r.Route("/charts", func(r chi.Router) {
		r.Post("/", s.handleCreateChart)
		r.Get("/", s.handleListCharts)
		r.Get("/{id}", s.handleGetChart)
		r.Get("/{id}/annual", s.handleChartAnnual)
		r.Post("/{id}/report", s.handleChartReport)
	})
}

// handleCreateChart computes a full analysis for the posted birth input,
// persists it and returns the result. An optional ?report=<level> query
// attaches generated report text when a generator is configured.
func (s *Server) handleCreateChart(w http.ResponseWriter, r *http.Request) {
	var input domain.BirthInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Accept the ASCII gender forms used by clients alongside the stored
	// Chinese values.
	if !input.Gender.Valid() {
		if gender, err := domain.ParseGender(string(input.Gender)); err == nil {
			input.Gender = gender
		}
	}

	var level report.Level
	if raw := r.URL.Query().Get("report"); raw != "" {
		parsed, err := report.ParseLevel(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid report level")
			return
		}
		level = parsed
	}

	result, err := s.service.Analyze(r.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDate) || errors.Is(err, domain.ErrInvalidGender) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error().Err(err).Msg("Analysis failed")
		s.writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	if level != "" {
		s.attachReport(r.Context(), result, level)
	}

	s.persist(result)

	s.writeJSON(w, http.StatusOK, result)
}

// handleListCharts handles chart summary listing
func (s *Server) handleListCharts(w http.ResponseWriter, r *http.Request) {
	limit, ok := s.queryInt(w, r, "limit", 0)
	if !ok {
		return
	}

	summaries, err := s.charts.List(limit)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list charts")
		s.writeError(w, http.StatusInternalServerError, "failed to list charts")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"charts": summaries,
		"count":  len(summaries),
	})
}

// handleGetChart returns a stored analysis by id
func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	stored, err := s.charts.Get(id)
	if err != nil {
		if errors.Is(err, domain.ErrChartNotFound) {
			s.writeError(w, http.StatusNotFound, "chart not found")
			return
		}
		s.log.Error().Err(err).Str("id", id).Msg("Failed to load chart")
		s.writeError(w, http.StatusInternalServerError, "failed to load chart")
		return
	}

	s.writeJSON(w, http.StatusOK, stored)
}

// handleChartAnnual serves year-scale projections for a stored chart.
// Cached evaluations answer the request when every requested year is
// present; otherwise the window is recomputed and the cache refreshed.
func (s *Server) handleChartAnnual(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	from, ok := s.queryInt(w, r, "from", 0)
	if !ok {
		return
	}
	years, ok := s.queryInt(w, r, "years", 0)
	if !ok {
		return
	}
	if years > 100 {
		s.writeError(w, http.StatusBadRequest, "years must be at most 100")
		return
	}

	if from < 1 {
		from = time.Now().Year()
	}
	if years < 1 {
		years = s.cfg.AnnualYears
	}

	stored, err := s.charts.Get(id)
	if err != nil {
		if errors.Is(err, domain.ErrChartNotFound) {
			s.writeError(w, http.StatusNotFound, "chart not found")
			return
		}
		s.log.Error().Err(err).Str("id", id).Msg("Failed to load chart")
		s.writeError(w, http.StatusInternalServerError, "failed to load chart")
		return
	}

	cycles, err := s.charts.AnnualFor(id, from, years)
	cached := err == nil && len(cycles) == years
	if !cached {
		cycles = s.service.Annual(&stored.Chart, stored.Favorable, from, years)
		if err := s.charts.SaveAnnual(id, cycles); err != nil {
			s.log.Warn().Err(err).Str("id", id).Msg("Failed to cache annual evaluations")
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"chart_id": id,
		"from":     from,
		"years":    years,
		"cached":   cached,
		"annual":   cycles,
	})
}

// handleChartReport generates report text for a stored chart and saves it.
// LLM failures answer 502 and leave the stored analysis untouched.
func (s *Server) handleChartReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		s.writeError(w, http.StatusServiceUnavailable, "report generation not configured")
		return
	}

	id := chi.URLParam(r, "id")

	var req struct {
		DetailLevel string `json:"detail_level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.DetailLevel == "" {
		req.DetailLevel = s.cfg.ReportDetail
	}

	level, err := report.ParseLevel(req.DetailLevel)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid detail level")
		return
	}

	stored, err := s.charts.Get(id)
	if err != nil {
		if errors.Is(err, domain.ErrChartNotFound) {
			s.writeError(w, http.StatusNotFound, "chart not found")
			return
		}
		s.log.Error().Err(err).Str("id", id).Msg("Failed to load chart")
		s.writeError(w, http.StatusInternalServerError, "failed to load chart")
		return
	}

	text, err := s.reports.Generate(r.Context(), stored, level)
	if err != nil {
		s.events.EmitTyped("server", &events.ReportFailedData{
			ChartID: id,
			Level:   string(level),
			Error:   err.Error(),
		})
		s.log.Error().Err(err).Str("id", id).Msg("Report generation failed")
		s.writeError(w, http.StatusBadGateway, "report generation failed")
		return
	}

	stored.Report = text
	if err := s.charts.Save(stored); err != nil {
		s.log.Warn().Err(err).Str("id", id).Msg("Failed to store report text")
	}

	s.events.EmitTyped("server", &events.ReportGeneratedData{
		ChartID: id,
		Level:   string(level),
		Length:  len(text),
	})

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":           id,
		"detail_level": string(level),
		"report":       text,
	})
}

// attachReport adds generated report text to a fresh result. Failures leave
// the result valid with an empty report.
func (s *Server) attachReport(ctx context.Context, result *domain.ChartAnalysis, level report.Level) {
	if s.reports == nil {
		s.log.Warn().Msg("Report requested but no generator configured")
		return
	}

	text, err := s.reports.Generate(ctx, result, level)
	if err != nil {
		s.events.EmitTyped("server", &events.ReportFailedData{
			ChartID: result.ID,
			Level:   string(level),
			Error:   err.Error(),
		})
		s.log.Warn().Err(err).Str("id", result.ID).Msg("Report generation failed")
		return
	}

	result.Report = text
	s.events.EmitTyped("server", &events.ReportGeneratedData{
		ChartID: result.ID,
		Level:   string(level),
		Length:  len(text),
	})
}

// persist stores the result in sqlite and on disk. Failures are reported
// but never invalidate the computed result.
func (s *Server) persist(result *domain.ChartAnalysis) {
	if s.charts != nil {
		if err := s.charts.Save(result); err != nil {
			s.events.EmitError("server", err, map[string]interface{}{"id": result.ID})
			s.log.Error().Err(err).Str("id", result.ID).Msg("Failed to store chart")
		} else {
			s.events.Emit(events.ChartStored, "server", map[string]interface{}{"id": result.ID})
		}
	}

	if s.writer != nil {
		path, err := s.writer.Write(result)
		if err != nil {
			s.events.EmitError("server", err, map[string]interface{}{"id": result.ID})
			s.log.Error().Err(err).Str("id", result.ID).Msg("Failed to write result file")
		} else {
			s.events.EmitTyped("server", &events.ResultPersistedData{
				ChartID: result.ID,
				Path:    path,
			})
		}
	}
}

// queryInt parses an optional non-negative integer query parameter. The
// error response has already been written when ok is false.
func (s *Server) queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
		return 0, false
	}

	return parsed, true
}

package scheduler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mingshi/bazi-engine/internal/database/repositories"
	"github.com/mingshi/bazi-engine/internal/events"
	"github.com/mingshi/bazi-engine/internal/modules/analysis"
)

// AnnualRefreshJob recomputes the current-year evaluation for every stored
// chart. Runs at the turn of the civil year and on demand at startup.
type AnnualRefreshJob struct {
	log     zerolog.Logger
	repo    *repositories.ChartRepository
	service *analysis.Service
	events  *events.Manager
	now     func() time.Time
}

// AnnualRefreshConfig holds configuration for the annual refresh job
type AnnualRefreshConfig struct {
	Log     zerolog.Logger
	Repo    *repositories.ChartRepository
	Service *analysis.Service
	Events  *events.Manager
}

// NewAnnualRefreshJob creates a new annual refresh job
func NewAnnualRefreshJob(cfg AnnualRefreshConfig) *AnnualRefreshJob {
	return &AnnualRefreshJob{
		log:     cfg.Log.With().Str("job", "annual_refresh").Logger(),
		repo:    cfg.Repo,
		service: cfg.Service,
		events:  cfg.Events,
		now:     time.Now,
	}
}

// Name returns the job name
func (j *AnnualRefreshJob) Name() string {
	return "annual_refresh"
}

// Run executes the refresh
func (j *AnnualRefreshJob) Run() error {
	year := j.now().Year()

	ids, err := j.repo.IDs()
	if err != nil {
		return fmt.Errorf("failed to list charts: %w", err)
	}

	if len(ids) == 0 {
		j.log.Debug().Msg("No stored charts, nothing to refresh")
		return nil
	}

	j.log.Info().Int("charts", len(ids)).Int("year", year).Msg("Starting annual refresh")
	startTime := time.Now()

	refreshed := 0
	failed := 0

	for _, id := range ids {
		// Per-chart failures are non-critical, the rest still refresh.
		if err := j.refreshChart(id, year); err != nil {
			failed++
			j.log.Warn().Err(err).Str("id", id).Msg("Chart refresh failed")
			continue
		}
		refreshed++
	}

	j.events.EmitTyped("scheduler", &events.AnnualRefreshedData{
		Year:      year,
		Refreshed: refreshed,
		Failed:    failed,
	})

	j.log.Info().
		Int("refreshed", refreshed).
		Int("failed", failed).
		Dur("duration", time.Since(startTime)).
		Msg("Annual refresh completed")

	if failed > 0 && refreshed == 0 {
		return fmt.Errorf("annual refresh failed for all %d charts", failed)
	}

	return nil
}

// refreshChart recomputes and stores one chart's evaluation for the year
func (j *AnnualRefreshJob) refreshChart(id string, year int) error {
	stored, err := j.repo.Get(id)
	if err != nil {
		return err
	}

	cycles := j.service.Annual(&stored.Chart, stored.Favorable, year, 1)
	return j.repo.SaveAnnual(id, cycles)
}

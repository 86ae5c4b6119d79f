// Package app wires configuration, storage, the analysis pipeline and the
// report client into one bootstrap shared by the server binary and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mingshi/bazi-engine/internal/config"
	"github.com/mingshi/bazi-engine/internal/database"
	"github.com/mingshi/bazi-engine/internal/database/repositories"
	"github.com/mingshi/bazi-engine/internal/events"
	"github.com/mingshi/bazi-engine/internal/modules/analysis"
	"github.com/mingshi/bazi-engine/internal/output"
	"github.com/mingshi/bazi-engine/internal/report"
	"github.com/mingshi/bazi-engine/internal/rules"
	"github.com/mingshi/bazi-engine/internal/scheduler"
	"github.com/mingshi/bazi-engine/internal/server"
	"github.com/mingshi/bazi-engine/pkg/logger"
)

// App holds the assembled application components. DB and Charts stay nil
// until OpenStore runs; Reports stays nil without Gemini credentials.
type App struct {
	Log     zerolog.Logger
	Cfg     *config.Config
	Rules   *rules.Repository
	Events  *events.Manager
	Service *analysis.Service
	Writer  *output.Writer
	Reports *report.Generator

	DB     *database.DB
	Charts *repositories.ChartRepository
}

// New loads configuration and assembles the computation components. The
// given logger reports load failures; the returned App carries a logger
// configured from the loaded settings.
func New(bootLog zerolog.Logger) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		bootLog.Error().Err(err).Msg("Failed to load configuration")
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	return build(cfg, log)
}

// NewWithLogger assembles the components around the given logger, for
// callers that manage their own log output.
func NewWithLogger(log zerolog.Logger) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return build(cfg, log)
}

func build(cfg *config.Config, log zerolog.Logger) (*App, error) {
	rulesRepo := rules.NewRepository(cfg.RulesDir, log)
	tables, err := rulesRepo.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	ev := events.NewManager(log)

	service := analysis.NewService(tables, analysis.Options{
		DefaultLongitude: cfg.DefaultLongitude,
		DefaultLatitude:  cfg.DefaultLatitude,
		AlmanacDir:       cfg.AlmanacDir,
		AnnualYears:      cfg.AnnualYears,
	}, ev, log)

	a := &App{
		Log:     log,
		Cfg:     cfg,
		Rules:   rulesRepo,
		Events:  ev,
		Service: service,
		Writer:  output.NewWriter(cfg.OutputDir, log),
	}

	generator, err := report.NewGenerator(context.Background(), report.Config{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
	}, log)
	switch {
	case err == nil:
		a.Reports = generator
	case errors.Is(err, report.ErrNoCredentials):
		log.Info().Msg("Gemini credentials absent, report generation disabled")
	default:
		log.Warn().Err(err).Msg("Report generator unavailable")
	}

	return a, nil
}

// OpenStore opens the chart store and runs migrations.
func (a *App) OpenStore() error {
	db, err := database.New(a.Cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	a.DB = db
	a.Charts = repositories.NewChartRepository(db.Conn(), a.Log)
	return nil
}

// Serve runs the HTTP server and background jobs until an interrupt
// signal arrives, then shuts down gracefully.
func (a *App) Serve() error {
	if err := a.OpenStore(); err != nil {
		return err
	}
	defer a.DB.Close()

	sched := scheduler.New(a.Events, a.Log)

	refresh := scheduler.NewAnnualRefreshJob(scheduler.AnnualRefreshConfig{
		Log:     a.Log,
		Repo:    a.Charts,
		Service: a.Service,
		Events:  a.Events,
	})
	// 00:30 on January 1st, once the new civil year has begun.
	if err := sched.AddJob("0 30 0 1 1 *", refresh); err != nil {
		return fmt.Errorf("failed to register annual refresh job: %w", err)
	}

	health := scheduler.NewHealthCheckJob(scheduler.HealthCheckConfig{
		Log:        a.Log,
		ChartsDB:   a.DB,
		AlmanacDir: a.Cfg.AlmanacDir,
	})
	if err := sched.AddJob("0 0 */6 * * *", health); err != nil {
		return fmt.Errorf("failed to register health check job: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	// Warm the current-year cache for charts stored by earlier runs.
	go func() {
		if err := sched.RunNow(refresh); err != nil {
			a.Log.Warn().Err(err).Msg("Startup annual refresh failed")
		}
	}()

	srvCfg := server.Config{
		Port:      a.Cfg.Port,
		DevMode:   a.Cfg.DevMode,
		Log:       a.Log,
		Cfg:       a.Cfg,
		Service:   a.Service,
		Charts:    a.Charts,
		Writer:    a.Writer,
		Rules:     a.Rules,
		Scheduler: sched,
		Events:    a.Events,
	}
	if a.Reports != nil {
		srvCfg.Reports = a.Reports
	}
	srv := server.New(srvCfg)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	a.Log.Info().Int("port", a.Cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	a.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		a.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	a.Log.Info().Msg("Server stopped")
	return nil
}

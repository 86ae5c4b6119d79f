package scheduler

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mingshi/bazi-engine/internal/database"
)

// HealthCheckJob performs database integrity checks
// Runs every 6 hours to ensure storage health
type HealthCheckJob struct {
	log        zerolog.Logger
	chartsDB   *database.DB
	almanacDir string
}

// HealthCheckConfig holds configuration for health check job
type HealthCheckConfig struct {
	Log        zerolog.Logger
	ChartsDB   *database.DB
	AlmanacDir string
}

// NewHealthCheckJob creates a new health check job
func NewHealthCheckJob(cfg HealthCheckConfig) *HealthCheckJob {
	return &HealthCheckJob{
		log:        cfg.Log.With().Str("job", "health_check").Logger(),
		chartsDB:   cfg.ChartsDB,
		almanacDir: cfg.AlmanacDir,
	}
}

// Name returns the job name
func (j *HealthCheckJob) Name() string {
	return "health_check"
}

// Run executes the health check
func (j *HealthCheckJob) Run() error {
	j.log.Info().Msg("Starting database health check")
	startTime := time.Now()

	// Step 1: Check charts database integrity
	if j.chartsDB != nil {
		if err := j.checkDatabaseIntegrity("charts", j.chartsDB.Conn()); err != nil {
			// Chart store corruption is critical, no auto-recovery possible
			j.log.Error().Err(err).Msg("Charts database integrity check failed")
			return fmt.Errorf("charts database is corrupted: %w", err)
		}
		j.log.Debug().Str("database", "charts").Msg("Database integrity OK")
	}

	// Step 2: Check almanac term tables
	j.checkAlmanacFiles()

	// Step 3: Check WAL checkpoint
	j.checkWALCheckpoint()

	duration := time.Since(startTime)
	j.log.Info().
		Dur("duration", duration).
		Msg("Health check completed successfully")

	return nil
}

// checkAlmanacFiles verifies integrity of the per-year almanac databases.
// Almanac files are curated source data, so corruption is reported but
// never auto-recovered. Computation falls back to the formula tables.
func (j *HealthCheckJob) checkAlmanacFiles() {
	if j.almanacDir == "" {
		j.log.Debug().Msg("Almanac directory not configured, skipping almanac checks")
		return
	}

	entries, err := os.ReadDir(j.almanacDir)
	if err != nil {
		if os.IsNotExist(err) {
			j.log.Debug().Msg("Almanac directory does not exist, skipping")
			return
		}
		j.log.Error().Err(err).Msg("Failed to read almanac directory")
		return
	}

	corruptedCount := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}

		dbPath := filepath.Join(j.almanacDir, entry.Name())
		name := strings.TrimSuffix(entry.Name(), ".db")

		db, err := sql.Open("sqlite3", dbPath)
		if err != nil {
			j.log.Error().Err(err).Str("almanac", name).Msg("Failed to open almanac database")
			continue
		}

		if err := j.checkDatabaseIntegrity(name, db); err != nil {
			corruptedCount++
			j.log.Warn().
				Err(err).
				Str("almanac", name).
				Str("path", dbPath).
				Msg("Almanac database corrupted, term lookups will use formula fallback")
		}

		db.Close()
	}

	if corruptedCount > 0 {
		j.log.Warn().
			Int("corrupted", corruptedCount).
			Msg("Almanac corruption detected, replace the affected files")
	}
}

// checkDatabaseIntegrity runs SQLite's PRAGMA integrity_check
func (j *HealthCheckJob) checkDatabaseIntegrity(name string, db *sql.DB) error {
	var result string
	err := db.QueryRow("PRAGMA integrity_check").Scan(&result)
	if err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}

	if result != "ok" {
		return fmt.Errorf("integrity check returned: %s", result)
	}

	return nil
}

// checkWALCheckpoint monitors the charts database WAL checkpoint status
func (j *HealthCheckJob) checkWALCheckpoint() {
	if j.chartsDB == nil {
		return
	}

	var mode, busy, log, checkpointed int
	err := j.chartsDB.Conn().QueryRow("PRAGMA wal_checkpoint(PASSIVE)").Scan(&mode, &busy, &log, &checkpointed)
	if err != nil {
		j.log.Warn().
			Err(err).
			Msg("Failed to check WAL checkpoint")
		return
	}

	// Log if WAL is growing large
	if log > 1000 {
		j.log.Warn().
			Int("wal_frames", log).
			Int("checkpointed", checkpointed).
			Msg("WAL file is large, checkpoint may be needed")
	} else {
		j.log.Debug().
			Int("wal_frames", log).
			Msg("WAL checkpoint status OK")
	}
}

package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mingshi/bazi-engine/internal/domain"
)

// timeLayout is the stored timestamp format.
const timeLayout = "2006-01-02 15:04:05"

// ChartSummary is the listing row for a stored chart.
type ChartSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Gender    string    `json:"gender"`
	BirthDate string    `json:"birth_date"`
	Pattern   string    `json:"pattern"`
	CreatedAt time.Time `json:"created_at"`
}

// ChartRepository persists full analyses and their annual evaluations.
type ChartRepository struct {
	*BaseRepository
}

// NewChartRepository creates a new chart repository
func NewChartRepository(db *sql.DB, log zerolog.Logger) *ChartRepository {
	return &ChartRepository{
		BaseRepository: NewBase(db, log.With().Str("repo", "charts").Logger()),
	}
}

// Save upserts one analysis. A re-save keeps the original created_at and the
// chart's cached annual evaluations.
func (r *ChartRepository) Save(analysis *domain.ChartAnalysis) error {
	blob, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	now := time.Now().Format(timeLayout)

	query := `
		INSERT INTO charts (
			id, name, gender, birth_year, birth_month, birth_day,
			birth_hour, birth_minute, pattern, analysis_json, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			pattern = excluded.pattern,
			analysis_json = excluded.analysis_json,
			updated_at = excluded.updated_at
	`

	_, err = r.DB().Exec(
		query,
		analysis.ID,
		analysis.Input.Name,
		string(analysis.Input.Gender),
		analysis.Input.Year,
		analysis.Input.Month,
		analysis.Input.Day,
		analysis.Input.Hour,
		analysis.Input.Minute,
		analysis.Pattern.Name,
		string(blob),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}

	r.log.Debug().Str("id", analysis.ID).Msg("Chart saved")
	return nil
}

// Get retrieves a stored analysis by ID. A missing row yields
// domain.ErrChartNotFound.
func (r *ChartRepository) Get(id string) (*domain.ChartAnalysis, error) {
	var blob string
	err := r.DB().QueryRow(
		"SELECT analysis_json FROM charts WHERE id = ?", id,
	).Scan(&blob)

	if err == sql.ErrNoRows {
		return nil, domain.ErrChartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chart: %w", err)
	}

	var analysis domain.ChartAnalysis
	if err := json.Unmarshal([]byte(blob), &analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored analysis: %w", err)
	}

	return &analysis, nil
}

// List returns chart summaries, most recent first.
func (r *ChartRepository) List(limit int) ([]ChartSummary, error) {
	query := `
		SELECT id, name, gender, birth_year, birth_month, birth_day, pattern, created_at
		FROM charts
		ORDER BY created_at DESC, id
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.DB().Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list charts: %w", err)
	}
	defer rows.Close()

	var summaries []ChartSummary
	for rows.Next() {
		var s ChartSummary
		var year, month, day int
		var pattern sql.NullString
		var createdAt string

		if err := rows.Scan(&s.ID, &s.Name, &s.Gender, &year, &month, &day, &pattern, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan chart summary: %w", err)
		}

		s.BirthDate = fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		s.Pattern = pattern.String
		s.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating charts: %w", err)
	}

	return summaries, nil
}

// Count returns the number of stored charts.
func (r *ChartRepository) Count() (int, error) {
	var count int
	if err := r.DB().QueryRow("SELECT COUNT(*) FROM charts").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count charts: %w", err)
	}
	return count, nil
}

// IDs returns every stored chart ID, oldest first.
func (r *ChartRepository) IDs() ([]string, error) {
	rows, err := r.DB().Query("SELECT id FROM charts ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list chart IDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chart ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chart IDs: %w", err)
	}

	return ids, nil
}

// SaveAnnual upserts the annual evaluations of one chart, keyed by year.
func (r *ChartRepository) SaveAnnual(chartID string, cycles []domain.AnnualCycle) error {
	if len(cycles) == 0 {
		return nil
	}

	query := `
		INSERT INTO annual_evaluations (chart_id, year, verdict, score, detail_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(chart_id, year) DO UPDATE SET
			verdict = excluded.verdict,
			score = excluded.score,
			detail_json = excluded.detail_json
	`

	now := time.Now().Format(timeLayout)

	tx, err := r.DB().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin annual save: %w", err)
	}
	defer tx.Rollback()

	for _, cycle := range cycles {
		detail, err := json.Marshal(cycle)
		if err != nil {
			return fmt.Errorf("failed to marshal annual cycle: %w", err)
		}
		if _, err := tx.Exec(query, chartID, cycle.Year, cycle.Verdict, cycle.VerdictScore, string(detail), now); err != nil {
			return fmt.Errorf("failed to save annual evaluation for %d: %w", cycle.Year, err)
		}
	}

	return tx.Commit()
}

// AnnualFor returns the cached evaluations covering [from, from+years), in
// year order. Callers check the returned length to detect a partial cache.
func (r *ChartRepository) AnnualFor(chartID string, from, years int) ([]domain.AnnualCycle, error) {
	rows, err := r.DB().Query(`
		SELECT detail_json
		FROM annual_evaluations
		WHERE chart_id = ? AND year >= ? AND year < ?
		ORDER BY year ASC
	`, chartID, from, from+years)
	if err != nil {
		return nil, fmt.Errorf("failed to query annual evaluations: %w", err)
	}
	defer rows.Close()

	var cycles []domain.AnnualCycle
	for rows.Next() {
		var detail string
		if err := rows.Scan(&detail); err != nil {
			return nil, fmt.Errorf("failed to scan annual evaluation: %w", err)
		}

		var cycle domain.AnnualCycle
		if err := json.Unmarshal([]byte(detail), &cycle); err != nil {
			return nil, fmt.Errorf("failed to unmarshal annual evaluation: %w", err)
		}
		cycles = append(cycles, cycle)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating annual evaluations: %w", err)
	}

	return cycles, nil
}

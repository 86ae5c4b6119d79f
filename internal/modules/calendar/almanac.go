package calendar

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog"
)

// Almanac provides access to precomputed solar-term tables stored as one
// SQLite file per year.
type Almanac struct {
	almanacDir string
	log        zerolog.Logger
}

// NewAlmanac creates a new almanac accessor
func NewAlmanac(almanacDir string, log zerolog.Logger) *Almanac {
	return &Almanac{
		almanacDir: almanacDir,
		log:        log.With().Str("component", "almanac").Logger(),
	}
}

// TermsForYear fetches the principal term boundaries recorded for a year.
func (a *Almanac) TermsForYear(year int) ([]TermDate, error) {
	db, err := a.openYearDB(year)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := `
		SELECT name, at
		FROM solar_terms
		ORDER BY at ASC
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query solar terms: %w", err)
	}
	defer rows.Close()

	var terms []TermDate
	for rows.Next() {
		var name, at string
		if err := rows.Scan(&name, &at); err != nil {
			return nil, fmt.Errorf("failed to scan solar term: %w", err)
		}

		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return nil, fmt.Errorf("failed to parse term time %q: %w", at, err)
		}

		terms = append(terms, TermDate{Name: name, At: parsed})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating solar terms: %w", err)
	}

	return terms, nil
}

// openYearDB opens the almanac database for a year
func (a *Almanac) openYearDB(year int) (*sql.DB, error) {
	dbPath := filepath.Join(a.almanacDir, fmt.Sprintf("terms_%d.db", year))

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open almanac database for %d: %w", year, err)
	}

	// Verify database is accessible
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping almanac database for %d: %w", year, err)
	}

	return db, nil
}

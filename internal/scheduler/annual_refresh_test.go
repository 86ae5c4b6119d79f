package scheduler

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/mingshi/bazi-engine/internal/database"
	"github.com/mingshi/bazi-engine/internal/database/repositories"
	"github.com/mingshi/bazi-engine/internal/domain"
	"github.com/mingshi/bazi-engine/internal/events"
	"github.com/mingshi/bazi-engine/internal/modules/analysis"
	"github.com/mingshi/bazi-engine/internal/rules"
)

func newRefreshFixture(t *testing.T) (*AnnualRefreshJob, *repositories.ChartRepository, *analysis.Service) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(database.Schema)
	require.NoError(t, err)

	repo := repositories.NewChartRepository(db, zerolog.Nop())

	tables, err := rules.NewRepository("", zerolog.Nop()).Load()
	require.NoError(t, err)

	svc := analysis.NewService(tables, analysis.Options{AnnualYears: 3}, events.NewManager(zerolog.Nop()), zerolog.Nop())

	job := NewAnnualRefreshJob(AnnualRefreshConfig{
		Log:     zerolog.Nop(),
		Repo:    repo,
		Service: svc,
		Events:  events.NewManager(zerolog.Nop()),
	})
	job.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	return job, repo, svc
}

func TestAnnualRefreshEmptyStore(t *testing.T) {
	job, _, _ := newRefreshFixture(t)

	require.NoError(t, job.Run())
}

func TestAnnualRefreshStoresCurrentYear(t *testing.T) {
	job, repo, svc := newRefreshFixture(t)

	result, err := svc.Analyze(context.Background(), domain.BirthInput{
		Name:   "张三",
		Gender: domain.GenderMale,
		Year:   1990, Month: 1, Day: 1, Hour: 12,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(result))

	// Seed a stale row so the run has to overwrite it.
	require.NoError(t, repo.SaveAnnual(result.ID, []domain.AnnualCycle{
		{Year: 2026, Pillar: domain.NewPillar(2, 6), VerdictScore: -99, Verdict: "凶"},
	}))

	require.NoError(t, job.Run())

	cycles, err := repo.AnnualFor(result.ID, 2026, 1)
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, 2026, cycles[0].Year)
	assert.Equal(t, "丙午", cycles[0].Pillar.Label())
	assert.NotEqual(t, float64(-99), cycles[0].VerdictScore)
}

func TestHealthCheckWithoutStores(t *testing.T) {
	job := NewHealthCheckJob(HealthCheckConfig{Log: zerolog.Nop()})

	require.NoError(t, job.Run())
}

func TestHealthCheckIntactDatabase(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "charts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	job := NewHealthCheckJob(HealthCheckConfig{Log: zerolog.Nop(), ChartsDB: db})

	require.NoError(t, job.Run())
}

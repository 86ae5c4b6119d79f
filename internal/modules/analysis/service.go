// Package analysis composes the chart pipeline into a single entry operation.
package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mingshi/bazi-engine/internal/domain"
	"github.com/mingshi/bazi-engine/internal/events"
	"github.com/mingshi/bazi-engine/internal/modules/annual"
	"github.com/mingshi/bazi-engine/internal/modules/calendar"
	"github.com/mingshi/bazi-engine/internal/modules/cycles"
	"github.com/mingshi/bazi-engine/internal/modules/elements"
	"github.com/mingshi/bazi-engine/internal/modules/insight"
	"github.com/mingshi/bazi-engine/internal/modules/pattern"
	"github.com/mingshi/bazi-engine/internal/modules/spirits"
	"github.com/mingshi/bazi-engine/internal/modules/tengods"
	"github.com/mingshi/bazi-engine/internal/rules"
)

// Version stamps every finished analysis.
const Version = "1.0.0"

// defaultAnnualYears is the projection window when none is configured.
const defaultAnnualYears = 10

// Options holds the tunable pipeline settings.
type Options struct {
	DefaultLongitude float64
	DefaultLatitude  float64
	AlmanacDir       string
	AnnualYears      int
}

// Service runs the full chart pipeline. Every stage is pure over its inputs
// and the shared rule tables are read-only, so one Service is safe for
// concurrent use.
type Service struct {
	calendar    *calendar.Engine
	elements    *elements.Analyzer
	tengods     *tengods.Classifier
	pattern     *pattern.Classifier
	spirits     *spirits.Engine
	cycles      *cycles.Scheduler
	annual      *annual.Evaluator
	insight     *insight.Analyzer
	events      *events.Manager
	annualYears int
	now         func() time.Time
	log         zerolog.Logger
}

// NewService wires the pipeline stages from one loaded rule set.
func NewService(tables *rules.Tables, opts Options, ev *events.Manager, log zerolog.Logger) *Service {
	cal := calendar.NewEngine(calendar.Options{
		DefaultLongitude: opts.DefaultLongitude,
		DefaultLatitude:  opts.DefaultLatitude,
		AlmanacDir:       opts.AlmanacDir,
	}, log)

	years := opts.AnnualYears
	if years <= 0 {
		years = defaultAnnualYears
	}

	return &Service{
		calendar:    cal,
		elements:    elements.NewAnalyzer(log),
		tengods:     tengods.NewClassifier(log),
		pattern:     pattern.NewClassifier(log),
		spirits:     spirits.NewEngine(tables.Markers, log),
		cycles:      cycles.NewScheduler(cal, log),
		annual:      annual.NewEvaluator(log),
		insight:     insight.NewAnalyzer(tables, log),
		events:      ev,
		annualYears: years,
		now:         time.Now,
		log:         log.With().Str("service", "analysis").Logger(),
	}
}

// Analyze runs every stage for one birth input and assembles the complete
// result. Apart from the ID and metadata stamp, the output is deterministic
// for identical input and rule tables. Input errors fail immediately with no
// partial result; degraded data inside a stage falls back to that stage's
// documented default.
func (s *Service) Analyze(ctx context.Context, input domain.BirthInput) (*domain.ChartAnalysis, error) {
	start := s.now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		s.events.EmitError("analysis", err, map[string]interface{}{"name": input.Name})
		return nil, err
	}

	chart, err := s.calendar.Compute(input)
	if err != nil {
		s.events.EmitError("analysis", err, map[string]interface{}{"name": input.Name})
		return nil, err
	}
	s.events.EmitTyped("analysis", &events.ChartComputedData{
		Pillars:   pillarLabels(chart),
		DayMaster: string(chart.DayMaster),
	})

	profile := s.elements.Profile(chart)
	strength := s.elements.AssessStrength(chart)
	favorable := s.elements.DeriveFavorable(chart.DayMaster, strength.Status)

	godReport := s.tengods.Analyze(chart)
	patternResult := s.pattern.Classify(chart, profile, strength)
	markers := s.spirits.Scan(chart)
	cycleSummary := s.cycles.Schedule(input, chart, favorable)
	annualCycles := s.annual.EvaluateRange(start.Year(), s.annualYears, chart, favorable)

	insightResult := s.insight.Analyze(insight.Inputs{
		Chart:     chart,
		Profile:   profile,
		Strength:  strength,
		Favorable: favorable,
		TenGods:   godReport,
		Pattern:   patternResult,
		Markers:   markers,
	})

	result := &domain.ChartAnalysis{
		ID:        uuid.NewString(),
		Input:     input,
		Chart:     *chart,
		Elements:  profile,
		Strength:  strength,
		Favorable: favorable,
		TenGods:   godReport,
		Pattern:   patternResult,
		Markers:   markers,
		Cycles:    cycleSummary,
		Annual:    annualCycles,
		Insight:   insightResult,
		Metadata: domain.AnalysisMetadata{
			Version:     Version,
			GeneratedAt: start,
			DurationMS:  s.now().Sub(start).Milliseconds(),
		},
	}

	s.events.EmitTyped("analysis", &events.AnalysisCompletedData{
		ChartID:    result.ID,
		Pattern:    patternResult.Name,
		Strength:   string(strength.Status),
		DurationMS: result.Metadata.DurationMS,
	})

	s.log.Info().
		Str("id", result.ID).
		Str("day_master", string(chart.DayMaster)).
		Str("pattern", patternResult.Name).
		Int64("duration_ms", result.Metadata.DurationMS).
		Msg("Analysis completed")

	return result, nil
}

// Annual projects year-scale evaluations for an already computed chart.
// Callers pass from=0 to start at the current year and years<=0 for the
// configured window.
func (s *Service) Annual(chart *domain.Chart, favorable domain.FavorableElements, from, years int) []domain.AnnualCycle {
	if from <= 0 {
		from = s.now().Year()
	}
	if years <= 0 {
		years = s.annualYears
	}
	return s.annual.EvaluateRange(from, years, chart, favorable)
}

func pillarLabels(chart *domain.Chart) []string {
	labels := make([]string, 0, 4)
	for _, pp := range chart.Positioned() {
		labels = append(labels, pp.Pillar.Label())
	}
	return labels
}

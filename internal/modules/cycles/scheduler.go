// Package cycles arranges the decade-scale cycles of a chart: direction from
// year-stem polarity and gender, start age from the distance to the governing
// solar-term boundary, then ten pillars stepped off the month pillar.
package cycles

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mingshi/bazi-engine/internal/domain"
	"github.com/mingshi/bazi-engine/internal/modules/calendar"
	"github.com/mingshi/bazi-engine/pkg/ganzhi"
)

const (
	// cycleCount is the number of decade steps arranged per chart.
	cycleCount = 10
	// cycleSpan is the years covered by one step.
	cycleSpan = 10
	// daysPerYear converts boundary-distance days to start-age years.
	daysPerYear = 3
	// monthsPerDay converts leftover days to start-age months.
	monthsPerDay = 4
	// fallbackDays is the start-date offset when no boundary is found.
	fallbackDays = 365
)

// Step evaluations.
const (
	evalFavorable   = "吉"
	evalUnfavorable = "凶"
	evalNeutral     = "平"
)

// TermSource yields the principal term boundaries of a year in calendar
// order.
type TermSource interface {
	TermDates(year int) []calendar.TermDate
}

// Scheduler arranges decade cycles.
type Scheduler struct {
	terms TermSource
	log   zerolog.Logger
}

// NewScheduler creates a new cycle scheduler
func NewScheduler(terms TermSource, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		terms: terms,
		log:   log.With().Str("module", "cycles").Logger(),
	}
}

// Schedule arranges the ten decade cycles for a chart and evaluates each
// against the favorable element sets. A missed boundary lookup is not fatal;
// the start age falls back to one year.
func (s *Scheduler) Schedule(input domain.BirthInput, chart *domain.Chart, favorable domain.FavorableElements) domain.CycleSummary {
	birth := time.Date(input.Year, time.Month(input.Month), input.Day,
		input.Hour, input.Minute, 0, 0, time.UTC)

	direction := Direction(chart.Year.Stem, input.Gender)

	summary := domain.CycleSummary{Direction: direction}
	boundary, found := s.governingBoundary(birth, direction)
	if found {
		days := boundaryDays(birth, boundary, direction)
		summary.StartAge = days / daysPerYear
		summary.StartMonths = (days % daysPerYear) * monthsPerDay
		summary.StartDate = birth.AddDate(0, 0, days).Format("2006-01-02")
	} else {
		s.log.Warn().Int("year", input.Year).Str("direction", string(direction)).
			Msg("No governing term boundary, starting cycles at one year")
		summary.StartAge = 1
		summary.StartMonths = 0
		summary.StartDate = birth.AddDate(0, 0, fallbackDays).Format("2006-01-02")
	}

	summary.Cycles = s.arrange(chart, direction, summary.StartAge, input.Year, favorable)
	return summary
}

// Direction is forward for yang-year males and yin-year females, reverse
// otherwise.
func Direction(yearStem ganzhi.Stem, gender domain.Gender) domain.CycleDirection {
	yang := yearStem.Polarity() == ganzhi.Yang
	male := gender == domain.GenderMale
	if yang == male {
		return domain.DirectionForward
	}
	return domain.DirectionReverse
}

// governingBoundary returns the nearest principal term strictly after the
// birth moment (forward) or strictly before it (reverse), searched within the
// birth year's term table.
func (s *Scheduler) governingBoundary(birth time.Time, direction domain.CycleDirection) (time.Time, bool) {
	terms := s.terms.TermDates(birth.Year())
	if direction == domain.DirectionForward {
		for _, term := range terms {
			if term.At.After(birth) {
				return term.At, true
			}
		}
		return time.Time{}, false
	}
	var prev time.Time
	var found bool
	for _, term := range terms {
		if term.At.Before(birth) {
			prev, found = term.At, true
		}
	}
	return prev, found
}

// boundaryDays converts the distance to the boundary into whole days,
// rounding up when the remainder is twelve hours or more.
func boundaryDays(birth, boundary time.Time, direction domain.CycleDirection) int {
	diff := boundary.Sub(birth)
	if direction == domain.DirectionReverse {
		diff = birth.Sub(boundary)
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) >= 12*time.Hour {
		days++
	}
	return days
}

func (s *Scheduler) arrange(chart *domain.Chart, direction domain.CycleDirection, startAge, birthYear int, favorable domain.FavorableElements) []domain.MajorCycle {
	stemIdx := ganzhi.StemIndex(chart.Month.Stem)
	branchIdx := ganzhi.BranchIndex(chart.Month.Branch)
	sign := 1
	if direction == domain.DirectionReverse {
		sign = -1
	}

	cycles := make([]domain.MajorCycle, 0, cycleCount)
	for i := 0; i < cycleCount; i++ {
		offset := sign * (i + 1)
		pillar := domain.NewPillar(wrap(stemIdx+offset, 10), wrap(branchIdx+offset, 12))

		from := startAge + i*cycleSpan
		to := from + cycleSpan - 1
		cycles = append(cycles, domain.MajorCycle{
			Step:       i + 1,
			Pillar:     pillar,
			StartAge:   from,
			EndAge:     to,
			StartYear:  birthYear + from,
			EndYear:    birthYear + to,
			AgeRange:   fmt.Sprintf("%d-%d岁", from, to),
			Evaluation: evaluate(pillar, favorable),
		})
	}
	return cycles
}

// evaluate tags a step by whether its stem or branch element lands in the
// useful set, then the unfavorable set.
func evaluate(pillar domain.Pillar, favorable domain.FavorableElements) string {
	if hasElement(favorable.Useful, pillar.StemElement) || hasElement(favorable.Useful, pillar.BranchElement) {
		return evalFavorable
	}
	if hasElement(favorable.Unfavorable, pillar.StemElement) || hasElement(favorable.Unfavorable, pillar.BranchElement) {
		return evalUnfavorable
	}
	return evalNeutral
}

func hasElement(set []ganzhi.Element, el ganzhi.Element) bool {
	for _, e := range set {
		if e == el {
			return true
		}
	}
	return false
}

func wrap(n, m int) int {
	return ((n % m) + m) % m
}

// Package tengods classifies stems against the day master into the ten
// relational labels and tallies their weighted presence across a chart.
package tengods

import (
	"github.com/rs/zerolog"

	"github.com/mingshi/bazi-engine/internal/domain"
	"github.com/mingshi/bazi-engine/pkg/ganzhi"
)

// principalHiddenWeight is the tally weight of a branch's principal hidden
// stem. Visible stems weigh 1.0.
const principalHiddenWeight = 0.5

// Classifier assigns ten-god labels relative to a chart's day master.
type Classifier struct {
	log zerolog.Logger
}

// NewClassifier creates a new ten-god classifier
func NewClassifier(log zerolog.Logger) *Classifier {
	return &Classifier{
		log: log.With().Str("module", "tengods").Logger(),
	}
}

// Classify maps a candidate stem to its label against the day master. Every
// valid stem pair maps to exactly one label.
func Classify(candidate, dayMaster ganzhi.Stem) domain.TenGod {
	cEl, dmEl := candidate.Element(), dayMaster.Element()
	samePolarity := candidate.Polarity() == dayMaster.Polarity()

	switch {
	case cEl == dmEl:
		if samePolarity {
			return domain.GodPeer
		}
		return domain.GodRivalWealth
	case ganzhi.Generates(dmEl) == cEl:
		// Day master produces the candidate.
		if samePolarity {
			return domain.GodGourmet
		}
		return domain.GodHurtingOfficer
	case ganzhi.Destroys(cEl) == dmEl:
		// Candidate controls the day master.
		if samePolarity {
			return domain.GodSevenKillings
		}
		return domain.GodProperOfficer
	case ganzhi.Destroys(dmEl) == cEl:
		// Day master controls the candidate.
		if samePolarity {
			return domain.GodSideWealth
		}
		return domain.GodProperWealth
	default:
		// Candidate feeds the day master.
		if samePolarity {
			return domain.GodSideSeal
		}
		return domain.GodProperSeal
	}
}

// Analyze labels every pillar slot and tallies weighted presence. The day
// slot is displayed as 日主 in the assignment, but its stem still counts
// toward the 比肩 tally like any same-element same-polarity stem.
func (c *Classifier) Analyze(chart *domain.Chart) domain.TenGodReport {
	assignment := domain.TenGodAssignment{
		Stems:  make(map[domain.PillarPosition]domain.TenGod, 4),
		Hidden: make(map[domain.PillarPosition][]domain.TenGod, 4),
	}
	tally := domain.TenGodTally{}

	for _, pp := range chart.Positioned() {
		stemGod := Classify(pp.Pillar.Stem, chart.DayMaster)
		tally[stemGod] += 1.0

		if pp.Position == domain.PositionDay {
			assignment.Stems[pp.Position] = domain.DayMasterLabel
		} else {
			assignment.Stems[pp.Position] = stemGod
		}

		hidden := make([]domain.TenGod, 0, len(pp.Pillar.HiddenStems))
		for i, hs := range pp.Pillar.HiddenStems {
			god := Classify(hs, chart.DayMaster)
			hidden = append(hidden, god)
			if i == 0 {
				tally[god] += principalHiddenWeight
			}
		}
		assignment.Hidden[pp.Position] = hidden
	}

	report := domain.TenGodReport{
		Assignment:   assignment,
		Tally:        tally,
		Combinations: combinations(tally),
	}

	c.log.Debug().
		Int("labels", len(tally)).
		Int("combinations", len(report.Combinations)).
		Msg("Ten gods analyzed")

	return report
}

// combinations detects the named label co-occurrences.
func combinations(tally domain.TenGodTally) []domain.TenGodCombo {
	var combos []domain.TenGodCombo

	if tally[domain.GodProperOfficer] > 0 && tally[domain.GodSevenKillings] > 0 {
		combos = append(combos, domain.TenGodCombo{
			Name: "官杀混杂",
			Tag:  "凶",
			Note: "既有正官又有七杀，主压力大、是非多",
		})
	}

	if tally[domain.GodGourmet] > 0 && tally[domain.GodHurtingOfficer] > 0 {
		combos = append(combos, domain.TenGodCombo{
			Name: "食伤泄秀",
			Tag:  "吉",
			Note: "才华外显，有表达能力",
		})
	}

	return combos
}

// Package elements tallies the weighted element distribution of a chart,
// scores day-master strength, and derives the favorable-element role groups
// every later stage consumes.
package elements

import (
	"github.com/rs/zerolog"

	"github.com/mingshi/bazi-engine/internal/domain"
	"github.com/mingshi/bazi-engine/pkg/formulas"
	"github.com/mingshi/bazi-engine/pkg/ganzhi"
)

const (
	// hiddenStemWeight is the fractional presence of a hidden stem.
	hiddenStemWeight = 0.3
	// missingShareThreshold marks an element missing below this percent share.
	missingShareThreshold = 5.0
)

// Strength score contributions.
const (
	baseScore     = 50
	seasonalBonus = 20
	rootingBonus  = 15
	perPeerBonus  = 5
)

// Analyzer computes element profiles and strength assessments.
type Analyzer struct {
	log zerolog.Logger
}

// NewAnalyzer creates a new element analyzer
func NewAnalyzer(log zerolog.Logger) *Analyzer {
	return &Analyzer{
		log: log.With().Str("module", "elements").Logger(),
	}
}

// Profile tallies the weighted element counts of a chart. Stems and branches
// weigh 1.0 each, hidden stems weigh 0.3.
func (a *Analyzer) Profile(chart *domain.Chart) domain.ElementProfile {
	counts := make(map[ganzhi.Element]float64, len(ganzhi.Elements))
	for _, el := range ganzhi.Elements {
		counts[el] = 0
	}

	total := 0.0
	for _, pp := range chart.Positioned() {
		counts[pp.Pillar.StemElement] += 1.0
		counts[pp.Pillar.BranchElement] += 1.0
		total += 2.0
		for _, hs := range pp.Pillar.HiddenStems {
			counts[hs.Element()] += hiddenStemWeight
			total += hiddenStemWeight
		}
	}

	percentages := make(map[ganzhi.Element]float64, len(counts))
	shares := make([]float64, 0, len(ganzhi.Elements))
	strongest, weakest := ganzhi.Elements[0], ganzhi.Elements[0]
	var missing []ganzhi.Element

	for _, el := range ganzhi.Elements {
		pct := formulas.RoundTo(counts[el]/total*100, 2)
		percentages[el] = pct
		shares = append(shares, pct)

		if counts[el] > counts[strongest] {
			strongest = el
		}
		if counts[el] < counts[weakest] {
			weakest = el
		}
		if counts[el] == 0 || pct < missingShareThreshold {
			missing = append(missing, el)
		}
	}

	return domain.ElementProfile{
		Counts:       counts,
		Percentages:  percentages,
		Total:        total,
		Strongest:    strongest,
		Weakest:      weakest,
		Missing:      missing,
		BalanceIndex: formulas.RoundTo(formulas.StdDev(shares), 2),
	}
}

// AssessStrength scores the day master from three signals: seasonal support
// from the month branch, rooting anywhere in the branches or hidden stems,
// and peer slots among the non-day pillars.
func (a *Analyzer) AssessStrength(chart *domain.Chart) domain.StrengthAssessment {
	dmElement := chart.DayMaster.Element()

	seasonal := chart.Month.BranchElement == dmElement

	rooted := false
	for _, pp := range chart.Positioned() {
		if pp.Pillar.BranchElement == dmElement {
			rooted = true
			break
		}
		for _, hs := range pp.Pillar.HiddenStems {
			if hs.Element() == dmElement {
				rooted = true
				break
			}
		}
		if rooted {
			break
		}
	}

	peers := 0
	for _, pp := range chart.Positioned() {
		if pp.Position == domain.PositionDay {
			continue
		}
		if pp.Pillar.StemElement == dmElement {
			peers++
		}
		if pp.Pillar.BranchElement == dmElement {
			peers++
		}
	}

	score := baseScore
	if seasonal {
		score += seasonalBonus
	}
	if rooted {
		score += rootingBonus
	}
	score += perPeerBonus * peers

	level, status := classifyStrength(score)

	a.log.Debug().
		Int("score", score).
		Str("level", string(level)).
		Bool("seasonal", seasonal).
		Bool("rooted", rooted).
		Int("peers", peers).
		Msg("Day master strength assessed")

	return domain.StrengthAssessment{
		Score:           score,
		Level:           level,
		Status:          status,
		SeasonalSupport: seasonal,
		Rooted:          rooted,
		PeerCount:       peers,
	}
}

// classifyStrength maps a score onto the five-band level and three-way
// status. Lower bounds are inclusive.
func classifyStrength(score int) (domain.StrengthLevel, domain.StrengthStatus) {
	switch {
	case score >= 80:
		return domain.LevelVeryStrong, domain.StatusStrong
	case score >= 65:
		return domain.LevelStrong, domain.StatusStrong
	case score >= 50:
		return domain.LevelBalanced, domain.StatusBalanced
	case score >= 35:
		return domain.LevelWeak, domain.StatusWeak
	default:
		return domain.LevelVeryWeak, domain.StatusWeak
	}
}

// DeriveFavorable builds the four favorable-element role groups from the
// day-master element and strength status. All groups are empty for a
// balanced status. Slice order matters downstream: the first entry of Useful
// and Unfavorable is the primary reference for year-scale evaluation.
func (a *Analyzer) DeriveFavorable(dayMaster ganzhi.Stem, status domain.StrengthStatus) domain.FavorableElements {
	dm := dayMaster.Element()

	switch status {
	case domain.StatusStrong:
		return domain.FavorableElements{
			Useful:      []ganzhi.Element{ganzhi.DestroyerOf(dm)},
			Supportive:  []ganzhi.Element{ganzhi.Generates(dm)},
			Unfavorable: []ganzhi.Element{ganzhi.GeneratorOf(dm)},
			Hostile:     []ganzhi.Element{dm},
		}
	case domain.StatusWeak:
		return domain.FavorableElements{
			Useful:      []ganzhi.Element{ganzhi.GeneratorOf(dm), dm},
			Supportive:  []ganzhi.Element{ganzhi.GeneratorOf(dm)},
			Unfavorable: []ganzhi.Element{ganzhi.DestroyerOf(dm), ganzhi.Generates(dm)},
			Hostile:     []ganzhi.Element{ganzhi.GeneratorOf(ganzhi.DestroyerOf(dm)), dm},
		}
	default:
		return domain.FavorableElements{}
	}
}

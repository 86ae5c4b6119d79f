// Package pattern determines the structural classification of a chart,
// either a dominant-element special pattern or an ordinary pattern named
// after the month stem's ten god.
package pattern

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mingshi/bazi-engine/internal/domain"
	"github.com/mingshi/bazi-engine/internal/modules/tengods"
	"github.com/mingshi/bazi-engine/pkg/ganzhi"
)

const (
	// specialScoreCeiling gates the special check to extreme weak scores.
	specialScoreCeiling = 30
	// specialShareFloor is the dominant-element share that triggers it.
	specialShareFloor = 0.7
)

// specialPatterns names the dominant-element pattern for each element.
var specialPatterns = map[ganzhi.Element]struct {
	name  string
	level string
}{
	ganzhi.Wood:  {"曲直格", "高"},
	ganzhi.Fire:  {"炎上格", "中高"},
	ganzhi.Earth: {"稼穑格", "中高"},
	ganzhi.Metal: {"从革格", "中高"},
	ganzhi.Water: {"润下格", "中高"},
}

// ordinaryPatterns maps the month stem's ten god onto a pattern name.
var ordinaryPatterns = map[domain.TenGod]string{
	domain.GodProperOfficer:  "正官格",
	domain.GodSevenKillings:  "七杀格",
	domain.GodProperWealth:   "正财格",
	domain.GodSideWealth:     "偏财格",
	domain.GodProperSeal:     "正印格",
	domain.GodSideSeal:       "偏印格",
	domain.GodGourmet:        "食神格",
	domain.GodHurtingOfficer: "伤官格",
}

// Classifier determines chart patterns.
type Classifier struct {
	log zerolog.Logger
}

// NewClassifier creates a new pattern classifier
func NewClassifier(log zerolog.Logger) *Classifier {
	return &Classifier{
		log: log.With().Str("module", "pattern").Logger(),
	}
}

// Classify picks the pattern for a chart. The special dominant-element check
// takes precedence; otherwise the month stem's ten god names the pattern.
func (c *Classifier) Classify(chart *domain.Chart, profile domain.ElementProfile, strength domain.StrengthAssessment) domain.PatternResult {
	if special, ok := c.classifySpecial(profile, strength); ok {
		c.log.Debug().Str("pattern", special.Name).Msg("Special pattern matched")
		return special
	}
	return c.classifyOrdinary(chart)
}

// classifySpecial matches when the day master is extremely weak and a single
// element dominates the weighted tally.
func (c *Classifier) classifySpecial(profile domain.ElementProfile, strength domain.StrengthAssessment) (domain.PatternResult, bool) {
	if strength.Score >= specialScoreCeiling {
		return domain.PatternResult{}, false
	}
	if profile.Total <= 0 {
		return domain.PatternResult{}, false
	}

	dominant := ganzhi.Elements[0]
	for _, el := range ganzhi.Elements {
		if profile.Counts[el] > profile.Counts[dominant] {
			dominant = el
		}
	}

	if profile.Counts[dominant]/profile.Total <= specialShareFloor {
		return domain.PatternResult{}, false
	}

	sp := specialPatterns[dominant]
	return domain.PatternResult{
		Name:        sp.name,
		Category:    domain.PatternSpecial,
		Level:       sp.level,
		Description: fmt.Sprintf("满盘%s，%s专旺", dominant, dominant),
	}, true
}

func (c *Classifier) classifyOrdinary(chart *domain.Chart) domain.PatternResult {
	monthGod := tengods.Classify(chart.Month.Stem, chart.DayMaster)

	name, ok := ordinaryPatterns[monthGod]
	if !ok {
		name = "普通格局"
	}

	return domain.PatternResult{
		Name:        name,
		Category:    domain.PatternOrdinary,
		Level:       "中等",
		Description: fmt.Sprintf("月令透%s，为%s", monthGod, name),
	}
}

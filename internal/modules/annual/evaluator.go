// Package annual evaluates year-scale cycles: the target year's stem-branch
// pair, its five-tier relation to the chart's primary useful and unfavorable
// elements, six-clash oppositions against the chart branches, and a weighted
// overall verdict.
package annual

import (
	"github.com/rs/zerolog"

	"github.com/mingshi/bazi-engine/internal/domain"
	"github.com/mingshi/bazi-engine/pkg/formulas"
	"github.com/mingshi/bazi-engine/pkg/ganzhi"
)

// Verdict labels.
const (
	VerdictFavorable   = "吉"
	VerdictNeutral     = "平"
	VerdictUnfavorable = "凶"
)

// Verdict weighting: the useful-element relation dominates the inverted
// unfavorable relation.
const (
	usefulWeight      = 0.6
	unfavorableWeight = 0.4
)

// clashNotes describes what a six-clash hit on each pillar touches.
var clashNotes = map[domain.PillarPosition]string{
	domain.PositionYear:  "父母、祖辈有变动，可能搬迁或家庭变化",
	domain.PositionMonth: "工作变动、跳槽、升职降职、兄弟姐妹事",
	domain.PositionDay:   "婚姻变动、离婚、结婚、配偶健康、搬家",
	domain.PositionHour:  "子女事、生育、子女离家、晚年变动",
}

// clashWeights ranks a hit by the pillar it lands on.
var clashWeights = map[domain.PillarPosition]string{
	domain.PositionYear:  "中",
	domain.PositionMonth: "高",
	domain.PositionDay:   "最高",
	domain.PositionHour:  "中",
}

// Evaluator rates target years against a chart.
type Evaluator struct {
	log zerolog.Logger
}

// NewEvaluator creates a new annual cycle evaluator
func NewEvaluator(log zerolog.Logger) *Evaluator {
	return &Evaluator{
		log: log.With().Str("module", "annual").Logger(),
	}
}

// Evaluate rates one target year. The annual stem's element is rated against
// the first useful element directly and against the first unfavorable element
// through the inversion table; missing references rate neutral.
func (e *Evaluator) Evaluate(year int, chart *domain.Chart, favorable domain.FavorableElements) domain.AnnualCycle {
	pillar := domain.NewPillar(ganzhi.YearIndices(year))

	useful := neutralRating("")
	if len(favorable.Useful) > 0 {
		useful = rate(pillar.StemElement, favorable.Useful[0])
	}
	unfavorable := neutralRating("")
	if len(favorable.Unfavorable) > 0 {
		unfavorable = invert(rate(pillar.StemElement, favorable.Unfavorable[0]))
	}

	score := usefulWeight*float64(useful.Degree) + unfavorableWeight*float64(unfavorable.Degree)
	verdict := VerdictUnfavorable
	switch {
	case score >= 4:
		verdict = VerdictFavorable
	case score >= 3:
		verdict = VerdictNeutral
	}

	return domain.AnnualCycle{
		Year:                year,
		Pillar:              pillar,
		UsefulRelation:      useful,
		UnfavorableRelation: unfavorable,
		Clashes:             clashes(chart, pillar.Branch),
		VerdictScore:        formulas.RoundTo(score, 1),
		Verdict:             verdict,
	}
}

// EvaluateRange rates n consecutive years starting at fromYear.
func (e *Evaluator) EvaluateRange(fromYear, n int, chart *domain.Chart, favorable domain.FavorableElements) []domain.AnnualCycle {
	cycles := make([]domain.AnnualCycle, 0, n)
	for year := fromYear; year < fromYear+n; year++ {
		cycles = append(cycles, e.Evaluate(year, chart, favorable))
	}
	e.log.Debug().Int("from", fromYear).Int("years", n).Msg("Annual cycles evaluated")
	return cycles
}

// rate applies the five-tier taxonomy between the annual element and a
// reference element.
func rate(annual, reference ganzhi.Element) domain.RelationRating {
	switch {
	case ganzhi.Generates(annual) == reference:
		return domain.RelationRating{
			Reference:   reference,
			Relation:    "流年生用神",
			Label:       "大吉",
			Degree:      5,
			Description: "用神得力，运势极佳，贵人相助，事业顺利",
			Tags:        []string{"运势极佳", "贵人相助", "事业顺利"},
		}
	case ganzhi.Destroys(annual) == reference:
		return domain.RelationRating{
			Reference:   reference,
			Relation:    "流年克用神",
			Label:       "大凶",
			Degree:      1,
			Description: "用神受制，运势低迷，事业受阻，易有灾祸",
			Tags:        []string{"运势差", "多阻碍", "诸事不顺"},
		}
	case annual == reference:
		return domain.RelationRating{
			Reference:   reference,
			Relation:    "流年助用神",
			Label:       "吉",
			Degree:      4,
			Description: "用神增强，运势上升，得朋友帮助",
			Tags:        []string{"运势良好", "朋友相助"},
		}
	case ganzhi.Generates(reference) == annual:
		return domain.RelationRating{
			Reference:   reference,
			Relation:    "流年泄用神",
			Label:       "小凶",
			Degree:      2,
			Description: "用神力量被泄，消耗较多，付出多收获少",
			Tags:        []string{"消耗大", "付出多"},
		}
	default:
		return neutralRating(reference)
	}
}

// invert flips a rating taken against the unfavorable reference: feeding it
// is bad, destroying it is good, everything else passes through unchanged.
func invert(r domain.RelationRating) domain.RelationRating {
	switch r.Degree {
	case 5:
		return domain.RelationRating{
			Reference:   r.Reference,
			Relation:    "流年生忌神",
			Label:       "凶",
			Degree:      2,
			Description: "忌神得力，运势差，易有灾祸",
			Tags:        []string{"运势差", "压力大"},
		}
	case 1:
		return domain.RelationRating{
			Reference:   r.Reference,
			Relation:    "流年克忌神",
			Label:       "吉",
			Degree:      4,
			Description: "忌神受制，运势转好，困扰减少",
			Tags:        []string{"运势好转", "压力减轻"},
		}
	default:
		return r
	}
}

func neutralRating(reference ganzhi.Element) domain.RelationRating {
	return domain.RelationRating{
		Reference:   reference,
		Relation:    "无特殊关系",
		Label:       "平",
		Degree:      3,
		Description: "运势平稳",
		Tags:        []string{"运势平稳"},
	}
}

// clashes collects six-clash hits of the annual branch against the four
// chart branches. The slice is never nil so the rendered JSON carries an
// empty list rather than null.
func clashes(chart *domain.Chart, annualBranch ganzhi.Branch) []domain.ClashHit {
	hits := []domain.ClashHit{}
	for _, pp := range chart.Positioned() {
		if pp.Pillar.Branch.ClashPartner() != annualBranch {
			continue
		}
		hits = append(hits, domain.ClashHit{
			Position:    pp.Position,
			Branch:      pp.Pillar.Branch,
			Weight:      clashWeights[pp.Position],
			Description: clashNotes[pp.Position],
		})
	}
	return hits
}

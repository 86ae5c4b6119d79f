// Package insight derives the supplementary report sections from the core
// analyzer outputs: personality traits and dimension scores, career and
// wealth leanings, marriage, health and interpersonal notes. Everything here
// is a pure read of prior-stage results plus the rule tables.
package insight

import (
	"github.com/rs/zerolog"

	"github.com/mingshi/bazi-engine/internal/domain"
	"github.com/mingshi/bazi-engine/internal/rules"
	"github.com/mingshi/bazi-engine/pkg/formulas"
	"github.com/mingshi/bazi-engine/pkg/ganzhi"
)

// Fixed section advice and limits.
const (
	defaultDimensionScore = 5.0
	traitLimit            = 5

	careerAdviceText        = "适合稳定工作，发挥执行力优势"
	wealthAdviceText        = "踏实工作，争取加薪"
	marriageAdviceText      = "选择性格温和、包容心强的伴侣"
	healthAdviceText        = "注意养生，定期体检"
	interpersonalAdviceText = "多与贵人交往，避开小人"
	bestMarriageAge         = "28-32岁"
)

// Predicate names recognized in personality scoring rules. A group predicate
// holds when the group's tally reaches 2 and its element sits in the useful
// set.
const (
	predPeerUseful    = "peer_group_useful"
	predOutputUseful  = "output_group_useful"
	predOfficerUseful = "officer_group_useful"
	predSealUseful    = "seal_group_useful"
	predWealthUseful  = "wealth_group_useful"
	predWeak          = "day_master_weak"
	predStrong        = "day_master_strong"
)

// dimensionOrder fixes the evaluation order of the scored dimensions.
var dimensionOrder = []string{
	"外向性", "责任感", "情绪稳定性", "开放性", "宜人性",
	"执行力", "领导力", "创造力", "社交能力", "学习能力",
}

// organRisks maps a missing element to the organ system it governs.
var organRisks = map[ganzhi.Element]string{
	ganzhi.Wood:  "肝胆",
	ganzhi.Fire:  "心脏",
	ganzhi.Earth: "脾胃",
	ganzhi.Metal: "肺",
	ganzhi.Water: "肾脏",
}

// Inputs carries the prior-stage outputs the sections read.
type Inputs struct {
	Chart     *domain.Chart
	Profile   domain.ElementProfile
	Strength  domain.StrengthAssessment
	Favorable domain.FavorableElements
	TenGods   domain.TenGodReport
	Pattern   domain.PatternResult
	Markers   domain.SpiritMarkerSet
}

// Analyzer derives the insight sections.
type Analyzer struct {
	tables *rules.Tables
	log    zerolog.Logger
}

// NewAnalyzer creates a new insight analyzer
func NewAnalyzer(tables *rules.Tables, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		tables: tables,
		log:    log.With().Str("module", "insight").Logger(),
	}
}

// Analyze produces all insight sections for one run.
func (a *Analyzer) Analyze(in Inputs) domain.Insight {
	return domain.Insight{
		Personality:   a.Personality(in),
		Career:        a.Career(in.Pattern, in.TenGods.Tally),
		Wealth:        a.Wealth(in.TenGods.Tally),
		Marriage:      a.Marriage(in.Chart, in.TenGods.Tally, in.Markers),
		Health:        a.Health(in.Profile),
		Interpersonal: a.Interpersonal(in.Chart, in.Markers),
	}
}

// Personality collects the trait lists of every present ten god and scores
// the ten dimensions. Trait lists stay deduplicated in canonical god order;
// strengths and weaknesses keep at most five entries each.
func (a *Analyzer) Personality(in Inputs) domain.PersonalityProfile {
	var core, strengths, weaknesses []string
	for _, god := range domain.TenGods {
		if in.TenGods.Tally[god] <= 0 {
			continue
		}
		traits, ok := a.tables.TenGodTraits[string(god)]
		if !ok {
			continue
		}
		core = appendUnique(core, traits.Positive...)
		strengths = appendUnique(strengths, headOf(traits.Positive, 2)...)
		weaknesses = appendUnique(weaknesses, headOf(traits.Negative, 2)...)
	}

	dimensions, overall := a.scoreDimensions(in)
	return domain.PersonalityProfile{
		CoreTraits: core,
		Strengths:  headOf(strengths, traitLimit),
		Weaknesses: headOf(weaknesses, traitLimit),
		Dimensions: dimensions,
		Overall:    overall,
	}
}

func (a *Analyzer) scoreDimensions(in Inputs) (map[string]domain.DimensionScore, float64) {
	dimensions := make(map[string]domain.DimensionScore, len(dimensionOrder))
	scores := make([]float64, 0, len(dimensionOrder))
	for _, dim := range dimensionOrder {
		score, reason := a.scoreDimension(a.tables.Scoring[dim], in)
		dimensions[dim] = domain.DimensionScore{
			Score:  score,
			Level:  scoreLevel(score),
			Reason: reason,
		}
		scores = append(scores, score)
	}
	return dimensions, formulas.RoundTo(formulas.Mean(scores), 1)
}

// scoreDimension walks the dimension's rules in table order and applies the
// first predicate that holds, scoring the midpoint of its range.
func (a *Analyzer) scoreDimension(dimRules []rules.ScoreRule, in Inputs) (float64, string) {
	for _, rule := range dimRules {
		if !evalPredicate(rule.Predicate, in) {
			continue
		}
		if len(rule.Score) == 0 {
			return defaultDimensionScore, rule.Reason
		}
		return formulas.RoundTo(formulas.Mean(rule.Score), 1), rule.Reason
	}
	return defaultDimensionScore, ""
}

func evalPredicate(name string, in Inputs) bool {
	dm := in.Chart.DayMaster.Element()
	switch name {
	case predPeerUseful:
		return groupUseful(in, domain.GodPeer, domain.GodRivalWealth, dm)
	case predOutputUseful:
		return groupUseful(in, domain.GodGourmet, domain.GodHurtingOfficer, ganzhi.Generates(dm))
	case predOfficerUseful:
		return groupUseful(in, domain.GodSevenKillings, domain.GodProperOfficer, ganzhi.DestroyerOf(dm))
	case predSealUseful:
		return groupUseful(in, domain.GodSideSeal, domain.GodProperSeal, ganzhi.GeneratorOf(dm))
	case predWealthUseful:
		return groupUseful(in, domain.GodSideWealth, domain.GodProperWealth, ganzhi.Destroys(dm))
	case predWeak:
		return in.Strength.Status == domain.StatusWeak
	case predStrong:
		return in.Strength.Status == domain.StatusStrong
	}
	return false
}

func groupUseful(in Inputs, first, second domain.TenGod, element ganzhi.Element) bool {
	if in.TenGods.Tally[first]+in.TenGods.Tally[second] < 2 {
		return false
	}
	for _, e := range in.Favorable.Useful {
		if e == element {
			return true
		}
	}
	return false
}

func scoreLevel(score float64) string {
	switch {
	case score >= 8:
		return "非常突出"
	case score >= 7:
		return "突出"
	case score >= 6:
		return "良好"
	case score >= 4:
		return "中等"
	default:
		return "较弱"
	}
}

// Career looks up the pattern's career table and adds direction hints from
// the present ten gods.
func (a *Analyzer) Career(pattern domain.PatternResult, tally domain.TenGodTally) domain.CareerAdvice {
	var fields []string
	if table, ok := a.tables.PatternCareers[pattern.Name]; ok {
		fields = append(fields, table.Suitable...)
	}
	if tally[domain.GodProperOfficer] > 0 {
		fields = appendUnique(fields, "政府机关/公职")
	}
	if tally[domain.GodSevenKillings] > 0 {
		fields = appendUnique(fields, "军警/执法")
	}
	if tally[domain.GodProperWealth] > 0 {
		fields = appendUnique(fields, "金融/会计")
	}
	if tally[domain.GodGourmet] > 0 || tally[domain.GodHurtingOfficer] > 0 {
		fields = appendUnique(fields, "教师/培训")
	}

	return domain.CareerAdvice{
		Pattern:        pattern.Name,
		SuitableFields: fields,
		Advice:         careerAdviceText,
	}
}

// Wealth grades the outlook from the wealth-star tallies.
func (a *Analyzer) Wealth(tally domain.TenGodTally) domain.WealthOutlook {
	level := "中等"
	source := "其他"
	switch {
	case tally[domain.GodProperWealth] > 0:
		level = "中等偏上"
		source = "正财(工资)"
	case tally[domain.GodSideWealth] > 0:
		level = "较好"
	}
	return domain.WealthOutlook{
		Level:      level,
		MainSource: source,
		Advice:     wealthAdviceText,
	}
}

// Marriage grades the outlook and flags the peach-blossom marker plus the
// six-clash and six-harmony state of the spouse palace.
func (a *Analyzer) Marriage(chart *domain.Chart, tally domain.TenGodTally, markers domain.SpiritMarkerSet) domain.MarriageOutlook {
	level := "中等"
	if tally[domain.GodProperWealth] > 0 {
		level = "中等偏上"
	}
	return domain.MarriageOutlook{
		Level:         level,
		BestAge:       bestMarriageAge,
		PeachBlossom:  hasMarker(markers, "桃花"),
		SpouseClashes: spouseClashed(chart),
		SpouseHarmony: spouseHarmonized(chart),
		Advice:        marriageAdviceText,
	}
}

// spouseClashed reports whether another chart branch six-clashes the day
// branch, the spouse palace.
func spouseClashed(chart *domain.Chart) bool {
	partner := chart.Day.Branch.ClashPartner()
	return chart.Year.Branch == partner ||
		chart.Month.Branch == partner ||
		chart.Hour.Branch == partner
}

// spouseHarmonized reports whether another chart branch forms a six-harmony
// pair with the day branch.
func spouseHarmonized(chart *domain.Chart) bool {
	partner := chart.Day.Branch.HarmonyPartner()
	return chart.Year.Branch == partner ||
		chart.Month.Branch == partner ||
		chart.Hour.Branch == partner
}

// Health lists organ cautions for every missing element.
func (a *Analyzer) Health(profile domain.ElementProfile) domain.HealthNotes {
	var risks []string
	for _, el := range profile.Missing {
		if organ, ok := organRisks[el]; ok {
			risks = append(risks, organ)
		}
	}
	return domain.HealthNotes{
		Constitution: "中等",
		RiskParts:    risks,
		Advice:       healthAdviceText,
	}
}

// Interpersonal reads the zodiac relation tables for the year-branch sign
// and names benefactor signs from the auspicious marker occurrences.
func (a *Analyzer) Interpersonal(chart *domain.Chart, markers domain.SpiritMarkerSet) domain.InterpersonalNotes {
	zodiac := chart.Meta.Zodiac
	if zodiac == "" {
		zodiac = chart.Year.Branch.Zodiac()
	}

	var benefactors []string
	for _, d := range markers.Details {
		if d.Tag != domain.MarkerAuspicious {
			continue
		}
		benefactors = appendUnique(benefactors, d.Branch.Zodiac())
	}

	relations := a.tables.Zodiac
	return domain.InterpersonalNotes{
		Zodiac:            zodiac,
		TrineAllies:       relations.Trine[zodiac],
		HarmonyAllies:     singleton(relations.Harmony[zodiac]),
		Opposition:        singleton(relations.Opposition[zodiac]),
		Friction:          singleton(relations.Friction[zodiac]),
		BenefactorZodiacs: benefactors,
		Advice:            interpersonalAdviceText,
	}
}

func appendUnique(dst []string, items ...string) []string {
	for _, item := range items {
		seen := false
		for _, have := range dst {
			if have == item {
				seen = true
				break
			}
		}
		if !seen {
			dst = append(dst, item)
		}
	}
	return dst
}

func headOf(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func singleton(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

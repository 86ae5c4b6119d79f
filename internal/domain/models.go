package domain

import (
	"time"

	"github.com/mingshi/bazi-engine/pkg/ganzhi"
)

// Gender of the chart subject. The value participates in decade-cycle
// direction, so it is validated at the boundary.
type Gender string

const (
	GenderMale   Gender = "男"
	GenderFemale Gender = "女"
)

// Valid reports whether g is a supported gender value.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// ParseGender accepts both the Chinese values used in stored charts and the
// ASCII forms used by CLI flags and query parameters.
func ParseGender(s string) (Gender, error) {
	switch s {
	case "男", "male", "m":
		return GenderMale, nil
	case "女", "female", "f":
		return GenderFemale, nil
	}
	return "", ErrInvalidGender
}

// BirthInput is the single entry payload for a full analysis run.
type BirthInput struct {
	Name          string   `json:"name"`
	Gender        Gender   `json:"gender"`
	Year          int      `json:"year"`
	Month         int      `json:"month"`
	Day           int      `json:"day"`
	Hour          int      `json:"hour"`
	Minute        int      `json:"minute"`
	Longitude     *float64 `json:"longitude,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Province      string   `json:"province,omitempty"`
	City          string   `json:"city,omitempty"`
	TrueSolarTime bool     `json:"true_solar_time"`
}

// Validate rejects inputs the pipeline cannot chart. A date is valid when Go's
// calendar normalization leaves it unchanged, which rules out entries like
// February 30th.
func (b BirthInput) Validate() error {
	if !b.Gender.Valid() {
		return ErrInvalidGender
	}
	if b.Hour < 0 || b.Hour > 23 || b.Minute < 0 || b.Minute > 59 {
		return ErrInvalidDate
	}
	t := time.Date(b.Year, time.Month(b.Month), b.Day, 0, 0, 0, 0, time.UTC)
	if t.Year() != b.Year || t.Month() != time.Month(b.Month) || t.Day() != b.Day {
		return ErrInvalidDate
	}
	return nil
}

// PillarPosition identifies one of the four chart pillars. The order of
// PillarPositions is the fixed scan order (year, month, day, hour) that
// positional lookups rely on as a tie-break.
type PillarPosition string

const (
	PositionYear  PillarPosition = "year"
	PositionMonth PillarPosition = "month"
	PositionDay   PillarPosition = "day"
	PositionHour  PillarPosition = "hour"
)

// PillarPositions lists the four positions in scan order.
var PillarPositions = []PillarPosition{PositionYear, PositionMonth, PositionDay, PositionHour}

// Pillar is one stem-branch pair enriched with its fixed attributions.
// Immutable once constructed.
type Pillar struct {
	Stem          ganzhi.Stem     `json:"stem"`
	Branch        ganzhi.Branch   `json:"branch"`
	StemElement   ganzhi.Element  `json:"stem_element"`
	BranchElement ganzhi.Element  `json:"branch_element"`
	StemPolarity  ganzhi.Polarity `json:"stem_polarity"`
	HiddenStems   []ganzhi.Stem   `json:"hidden_stems"`
}

// NewPillar builds a fully attributed pillar from stem/branch cycle positions.
func NewPillar(stemIdx, branchIdx int) Pillar {
	stem := ganzhi.StemAt(stemIdx)
	branch := ganzhi.BranchAt(branchIdx)
	return Pillar{
		Stem:          stem,
		Branch:        branch,
		StemElement:   stem.Element(),
		BranchElement: branch.Element(),
		StemPolarity:  stem.Polarity(),
		HiddenStems:   branch.HiddenStems(),
	}
}

// Label returns the two-character stem-branch name, e.g. 甲子.
func (p Pillar) Label() string {
	return string(p.Stem) + string(p.Branch)
}

// ChartMeta carries the descriptive metadata computed alongside the pillars.
type ChartMeta struct {
	Zodiac        string `json:"zodiac"`
	Constellation string `json:"constellation"`
	Season        string `json:"season"`
	SolarTerm     string `json:"solar_term"`
	CorrectedTime string `json:"corrected_time,omitempty"`
}

// Chart is the four-pillar chart derived from a birth moment. Built once per
// analysis run; analyzers read it by reference and never mutate it.
type Chart struct {
	Year      Pillar      `json:"year"`
	Month     Pillar      `json:"month"`
	Day       Pillar      `json:"day"`
	Hour      Pillar      `json:"hour"`
	DayMaster ganzhi.Stem `json:"day_master"`
	Meta      ChartMeta   `json:"meta"`
}

// PositionedPillar pairs a pillar with its chart position.
type PositionedPillar struct {
	Position PillarPosition
	Pillar   Pillar
}

// PillarAt returns the pillar at the given position.
func (c *Chart) PillarAt(pos PillarPosition) Pillar {
	switch pos {
	case PositionYear:
		return c.Year
	case PositionMonth:
		return c.Month
	case PositionDay:
		return c.Day
	default:
		return c.Hour
	}
}

// Positioned returns the four pillars in scan order.
func (c *Chart) Positioned() []PositionedPillar {
	return []PositionedPillar{
		{PositionYear, c.Year},
		{PositionMonth, c.Month},
		{PositionDay, c.Day},
		{PositionHour, c.Hour},
	}
}

// ElementProfile is the weighted element tally of a chart.
type ElementProfile struct {
	Counts       map[ganzhi.Element]float64 `json:"counts"`
	Percentages  map[ganzhi.Element]float64 `json:"percentages"`
	Total        float64                    `json:"total"`
	Strongest    ganzhi.Element             `json:"strongest"`
	Weakest      ganzhi.Element             `json:"weakest"`
	Missing      []ganzhi.Element           `json:"missing"`
	BalanceIndex float64                    `json:"balance_index"`
}

// StrengthLevel is the five-band ordinal classification of day-master
// strength.
type StrengthLevel string

const (
	LevelVeryStrong StrengthLevel = "太旺"
	LevelStrong     StrengthLevel = "偏旺"
	LevelBalanced   StrengthLevel = "中和"
	LevelWeak       StrengthLevel = "偏弱"
	LevelVeryWeak   StrengthLevel = "太弱"
)

// StrengthStatus is the three-way collapse of StrengthLevel.
type StrengthStatus string

const (
	StatusStrong   StrengthStatus = "身旺"
	StatusBalanced StrengthStatus = "中和"
	StatusWeak     StrengthStatus = "身弱"
)

// StrengthAssessment scores the day master and keeps the three signals that
// produced the score.
type StrengthAssessment struct {
	Score           int            `json:"score"`
	Level           StrengthLevel  `json:"level"`
	Status          StrengthStatus `json:"status"`
	SeasonalSupport bool           `json:"seasonal_support"`
	Rooted          bool           `json:"rooted"`
	PeerCount       int            `json:"peer_count"`
}

// FavorableElements holds the four role groups derived from day-master
// strength. All four are empty exactly when the status is balanced. Slice
// order is significant: year-scale evaluation reads the first entry of
// Useful and Unfavorable.
type FavorableElements struct {
	Useful      []ganzhi.Element `json:"useful"`
	Supportive  []ganzhi.Element `json:"supportive"`
	Unfavorable []ganzhi.Element `json:"unfavorable"`
	Hostile     []ganzhi.Element `json:"hostile"`
}

// Empty reports whether no role group carries an element.
func (f FavorableElements) Empty() bool {
	return len(f.Useful) == 0 && len(f.Supportive) == 0 &&
		len(f.Unfavorable) == 0 && len(f.Hostile) == 0
}

// TenGod is one of the ten relational labels against the day master.
type TenGod string

const (
	GodPeer           TenGod = "比肩"
	GodRivalWealth    TenGod = "劫财"
	GodGourmet        TenGod = "食神"
	GodHurtingOfficer TenGod = "伤官"
	GodSideWealth     TenGod = "偏财"
	GodProperWealth   TenGod = "正财"
	GodSevenKillings  TenGod = "七杀"
	GodProperOfficer  TenGod = "正官"
	GodSideSeal       TenGod = "偏印"
	GodProperSeal     TenGod = "正印"
)

// TenGods lists the ten labels in canonical order. Consumers that walk a
// tally iterate this list so output ordering stays deterministic.
var TenGods = []TenGod{
	GodPeer, GodRivalWealth,
	GodGourmet, GodHurtingOfficer,
	GodSideWealth, GodProperWealth,
	GodSevenKillings, GodProperOfficer,
	GodSideSeal, GodProperSeal,
}

// DayMasterLabel marks the day pillar's own stem in an assignment.
const DayMasterLabel TenGod = "日主"

// TenGodAssignment maps each pillar stem and its hidden stems to labels.
type TenGodAssignment struct {
	Stems  map[PillarPosition]TenGod   `json:"stems"`
	Hidden map[PillarPosition][]TenGod `json:"hidden"`
}

// TenGodTally is the weighted presence of each label across the chart.
type TenGodTally map[TenGod]float64

// TenGodCombo is a named co-occurrence of labels with a fortune tag.
type TenGodCombo struct {
	Name string `json:"name"`
	Tag  string `json:"tag"`
	Note string `json:"note"`
}

// TenGodReport bundles the ten-god outputs consumed by later stages.
type TenGodReport struct {
	Assignment   TenGodAssignment `json:"assignment"`
	Tally        TenGodTally      `json:"tally"`
	Combinations []TenGodCombo    `json:"combinations"`
}

// PatternCategory separates the rare dominant-element patterns from ordinary
// month-god patterns.
type PatternCategory string

const (
	PatternSpecial  PatternCategory = "专旺格"
	PatternOrdinary PatternCategory = "正格"
)

// PatternResult is the structural classification of the whole chart.
type PatternResult struct {
	Name        string          `json:"name"`
	Category    PatternCategory `json:"category"`
	Level       string          `json:"level"`
	Description string          `json:"description"`
}

// MarkerTag tags a spirit marker as auspicious or inauspicious.
type MarkerTag string

const (
	MarkerAuspicious   MarkerTag = "吉"
	MarkerInauspicious MarkerTag = "凶"
)

// SpiritMarker is one positional marker occurrence.
type SpiritMarker struct {
	Name        string         `json:"name"`
	Position    PillarPosition `json:"position"`
	Branch      ganzhi.Branch  `json:"branch"`
	Tag         MarkerTag      `json:"tag"`
	Description string         `json:"description"`
}

// SpiritMarkerSet is the full marker scan result. Name lists are deduplicated
// in first-seen order; Details keeps every occurrence.
type SpiritMarkerSet struct {
	Auspicious   []string       `json:"auspicious"`
	Inauspicious []string       `json:"inauspicious"`
	Details      []SpiritMarker `json:"details"`
}

// CycleDirection is the decade-cycle arrangement direction, fixed per chart.
type CycleDirection string

const (
	DirectionForward CycleDirection = "顺排"
	DirectionReverse CycleDirection = "逆排"
)

// MajorCycle is one decade-scale step.
type MajorCycle struct {
	Step       int    `json:"step"`
	Pillar     Pillar `json:"pillar"`
	StartAge   int    `json:"start_age"`
	EndAge     int    `json:"end_age"`
	StartYear  int    `json:"start_year"`
	EndYear    int    `json:"end_year"`
	AgeRange   string `json:"age_range"`
	Evaluation string `json:"evaluation"`
}

// CycleSummary is the generated decade-cycle sequence with its start terms.
type CycleSummary struct {
	Direction   CycleDirection `json:"direction"`
	StartAge    int            `json:"start_age"`
	StartMonths int            `json:"start_months"`
	StartDate   string         `json:"start_date"`
	Cycles      []MajorCycle   `json:"cycles"`
}

// RelationRating is one five-tier relation evaluation against a reference
// element. Degree runs 1 (worst) to 5 (best).
type RelationRating struct {
	Reference   ganzhi.Element `json:"reference,omitempty"`
	Relation    string         `json:"relation"`
	Label       string         `json:"label"`
	Degree      int            `json:"degree"`
	Description string         `json:"description"`
	Tags        []string       `json:"tags,omitempty"`
}

// ClashHit records a six-clash opposition between the annual branch and a
// chart branch.
type ClashHit struct {
	Position    PillarPosition `json:"position"`
	Branch      ganzhi.Branch  `json:"branch"`
	Weight      string         `json:"weight"`
	Description string         `json:"description"`
}

// AnnualCycle is the year-scale evaluation for one target year.
type AnnualCycle struct {
	Year                int            `json:"year"`
	Pillar              Pillar         `json:"pillar"`
	UsefulRelation      RelationRating `json:"useful_relation"`
	UnfavorableRelation RelationRating `json:"unfavorable_relation"`
	Clashes             []ClashHit     `json:"clashes"`
	VerdictScore        float64        `json:"verdict_score"`
	Verdict             string         `json:"verdict"`
}

// DimensionScore is one scored personality dimension.
type DimensionScore struct {
	Score  float64 `json:"score"`
	Level  string  `json:"level"`
	Reason string  `json:"reason,omitempty"`
}

// PersonalityProfile is the trait and dimension-score section.
type PersonalityProfile struct {
	CoreTraits []string                  `json:"core_traits"`
	Strengths  []string                  `json:"strengths"`
	Weaknesses []string                  `json:"weaknesses"`
	Dimensions map[string]DimensionScore `json:"dimensions"`
	Overall    float64                   `json:"overall"`
}

// CareerAdvice is the pattern-derived career section.
type CareerAdvice struct {
	Pattern        string   `json:"pattern"`
	SuitableFields []string `json:"suitable_fields"`
	Advice         string   `json:"advice"`
}

// WealthOutlook is the wealth section.
type WealthOutlook struct {
	Level      string `json:"level"`
	MainSource string `json:"main_source"`
	Advice     string `json:"advice"`
}

// MarriageOutlook is the marriage section.
type MarriageOutlook struct {
	Level         string `json:"level"`
	BestAge       string `json:"best_age"`
	PeachBlossom  bool   `json:"peach_blossom"`
	SpouseClashes bool   `json:"spouse_clashes"`
	SpouseHarmony bool   `json:"spouse_harmony"`
	Advice        string `json:"advice"`
}

// HealthNotes is the health section.
type HealthNotes struct {
	Constitution string   `json:"constitution"`
	RiskParts    []string `json:"risk_parts"`
	Advice       string   `json:"advice"`
}

// InterpersonalNotes is the zodiac-relation section.
type InterpersonalNotes struct {
	Zodiac            string   `json:"zodiac"`
	TrineAllies       []string `json:"trine_allies"`
	HarmonyAllies     []string `json:"harmony_allies"`
	Opposition        []string `json:"opposition"`
	Friction          []string `json:"friction"`
	BenefactorZodiacs []string `json:"benefactor_zodiacs"`
	Advice            string   `json:"advice"`
}

// Insight bundles the supplementary analysis sections.
type Insight struct {
	Personality   PersonalityProfile `json:"personality"`
	Career        CareerAdvice       `json:"career"`
	Wealth        WealthOutlook      `json:"wealth"`
	Marriage      MarriageOutlook    `json:"marriage"`
	Health        HealthNotes        `json:"health"`
	Interpersonal InterpersonalNotes `json:"interpersonal"`
}

// AnalysisMetadata stamps a finished run.
type AnalysisMetadata struct {
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	DurationMS  int64     `json:"duration_ms"`
}

// ChartAnalysis is the complete nested result of one analysis run.
type ChartAnalysis struct {
	ID        string             `json:"id"`
	Input     BirthInput         `json:"input"`
	Chart     Chart              `json:"chart"`
	Elements  ElementProfile     `json:"elements"`
	Strength  StrengthAssessment `json:"strength"`
	Favorable FavorableElements  `json:"favorable"`
	TenGods   TenGodReport       `json:"ten_gods"`
	Pattern   PatternResult      `json:"pattern"`
	Markers   SpiritMarkerSet    `json:"markers"`
	Cycles    CycleSummary       `json:"cycles"`
	Annual    []AnnualCycle      `json:"annual"`
	Insight   Insight            `json:"insight"`
	Report    string             `json:"report,omitempty"`
	Metadata  AnalysisMetadata   `json:"metadata"`
}

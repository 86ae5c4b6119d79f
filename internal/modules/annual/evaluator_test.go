package annual

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/mingshi/bazi-engine/internal/domain"
	"github.com/mingshi/bazi-engine/internal/modules/calendar"
	"github.com/mingshi/bazi-engine/pkg/ganzhi"
)

func chartFor(t *testing.T, input domain.BirthInput) *domain.Chart {
	t.Helper()
	chart, err := calendar.NewEngine(calendar.Options{}, zerolog.Nop()).Compute(input)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	return chart
}

// strongFireFavorable is the favorable set of a strong 丙 day master.
func strongFireFavorable() domain.FavorableElements {
	return domain.FavorableElements{
		Useful:      []ganzhi.Element{ganzhi.Water},
		Supportive:  []ganzhi.Element{ganzhi.Earth},
		Unfavorable: []ganzhi.Element{ganzhi.Wood},
		Hostile:     []ganzhi.Element{ganzhi.Fire},
	}
}

func TestRateTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		annual     ganzhi.Element
		reference  ganzhi.Element
		wantLabel  string
		wantDegree int
	}{
		{"annual generates reference", ganzhi.Wood, ganzhi.Fire, "大吉", 5},
		{"annual destroys reference", ganzhi.Wood, ganzhi.Earth, "大凶", 1},
		{"annual equals reference", ganzhi.Wood, ganzhi.Wood, "吉", 4},
		{"reference generates annual", ganzhi.Wood, ganzhi.Water, "小凶", 2},
		{"no relation", ganzhi.Wood, ganzhi.Metal, "平", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rate(tt.annual, tt.reference)
			if got.Label != tt.wantLabel || got.Degree != tt.wantDegree {
				t.Errorf("rate(%s, %s) = %s/%d, want %s/%d",
					tt.annual, tt.reference, got.Label, got.Degree, tt.wantLabel, tt.wantDegree)
			}
		})
	}
}

func TestInvert(t *testing.T) {
	if got := invert(rate(ganzhi.Water, ganzhi.Wood)); got.Degree != 2 || got.Label != "凶" {
		t.Errorf("inverted feeding relation = %s/%d, want 凶/2", got.Label, got.Degree)
	}
	if got := invert(rate(ganzhi.Metal, ganzhi.Wood)); got.Degree != 4 || got.Label != "吉" {
		t.Errorf("inverted destroying relation = %s/%d, want 吉/4", got.Label, got.Degree)
	}
	// Everything but the extremes passes through.
	if got := invert(rate(ganzhi.Wood, ganzhi.Wood)); got.Degree != 4 || got.Relation != "流年助用神" {
		t.Errorf("pass-through = %s/%d, want 流年助用神/4", got.Relation, got.Degree)
	}
	if got := invert(rate(ganzhi.Fire, ganzhi.Wood)); got.Degree != 2 {
		t.Errorf("pass-through degree = %d, want 2", got.Degree)
	}
}

func TestEvaluateVerdicts(t *testing.T) {
	chart := chartFor(t, domain.BirthInput{
		Gender: domain.GenderMale,
		Year:   1990, Month: 1, Day: 1, Hour: 12,
	})
	evaluator := NewEvaluator(zerolog.Nop())

	tests := []struct {
		year        int
		wantPillar  string
		wantScore   float64
		wantVerdict string
	}{
		// 庚 metal feeds the useful water and destroys the unfavorable wood.
		{1990, "庚午", 4.6, "吉"},
		// 壬 water helps the useful element but also feeds the unfavorable one.
		{1992, "壬申", 3.2, "平"},
		// 甲 wood drains the useful water and matches the unfavorable wood.
		{1994, "甲戌", 2.8, "凶"},
	}
	for _, tt := range tests {
		got := evaluator.Evaluate(tt.year, chart, strongFireFavorable())
		if got.Pillar.Label() != tt.wantPillar {
			t.Errorf("%d pillar = %s, want %s", tt.year, got.Pillar.Label(), tt.wantPillar)
		}
		if got.VerdictScore != tt.wantScore {
			t.Errorf("%d score = %v, want %v", tt.year, got.VerdictScore, tt.wantScore)
		}
		if got.Verdict != tt.wantVerdict {
			t.Errorf("%d verdict = %s, want %s", tt.year, got.Verdict, tt.wantVerdict)
		}
	}
}

func TestEvaluateClashWeights(t *testing.T) {
	// Chart branches 午寅辰午: the 1994 annual branch 戌 clashes the day
	// branch 辰, the 1992 annual branch 申 clashes the month branch 寅.
	chart := chartFor(t, domain.BirthInput{
		Gender: domain.GenderMale,
		Year:   1990, Month: 1, Day: 1, Hour: 12,
	})
	evaluator := NewEvaluator(zerolog.Nop())

	day := evaluator.Evaluate(1994, chart, strongFireFavorable())
	if len(day.Clashes) != 1 {
		t.Fatalf("1994 clashes = %d, want 1", len(day.Clashes))
	}
	if hit := day.Clashes[0]; hit.Position != domain.PositionDay || hit.Weight != "最高" {
		t.Errorf("1994 clash = %s/%s, want day/最高", hit.Position, hit.Weight)
	}

	month := evaluator.Evaluate(1992, chart, strongFireFavorable())
	if len(month.Clashes) != 1 {
		t.Fatalf("1992 clashes = %d, want 1", len(month.Clashes))
	}
	if hit := month.Clashes[0]; hit.Position != domain.PositionMonth || hit.Weight != "高" {
		t.Errorf("1992 clash = %s/%s, want month/高", hit.Position, hit.Weight)
	}

	// 1990's annual branch 午 repeats a chart branch and clashes nothing.
	if none := evaluator.Evaluate(1990, chart, strongFireFavorable()); len(none.Clashes) != 0 {
		t.Errorf("1990 clashes = %v, want none", none.Clashes)
	}
}

func TestEvaluateBalancedChartIsNeutral(t *testing.T) {
	chart := chartFor(t, domain.BirthInput{
		Gender: domain.GenderFemale,
		Year:   1990, Month: 1, Day: 1, Hour: 12,
	})
	evaluator := NewEvaluator(zerolog.Nop())

	got := evaluator.Evaluate(2000, chart, domain.FavorableElements{})
	if got.VerdictScore != 3.0 || got.Verdict != "平" {
		t.Errorf("balanced verdict = %s/%v, want 平/3.0", got.Verdict, got.VerdictScore)
	}
	if got.UsefulRelation.Relation != "无特殊关系" || got.UnfavorableRelation.Relation != "无特殊关系" {
		t.Errorf("balanced relations = %s/%s, want 无特殊关系 both",
			got.UsefulRelation.Relation, got.UnfavorableRelation.Relation)
	}
}

func TestEvaluateRange(t *testing.T) {
	chart := chartFor(t, domain.BirthInput{
		Gender: domain.GenderMale,
		Year:   1990, Month: 1, Day: 1, Hour: 12,
	})
	evaluator := NewEvaluator(zerolog.Nop())

	cycles := evaluator.EvaluateRange(1990, 3, chart, strongFireFavorable())
	if len(cycles) != 3 {
		t.Fatalf("cycles = %d, want 3", len(cycles))
	}
	wantPillars := []string{"庚午", "辛未", "壬申"}
	for i, want := range wantPillars {
		if cycles[i].Year != 1990+i {
			t.Errorf("cycle %d year = %d, want %d", i, cycles[i].Year, 1990+i)
		}
		if got := cycles[i].Pillar.Label(); got != want {
			t.Errorf("cycle %d pillar = %s, want %s", i, got, want)
		}
	}
}

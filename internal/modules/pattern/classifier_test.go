package pattern

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/mingshi/bazi-engine/internal/domain"
	"github.com/mingshi/bazi-engine/internal/modules/calendar"
	"github.com/mingshi/bazi-engine/pkg/ganzhi"
)

func TestClassifyOrdinary(t *testing.T) {
	chart, err := calendar.NewEngine(calendar.Options{}, zerolog.Nop()).Compute(domain.BirthInput{
		Gender: domain.GenderMale,
		Year:   1990, Month: 1, Day: 1, Hour: 12,
	})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	// Month stem 庚 against day master 丙 is 偏财.
	got := NewClassifier(zerolog.Nop()).Classify(chart, domain.ElementProfile{Total: 11}, domain.StrengthAssessment{Score: 75})

	if got.Name != "偏财格" {
		t.Errorf("pattern = %s, want 偏财格", got.Name)
	}
	if got.Category != domain.PatternOrdinary {
		t.Errorf("category = %s, want %s", got.Category, domain.PatternOrdinary)
	}
	if got.Level != "中等" {
		t.Errorf("level = %s, want 中等", got.Level)
	}
	if got.Description != "月令透偏财，为偏财格" {
		t.Errorf("description = %s", got.Description)
	}
}

func TestClassifyOrdinaryFallback(t *testing.T) {
	// Month stem 丙 against day master 丙 is 比肩, which has no named
	// pattern.
	chart := &domain.Chart{
		Month:     domain.NewPillar(2, 2),
		Day:       domain.NewPillar(2, 4),
		DayMaster: "丙",
	}

	got := NewClassifier(zerolog.Nop()).Classify(chart, domain.ElementProfile{Total: 10}, domain.StrengthAssessment{Score: 60})

	if got.Name != "普通格局" {
		t.Errorf("pattern = %s, want 普通格局", got.Name)
	}
	if got.Category != domain.PatternOrdinary {
		t.Errorf("category = %s, want %s", got.Category, domain.PatternOrdinary)
	}
}

func TestClassifySpecial(t *testing.T) {
	tests := []struct {
		name      string
		dominant  ganzhi.Element
		wantName  string
		wantLevel string
	}{
		{"wood dominance", ganzhi.Wood, "曲直格", "高"},
		{"fire dominance", ganzhi.Fire, "炎上格", "中高"},
		{"earth dominance", ganzhi.Earth, "稼穑格", "中高"},
		{"metal dominance", ganzhi.Metal, "从革格", "中高"},
		{"water dominance", ganzhi.Water, "润下格", "中高"},
	}

	classifier := NewClassifier(zerolog.Nop())
	chart := &domain.Chart{
		Month:     domain.NewPillar(6, 2),
		Day:       domain.NewPillar(2, 4),
		DayMaster: "丙",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counts := map[ganzhi.Element]float64{}
			for _, el := range ganzhi.Elements {
				counts[el] = 0.5
			}
			counts[tt.dominant] = 8.0
			profile := domain.ElementProfile{Counts: counts, Total: 10.0}

			got := classifier.Classify(chart, profile, domain.StrengthAssessment{Score: 20})

			if got.Name != tt.wantName {
				t.Errorf("pattern = %s, want %s", got.Name, tt.wantName)
			}
			if got.Category != domain.PatternSpecial {
				t.Errorf("category = %s, want %s", got.Category, domain.PatternSpecial)
			}
			if got.Level != tt.wantLevel {
				t.Errorf("level = %s, want %s", got.Level, tt.wantLevel)
			}
		})
	}
}

func TestClassifySpecialRequiresBothConditions(t *testing.T) {
	classifier := NewClassifier(zerolog.Nop())
	chart := &domain.Chart{
		Month:     domain.NewPillar(6, 2),
		Day:       domain.NewPillar(2, 4),
		DayMaster: "丙",
	}

	dominated := map[ganzhi.Element]float64{
		ganzhi.Wood: 8.0, ganzhi.Fire: 0.5, ganzhi.Earth: 0.5,
		ganzhi.Metal: 0.5, ganzhi.Water: 0.5,
	}

	t.Run("score too high", func(t *testing.T) {
		got := classifier.Classify(chart,
			domain.ElementProfile{Counts: dominated, Total: 10.0},
			domain.StrengthAssessment{Score: 30})
		if got.Category != domain.PatternOrdinary {
			t.Errorf("category = %s, want ordinary when score is at the ceiling", got.Category)
		}
	})

	t.Run("share too low", func(t *testing.T) {
		balanced := map[ganzhi.Element]float64{
			ganzhi.Wood: 3.0, ganzhi.Fire: 2.0, ganzhi.Earth: 2.0,
			ganzhi.Metal: 2.0, ganzhi.Water: 1.0,
		}
		got := classifier.Classify(chart,
			domain.ElementProfile{Counts: balanced, Total: 10.0},
			domain.StrengthAssessment{Score: 20})
		if got.Category != domain.PatternOrdinary {
			t.Errorf("category = %s, want ordinary when no element dominates", got.Category)
		}
	})
}

package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mingshi/bazi-engine/internal/domain"
)

func newTestEngine() *Engine {
	return NewEngine(Options{}, zerolog.Nop())
}

func TestComputePillars(t *testing.T) {
	tests := []struct {
		name      string
		input     domain.BirthInput
		wantYear  string
		wantMonth string
		wantDay   string
		wantHour  string
	}{
		{
			name: "1990-01-01 noon",
			input: domain.BirthInput{
				Gender: domain.GenderMale,
				Year:   1990, Month: 1, Day: 1, Hour: 12,
			},
			wantYear:  "庚午",
			wantMonth: "庚寅",
			wantDay:   "丙辰",
			wantHour:  "甲午",
		},
		{
			name: "epoch day 1900-01-01",
			input: domain.BirthInput{
				Gender: domain.GenderFemale,
				Year:   1900, Month: 1, Day: 1, Hour: 0,
			},
			wantYear:  "庚子",
			wantMonth: "庚寅",
			wantDay:   "甲子",
			wantHour:  "甲子",
		},
		{
			name: "cycle start year 1984",
			input: domain.BirthInput{
				Gender: domain.GenderMale,
				Year:   1984, Month: 2, Day: 2, Hour: 23,
			},
			wantYear:  "甲子",
			wantMonth: "己卯",
			wantDay:   "丙辰",
			wantHour:  "戊子",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chart, err := newTestEngine().Compute(tt.input)
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}

			if got := chart.Year.Label(); got != tt.wantYear {
				t.Errorf("year pillar = %s, want %s", got, tt.wantYear)
			}
			if got := chart.Month.Label(); got != tt.wantMonth {
				t.Errorf("month pillar = %s, want %s", got, tt.wantMonth)
			}
			if got := chart.Day.Label(); got != tt.wantDay {
				t.Errorf("day pillar = %s, want %s", got, tt.wantDay)
			}
			if got := chart.Hour.Label(); got != tt.wantHour {
				t.Errorf("hour pillar = %s, want %s", got, tt.wantHour)
			}
			if chart.DayMaster != chart.Day.Stem {
				t.Errorf("day master = %s, want day stem %s", chart.DayMaster, chart.Day.Stem)
			}
		})
	}
}

func TestComputeMeta(t *testing.T) {
	chart, err := newTestEngine().Compute(domain.BirthInput{
		Gender: domain.GenderMale,
		Year:   1990, Month: 1, Day: 1, Hour: 12,
	})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	if chart.Meta.Zodiac != "马" {
		t.Errorf("zodiac = %s, want 马", chart.Meta.Zodiac)
	}
	if chart.Meta.Constellation != "摩羯座" {
		t.Errorf("constellation = %s, want 摩羯座", chart.Meta.Constellation)
	}
	if chart.Meta.Season != "冬季" {
		t.Errorf("season = %s, want 冬季", chart.Meta.Season)
	}
	if chart.Meta.SolarTerm != "小寒后" {
		t.Errorf("solar term = %s, want 小寒后", chart.Meta.SolarTerm)
	}
	if chart.Meta.CorrectedTime != "" {
		t.Errorf("corrected time = %q, want empty without true solar time", chart.Meta.CorrectedTime)
	}
}

func TestComputeInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		input   domain.BirthInput
		wantErr error
	}{
		{
			name: "february 30th",
			input: domain.BirthInput{
				Gender: domain.GenderMale,
				Year:   1990, Month: 2, Day: 30, Hour: 12,
			},
			wantErr: domain.ErrInvalidDate,
		},
		{
			name: "hour out of range",
			input: domain.BirthInput{
				Gender: domain.GenderFemale,
				Year:   1990, Month: 1, Day: 1, Hour: 24,
			},
			wantErr: domain.ErrInvalidDate,
		},
		{
			name: "bad gender",
			input: domain.BirthInput{
				Gender: "unknown",
				Year:   1990, Month: 1, Day: 1, Hour: 12,
			},
			wantErr: domain.ErrInvalidGender,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestEngine().Compute(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Compute() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTrueSolarTimeCorrection(t *testing.T) {
	tests := []struct {
		name       string
		hour       int
		minute     int
		longitude  float64
		wantHour   int
		wantMinute int
	}{
		{
			name: "reference meridian unchanged",
			hour: 12, minute: 0, longitude: 120.0,
			wantHour: 12, wantMinute: 0,
		},
		{
			name: "west of meridian shifts back",
			hour: 12, minute: 0, longitude: 116.4074,
			wantHour: 11, wantMinute: 45,
		},
		{
			name: "wrap below midnight",
			hour: 0, minute: 10, longitude: 104.0668,
			wantHour: 23, wantMinute: 6,
		},
		{
			name: "east of meridian shifts forward",
			hour: 12, minute: 0, longitude: 121.4737,
			wantHour: 12, wantMinute: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotHour, gotMinute := correctSolarTime(tt.hour, tt.minute, tt.longitude)
			if gotHour != tt.wantHour || gotMinute != tt.wantMinute {
				t.Errorf("correctSolarTime(%d:%02d, %.4f) = %d:%02d, want %d:%02d",
					tt.hour, tt.minute, tt.longitude, gotHour, gotMinute, tt.wantHour, tt.wantMinute)
			}
		})
	}
}

func TestTrueSolarTimeKeepsDayPillar(t *testing.T) {
	lon := 104.0668 // 成都, far enough west to wrap past midnight
	chart, err := newTestEngine().Compute(domain.BirthInput{
		Gender: domain.GenderMale,
		Year:   1990, Month: 1, Day: 1, Hour: 0, Minute: 10,
		Longitude: &lon, Latitude: float64Ptr(30.5728),
		TrueSolarTime: true,
	})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	// Day pillar stays on the civil date even though the corrected clock
	// lands on the previous day.
	if got := chart.Day.Label(); got != "丙辰" {
		t.Errorf("day pillar = %s, want 丙辰", got)
	}
	if chart.Meta.CorrectedTime != "23:06" {
		t.Errorf("corrected time = %s, want 23:06", chart.Meta.CorrectedTime)
	}
	// 23:06 falls in the first two-hour window.
	if got := string(chart.Hour.Branch); got != "子" {
		t.Errorf("hour branch = %s, want 子", got)
	}
}

func TestResolveCoordinates(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name    string
		input   domain.BirthInput
		wantLon float64
	}{
		{
			name:    "explicit coordinates win",
			input:   domain.BirthInput{Longitude: float64Ptr(110.0), Latitude: float64Ptr(30.0), City: "北京"},
			wantLon: 110.0,
		},
		{
			name:    "city lookup",
			input:   domain.BirthInput{City: "北京市朝阳区"},
			wantLon: 116.4074,
		},
		{
			name:    "province fallback",
			input:   domain.BirthInput{City: "不存在的城市", Province: "云南省"},
			wantLon: 102.7123,
		},
		{
			name:    "default when nothing matches",
			input:   domain.BirthInput{},
			wantLon: 120.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotLon, _ := engine.resolveCoordinates(tt.input)
			if gotLon != tt.wantLon {
				t.Errorf("longitude = %.4f, want %.4f", gotLon, tt.wantLon)
			}
		})
	}
}

func TestTermDatesApproximations(t *testing.T) {
	terms := newTestEngine().TermDates(1990)
	if len(terms) != 12 {
		t.Fatalf("TermDates returned %d terms, want 12", len(terms))
	}

	if terms[0].Name != "小寒" {
		t.Errorf("first term = %s, want 小寒", terms[0].Name)
	}
	if terms[1].Name != "立春" {
		t.Errorf("second term = %s, want 立春", terms[1].Name)
	}

	lichun := terms[1].At
	want := time.Date(1990, 2, 4, 0, 0, 0, 0, time.UTC)
	if !lichun.Equal(want) {
		t.Errorf("立春 1990 = %v, want %v", lichun, want)
	}

	for i := 1; i < len(terms); i++ {
		if !terms[i].At.After(terms[i-1].At) {
			t.Errorf("terms out of order at %d: %v then %v", i, terms[i-1].At, terms[i].At)
		}
	}
}

func float64Ptr(v float64) *float64 { return &v }

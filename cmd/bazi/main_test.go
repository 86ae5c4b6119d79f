package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/mingshi/bazi-engine/internal/domain"
	"github.com/mingshi/bazi-engine/pkg/ganzhi"
)

func newBirthCommand() (*cobra.Command, *birthFlags) {
	b := &birthFlags{}
	cmd := &cobra.Command{Use: "test", Run: func(*cobra.Command, []string) {}}
	addBirthFlags(cmd, b)
	return cmd, b
}

func TestBirthFlagsToInput(t *testing.T) {
	cmd, b := newBirthCommand()
	for flag, value := range map[string]string{
		"name":       "张三",
		"date":       "1990-01-01",
		"time":       "12:30",
		"gender":     "male",
		"lon":        "116.4",
		"solar-time": "true",
	} {
		if err := cmd.Flags().Set(flag, value); err != nil {
			t.Fatalf("set %s: %v", flag, err)
		}
	}

	input, err := b.toInput(cmd)
	if err != nil {
		t.Fatalf("toInput: %v", err)
	}

	if input.Gender != domain.GenderMale {
		t.Errorf("gender = %s, want %s", input.Gender, domain.GenderMale)
	}
	if input.Year != 1990 || input.Month != 1 || input.Day != 1 {
		t.Errorf("date = %d-%d-%d, want 1990-1-1", input.Year, input.Month, input.Day)
	}
	if input.Hour != 12 || input.Minute != 30 {
		t.Errorf("time = %d:%d, want 12:30", input.Hour, input.Minute)
	}
	if input.Longitude == nil || *input.Longitude != 116.4 {
		t.Errorf("longitude = %v, want 116.4", input.Longitude)
	}
	if input.Latitude != nil {
		t.Errorf("latitude = %v, want nil for unset flag", input.Latitude)
	}
	if !input.TrueSolarTime {
		t.Error("true solar time flag not carried")
	}
}

func TestBirthFlagsToInputRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		flags map[string]string
	}{
		{"bad gender", map[string]string{"date": "1990-01-01", "gender": "other"}},
		{"bad date", map[string]string{"date": "01/01/1990", "gender": "male"}},
		{"bad time", map[string]string{"date": "1990-01-01", "time": "noon", "gender": "male"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, b := newBirthCommand()
			for flag, value := range tt.flags {
				if err := cmd.Flags().Set(flag, value); err != nil {
					t.Fatalf("set %s: %v", flag, err)
				}
			}

			if _, err := b.toInput(cmd); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestJoinElements(t *testing.T) {
	if got := joinElements(nil); got != "无" {
		t.Errorf("empty join = %q, want 无", got)
	}
	if got := joinElements([]ganzhi.Element{ganzhi.Water, ganzhi.Wood}); got != "水、木" {
		t.Errorf("join = %q, want 水、木", got)
	}
}

func TestWriteResultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "result.json")
	result := &domain.ChartAnalysis{ID: "cli-test", Input: domain.BirthInput{Name: "张三"}}

	if err := writeResultFile(path, result); err != nil {
		t.Fatalf("writeResultFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	var decoded domain.ChartAnalysis
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.ID != "cli-test" {
		t.Errorf("id = %q, want cli-test", decoded.ID)
	}
}

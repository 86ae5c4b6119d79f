package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mingshi/bazi-engine/internal/app"
	"github.com/mingshi/bazi-engine/internal/domain"
	"github.com/mingshi/bazi-engine/internal/output"
	"github.com/mingshi/bazi-engine/pkg/ganzhi"
	"github.com/mingshi/bazi-engine/pkg/logger"
)

// birthFlags holds the flags shared by the compute commands.
type birthFlags struct {
	name     string
	date     string
	time     string
	gender   string
	lon      float64
	lat      float64
	city     string
	province string
	solar    bool
}

func addBirthFlags(cmd *cobra.Command, b *birthFlags) {
	f := cmd.Flags()
	f.StringVar(&b.name, "name", "", "Subject name label")
	f.StringVar(&b.date, "date", "", "Birth date, YYYY-MM-DD (required)")
	f.StringVar(&b.time, "time", "00:00", "Birth time, HH:MM")
	f.StringVar(&b.gender, "gender", "", "male or female (required)")
	f.Float64Var(&b.lon, "lon", 0, "Birth longitude, for true solar time")
	f.Float64Var(&b.lat, "lat", 0, "Birth latitude")
	f.StringVar(&b.city, "city", "", "Birth city, resolves the longitude")
	f.StringVar(&b.province, "province", "", "Birth province")
	f.BoolVar(&b.solar, "solar-time", false, "Correct the hour pillar to true solar time")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("gender")
}

func (b *birthFlags) toInput(cmd *cobra.Command) (domain.BirthInput, error) {
	gender, err := domain.ParseGender(b.gender)
	if err != nil {
		return domain.BirthInput{}, fmt.Errorf("invalid --gender %q (male or female)", b.gender)
	}

	day, err := time.Parse("2006-01-02", b.date)
	if err != nil {
		return domain.BirthInput{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", b.date)
	}

	clock, err := time.Parse("15:04", b.time)
	if err != nil {
		return domain.BirthInput{}, fmt.Errorf("invalid --time %q (expected HH:MM)", b.time)
	}

	input := domain.BirthInput{
		Name:          b.name,
		Gender:        gender,
		Year:          day.Year(),
		Month:         int(day.Month()),
		Day:           day.Day(),
		Hour:          clock.Hour(),
		Minute:        clock.Minute(),
		Province:      b.province,
		City:          b.city,
		TrueSolarTime: b.solar,
	}

	if cmd.Flags().Changed("lon") {
		lon := b.lon
		input.Longitude = &lon
	}
	if cmd.Flags().Changed("lat") {
		lat := b.lat
		input.Latitude = &lat
	}

	return input, nil
}

// newCLIApp assembles the application with logs on stderr, keeping stdout
// for results.
func newCLIApp() (*app.App, error) {
	log := logger.New(logger.Config{
		Level:  "warn",
		Pretty: true,
		Out:    os.Stderr,
	})
	return app.NewWithLogger(log)
}

func printSummary(result *domain.ChartAnalysis) {
	c := result.Chart
	fmt.Printf("四柱：%s %s %s %s\n", c.Year.Label(), c.Month.Label(), c.Day.Label(), c.Hour.Label())
	fmt.Printf("日主：%s（%s）  生肖：%s\n", c.DayMaster, c.DayMaster.Element(), c.Meta.Zodiac)
	fmt.Printf("旺衰：%s（%s，得分 %d）\n", result.Strength.Level, result.Strength.Status, result.Strength.Score)
	fmt.Printf("格局：%s（层次：%s）\n", result.Pattern.Name, result.Pattern.Level)
	fmt.Printf("用神：%s  忌神：%s\n", joinElements(result.Favorable.Useful), joinElements(result.Favorable.Unfavorable))
	if len(result.Markers.Auspicious) > 0 {
		fmt.Printf("吉神：%s\n", strings.Join(result.Markers.Auspicious, "、"))
	}
	if len(result.Markers.Inauspicious) > 0 {
		fmt.Printf("凶煞：%s\n", strings.Join(result.Markers.Inauspicious, "、"))
	}
	fmt.Printf("大运：%s 起运（%s）\n", result.Cycles.StartDate, result.Cycles.Direction)
}

func joinElements(elements []ganzhi.Element) string {
	if len(elements) == 0 {
		return "无"
	}
	parts := make([]string, len(elements))
	for i, el := range elements {
		parts[i] = string(el)
	}
	return strings.Join(parts, "、")
}

// writeResultFile saves the result JSON to an explicit path.
func writeResultFile(path string, result *domain.ChartAnalysis) error {
	data, err := output.MarshalPretty(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	return nil
}

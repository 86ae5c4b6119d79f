// Package calendar converts a birth moment into the four-pillar chart and
// its lunar metadata. All arithmetic is epoch-anchored cycle math; solar-term
// boundaries use calendar approximations unless an almanac directory is
// configured.
package calendar

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mingshi/bazi-engine/internal/domain"
	"github.com/mingshi/bazi-engine/pkg/ganzhi"
)

// Options configures the engine.
type Options struct {
	DefaultLongitude float64
	DefaultLatitude  float64
	AlmanacDir       string
}

// Engine derives four-pillar charts from birth moments.
type Engine struct {
	log        zerolog.Logger
	almanac    *Almanac
	defaultLon float64
	defaultLat float64
}

// NewEngine creates a new calendar engine
func NewEngine(opts Options, log zerolog.Logger) *Engine {
	e := &Engine{
		log:        log.With().Str("module", "calendar").Logger(),
		defaultLon: opts.DefaultLongitude,
		defaultLat: opts.DefaultLatitude,
	}
	if e.defaultLon == 0 {
		e.defaultLon = 120.0
	}
	if e.defaultLat == 0 {
		e.defaultLat = 39.9
	}
	if opts.AlmanacDir != "" {
		e.almanac = NewAlmanac(opts.AlmanacDir, log)
	}
	return e
}

// Compute builds the chart for a birth moment. The day pillar always derives
// from the civil date as given; true-solar-time correction shifts only the
// time of day used for the hour pillar.
func (e *Engine) Compute(input domain.BirthInput) (*domain.Chart, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	longitude, latitude := e.resolveCoordinates(input)

	hour, minute := input.Hour, input.Minute
	correctedTime := ""
	if input.TrueSolarTime {
		hour, minute = correctSolarTime(hour, minute, longitude)
		correctedTime = fmt.Sprintf("%02d:%02d", hour, minute)
		e.log.Debug().
			Float64("longitude", longitude).
			Float64("latitude", latitude).
			Str("corrected", correctedTime).
			Msg("True solar time applied")
	}

	yearStem, yearBranch := ganzhi.YearIndices(input.Year)
	yearPillar := domain.NewPillar(yearStem, yearBranch)

	monthBranch := ganzhi.MonthBranchIndex(input.Month)
	monthStem := ganzhi.MonthStemIndex(yearStem, monthBranch)
	monthPillar := domain.NewPillar(monthStem, monthBranch)

	dayStem, dayBranch := ganzhi.DayIndices(input.Year, input.Month, input.Day)
	dayPillar := domain.NewPillar(dayStem, dayBranch)

	hourBranch := ganzhi.HourBranchIndex(hour)
	hourStem := ganzhi.HourStemIndex(dayStem, hourBranch)
	hourPillar := domain.NewPillar(hourStem, hourBranch)

	chart := &domain.Chart{
		Year:      yearPillar,
		Month:     monthPillar,
		Day:       dayPillar,
		Hour:      hourPillar,
		DayMaster: dayPillar.Stem,
		Meta: domain.ChartMeta{
			Zodiac:        yearPillar.Branch.Zodiac(),
			Constellation: constellation(input.Month, input.Day),
			Season:        season(input.Month),
			SolarTerm:     monthTermTags[input.Month],
			CorrectedTime: correctedTime,
		},
	}

	e.log.Debug().
		Str("year", yearPillar.Label()).
		Str("month", monthPillar.Label()).
		Str("day", dayPillar.Label()).
		Str("hour", hourPillar.Label()).
		Msg("Chart computed")

	return chart, nil
}

// resolveCoordinates picks coordinates in precedence order: explicit values,
// place-name lookup when either value is missing, then configured defaults.
func (e *Engine) resolveCoordinates(input domain.BirthInput) (float64, float64) {
	lon, lat := input.Longitude, input.Latitude

	if lon == nil || lat == nil {
		if foundLon, foundLat, ok := lookupPlace(input.Province, input.City); ok {
			e.log.Info().
				Str("province", input.Province).
				Str("city", input.City).
				Float64("longitude", foundLon).
				Float64("latitude", foundLat).
				Msg("Coordinates resolved from place name")
			lon, lat = &foundLon, &foundLat
		}
	}

	outLon, outLat := e.defaultLon, e.defaultLat
	if lon != nil {
		outLon = *lon
	}
	if lat != nil {
		outLat = *lat
	}
	return outLon, outLat
}

// lookupPlace tries the city string first, then the province.
func lookupPlace(province, city string) (float64, float64, bool) {
	if city != "" {
		if lon, lat, ok := lookupCoordinates(city); ok {
			return lon, lat, true
		}
	}
	if province != "" {
		if lon, lat, ok := lookupCoordinates(province); ok {
			return lon, lat, true
		}
	}
	return 0, 0, false
}

// correctSolarTime shifts a clock time by 4 minutes per degree of longitude
// away from the 120°E reference meridian, wrapped within the same day.
func correctSolarTime(hour, minute int, longitude float64) (int, int) {
	diff := (longitude - 120.0) * 4
	total := float64(hour*60+minute) + diff

	if total < 0 {
		total += 24 * 60
	} else if total >= 24*60 {
		total -= 24 * 60
	}

	return int(total) / 60, int(total) % 60
}

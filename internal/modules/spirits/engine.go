// Package spirits scans a chart for the classical positional markers, both
// auspicious and inauspicious. Each marker is keyed by a fixed anchor (day
// stem for most, year branch for the rest) and resolved through its own
// lookup table; markers are independent of one another.
package spirits

import (
	"github.com/rs/zerolog"

	"github.com/mingshi/bazi-engine/internal/domain"
	"github.com/mingshi/bazi-engine/internal/rules"
	"github.com/mingshi/bazi-engine/pkg/ganzhi"
)

// Marker names and their fixed reading notes.
const (
	bladeName    = "羊刃"
	bladeNote    = "刚烈冲动，易有血光，需注意安全"
	robberyName  = "劫煞"
	robberyNote  = "破财损失，易有意外支出，需谨慎理财"
	calamityName = "灾煞"
	calamityNote = "易有疾病灾难，注意健康安全"
	solitaryName = "孤辰"
	widowName    = "寡宿"
	lonelyNote   = "性格孤僻，六亲缘薄，容易孤独"
	noblemanName = "天乙贵人"
	noblemanNote = "逢凶化吉，遇难呈祥"
	scholarName  = "文昌贵人"
	scholarNote  = "聪明智慧，利于学业"
	weddingName  = "红鸾"
	weddingNote  = "婚姻喜庆，利于结婚"
	joyName      = "天喜"
	joyNote      = "喜庆吉祥，有喜事"
	blossomName  = "桃花"
	blossomNote  = "异性缘，需谨慎"
)

// bladeBranches locates the blade star from the day stem.
var bladeBranches = map[ganzhi.Stem]ganzhi.Branch{
	"甲": "卯", "乙": "寅", "丙": "午", "丁": "巳", "戊": "午",
	"己": "巳", "庚": "酉", "辛": "申", "壬": "子", "癸": "亥",
}

// robberyBranches locates the robbery star from the year branch, one target
// per trine group.
var robberyBranches = map[ganzhi.Branch]ganzhi.Branch{
	"寅": "亥", "午": "亥", "戌": "亥",
	"巳": "寅", "酉": "寅", "丑": "寅",
	"申": "巳", "子": "巳", "辰": "巳",
	"亥": "申", "卯": "申", "未": "申",
}

// calamityBranches locates the calamity star from the year branch.
var calamityBranches = map[ganzhi.Branch]ganzhi.Branch{
	"寅": "子", "午": "子", "戌": "子",
	"巳": "卯", "酉": "卯", "丑": "卯",
	"申": "午", "子": "午", "辰": "午",
	"亥": "酉", "卯": "酉", "未": "酉",
}

// solitaryBranches and widowBranches locate the loneliness pair from the
// year branch, grouped by season triplet.
var solitaryBranches = map[ganzhi.Branch]ganzhi.Branch{
	"寅": "巳", "卯": "巳", "辰": "巳",
	"巳": "申", "午": "申", "未": "申",
	"申": "亥", "酉": "亥", "戌": "亥",
	"亥": "寅", "子": "寅", "丑": "寅",
}

var widowBranches = map[ganzhi.Branch]ganzhi.Branch{
	"寅": "丑", "卯": "丑", "辰": "丑",
	"巳": "辰", "午": "辰", "未": "辰",
	"申": "未", "酉": "未", "戌": "未",
	"亥": "戌", "子": "戌", "丑": "戌",
}

// Engine scans charts for spirit markers. The table-driven markers come from
// the rule repository; the rest are fixed.
type Engine struct {
	markers rules.MarkerTables
	log     zerolog.Logger
}

// NewEngine creates a new spirit marker engine
func NewEngine(markers rules.MarkerTables, log zerolog.Logger) *Engine {
	return &Engine{
		markers: markers,
		log:     log.With().Str("module", "spirits").Logger(),
	}
}

// Scan evaluates every marker against the chart. Name lists are deduplicated
// in first-seen order; Details keeps every occurrence.
func (e *Engine) Scan(chart *domain.Chart) domain.SpiritMarkerSet {
	set := &markerSet{}

	e.scanBlade(chart, set)
	e.scanRobbery(chart, set)
	e.scanCalamity(chart, set)
	e.scanLoneliness(chart, set)
	e.scanNobleman(chart, set)
	e.scanScholar(chart, set)
	e.scanWeddingJoy(chart, set)
	e.scanPeachBlossom(chart, set)

	e.log.Debug().
		Int("auspicious", len(set.auspicious)).
		Int("inauspicious", len(set.inauspicious)).
		Int("occurrences", len(set.details)).
		Msg("Spirit marker scan complete")

	return domain.SpiritMarkerSet{
		Auspicious:   set.auspicious,
		Inauspicious: set.inauspicious,
		Details:      set.details,
	}
}

func (e *Engine) scanBlade(chart *domain.Chart, set *markerSet) {
	target, ok := bladeBranches[chart.DayMaster]
	if !ok {
		return
	}
	if pos, branch, found := firstMatch(chart, target); found {
		set.add(domain.SpiritMarker{
			Name:        bladeName,
			Position:    pos,
			Branch:      branch,
			Tag:         domain.MarkerInauspicious,
			Description: bladeNote,
		})
	}
}

func (e *Engine) scanRobbery(chart *domain.Chart, set *markerSet) {
	target, ok := robberyBranches[chart.Year.Branch]
	if !ok {
		return
	}
	if pos, branch, found := firstMatch(chart, target); found {
		set.add(domain.SpiritMarker{
			Name:        robberyName,
			Position:    pos,
			Branch:      branch,
			Tag:         domain.MarkerInauspicious,
			Description: robberyNote,
		})
	}
}

func (e *Engine) scanCalamity(chart *domain.Chart, set *markerSet) {
	target, ok := calamityBranches[chart.Year.Branch]
	if !ok {
		return
	}
	if pos, branch, found := firstMatch(chart, target); found {
		set.add(domain.SpiritMarker{
			Name:        calamityName,
			Position:    pos,
			Branch:      branch,
			Tag:         domain.MarkerInauspicious,
			Description: calamityNote,
		})
	}
}

func (e *Engine) scanLoneliness(chart *domain.Chart, set *markerSet) {
	if target, ok := solitaryBranches[chart.Year.Branch]; ok {
		if pos, branch, found := firstMatch(chart, target); found {
			set.add(domain.SpiritMarker{
				Name:        solitaryName,
				Position:    pos,
				Branch:      branch,
				Tag:         domain.MarkerInauspicious,
				Description: lonelyNote,
			})
		}
	}
	if target, ok := widowBranches[chart.Year.Branch]; ok {
		if pos, branch, found := firstMatch(chart, target); found {
			set.add(domain.SpiritMarker{
				Name:        widowName,
				Position:    pos,
				Branch:      branch,
				Tag:         domain.MarkerInauspicious,
				Description: lonelyNote,
			})
		}
	}
}

func (e *Engine) scanNobleman(chart *domain.Chart, set *markerSet) {
	targets := branchesOf(e.markers.Tianyi[string(chart.DayMaster)])
	if len(targets) == 0 {
		return
	}
	if pos, branch, found := firstMatch(chart, targets...); found {
		set.add(domain.SpiritMarker{
			Name:        noblemanName,
			Position:    pos,
			Branch:      branch,
			Tag:         domain.MarkerAuspicious,
			Description: noblemanNote,
		})
	}
}

func (e *Engine) scanScholar(chart *domain.Chart, set *markerSet) {
	target := ganzhi.Branch(e.markers.Wenchang[string(chart.DayMaster)])
	if target == "" {
		return
	}
	if pos, branch, found := firstMatch(chart, target); found {
		set.add(domain.SpiritMarker{
			Name:        scholarName,
			Position:    pos,
			Branch:      branch,
			Tag:         domain.MarkerAuspicious,
			Description: scholarNote,
		})
	}
}

// scanWeddingJoy checks the wedding and joy stars keyed by the year branch.
// Only the month, day and hour pillars are scanned, and every match is
// recorded rather than the first.
func (e *Engine) scanWeddingJoy(chart *domain.Chart, set *markerSet) {
	yearKey := string(chart.Year.Branch)
	wedding := ganzhi.Branch(e.markers.Hongluan[yearKey])
	joy := ganzhi.Branch(e.markers.Tianxi[yearKey])

	for _, pp := range chart.Positioned() {
		if pp.Position == domain.PositionYear {
			continue
		}
		if wedding != "" && pp.Pillar.Branch == wedding {
			set.add(domain.SpiritMarker{
				Name:        weddingName,
				Position:    pp.Position,
				Branch:      pp.Pillar.Branch,
				Tag:         domain.MarkerAuspicious,
				Description: weddingNote,
			})
		}
		if joy != "" && pp.Pillar.Branch == joy {
			set.add(domain.SpiritMarker{
				Name:        joyName,
				Position:    pp.Position,
				Branch:      pp.Pillar.Branch,
				Tag:         domain.MarkerAuspicious,
				Description: joyNote,
			})
		}
	}
}

// scanPeachBlossom checks the peach blossom star keyed by the year branch,
// falling back to the day branch key only when the year key found nothing.
func (e *Engine) scanPeachBlossom(chart *domain.Chart, set *markerSet) {
	if e.matchPeachBlossom(chart, chart.Year.Branch, set) {
		return
	}
	e.matchPeachBlossom(chart, chart.Day.Branch, set)
}

func (e *Engine) matchPeachBlossom(chart *domain.Chart, key ganzhi.Branch, set *markerSet) bool {
	target := ganzhi.Branch(e.markers.PeachBlossom[string(key)])
	if target == "" {
		return false
	}
	pos, branch, found := firstMatch(chart, target)
	if !found {
		return false
	}
	set.add(domain.SpiritMarker{
		Name:        blossomName,
		Position:    pos,
		Branch:      branch,
		Tag:         domain.MarkerAuspicious,
		Description: blossomNote,
	})
	return true
}

// markerSet accumulates occurrences and keeps the name lists deduplicated in
// first-seen order.
type markerSet struct {
	auspicious   []string
	inauspicious []string
	details      []domain.SpiritMarker
}

func (s *markerSet) add(m domain.SpiritMarker) {
	s.details = append(s.details, m)
	names := &s.auspicious
	if m.Tag == domain.MarkerInauspicious {
		names = &s.inauspicious
	}
	for _, n := range *names {
		if n == m.Name {
			return
		}
	}
	*names = append(*names, m.Name)
}

// firstMatch walks the pillars in scan order and returns the first whose
// branch is one of the targets.
func firstMatch(chart *domain.Chart, targets ...ganzhi.Branch) (domain.PillarPosition, ganzhi.Branch, bool) {
	for _, pp := range chart.Positioned() {
		for _, t := range targets {
			if pp.Pillar.Branch == t {
				return pp.Position, pp.Pillar.Branch, true
			}
		}
	}
	return "", "", false
}

func branchesOf(names []string) []ganzhi.Branch {
	out := make([]ganzhi.Branch, 0, len(names))
	for _, n := range names {
		out = append(out, ganzhi.Branch(n))
	}
	return out
}

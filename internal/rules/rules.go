// Package rules loads the named lookup tables that drive classification:
// zodiac relations, spirit-marker tables, ten-god trait lists, pattern career
// tables, and personality scoring rules. Each category lives in its own YAML
// file; overrides come from an optional rules directory, falling back per
// category to the embedded defaults. Loading happens at most once per process
// and rule problems never fail an analysis: a broken category degrades to an
// empty table.
package rules

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// ZodiacRelations maps each zodiac sign to its relational partners.
type ZodiacRelations struct {
	Trine      map[string][]string `yaml:"trine"`
	Harmony    map[string]string   `yaml:"harmony"`
	Opposition map[string]string   `yaml:"opposition"`
	Friction   map[string]string   `yaml:"friction"`
}

// MarkerTables holds the lookup-driven spirit-marker rules. Keys and values
// are stem/branch characters.
type MarkerTables struct {
	Tianyi       map[string][]string `yaml:"tianyi"`
	Wenchang     map[string]string   `yaml:"wenchang"`
	Hongluan     map[string]string   `yaml:"hongluan"`
	Tianxi       map[string]string   `yaml:"tianxi"`
	PeachBlossom map[string]string   `yaml:"peach_blossom"`
}

// TraitSet lists the positive and negative personality traits of one ten god.
type TraitSet struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
}

// CareerTable lists the suitable fields for one chart pattern.
type CareerTable struct {
	Suitable []string `yaml:"suitable"`
}

// ScoreRule is one personality-dimension scoring rule. Predicate names a
// member of the closed predicate set evaluated by the insight module; Score
// is a [min, max] range whose midpoint is applied on match.
type ScoreRule struct {
	Predicate string    `yaml:"predicate"`
	Score     []float64 `yaml:"score"`
	Reason    string    `yaml:"reason"`
}

// Tables is the full loaded rule set.
type Tables struct {
	Zodiac         ZodiacRelations
	Markers        MarkerTables
	TenGodTraits   map[string]TraitSet
	PatternCareers map[string]CareerTable
	Scoring        map[string][]ScoreRule
}

// TableState tags where a category's data came from.
type TableState string

const (
	StateFile    TableState = "file"    // loaded from an override file
	StateDefault TableState = "default" // embedded defaults
	StateEmpty   TableState = "empty"   // override broken, category degraded
)

// CategoryStatus reports the provenance of one rule category after loading.
type CategoryStatus struct {
	Category string     `json:"category"`
	State    TableState `json:"state"`
}

// Category names reported in CategoryStatus. Each category's file in the
// rules directory carries the same name with a .yaml extension.
const (
	CategoryZodiac  = "zodiac_relations"
	CategoryMarkers = "spirit_markers"
	CategoryTraits  = "ten_god_traits"
	CategoryCareers = "pattern_careers"
	CategoryScoring = "personality_scoring"
)

// Repository loads and caches the rule tables.
type Repository struct {
	dir string
	log zerolog.Logger

	once   sync.Once
	tables *Tables
	status []CategoryStatus
}

// NewRepository creates a repository reading overrides from dir. An empty dir
// means embedded defaults only.
func NewRepository(dir string, log zerolog.Logger) *Repository {
	return &Repository{
		dir: dir,
		log: log.With().Str("module", "rules").Logger(),
	}
}

// Load parses and caches the rule tables. It is safe for concurrent use; the
// work runs once and subsequent calls return the cached result. Load never
// fails: a category whose override file exists but cannot be read or parsed
// is left empty with a warning, and consumers degrade that section.
func (r *Repository) Load() (*Tables, error) {
	r.once.Do(func() {
		if r.dir != "" {
			if _, err := os.Stat(r.dir); os.IsNotExist(err) {
				r.log.Warn().Str("dir", r.dir).Msg("Rules directory not found, using embedded defaults")
			}
		}
		r.tables, r.status = r.load()
		for _, st := range r.status {
			r.log.Debug().
				Str("category", st.Category).
				Str("state", string(st.State)).
				Msg("Rule category loaded")
		}
	})
	return r.tables, nil
}

// Status returns the per-category provenance recorded by Load. It is only
// meaningful after Load has been called.
func (r *Repository) Status() []CategoryStatus {
	return r.status
}

func (r *Repository) load() (*Tables, []CategoryStatus) {
	tables := &Tables{
		TenGodTraits:   map[string]TraitSet{},
		PatternCareers: map[string]CareerTable{},
		Scoring:        map[string][]ScoreRule{},
	}
	status := []CategoryStatus{
		tables.loadZodiac(r),
		tables.loadMarkers(r),
		tables.loadTraits(r),
		tables.loadCareers(r),
		tables.loadScoring(r),
	}
	return tables, status
}

// tableSource tags where categorySource found a category's bytes.
type tableSource int

const (
	sourceNone tableSource = iota
	sourceFile
	sourceDefault
)

// categorySource returns the YAML for one category: the override file when
// the rules directory has one, the embedded default otherwise. An override
// that exists but cannot be read yields no data at all; silently applying the
// default over a broken override could resurrect tables the operator meant to
// replace.
func (r *Repository) categorySource(category string) ([]byte, tableSource) {
	name := category + ".yaml"

	if r.dir != "" {
		data, err := os.ReadFile(filepath.Join(r.dir, name))
		if err == nil {
			return data, sourceFile
		}
		if !os.IsNotExist(err) {
			r.log.Warn().Err(err).Str("category", category).Msg("Rule file unreadable, category left empty")
			return nil, sourceNone
		}
	}

	data, err := defaultRules.ReadFile("defaults/" + name)
	if err != nil {
		r.log.Error().Err(err).Str("category", category).Msg("Embedded rule table missing")
		return nil, sourceNone
	}
	return data, sourceDefault
}

func (r *Repository) decode(category string, data []byte, src tableSource, dst interface{}) TableState {
	if err := yaml.Unmarshal(data, dst); err != nil {
		r.log.Warn().Err(err).Str("category", category).Msg("Rule table invalid, category left empty")
		return StateEmpty
	}
	if src == sourceFile {
		return StateFile
	}
	return StateDefault
}

func (t *Tables) loadZodiac(r *Repository) CategoryStatus {
	data, src := r.categorySource(CategoryZodiac)
	if src == sourceNone {
		return CategoryStatus{CategoryZodiac, StateEmpty}
	}
	var v ZodiacRelations
	state := r.decode(CategoryZodiac, data, src, &v)
	if state != StateEmpty {
		t.Zodiac = v
	}
	return CategoryStatus{CategoryZodiac, state}
}

func (t *Tables) loadMarkers(r *Repository) CategoryStatus {
	data, src := r.categorySource(CategoryMarkers)
	if src == sourceNone {
		return CategoryStatus{CategoryMarkers, StateEmpty}
	}
	var v MarkerTables
	state := r.decode(CategoryMarkers, data, src, &v)
	if state != StateEmpty {
		t.Markers = v
	}
	return CategoryStatus{CategoryMarkers, state}
}

func (t *Tables) loadTraits(r *Repository) CategoryStatus {
	data, src := r.categorySource(CategoryTraits)
	if src == sourceNone {
		return CategoryStatus{CategoryTraits, StateEmpty}
	}
	var v map[string]TraitSet
	state := r.decode(CategoryTraits, data, src, &v)
	if state != StateEmpty && v != nil {
		t.TenGodTraits = v
	}
	return CategoryStatus{CategoryTraits, state}
}

func (t *Tables) loadCareers(r *Repository) CategoryStatus {
	data, src := r.categorySource(CategoryCareers)
	if src == sourceNone {
		return CategoryStatus{CategoryCareers, StateEmpty}
	}
	var v map[string]CareerTable
	state := r.decode(CategoryCareers, data, src, &v)
	if state != StateEmpty && v != nil {
		t.PatternCareers = v
	}
	return CategoryStatus{CategoryCareers, state}
}

func (t *Tables) loadScoring(r *Repository) CategoryStatus {
	data, src := r.categorySource(CategoryScoring)
	if src == sourceNone {
		return CategoryStatus{CategoryScoring, StateEmpty}
	}
	var v map[string][]ScoreRule
	state := r.decode(CategoryScoring, data, src, &v)
	if state != StateEmpty && v != nil {
		t.Scoring = v
	}
	return CategoryStatus{CategoryScoring, state}
}

package calendar

import "time"

// TermDate is one principal solar term with its boundary instant.
type TermDate struct {
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}

// principalTerms lists the twelve principal terms in calendar order with
// their approximate civil dates. Exact astronomical timing is out of scope;
// the almanac files refine these when present.
var principalTerms = []struct {
	name  string
	month time.Month
	day   int
}{
	{"小寒", time.January, 6},
	{"立春", time.February, 4},
	{"惊蛰", time.March, 6},
	{"清明", time.April, 5},
	{"立夏", time.May, 6},
	{"芒种", time.June, 6},
	{"小暑", time.July, 7},
	{"立秋", time.August, 8},
	{"白露", time.September, 8},
	{"寒露", time.October, 8},
	{"立冬", time.November, 7},
	{"大雪", time.December, 7},
}

// monthTermTags maps a civil month to the "after term X" label used in chart
// metadata.
var monthTermTags = map[int]string{
	1:  "小寒后",
	2:  "立春后",
	3:  "惊蛰后",
	4:  "春分后",
	5:  "立夏后",
	6:  "芒种后",
	7:  "小暑后",
	8:  "立秋后",
	9:  "白露后",
	10: "寒露后",
	11: "立冬后",
	12: "大雪后",
}

// approximateTerms builds the twelve term dates for a year from the fixed
// calendar approximations, at midnight UTC.
func approximateTerms(year int) []TermDate {
	terms := make([]TermDate, 0, len(principalTerms))
	for _, pt := range principalTerms {
		terms = append(terms, TermDate{
			Name: pt.name,
			At:   time.Date(year, pt.month, pt.day, 0, 0, 0, 0, time.UTC),
		})
	}
	return terms
}

// TermDates returns the twelve principal term boundaries for a year in
// calendar order. Almanac data is preferred when available; otherwise the
// calendar approximations are used.
func (e *Engine) TermDates(year int) []TermDate {
	if e.almanac != nil {
		terms, err := e.almanac.TermsForYear(year)
		if err == nil && len(terms) == len(principalTerms) {
			return terms
		}
		if err != nil {
			e.log.Warn().Err(err).Int("year", year).Msg("Almanac lookup failed, using approximations")
		}
	}
	return approximateTerms(year)
}

package ganzhi

import "time"

// Epoch anchors: 1900 is a 庚子 year and 1900-01-01 is a 甲子 day. All pillar
// arithmetic offsets from these two fixed points.
const (
	epochYear       = 1900
	epochYearStem   = 6
	epochYearBranch = 0
)

var epochDay = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// YearIndices returns the stem and branch cycle positions of a calendar
// year's pillar.
func YearIndices(year int) (stemIdx, branchIdx int) {
	diff := year - epochYear
	return floorMod(epochYearStem+diff, 10), floorMod(epochYearBranch+diff, 12)
}

// DayIndices returns the stem and branch cycle positions of a calendar day's
// pillar, counted in whole days from the epoch day.
func DayIndices(year int, month time.Month, day int) (stemIdx, branchIdx int) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	days := int(t.Sub(epochDay).Hours() / 24)
	return floorMod(days, 10), floorMod(days, 12)
}

// MonthBranchIndex returns the branch position governing a calendar month,
// with solar-term boundaries approximated by month: January is 寅.
func MonthBranchIndex(month time.Month) int {
	return floorMod(int(month)+1, 12)
}

// fiveTigerBases keys the month-stem base position by yearStem%5
// (甲己→丙, 乙庚→戊, 丙辛→庚, 丁壬→壬, 戊癸→甲).
var fiveTigerBases = [5]int{2, 4, 6, 8, 0}

// MonthStemIndex derives the month pillar's stem from the year stem via the
// five-tiger rule: the per-year base advanced by the month branch position.
func MonthStemIndex(yearStemIdx, monthBranchIdx int) int {
	base := fiveTigerBases[floorMod(yearStemIdx, 10)%5]
	return floorMod(base+monthBranchIdx, 10)
}

// fiveRatBases keys the hour-stem base position by dayStem%5
// (甲己→甲, 乙庚→丙, 丙辛→戊, 丁壬→庚, 戊癸→壬).
var fiveRatBases = [5]int{0, 2, 4, 6, 8}

// HourStemIndex derives the hour pillar's stem from the day stem via the
// five-rat rule, structurally the same advance as the month stem.
func HourStemIndex(dayStemIdx, hourBranchIdx int) int {
	base := fiveRatBases[floorMod(dayStemIdx, 10)%5]
	return floorMod(base+hourBranchIdx, 10)
}

// HourBranchIndex returns the branch position of the two-hour period that
// contains the given clock hour. The 子 period spans 23:00-00:59.
func HourBranchIndex(hour int) int {
	return floorMod((hour+1)/2, 12)
}

// Package ganzhi implements the sexagenary stem-branch system that underpins
// four-pillar chart construction: the ten heavenly stems, the twelve earthly
// branches, their element and polarity attributions, the hidden stems carried
// by each branch, and the element generation/destruction cycles.
package ganzhi

// Stem is one of the ten heavenly stems (天干).
type Stem string

// Branch is one of the twelve earthly branches (地支).
type Branch string

// Element is one of the five elements (五行).
type Element string

// Polarity is the yin/yang attribution of a stem or branch.
type Polarity string

// The five elements, in generation-cycle order.
const (
	Wood  Element = "木"
	Fire  Element = "火"
	Earth Element = "土"
	Metal Element = "金"
	Water Element = "水"
)

// Polarities.
const (
	Yang Polarity = "阳"
	Yin  Polarity = "阴"
)

// Stems lists the ten heavenly stems in cycle order.
var Stems = []Stem{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}

// Branches lists the twelve earthly branches in cycle order.
var Branches = []Branch{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}

// Elements lists the five elements in generation-cycle order.
var Elements = []Element{Wood, Fire, Earth, Metal, Water}

var stemElements = map[Stem]Element{
	"甲": Wood, "乙": Wood,
	"丙": Fire, "丁": Fire,
	"戊": Earth, "己": Earth,
	"庚": Metal, "辛": Metal,
	"壬": Water, "癸": Water,
}

var branchElements = map[Branch]Element{
	"子": Water, "丑": Earth, "寅": Wood, "卯": Wood,
	"辰": Earth, "巳": Fire, "午": Fire, "未": Earth,
	"申": Metal, "酉": Metal, "戌": Earth, "亥": Water,
}

// hiddenStems holds the intrinsic secondary stems of each branch, principal
// stem first. Fixed classical attribution, 1-3 entries per branch.
var hiddenStems = map[Branch][]Stem{
	"子": {"癸"},
	"丑": {"己", "癸", "辛"},
	"寅": {"甲", "丙", "戊"},
	"卯": {"乙"},
	"辰": {"戊", "乙", "癸"},
	"巳": {"丙", "戊", "庚"},
	"午": {"丁", "己"},
	"未": {"己", "丁", "乙"},
	"申": {"庚", "壬", "戊"},
	"酉": {"辛"},
	"戌": {"戊", "辛", "丁"},
	"亥": {"壬", "甲"},
}

// generates maps each element to the one it produces (木生火, 火生土, ...).
var generates = map[Element]Element{
	Wood:  Fire,
	Fire:  Earth,
	Earth: Metal,
	Metal: Water,
	Water: Wood,
}

// destroys maps each element to the one it overcomes (木克土, 土克水, ...).
var destroys = map[Element]Element{
	Wood:  Earth,
	Earth: Water,
	Water: Fire,
	Fire:  Metal,
	Metal: Wood,
}

// clashPartners holds the six-clash (六冲) branch pairing.
var clashPartners = map[Branch]Branch{
	"子": "午", "午": "子",
	"丑": "未", "未": "丑",
	"寅": "申", "申": "寅",
	"卯": "酉", "酉": "卯",
	"辰": "戌", "戌": "辰",
	"巳": "亥", "亥": "巳",
}

// harmonyPartners holds the six-harmony (六合) branch pairing.
var harmonyPartners = map[Branch]Branch{
	"子": "丑", "丑": "子",
	"寅": "亥", "亥": "寅",
	"卯": "戌", "戌": "卯",
	"辰": "酉", "酉": "辰",
	"巳": "申", "申": "巳",
	"午": "未", "未": "午",
}

// zodiacs lists the zodiac animals aligned with the branch cycle (子 = 鼠).
var zodiacs = []string{"鼠", "牛", "虎", "兔", "龙", "蛇", "马", "羊", "猴", "鸡", "狗", "猪"}

var stemIndexes = make(map[Stem]int, len(Stems))
var branchIndexes = make(map[Branch]int, len(Branches))

func init() {
	for i, s := range Stems {
		stemIndexes[s] = i
	}
	for i, b := range Branches {
		branchIndexes[b] = i
	}
}

// StemAt returns the stem at cycle position i. Negative and out-of-range
// positions wrap.
func StemAt(i int) Stem {
	return Stems[floorMod(i, 10)]
}

// BranchAt returns the branch at cycle position i. Negative and out-of-range
// positions wrap.
func BranchAt(i int) Branch {
	return Branches[floorMod(i, 12)]
}

// StemIndex returns the cycle position of s, or -1 for an unknown symbol.
func StemIndex(s Stem) int {
	if i, ok := stemIndexes[s]; ok {
		return i
	}
	return -1
}

// BranchIndex returns the cycle position of b, or -1 for an unknown symbol.
func BranchIndex(b Branch) int {
	if i, ok := branchIndexes[b]; ok {
		return i
	}
	return -1
}

// Valid reports whether s is one of the ten stems.
func (s Stem) Valid() bool {
	_, ok := stemIndexes[s]
	return ok
}

// Element returns the element of the stem.
func (s Stem) Element() Element {
	return stemElements[s]
}

// Polarity returns the yin/yang attribution of the stem. Stems at even cycle
// positions are yang.
func (s Stem) Polarity() Polarity {
	if stemIndexes[s]%2 == 0 {
		return Yang
	}
	return Yin
}

// Valid reports whether b is one of the twelve branches.
func (b Branch) Valid() bool {
	_, ok := branchIndexes[b]
	return ok
}

// Element returns the element of the branch.
func (b Branch) Element() Element {
	return branchElements[b]
}

// Polarity returns the yin/yang attribution of the branch. Branches at even
// cycle positions are yang.
func (b Branch) Polarity() Polarity {
	if branchIndexes[b]%2 == 0 {
		return Yang
	}
	return Yin
}

// HiddenStems returns the branch's hidden stems, principal first. The result
// is a copy; callers may not mutate the table through it.
func (b Branch) HiddenStems() []Stem {
	src := hiddenStems[b]
	out := make([]Stem, len(src))
	copy(out, src)
	return out
}

// ClashPartner returns the branch's six-clash opposite.
func (b Branch) ClashPartner() Branch {
	return clashPartners[b]
}

// HarmonyPartner returns the branch's six-harmony counterpart.
func (b Branch) HarmonyPartner() Branch {
	return harmonyPartners[b]
}

// Zodiac returns the zodiac animal aligned with the branch.
func (b Branch) Zodiac() string {
	i, ok := branchIndexes[b]
	if !ok {
		return ""
	}
	return zodiacs[i]
}

// ZodiacBranch returns the branch whose zodiac animal is name, or an empty
// branch when the name is unknown.
func ZodiacBranch(name string) Branch {
	for i, z := range zodiacs {
		if z == name {
			return Branches[i]
		}
	}
	return ""
}

// Generates returns the element e produces in the generation cycle.
func Generates(e Element) Element {
	return generates[e]
}

// GeneratorOf returns the element that produces e.
func GeneratorOf(e Element) Element {
	for src, dst := range generates {
		if dst == e {
			return src
		}
	}
	return ""
}

// Destroys returns the element e overcomes in the destruction cycle.
func Destroys(e Element) Element {
	return destroys[e]
}

// DestroyerOf returns the element that overcomes e.
func DestroyerOf(e Element) Element {
	for src, dst := range destroys {
		if dst == e {
			return src
		}
	}
	return ""
}

// floorMod returns a mod n with the sign of n, so negative cycle offsets wrap
// forward instead of truncating toward zero.
func floorMod(a, n int) int {
	return ((a % n) + n) % n
}

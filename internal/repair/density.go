package repair

// DensityThreshold is the corruption density above which a text block is
// considered systematically broken rather than merely containing a few
// legitimate special characters. Chosen empirically.
const DensityThreshold = 0.2

// runeRange is an inclusive range of code points.
type runeRange struct {
	lo, hi rune
}

// Script ranges expected in clean extracted text. Anything outside these
// (and plain whitespace) is treated as a corruption suspect.
var allowedRanges = []runeRange{
	{0x0020, 0x007E}, // basic Latin
	{0x0900, 0x097F}, // Devanagari
	{0x0C00, 0x0C7F}, // Telugu
	{0x1E00, 0x1EFF}, // Latin Extended Additional (transliteration diacritics)
	{0x4E00, 0x9FFF}, // CJK unified ideographs
	{0x3040, 0x309F}, // hiragana
	{0x30A0, 0x30FF}, // katakana
	{0x0600, 0x06FF}, // Arabic
}

// latinExtendedA covers U+0100..U+017F. The detector allows it (documents
// legitimately use macron vowels like ā and ī), but the map builder still
// treats it as suspect: several known corrupt glyphs (Œ, Š) live there.
var latinExtendedA = runeRange{0x0100, 0x017F}

func inRange(r rune, rr runeRange) bool {
	return r >= rr.lo && r <= rr.hi
}

// suspect reports whether r falls outside the expected-script allow-list.
// allowLatinExtA widens the allow-list with Latin Extended-A.
func suspect(r rune, allowLatinExtA bool) bool {
	switch r {
	case '\t', '\n', '\r':
		return false
	}
	if allowLatinExtA && inRange(r, latinExtendedA) {
		return false
	}
	for _, rr := range allowedRanges {
		if inRange(r, rr) {
			return false
		}
	}
	return true
}

// Density returns the fraction of text's characters falling outside the
// expected-script allow-list, in [0, 1]. Empty input yields 0.
func Density(text string) float64 {
	if text == "" {
		return 0
	}

	total := 0
	suspects := 0
	for _, r := range text {
		total++
		if suspect(r, true) {
			suspects++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(suspects) / float64(total)
}

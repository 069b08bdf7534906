package repair

import (
	"sort"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
)

// SampleLength is the maximum length in runes of each sample handed to the
// map builder. Bounding samples caps the size of any escalation prompt built
// from them.
const SampleLength = 800

// commonDiacritics maps corrupt glyphs produced by legacy font encodings to
// their corrected characters. The entries cover the diacritic-corruption
// patterns observed in transliterated texts (IAST romanisation) plus a few
// general Latin substitutions.
var commonDiacritics = map[string]string{
	"‚": "ṛ", // ‚ -> ṛ
	"ƒ": "ā", // ƒ -> ā
	"†": "ṇ", // † -> ṇ
	"‰": "ṣ", // ‰ -> ṣ
	"Œ": "ī", // Œ -> ī
	"‘": "ṭ", // ' -> ṭ
	"’": "'",
	"Š": "ñ", // Š -> ñ
	"‡": "ā", // ‡ -> ā
	"ˆ": "ū", // ˆ -> ū
	"…": "ṁ", // … -> ṁ
	"Đ": `"`, // Đ
	"“": `"`,
	"”": `"`,
	"Ð": `"`, // Ð
	"Ä": "A",
	"ä": "a",
	"Ö": "O",
	"ö": "o",
	"Ü": "U",
	"ü": "u",
	"ß": "ss",
}

// StatisticalResult is the outcome of building a repair map from samples.
type StatisticalResult struct {
	// Map holds the substitutions resolved from the built-in table.
	Map domain.RepairMap

	// Unmapped lists distinct corrupt characters the table could not
	// resolve, sorted, for optional escalation to a language model.
	Unmapped []string
}

// BuildStatisticalMap scans the samples for characters outside the
// expected-script allow-list and resolves each distinct one against the
// built-in substitution table. It never fails: absent or empty samples
// yield empty outputs.
func BuildStatisticalMap(samples []string) StatisticalResult {
	corrupt := make(map[string]struct{})
	for _, sample := range samples {
		for _, r := range sample {
			// Latin Extended-A stays suspect here: known corrupt glyphs
			// such as Œ and Š live in that block.
			if suspect(r, false) {
				corrupt[string(r)] = struct{}{}
			}
		}
	}

	result := StatisticalResult{Map: make(domain.RepairMap)}
	for ch := range corrupt {
		if fixed, ok := commonDiacritics[ch]; ok {
			result.Map[ch] = fixed
		} else {
			result.Unmapped = append(result.Unmapped, ch)
		}
	}
	sort.Strings(result.Unmapped)

	return result
}

// SmartSamples selects sample texts for map building: the two pages with the
// highest corruption density plus the structural middle page for topical
// diversity, de-duplicated and truncated to SampleLength runes each.
func SmartSamples(chunks []domain.Chunk) []string {
	if len(chunks) == 0 {
		return nil
	}

	// Score once per chunk; Density walks the whole text.
	type scoredChunk struct {
		text    string
		density float64
	}
	scored := make([]scoredChunk, len(chunks))
	for i, c := range chunks {
		scored[i] = scoredChunk{text: c.Text, density: Density(c.Text)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].density > scored[j].density
	})

	candidates := []string{scored[0].text}
	if len(scored) > 1 {
		candidates = append(candidates, scored[1].text)
	}
	candidates = append(candidates, chunks[len(chunks)/2].Text)

	seen := make(map[string]struct{}, len(candidates))
	samples := make([]string, 0, len(candidates))
	for _, text := range candidates {
		if text == "" {
			continue
		}
		text = truncateRunes(text, SampleLength)
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		samples = append(samples, text)
	}

	return samples
}

// truncateRunes returns s truncated to at most n runes.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

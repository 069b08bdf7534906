package repair

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
)

// Apply rewrites text using the repair map and returns the cleaned result.
// The input is normalised to NFKC first, then every key is replaced with its
// correction as a literal substring, longest keys first so multi-character
// junk sequences are not partially shadowed by single-character keys.
//
// Apply is idempotent provided no replacement value in the map is itself a
// key. That is an assumed invariant of learned maps, not enforced here.
func Apply(text string, m domain.RepairMap) string {
	if text == "" || len(m) == 0 {
		return text
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	clean := norm.NFKC.String(text)
	for _, junk := range keys {
		clean = strings.ReplaceAll(clean, junk, m[junk])
	}

	return strings.TrimSpace(clean)
}

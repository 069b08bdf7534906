package repair

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		text string
		m    domain.RepairMap
		want string
	}{
		{
			"nil map is a no-op",
			"unchanged",
			nil,
			"unchanged",
		},
		{
			"empty map is a no-op",
			"unchanged",
			domain.RepairMap{},
			"unchanged",
		},
		{
			"single substitution",
			"Śrīla is ƒtma",
			domain.RepairMap{"ƒ": "ā"},
			"Śrīla is ātma",
		},
		{
			"longest key wins",
			"ab",
			domain.RepairMap{"ab": "X", "a": "Y"},
			"X",
		},
		{
			"all occurrences replaced",
			"ƒ-ƒ-ƒ",
			domain.RepairMap{"ƒ": "a"},
			"a-a-a",
		},
		{
			"result is trimmed",
			"  padded ƒ  ",
			domain.RepairMap{"ƒ": "x"},
			"padded x",
		},
		{
			"multi-character value",
			"groß",
			domain.RepairMap{"ß": "ss"},
			"gross",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.text, tt.m))
		})
	}
}

func TestApplyIdempotent(t *testing.T) {
	// For any map where no value is also a key, applying twice equals
	// applying once.
	m := domain.RepairMap{
		"ƒ": "ā",
		"†": "ṇ",
		"ab":     "X",
	}
	inputs := []string{
		"ƒtmƒ and †a",
		"abab",
		"clean text with no junk",
	}

	for _, text := range inputs {
		once := Apply(text, m)
		twice := Apply(once, m)
		assert.Equal(t, once, twice, "input %q", text)
	}
}

func TestApplyNormalisesFirst(t *testing.T) {
	// U+0041 U+0304 (A + combining macron) composes to U+0100 under NFKC
	// before key matching, so a key for the composed form still hits.
	m := domain.RepairMap{"Ā": "A"}
	assert.Equal(t, "A", Apply("Ā", m))
}

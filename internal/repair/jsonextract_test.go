package repair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
)

func TestFirstJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"bare object", `{"a":"b"}`, `{"a":"b"}`, true},
		{"prose around object", `Here you go: {"a":"b"} hope that helps!`, `{"a":"b"}`, true},
		{"code fence", "```json\n{\"a\":\"b\"}\n```", `{"a":"b"}`, true},
		{"nested object", `{"a":{"b":"c"}}`, `{"a":{"b":"c"}}`, true},
		{"brace inside string", `{"a":"}"}`, `{"a":"}"}`, true},
		{"escaped quote inside string", `{"a":"\"}"}`, `{"a":"\"}"}`, true},
		{"first of two objects", `{"a":"1"} {"b":"2"}`, `{"a":"1"}`, true},
		{"no object", "no json here", "", false},
		{"unbalanced", `{"a":"b"`, "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstJSONObject(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeMapping(t *testing.T) {
	t.Run("valid mapping", func(t *testing.T) {
		m, ok := DecodeMapping(`The corrections are {"ƒ": "ā", "†": "ṇ"} as requested.`)

		require.True(t, ok)
		assert.Equal(t, domain.RepairMap{"ƒ": "ā", "†": "ṇ"}, m)
	})

	t.Run("non-string values fail decode", func(t *testing.T) {
		m, ok := DecodeMapping(`{"a": 1}`)

		assert.False(t, ok)
		assert.Nil(t, m)
	})

	t.Run("empty object is no mappings", func(t *testing.T) {
		m, ok := DecodeMapping(`{}`)

		assert.False(t, ok)
		assert.Nil(t, m)
	})

	t.Run("garbage is no mappings", func(t *testing.T) {
		m, ok := DecodeMapping("I could not determine any mappings.")

		assert.False(t, ok)
		assert.Nil(t, m)
	})
}

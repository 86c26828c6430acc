package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolOutput(t *testing.T) {
	t.Run("CleanJSON", func(t *testing.T) {
		out := ParseToolOutput(`{"summary": "grow local search"}`)
		assert.JSONEq(t, `{"summary": "grow local search"}`, string(out))
	})

	t.Run("FencedJSON", func(t *testing.T) {
		out := ParseToolOutput("```json\n{\"summary\": \"x\"}\n```")
		assert.JSONEq(t, `{"summary": "x"}`, string(out))
	})

	t.Run("FenceWithoutLanguageTag", func(t *testing.T) {
		out := ParseToolOutput("```\n{\"a\": 1}\n```")
		assert.JSONEq(t, `{"a": 1}`, string(out))
	})

	t.Run("JSONEmbeddedInProse", func(t *testing.T) {
		out := ParseToolOutput(`Sure! Here is your plan: {"goals": ["more leads"]} Hope this helps.`)
		assert.JSONEq(t, `{"goals": ["more leads"]}`, string(out))
	})

	t.Run("ArrayAccepted", func(t *testing.T) {
		out := ParseToolOutput(`[{"week": 1}]`)
		assert.JSONEq(t, `[{"week": 1}]`, string(out))
	})

	t.Run("PlainTextFallsBackToRawText", func(t *testing.T) {
		out := ParseToolOutput("I cannot produce JSON right now.")
		var parsed map[string]string
		require.NoError(t, json.Unmarshal(out, &parsed))
		assert.Equal(t, "I cannot produce JSON right now.", parsed["raw_text"])
	})

	t.Run("BareScalarFallsBack", func(t *testing.T) {
		out := ParseToolOutput(`42`)
		var parsed map[string]string
		require.NoError(t, json.Unmarshal(out, &parsed))
		assert.Equal(t, "42", parsed["raw_text"])
	})

	t.Run("FallbackIsAlwaysValidJSON", func(t *testing.T) {
		out := ParseToolOutput(`broken "quotes and {half objects`)
		assert.True(t, json.Valid(out))
	})
}

package llmjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObject(t *testing.T) {
	t.Run("Payload With Prose", func(t *testing.T) {
		payload, err := ExtractObject(`Sure! {"title":"A"} done`)
		require.NoError(t, err)
		assert.Equal(t, `{"title":"A"}`, payload)
	})

	t.Run("No Braces", func(t *testing.T) {
		_, err := ExtractObject("no braces here")
		assert.ErrorIs(t, err, ErrNoPayload)
	})

	t.Run("Markdown Fences", func(t *testing.T) {
		payload, err := ExtractObject("```json\n{\"a\":1}\n```")
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, payload)
	})

	t.Run("Greedy Outer Span", func(t *testing.T) {
		payload, err := ExtractObject(`x {"a":{"b":2}} y`)
		require.NoError(t, err)
		assert.Equal(t, `{"a":{"b":2}}`, payload)
	})

	t.Run("Closing Before Opening", func(t *testing.T) {
		_, err := ExtractObject("} then {")
		assert.ErrorIs(t, err, ErrNoPayload)
	})
}

func TestDecodeInto(t *testing.T) {
	t.Run("Valid Payload", func(t *testing.T) {
		var out struct {
			Title string `json:"title"`
		}
		err := DecodeInto(`The answer: {"title":"A"}`, &out)
		require.NoError(t, err)
		assert.Equal(t, "A", out.Title)
	})

	t.Run("Malformed Payload", func(t *testing.T) {
		var out map[string]any
		err := DecodeInto(`{"title": unquoted}`, &out)
		assert.ErrorIs(t, err, ErrMalformedPayload)
		// The raw text rides along for diagnosis.
		assert.Contains(t, err.Error(), "unquoted")
	})

	t.Run("Missing Payload", func(t *testing.T) {
		var out map[string]any
		err := DecodeInto("nothing structured", &out)
		assert.ErrorIs(t, err, ErrNoPayload)
	})
}

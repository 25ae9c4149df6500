package middleware

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeJSON(t *testing.T) {
	t.Run("strips tags from nested values", func(t *testing.T) {
		body := []byte(`{
			"name": "<b>Acme</b>",
			"nested": {"title": "hello <script>bad()</script>"},
			"tags": ["<img src=x>", "clean"]
		}`)

		sanitized, err := SanitizeJSON(body)
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(sanitized, &doc))
		assert.Equal(t, "bAcme/b", doc["name"])
		assert.Equal(t, "hello scriptbad()/script", doc["nested"].(map[string]any)["title"])
		assert.Equal(t, "img src=x", doc["tags"].([]any)[0])
		assert.Equal(t, "clean", doc["tags"].([]any)[1])
	})

	t.Run("strips script URIs and event handlers", func(t *testing.T) {
		sanitized, err := SanitizeJSON([]byte(`{"url":"JavaScript:alert(1)","attr":"x onclick=steal()"}`))
		require.NoError(t, err)

		var doc map[string]string
		require.NoError(t, json.Unmarshal(sanitized, &doc))
		assert.Equal(t, "alert(1)", doc["url"])
		assert.Equal(t, "x steal()", doc["attr"])
	})

	t.Run("leaves numbers, booleans, and nulls alone", func(t *testing.T) {
		sanitized, err := SanitizeJSON([]byte(`{"count":3,"active":true,"note":null}`))
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(sanitized, &doc))
		assert.Equal(t, float64(3), doc["count"])
		assert.Equal(t, true, doc["active"])
		assert.Nil(t, doc["note"])
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		_, err := SanitizeJSON([]byte(`{"name":`))
		assert.Error(t, err)
	})

	t.Run("accepts top-level arrays", func(t *testing.T) {
		sanitized, err := SanitizeJSON([]byte(`["<a>", 1]`))
		require.NoError(t, err)

		var doc []any
		require.NoError(t, json.Unmarshal(sanitized, &doc))
		assert.Equal(t, "a", doc[0])
	})
}

package shared

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name   string `json:"name"`
		Amount string `json:"amount"`
	}

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"card","amount":"10.50"}`))

		var p payload
		require.NoError(t, DecodeJSON(req, &p))
		assert.Equal(t, "card", p.Name)
		assert.Equal(t, "10.50", p.Amount)
	})

	t.Run("unknown fields are tolerated", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"card","extra":true}`))

		var p payload
		require.NoError(t, DecodeJSON(req, &p))
		assert.Equal(t, "card", p.Name)
	})

	t.Run("malformed body fails", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":`))

		var p payload
		assert.Error(t, DecodeJSON(req, &p))
	})

	t.Run("oversized body fails", func(t *testing.T) {
		huge := `{"name":"` + strings.Repeat("x", maxRequestBody+1) + `"}`
		req := httptest.NewRequest("POST", "/", strings.NewReader(huge))

		var p payload
		assert.Error(t, DecodeJSON(req, &p))
	})
}

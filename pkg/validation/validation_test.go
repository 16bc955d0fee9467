package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID       string `json:"id" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

type request struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Items []item `json:"items" validate:"required,min=1,dive"`
}

func TestFieldErrors_UsesJSONNames(t *testing.T) {
	v := New()

	err := v.Struct(request{Email: "nope", Items: []item{{Quantity: 0}}})
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, "required", fields["name"])
	assert.Equal(t, "email", fields["email"])
	assert.Equal(t, "required", fields["items[0].id"])
	assert.Equal(t, "min", fields["items[0].quantity"])
}

func TestDecodeAndValidate(t *testing.T) {
	v := New()

	t.Run("valid", func(t *testing.T) {
		body := `{"name":"Ada","items":[{"id":"1","quantity":2}]}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

		var out request
		require.NoError(t, DecodeAndValidate(rec, req, &out, v))
		assert.Equal(t, "Ada", out.Name)
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))

		var out request
		assert.Error(t, DecodeAndValidate(rec, req, &out, v))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation failure", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"items":[]}`))

		var out request
		assert.Error(t, DecodeAndValidate(rec, req, &out, v))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "validation_failed")
	})
}

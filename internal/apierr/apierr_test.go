package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Respond(c, err)
	return w
}

func TestRespond(t *testing.T) {
	t.Run("APIError", func(t *testing.T) {
		w := respond(NotFound("demo not found"))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"demo not found"}}`, w.Body.String())
	})

	t.Run("ServiceUnavailable", func(t *testing.T) {
		w := respond(ServiceUnavailable("storage not available"))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "SERVICE_UNAVAILABLE")
	})

	t.Run("WrappedAPIErrorUnwraps", func(t *testing.T) {
		wrapped := fmt.Errorf("handler: %w", BadRequest("bad limit"))
		w := respond(wrapped)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_PARAMETER")
	})

	t.Run("PlainErrorBecomesInternal", func(t *testing.T) {
		w := respond(errors.New("boom"))
		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	})
}

func TestUpstreamCarriesCause(t *testing.T) {
	err := Upstream("content generation failed", errors.New("status 502"))
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.Equal(t, "status 502", err.Details)
}

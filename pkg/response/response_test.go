package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func TestSuccessEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "rid-1")

	Success(c, http.StatusCreated, map[string]string{"k": "v"}, "created")

	assert.Equal(t, http.StatusCreated, w.Code)
	m := decode(t, w)
	assert.Equal(t, float64(201), m["statusCode"])
	assert.Equal(t, true, m["success"])
	assert.Equal(t, "created", m["message"])
	assert.Equal(t, "rid-1", m["requestId"])
	assert.Equal(t, map[string]any{"k": "v"}, m["data"])
	assert.NotContains(t, m, "errors")
}

func TestErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, 0, "bad input", map[string]string{"email": "is required"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	m := decode(t, w)
	assert.Equal(t, false, m["success"])
	assert.Equal(t, "bad input", m["message"])
	assert.NotContains(t, m, "data")
	assert.NotContains(t, m, "requestId")
	assert.Equal(t, map[string]any{"email": "is required"}, m["errors"])
}

func TestAbortStopsChain(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Abort(c, http.StatusUnauthorized, "token missing")
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

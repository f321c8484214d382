package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercekit/fulfillment/pkg/logger"
)

func TestRequestLogger_EnrichesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logger.NewWithWriter("fulfillment", "info", &buf)

	var sawCorrelation bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := logger.FromContext(r.Context())
		l.Info("inside handler")
		sawCorrelation = true
		w.WriteHeader(http.StatusNoContent)
	})

	mw := RequestLogging(base)(RequestLogger(base)(handler))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("X-Correlation-ID", "corr-42")
	req.Header.Set("X-User-ID", "user-7")
	rec := httptest.NewRecorder()

	mw.ServeHTTP(rec, req)

	require.True(t, sawCorrelation)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "corr-42", rec.Header().Get("X-Correlation-ID"))

	// The handler log line carries the enriched fields.
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var found bool
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry["msg"] == "inside handler" {
			assert.Equal(t, "corr-42", entry["correlation_id"])
			assert.Equal(t, "user-7", entry["user_id"])
			found = true
		}
	}
	assert.True(t, found, "expected handler log line")
}

func TestRequestLogging_GeneratesCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	base := logger.NewWithWriter("fulfillment", "info", &buf)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	RequestLogging(base)(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestRecovery_ReturnsInternalError(t *testing.T) {
	var buf bytes.Buffer
	base := logger.NewWithWriter("fulfillment", "info", &buf)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	Recovery(base)(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "panic recovered")
}

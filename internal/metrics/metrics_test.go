package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAuth(t *testing.T) {
	m := New()

	m.RecordAuth("login", OutcomeSuccess)
	m.RecordAuth("login", OutcomeSuccess)
	m.RecordAuth("login", OutcomeFailure)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthEvents.WithLabelValues("login", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthEvents.WithLabelValues("login", OutcomeFailure)))
}

func TestRecordAuth_NilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.RecordAuth("login", OutcomeSuccess) })
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordAuth("logout", OutcomeSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `auth_events_total{event="logout",outcome="success"} 1`)
}

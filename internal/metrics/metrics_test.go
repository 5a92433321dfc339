package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.Evaluations.WithLabelValues("BTC-USD", "short", "Buy").Inc()
	m.FetchErrors.WithLabelValues("yahoo").Add(2)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `predictor_evaluations_total{asset="BTC-USD",horizon="short",signal="Buy"} 1`)
	assert.Contains(t, body, `predictor_fetch_errors_total{source="yahoo"} 2`)
}

func TestNewUsesPrivateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}

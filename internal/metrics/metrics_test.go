package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/interview-engine/internal/lifecycle"
)

func TestObserveTransitionAndAdmission(t *testing.T) {
	m := New()
	m.ObserveTransition(lifecycle.StatusScheduled, lifecycle.StatusInProgress)
	m.ObserveTransition(lifecycle.StatusScheduled, lifecycle.StatusInProgress)
	m.ObserveAdmission("admitted")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TransitionCounter(lifecycle.StatusScheduled, lifecycle.StatusInProgress)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AdmissionCounter("admitted")))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/interviews/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/interviews/abc", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/interviews/{id}", "404")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "interviewd_http_requests_total"))
	assert.False(t, strings.Contains(body, "/interviews/abc"))
}

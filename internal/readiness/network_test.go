package readiness

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPLatencyProberMeasuresHead(t *testing.T) {
	t.Parallel()

	seen := make(chan *http.Request, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Clone(context.Background())
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	prober := NewHTTPLatencyProber(server.URL, time.Second)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	prober.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * 120 * time.Millisecond)
	}

	rtt, err := prober.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120*time.Millisecond, rtt)
	req := <-seen
	assert.Equal(t, http.MethodHead, req.Method)
	assert.Equal(t, "no-store", req.Header.Get("Cache-Control"))
	assert.Equal(t, QualityGood, ClassifyLatency(rtt))
}

func TestHTTPLatencyProberRejectsErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	_, err := NewHTTPLatencyProber(server.URL, time.Second).Probe(context.Background())
	assert.Error(t, err)
}

func TestClassifyLatencyBoundaries(t *testing.T) {
	t.Parallel()

	assert.Equal(t, QualityGood, ClassifyLatency(199*time.Millisecond))
	assert.Equal(t, QualityFair, ClassifyLatency(200*time.Millisecond))
	assert.Equal(t, QualityFair, ClassifyLatency(499*time.Millisecond))
	assert.Equal(t, QualityPoor, ClassifyLatency(500*time.Millisecond))
}

package readiness

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// LatencyProber measures a round trip to a fixed endpoint.
type LatencyProber interface {
	Probe(ctx context.Context) (time.Duration, error)
}

// LatencyProberFunc adapts a function to LatencyProber.
type LatencyProberFunc func(ctx context.Context) (time.Duration, error)

// Probe calls f.
func (f LatencyProberFunc) Probe(ctx context.Context) (time.Duration, error) {
	return f(ctx)
}

// HTTPLatencyProber times a HEAD request against URL.
type HTTPLatencyProber struct {
	Client  *http.Client
	URL     string
	Timeout time.Duration
	now     func() time.Time
}

// NewHTTPLatencyProber returns a prober for url with a bounded timeout.
func NewHTTPLatencyProber(url string, timeout time.Duration) *HTTPLatencyProber {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPLatencyProber{Client: http.DefaultClient, URL: url, Timeout: timeout, now: time.Now}
}

// Probe issues one uncached request and returns the elapsed time.
func (p *HTTPLatencyProber) Probe(ctx context.Context) (time.Duration, error) {
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	now := p.now
	if now == nil {
		now = time.Now
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("build latency request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")

	start := now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("latency request: %w", err)
	}
	elapsed := now().Sub(start)
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return 0, fmt.Errorf("latency request: unexpected status %d", resp.StatusCode)
	}
	return elapsed, nil
}

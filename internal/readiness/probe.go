package readiness

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrProberClosed is returned by Recheck after Close.
var ErrProberClosed = errors.New("readiness: prober closed")

// ProberOption customises a Prober.
type ProberOption func(*Prober)

// WithFrameInterval overrides the level monitor sampling interval.
func WithFrameInterval(interval time.Duration) ProberOption {
	return func(p *Prober) { p.frameInterval = interval }
}

// WithLogger attaches a logger for teardown failures.
func WithLogger(logger *slog.Logger) ProberOption {
	return func(p *Prober) { p.logger = logger }
}

// Prober runs the device and network checks. Only the most recent Recheck
// may publish results or keep a capture stream; every stream it acquires is
// released on supersession, error or Close.
type Prober struct {
	devices       MediaDevices
	network       LatencyProber
	frameInterval time.Duration
	logger        *slog.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	checks     map[CheckKind]Check
	monitor    *LevelMonitor
	closed     bool
}

// NewProber wires a prober to its capture and latency boundaries.
func NewProber(devices MediaDevices, network LatencyProber, opts ...ProberOption) *Prober {
	p := &Prober{
		devices:       devices,
		network:       network,
		frameInterval: DefaultFrameInterval,
		logger:        slog.Default(),
		checks:        make(map[CheckKind]Check, 3),
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, kind := range Kinds() {
		p.checks[kind] = NewCheck(kind)
	}
	return p
}

type captureResult struct {
	camera     Check
	microphone Check
	stream     Stream
}

func (r captureResult) release() error {
	if r.stream == nil {
		return nil
	}
	return r.stream.Stop()
}

// Recheck tears down any previous run, then runs the capture and latency
// probes concurrently. A run overtaken by a newer Recheck releases what it
// acquired and returns ErrSuperseded without touching the published checks.
func (p *Prober) Recheck(ctx context.Context) ([]Check, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrProberClosed
	}
	p.generation++
	gen := p.generation
	if p.cancel != nil {
		p.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	p.cancel = cancel
	previous := p.monitor
	p.monitor = nil
	for _, kind := range Kinds() {
		check := NewCheck(kind)
		check.Status = CheckChecking
		p.checks[kind] = check
	}
	p.mu.Unlock()

	p.stopMonitor(previous)

	var (
		capture captureResult
		network Check
	)
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		capture = p.runCapture(gctx)
		return nil
	})
	g.Go(func() error {
		network = p.runNetwork(gctx)
		return nil
	})
	_ = g.Wait()

	p.mu.Lock()
	if gen != p.generation || p.closed {
		p.mu.Unlock()
		p.release(capture)
		return nil, ErrSuperseded
	}
	p.cancel = nil

	if err := ctx.Err(); err != nil {
		for _, kind := range Kinds() {
			p.checks[kind] = NewCheck(kind)
		}
		p.mu.Unlock()
		p.release(capture)
		return nil, err
	}

	p.checks[KindCamera] = capture.camera
	p.checks[KindMicrophone] = capture.microphone
	p.checks[KindNetwork] = network
	if capture.stream != nil {
		monitor, err := StartLevelMonitor(capture.stream, p.frameInterval)
		if err != nil {
			p.logger.Warn("level monitor unavailable", slog.String("error", err.Error()))
		}
		p.monitor = monitor
	}
	result := p.snapshotLocked()
	p.mu.Unlock()
	return result, nil
}

func (p *Prober) runCapture(ctx context.Context) captureResult {
	stream, err := p.devices.OpenCapture(ctx, Constraints{Audio: true, Video: true})
	if err == nil && stream == nil {
		err = errNoCaptureStream
	}
	camera, microphone := captureChecks(stream, err)
	result := captureResult{camera: camera, microphone: microphone}
	if err != nil {
		return result
	}
	if camera.Status == CheckPassed && microphone.Status == CheckPassed {
		result.stream = stream
		return result
	}
	p.release(captureResult{stream: stream})
	return result
}

func (p *Prober) runNetwork(ctx context.Context) Check {
	if p.network == nil {
		return networkCheck(0, errors.New("no latency prober configured"))
	}
	rtt, err := p.network.Probe(ctx)
	return networkCheck(rtt, err)
}

func (p *Prober) release(r captureResult) {
	if err := r.release(); err != nil {
		p.logger.Warn("release capture stream", slog.String("error", err.Error()))
	}
}

func (p *Prober) stopMonitor(m *LevelMonitor) {
	if err := m.Stop(); err != nil {
		p.logger.Warn("stop level monitor", slog.String("error", err.Error()))
	}
}

// Checks returns the published checks in camera, microphone, network order.
func (p *Prober) Checks() []Check {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Prober) snapshotLocked() []Check {
	out := make([]Check, 0, len(p.checks))
	for _, kind := range Kinds() {
		out = append(out, p.checks[kind])
	}
	return out
}

// Level returns the current microphone level in 0..100.
func (p *Prober) Level() int {
	p.mu.Lock()
	monitor := p.monitor
	p.mu.Unlock()
	return monitor.Level()
}

// Close cancels any running recheck and releases the active stream.
func (p *Prober) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	monitor := p.monitor
	p.monitor = nil
	p.mu.Unlock()
	return monitor.Stop()
}

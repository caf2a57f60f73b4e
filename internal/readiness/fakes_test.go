package readiness

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type fakeAnalyser struct {
	value  uint8
	closed atomic.Int32
}

func (a *fakeAnalyser) BinCount() int { return 8 }

func (a *fakeAnalyser) FrequencyData(dst []uint8) {
	for i := range dst {
		dst[i] = a.value
	}
}

func (a *fakeAnalyser) Close() error {
	a.closed.Add(1)
	return nil
}

type fakeStream struct {
	video    bool
	audio    bool
	analyser *fakeAnalyser
	stops    atomic.Int32
}

func newFakeStream(level uint8) *fakeStream {
	return &fakeStream{video: true, audio: true, analyser: &fakeAnalyser{value: level}}
}

func (s *fakeStream) HasVideo() bool { return s.video }
func (s *fakeStream) HasAudio() bool { return s.audio }

func (s *fakeStream) Analyser() (AudioAnalyser, error) { return s.analyser, nil }

func (s *fakeStream) Stop() error {
	s.stops.Add(1)
	return nil
}

func (s *fakeStream) stopped() bool { return s.stops.Load() > 0 }

type captureCall func(ctx context.Context) (Stream, error)

type fakeDevices struct {
	mu    sync.Mutex
	calls []captureCall
	count atomic.Int32
}

func (d *fakeDevices) push(call captureCall) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, call)
}

func (d *fakeDevices) OpenCapture(ctx context.Context, _ Constraints) (Stream, error) {
	d.mu.Lock()
	idx := int(d.count.Add(1)) - 1
	call := d.calls[len(d.calls)-1]
	if idx < len(d.calls) {
		call = d.calls[idx]
	}
	d.mu.Unlock()
	return call(ctx)
}

func returns(stream Stream, err error) captureCall {
	return func(context.Context) (Stream, error) { return stream, err }
}

func fixedLatency(rtt time.Duration) LatencyProber {
	return LatencyProberFunc(func(context.Context) (time.Duration, error) { return rtt, nil })
}

type domError struct{ name string }

func (e domError) Error() string { return e.name + ": capture failed" }
func (e domError) Name() string  { return e.name }

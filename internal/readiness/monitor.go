package readiness

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultFrameInterval approximates one animation frame.
const DefaultFrameInterval = 16 * time.Millisecond

// LevelMonitor samples microphone amplitude once per frame for UI feedback.
// It owns the stream it was started with: Stop always stops the stream and
// closes the analyser.
type LevelMonitor struct {
	stream   Stream
	analyser AudioAnalyser
	level    atomic.Int32
	cancel   context.CancelFunc
	done     chan struct{}

	stopOnce sync.Once
	stopErr  error
}

// StartLevelMonitor takes ownership of stream. On error the stream has
// already been stopped.
func StartLevelMonitor(stream Stream, interval time.Duration) (*LevelMonitor, error) {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	analyser, err := stream.Analyser()
	if err != nil {
		return nil, errors.Join(err, stream.Stop())
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &LevelMonitor{
		stream:   stream,
		analyser: analyser,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go m.loop(ctx, interval)
	return m, nil
}

func (m *LevelMonitor) loop(ctx context.Context, interval time.Duration) {
	defer close(m.done)

	bins := m.analyser.BinCount()
	if bins <= 0 {
		bins = 128
	}
	buf := make([]uint8, bins)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.analyser.FrequencyData(buf)
			m.level.Store(int32(AudioLevel(buf)))
		}
	}
}

// Level returns the latest sampled level in 0..100.
func (m *LevelMonitor) Level() int {
	if m == nil {
		return 0
	}
	return int(m.level.Load())
}

// Stop ends sampling and releases the stream and analyser. It is idempotent.
func (m *LevelMonitor) Stop() error {
	if m == nil {
		return nil
	}
	m.stopOnce.Do(func() {
		m.cancel()
		<-m.done
		m.level.Store(0)
		m.stopErr = errors.Join(m.analyser.Close(), m.stream.Stop())
	})
	return m.stopErr
}

// AudioLevel converts frequency samples into a 0..100 level.
func AudioLevel(samples []uint8) int {
	if len(samples) == 0 {
		return 0
	}
	sum := 0
	for _, v := range samples {
		sum += int(v)
	}
	average := float64(sum) / float64(len(samples))
	level := average / 128 * 100
	if level > 100 {
		level = 100
	}
	return int(level)
}

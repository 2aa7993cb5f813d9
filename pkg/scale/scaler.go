package scale

import (
	"sync"
	"time"

	"github.com/lmshao/remote-desk/pkg/frame"
	"github.com/lmshao/remote-desk/pkg/graph"
)

// Scaler is the Video Scaler processor.
type Scaler struct {
	graph.BaseSink
	out *graph.Fanout

	mu  sync.RWMutex
	cfg Config

	stats stats
}

// New constructs a Scaler. Returns nil if cfg fails Validate (target
// dimensions must both be positive), matching the spec's
// "initialize returns false" boundary behavior.
func New(cfg Config) *Scaler {
	if err := cfg.Validate(); err != nil {
		return nil
	}
	return &Scaler{
		BaseSink: graph.NewBaseSink(),
		out:      graph.NewFanout(),
		cfg:      cfg,
	}
}

func (s *Scaler) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// UpdateConfig swaps the active configuration; rejects an invalid one.
func (s *Scaler) UpdateConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	return nil
}

func (s *Scaler) AddSink(sink graph.Sink) { s.out.AddSink(sink) }
func (s *Scaler) RemoveSink(sink graph.Sink) { s.out.RemoveSink(sink) }
func (s *Scaler) ClearSinks()             { s.out.ClearSinks() }
func (s *Scaler) SinkCount() int          { return s.out.SinkCount() }
func (s *Scaler) HasSinks() bool          { return s.out.HasSinks() }
func (s *Scaler) Deliver(f *frame.Frame)  { s.out.Deliver(f) }

// Stats returns a snapshot of the running counters.
func (s *Scaler) Stats() Snapshot { return s.stats.snapshot() }

// OnFrame resamples f to the configured target and delivers the result.
// Non-video or invalid input, and any format other than BGRA32/RGBA32,
// is dropped (frames_dropped++). Forwards unchanged (zero-copy) when the
// computed target already equals the input's dimensions.
func (s *Scaler) OnFrame(f *frame.Frame) {
	if !f.IsValid() || !f.Format().IsVideo() {
		s.stats.recordDropped()
		return
	}
	if !supportedInput(f.Format()) {
		s.stats.recordDropped()
		return
	}

	cfg := s.Config()
	targetW, targetH := targetDimensions(f.Width(), f.Height(), cfg)

	if targetW == f.Width() && targetH == f.Height() {
		s.stats.recordProcessed(f.Width(), f.Height(), targetW, targetH, 0)
		s.Deliver(f)
		return
	}

	if cfg.Algorithm != Bilinear {
		// Only bilinear is implemented in the MVP; other named algorithms
		// are reserved and drop for now.
		s.stats.recordDropped()
		return
	}

	start := time.Now()
	out := bilinearResample(f.Bytes(), f.Width(), f.Height(), targetW, targetH)
	elapsed := time.Since(start).Seconds()

	result := frame.New(f.Format(), targetW, targetH, out, targetW*f.Format().BytesPerPixel())
	result.SetFrameRate(f.FrameRate())
	result.SetTimestamp(f.Timestamp())
	result.SetKeyframe(f.IsKeyframe())

	s.stats.recordProcessed(f.Width(), f.Height(), targetW, targetH, elapsed)
	s.Deliver(result)
}

package convert

import (
	"sync"
	"sync/atomic"

	"github.com/lmshao/remote-desk/pkg/frame"
	"github.com/lmshao/remote-desk/pkg/graph"
)

// Converter is the Pixel-Format Converter processor. It is passive: Start
// and Stop are the default BaseSink no-ops, and OnFrame both consumes and
// (via the embedded Fanout) produces.
type Converter struct {
	graph.BaseSink
	out *graph.Fanout

	mu     sync.Mutex
	output frame.Format

	framesProcessed atomic.Uint64
	framesDropped   atomic.Uint64
}

// New constructs a Converter targeting cfg.OutputFormat. Panics only if
// OutputFormat is not one of the formats this converter supports — callers
// should Validate cfg first in normal operation.
func New(cfg Config) *Converter {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	c := &Converter{
		BaseSink: graph.NewBaseSink(),
		out:      graph.NewFanout(),
		output:   cfg.OutputFormat,
	}
	return c
}

// SetOutputFormat changes the target format. Calling it again with the
// same format already in effect has no observable effect beyond the first
// call, per the spec's idempotence property.
func (c *Converter) SetOutputFormat(f frame.Format) error {
	if !supported(f) {
		return errInvalid("unsupported output_format " + f.String())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.output = f
	return nil
}

func (c *Converter) OutputFormat() frame.Format {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.output
}

// Node-graph Source methods delegate to the embedded Fanout.
func (c *Converter) AddSink(s graph.Sink)    { c.out.AddSink(s) }
func (c *Converter) RemoveSink(s graph.Sink) { c.out.RemoveSink(s) }
func (c *Converter) ClearSinks()             { c.out.ClearSinks() }
func (c *Converter) SinkCount() int          { return c.out.SinkCount() }
func (c *Converter) HasSinks() bool          { return c.out.HasSinks() }
func (c *Converter) Deliver(f *frame.Frame)  { c.out.Deliver(f) }

func (c *Converter) FramesProcessed() uint64 { return c.framesProcessed.Load() }
func (c *Converter) FramesDropped() uint64   { return c.framesDropped.Load() }

// OnFrame converts f to the configured output format and delivers the
// result. Zero-copy forward when f is already in that format; drop
// (frames_dropped++) for invalid input, unsupported source formats, or an
// I420 target with odd input dimensions.
func (c *Converter) OnFrame(f *frame.Frame) {
	if !f.IsValid() || !f.Format().IsVideo() {
		c.framesDropped.Add(1)
		return
	}

	target := c.OutputFormat()
	if f.Format() == target {
		c.framesProcessed.Add(1)
		c.Deliver(f)
		return
	}

	if target == frame.I420 {
		if f.Width()%2 != 0 || f.Height()%2 != 0 {
			c.framesDropped.Add(1)
			return
		}
		in, ok := layoutOf(f.Format())
		if !ok {
			c.framesDropped.Add(1)
			return
		}
		out := rgbToI420(f.Bytes(), f.Width(), f.Height(), in)
		result := frame.New(frame.I420, f.Width(), f.Height(), out, 0)
		result.SetFrameRate(f.FrameRate())
		result.SetTimestamp(f.Timestamp())
		result.SetKeyframe(f.IsKeyframe())
		c.framesProcessed.Add(1)
		c.Deliver(result)
		return
	}

	inLayout, inOK := layoutOf(f.Format())
	outLayout, outOK := layoutOf(target)
	if !inOK || !outOK {
		// I420 -> anything and any other unsupported pairing is not
		// required in the MVP.
		c.framesDropped.Add(1)
		return
	}

	out := reorderRGB(f.Bytes(), f.Width(), f.Height(), inLayout, outLayout)
	stride := f.Width() * outLayout.bpp
	result := frame.New(target, f.Width(), f.Height(), out, stride)
	result.SetFrameRate(f.FrameRate())
	result.SetTimestamp(f.Timestamp())
	result.SetKeyframe(f.IsKeyframe())
	c.framesProcessed.Add(1)
	c.Deliver(result)
}

package capture

import (
	"github.com/lmshao/remote-desk/pkg/frame"
	"github.com/lmshao/remote-desk/pkg/graph"
)

// Source adapts an Engine's single FrameCallback into a graph.Source's
// ordered fan-out, the same bridging role the teacher's SharedVideoSource
// plays between one GStreamer pipeline and many subscribed clients
// (shared_video_source.go): one producer underneath, N sinks on top.
type Source struct {
	engine Engine
	out    *graph.Fanout
}

// NewSource wraps engine, wiring its frame callback straight into a fresh
// Fanout's Deliver.
func NewSource(engine Engine) *Source {
	s := &Source{engine: engine, out: graph.NewFanout()}
	engine.SetFrameCallback(s.out.Deliver)
	return s
}

func (s *Source) ID() uint64 { return s.out.ID() }

func (s *Source) AddSink(sink graph.Sink) { s.out.AddSink(sink) }
func (s *Source) RemoveSink(sink graph.Sink) { s.out.RemoveSink(sink) }
func (s *Source) ClearSinks()              { s.out.ClearSinks() }
func (s *Source) SinkCount() int           { return s.out.SinkCount() }
func (s *Source) HasSinks() bool           { return s.out.HasSinks() }
func (s *Source) Deliver(f *frame.Frame)   { s.out.Deliver(f) }

// Initialize validates cfg and acquires the underlying engine's platform
// handles; must be called before Start.
func (s *Source) Initialize(cfg Config) error { return s.engine.Initialize(cfg) }

// Start satisfies pipeline.Startable.
func (s *Source) Start() bool { return s.engine.Start() == nil }

// Stop satisfies pipeline.Stoppable.
func (s *Source) Stop() { s.engine.Stop() }

func (s *Source) IsRunning() bool { return s.engine.IsRunning() }

// Engine returns the wrapped engine for callers that need
// AvailableScreens/UpdateConfig.
func (s *Source) Engine() Engine { return s.engine }

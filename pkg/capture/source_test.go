package capture

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmshao/remote-desk/pkg/frame"
	"github.com/lmshao/remote-desk/pkg/graph"
)

type fakeEngine struct {
	cb      FrameCallback
	started bool
	running bool
}

func (e *fakeEngine) Initialize(cfg Config) error { return nil }
func (e *fakeEngine) Start() error                { e.started = true; e.running = true; return nil }
func (e *fakeEngine) Stop()                       { e.running = false }
func (e *fakeEngine) IsRunning() bool             { return e.running }
func (e *fakeEngine) AvailableScreens() ([]ScreenInfo, error) { return nil, nil }
func (e *fakeEngine) SetFrameCallback(cb FrameCallback)       { e.cb = cb }
func (e *fakeEngine) UpdateConfig(cfg Config) error           { return nil }

type capturingSink struct {
	graph.BaseSink
	mu     sync.Mutex
	frames []*frame.Frame
}

func (s *capturingSink) OnFrame(f *frame.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
}

func TestSourceBridgesEngineCallbackToFanout(t *testing.T) {
	engine := &fakeEngine{}
	src := NewSource(engine)

	sink := &capturingSink{BaseSink: graph.NewBaseSink()}
	sink.Start()
	src.AddSink(sink)
	assert.Equal(t, 1, src.SinkCount())

	require.NoError(t, src.Initialize(Config{FrameRate: 30}))
	assert.True(t, src.Start())
	assert.True(t, src.IsRunning())

	buf := make([]byte, 4*2*4)
	f := frame.New(frame.BGRA32, 4, 2, buf, 0)
	engine.cb(f)

	sink.mu.Lock()
	assert.Len(t, sink.frames, 1)
	sink.mu.Unlock()

	src.Stop()
	assert.False(t, src.IsRunning())
}

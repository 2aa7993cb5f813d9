package encode

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmshao/remote-desk/pkg/frame"
	"github.com/lmshao/remote-desk/pkg/graph"
)

// fakeBackend stands in for gstBackend so the queue/worker contract can be
// tested without a real GStreamer runtime.
type fakeBackend struct {
	mu             sync.Mutex
	started        bool
	onPacket       func(packet)
	pushed         int
	lastBitrate    int
	forcedKeyframe bool
	flushed        bool
	stopped        bool
	startErr       error
}

func (b *fakeBackend) start(cfg Config, onPacket func(packet)) error {
	if b.startErr != nil {
		return b.startErr
	}
	b.mu.Lock()
	b.started = true
	b.onPacket = onPacket
	b.mu.Unlock()
	return nil
}

func (b *fakeBackend) push(f *frame.Frame) {
	b.mu.Lock()
	b.pushed++
	cb := b.onPacket
	b.mu.Unlock()
	if cb != nil {
		cb(packet{data: []byte{1, 2, 3}, isKeyframe: true, pts: f.Timestamp()})
	}
}

func (b *fakeBackend) forceKeyframe()      { b.forcedKeyframe = true }
func (b *fakeBackend) setBitrate(kbps int) { b.lastBitrate = kbps }
func (b *fakeBackend) flush()              { b.flushed = true }
func (b *fakeBackend) stop()               { b.stopped = true }

func newTestEncoder(t *testing.T) (*Encoder, *fakeBackend) {
	t.Helper()
	cfg := Config{Width: 640, Height: 480, FPS: 30, Bitrate: 1000, KeyframeInterval: 60, InputFormat: frame.I420, OutputFormat: frame.H264}
	require.NoError(t, cfg.Validate())
	e := &Encoder{BaseSink: graph.NewBaseSink(), out: graph.NewFanout(), cfg: cfg, backend: &fakeBackend{}}
	return e, e.backend.(*fakeBackend)
}

type captureSink struct {
	graph.BaseSink
	mu  sync.Mutex
	got []*frame.Frame
}

func (s *captureSink) OnFrame(f *frame.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, f)
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func TestConfigValidation(t *testing.T) {
	assert.Error(t, Config{}.Validate())
	assert.NoError(t, Config{Width: 1, Height: 1, FPS: 1, Bitrate: 1, OutputFormat: frame.H264}.Validate())
}

func TestOnFrameDropsWhenNotRunning(t *testing.T) {
	e, backend := newTestEncoder(t)
	f := frame.New(frame.I420, 640, 480, make([]byte, 640*480+2*320*240), 0)
	e.OnFrame(f)
	assert.Equal(t, uint64(1), e.FramesDropped())
	assert.Equal(t, 0, backend.pushed)
}

func TestStartEncodesAndDeliversPackets(t *testing.T) {
	e, _ := newTestEncoder(t)
	sink := &captureSink{BaseSink: graph.NewBaseSink()}
	e.AddSink(sink)

	require.True(t, e.Start())
	defer e.Stop()

	f := frame.New(frame.I420, 640, 480, make([]byte, 640*480+2*320*240), 0)
	f.SetTimestamp(12345)
	e.OnFrame(f)

	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestStopFlushesAndStopsBackend(t *testing.T) {
	e, backend := newTestEncoder(t)
	require.True(t, e.Start())
	e.Stop()

	assert.True(t, backend.flushed)
	assert.True(t, backend.stopped)
	assert.False(t, e.IsRunning())
}

func TestStopIsIdempotent(t *testing.T) {
	e, _ := newTestEncoder(t)
	require.True(t, e.Start())
	e.Stop()
	assert.NotPanics(t, func() { e.Stop() })
}

func TestForceKeyframeDelegatesToBackend(t *testing.T) {
	e, backend := newTestEncoder(t)
	require.True(t, e.Start())
	defer e.Stop()

	e.ForceKeyframe()
	assert.True(t, backend.forcedKeyframe)
}

func TestSetBitrateUpdatesBackendAndConfig(t *testing.T) {
	e, backend := newTestEncoder(t)
	require.True(t, e.Start())
	defer e.Stop()

	e.SetBitrate(2000)
	assert.Equal(t, 2000, backend.lastBitrate)
	assert.Equal(t, 2000, e.cfg.Bitrate)
}

// blockingBackend's push blocks until released, letting a test fill the
// bounded queue faster than the worker can drain it.
type blockingBackend struct {
	release chan struct{}
}

func (b *blockingBackend) start(cfg Config, onPacket func(packet)) error { return nil }
func (b *blockingBackend) push(f *frame.Frame)                           { <-b.release }
func (b *blockingBackend) forceKeyframe()                                {}
func (b *blockingBackend) setBitrate(kbps int)                          {}
func (b *blockingBackend) flush()                                       {}
func (b *blockingBackend) stop()                                        {}

func TestQueueFullDropsFrames(t *testing.T) {
	cfg := Config{Width: 640, Height: 480, FPS: 30, Bitrate: 1000, OutputFormat: frame.H264}
	bb := &blockingBackend{release: make(chan struct{})}
	e := &Encoder{BaseSink: graph.NewBaseSink(), out: graph.NewFanout(), cfg: cfg, backend: bb}
	require.True(t, e.Start())

	f := frame.New(frame.I420, 640, 480, make([]byte, 640*480+2*320*240), 0)
	for i := 0; i < queueDepth+4; i++ {
		e.OnFrame(f)
	}

	assert.Greater(t, e.FramesDropped(), uint64(0))
	close(bb.release)
	e.Stop()
}

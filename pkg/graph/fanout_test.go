package graph

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmshao/remote-desk/pkg/frame"
)

type recordingSink struct {
	BaseSink
	mu      sync.Mutex
	frames  []*frame.Frame
	running bool
}

func newRecordingSink() *recordingSink {
	s := &recordingSink{BaseSink: NewBaseSink()}
	s.running = true
	return s
}

func (s *recordingSink) OnFrame(f *frame.Frame) {
	if !s.running {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
}

func (s *recordingSink) IsRunning() bool { return s.running }

func solidFrame() *frame.Frame {
	buf := make([]byte, 4*2*4)
	return frame.New(frame.BGRA32, 4, 2, buf, 0)
}

func TestFanoutOrderAndDuplicates(t *testing.T) {
	src := NewFanout()
	var order []int
	var mu sync.Mutex
	makeSink := func(tag int) Sink {
		s := newRecordingSink()
		return &orderedSink{recordingSink: s, tag: tag, order: &order, mu: &mu}
	}

	s1 := makeSink(1)
	s2 := makeSink(2)
	src.AddSink(s1)
	src.AddSink(s2)
	src.AddSink(s1) // duplicate, rejected

	assert.Equal(t, 2, src.SinkCount())

	src.Deliver(solidFrame())
	assert.Equal(t, []int{1, 2}, order)
}

type orderedSink struct {
	*recordingSink
	tag   int
	order *[]int
	mu    *sync.Mutex
}

func (s *orderedSink) OnFrame(f *frame.Frame) {
	s.mu.Lock()
	*s.order = append(*s.order, s.tag)
	s.mu.Unlock()
	s.recordingSink.OnFrame(f)
}

func TestFanoutDropsInvalidFrames(t *testing.T) {
	src := NewFanout()
	sink := newRecordingSink()
	src.AddSink(sink)

	invalid := frame.New(frame.BGRA32, 4, 2, nil, 0)
	src.Deliver(invalid)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Empty(t, sink.frames)
}

func TestFanoutRemoveAndClear(t *testing.T) {
	src := NewFanout()
	s1 := newRecordingSink()
	s2 := newRecordingSink()
	src.AddSink(s1)
	src.AddSink(s2)
	require.Equal(t, 2, src.SinkCount())

	src.RemoveSink(s1)
	assert.Equal(t, 1, src.SinkCount())

	src.ClearSinks()
	assert.False(t, src.HasSinks())
}

func TestFanoutZeroCopy(t *testing.T) {
	src := NewFanout()
	var got1, got2 *frame.Frame
	sink1 := &captureSink{recordingSink: newRecordingSink(), dst: &got1}
	sink2 := &captureSink{recordingSink: newRecordingSink(), dst: &got2}
	src.AddSink(sink1)
	src.AddSink(sink2)

	f := solidFrame()
	src.Deliver(f)

	assert.Same(t, f, got1)
	assert.Same(t, f, got2)
}

type captureSink struct {
	*recordingSink
	dst **frame.Frame
}

func (s *captureSink) OnFrame(f *frame.Frame) {
	*s.dst = f
	s.recordingSink.OnFrame(f)
}

package encode

import (
	"sync"
	"sync/atomic"

	"github.com/lmshao/remote-desk/pkg/frame"
	"github.com/lmshao/remote-desk/pkg/graph"
)

// queueDepth bounds the encoder's input queue; OnFrame drops rather than
// blocks when it's full, per the spec's backpressure policy for active
// processors.
const queueDepth = 8

// backend is the seam between the encoder's queue/worker bookkeeping and
// the actual codec. The production backend drives a GStreamer pipeline
// (see gst.go); tests substitute a fake to exercise the contract without a
// real GStreamer runtime, the same way the library this is grounded on
// keeps gst_pipeline.go entirely untested and relies on a nocgo stub for
// builds without it.
type backend interface {
	start(cfg Config, onPacket func(packet)) error
	push(f *frame.Frame)
	forceKeyframe()
	setBitrate(kbps int)
	flush()
	stop()
}

type packet struct {
	data       []byte
	isKeyframe bool
	pts        int64
}

// Encoder is the Video Encoder processor. Unlike every other processor in
// this module it is active: Start spins up a worker goroutine that drains
// a bounded queue into the codec backend.
type Encoder struct {
	graph.BaseSink
	out *graph.Fanout

	mu      sync.Mutex
	cfg     Config
	backend backend

	queue chan *frame.Frame
	wg    sync.WaitGroup

	framesQueued  atomic.Uint64
	framesDropped atomic.Uint64
}

// New constructs an Encoder for cfg, wired to a real GStreamer backend.
func New(cfg Config) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Encoder{
		BaseSink: graph.NewBaseSink(),
		out:      graph.NewFanout(),
		cfg:      cfg,
		backend:  newGstBackend(),
	}, nil
}

func (e *Encoder) AddSink(s graph.Sink)     { e.out.AddSink(s) }
func (e *Encoder) RemoveSink(s graph.Sink)  { e.out.RemoveSink(s) }
func (e *Encoder) ClearSinks()              { e.out.ClearSinks() }
func (e *Encoder) SinkCount() int           { return e.out.SinkCount() }
func (e *Encoder) HasSinks() bool           { return e.out.HasSinks() }
func (e *Encoder) Deliver(f *frame.Frame)   { e.out.Deliver(f) }
func (e *Encoder) FramesDropped() uint64    { return e.framesDropped.Load() }

// Start spins up the codec backend and the queue-draining worker.
// Overrides BaseSink.Start since the encoder is the documented active
// exception to the passive-processor model.
func (e *Encoder) Start() bool {
	if e.IsRunning() {
		return true
	}

	e.mu.Lock()
	cfg := e.cfg
	e.mu.Unlock()

	if err := e.backend.start(cfg, e.onPacket); err != nil {
		return false
	}

	e.mu.Lock()
	e.queue = make(chan *frame.Frame, queueDepth)
	e.mu.Unlock()
	e.BaseSink.Start()
	e.wg.Add(1)
	go e.loop()
	return true
}

// Stop closes the queue, joins the worker once it has pushed every queued
// frame to the backend, then flushes and stops the backend. Stop detaches
// the queue under e.mu before closing it, and OnFrame looks the queue up
// and sends on it under the same lock, so a concurrent OnFrame either
// finishes its send first or finds no queue; it can never send on a
// closed channel — a naive running-flag check before the send would leave
// exactly that window open (spec §4.1: OnFrame must not panic).
func (e *Encoder) Stop() {
	if !e.IsRunning() {
		return
	}
	e.BaseSink.Stop()

	e.mu.Lock()
	queue := e.queue
	e.queue = nil
	e.mu.Unlock()

	if queue != nil {
		close(queue)
	}
	e.wg.Wait()
	e.backend.flush()
	e.backend.stop()
}

func (e *Encoder) loop() {
	defer e.wg.Done()
	e.mu.Lock()
	queue := e.queue
	e.mu.Unlock()
	for f := range queue {
		e.backend.push(f)
	}
}

// OnFrame enqueues a raw frame for encoding. Non-blocking: drops the frame
// and bumps frames_dropped when the queue is full, already closed, or the
// encoder isn't running. The queue lookup and the send happen under the
// same lock Stop uses to close it, so this can never race a concurrent
// Stop into sending on a closed channel.
func (e *Encoder) OnFrame(f *frame.Frame) {
	if !f.IsValid() {
		e.framesDropped.Add(1)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queue == nil {
		e.framesDropped.Add(1)
		return
	}
	select {
	case e.queue <- f:
		e.framesQueued.Add(1)
	default:
		e.framesDropped.Add(1)
	}
}

// ForceKeyframe makes the next encoded packet a keyframe.
func (e *Encoder) ForceKeyframe() {
	if e.IsRunning() {
		e.backend.forceKeyframe()
	}
}

// SetBitrate live-adjusts the target bitrate in kbps.
func (e *Encoder) SetBitrate(kbps int) {
	e.mu.Lock()
	e.cfg.Bitrate = kbps
	e.mu.Unlock()
	if e.IsRunning() {
		e.backend.setBitrate(kbps)
	}
}

// UpdateConfig replaces the configuration; requires a restart to take
// full effect on pipeline-shape fields (dimensions, format), matching the
// spec's "may require restart" note.
func (e *Encoder) UpdateConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	wasRunning := e.IsRunning()
	if wasRunning {
		e.Stop()
	}
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
	if wasRunning {
		e.Start()
	}
	return nil
}

// Flush drains remaining packets from the backend without stopping.
func (e *Encoder) Flush() {
	if e.IsRunning() {
		e.backend.flush()
	}
}

// onPacket receives one encoded packet from the backend and delivers it
// downstream as a new Frame.
func (e *Encoder) onPacket(p packet) {
	out := frame.New(e.outputFormat(), e.width(), e.height(), p.data, 0)
	out.SetTimestamp(p.pts)
	out.SetKeyframe(p.isKeyframe)
	out.SetFrameRate(e.fps())
	e.Deliver(out)
}

func (e *Encoder) outputFormat() frame.Format {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.OutputFormat
}

func (e *Encoder) width() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.Width
}

func (e *Encoder) height() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.Height
}

func (e *Encoder) fps() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.FPS
}

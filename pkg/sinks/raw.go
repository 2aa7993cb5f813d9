package sinks

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/lmshao/remote-desk/pkg/frame"
	"github.com/lmshao/remote-desk/pkg/graph"
)

// RawWriter is a Sink that appends each delivered frame's payload
// unchanged to a file — the ".bgra"/".rgba"/".yuv" dumper spec.md §6
// names alongside the Y4M writer. No container framing: consumers are
// expected to already know width/height/format out of band.
type RawWriter struct {
	graph.BaseSink

	path string

	mu   sync.Mutex
	file *os.File

	framesWritten atomic.Uint64
	framesDropped atomic.Uint64
	bytesWritten  atomic.Uint64
}

func NewRawWriter(path string) *RawWriter {
	return &RawWriter{BaseSink: graph.NewBaseSink(), path: path}
}

func (r *RawWriter) Start() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		f, err := os.Create(r.path)
		if err != nil {
			return false
		}
		r.file = f
	}
	return r.BaseSink.Start()
}

func (r *RawWriter) Stop() {
	r.BaseSink.Stop()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}
}

// OnFrame appends the frame's raw payload. Invalid frames, or frames
// arriving while not running, are dropped and counted.
func (r *RawWriter) OnFrame(f *frame.Frame) {
	if !r.IsRunning() || !f.IsValid() {
		r.framesDropped.Add(1)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		r.framesDropped.Add(1)
		return
	}

	n, err := r.file.Write(f.Bytes()[:f.Size()])
	if err != nil {
		r.framesDropped.Add(1)
		return
	}
	r.framesWritten.Add(1)
	r.bytesWritten.Add(uint64(n))
}

func (r *RawWriter) FramesWritten() uint64 { return r.framesWritten.Load() }
func (r *RawWriter) FramesDropped() uint64 { return r.framesDropped.Load() }
func (r *RawWriter) BytesWritten() uint64  { return r.bytesWritten.Load() }

// Package sinks provides the example terminal sinks spec.md §6 calls out
// as part of the test suite: a Y4M container writer and a raw pixel
// dumper. Neither is a deliverable in its own right (§1 Non-goals:
// "file-format writer completeness") — they exist to give the pipeline a
// real place to terminate in tests and the demo harnesses, grounded on
// the teacher's file-backed Recording (api/pkg/desktop/recording.go),
// which opens one *os.File at start and appends to it frame by frame.
package sinks

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/lmshao/remote-desk/pkg/frame"
	"github.com/lmshao/remote-desk/pkg/graph"
)

// Y4MWriter is a Sink that writes I420 frames as a YUV4MPEG2 ("Y4M")
// stream: one stream header, then one "FRAME\n" + raw plane bytes per
// delivered frame, exactly as spec.md §6 describes. Only I420 input is
// accepted; anything else is dropped (and counted) like any other
// unsupported-format case in this codebase.
type Y4MWriter struct {
	graph.BaseSink

	path string

	mu            sync.Mutex
	file          *os.File
	w             *bufio.Writer
	headerWritten bool

	framesWritten atomic.Uint64
	framesDropped atomic.Uint64
}

// NewY4MWriter builds a writer for path. The file is created lazily on
// the first Start call so repeated Initialize/Start cycles don't
// truncate an already-open file.
func NewY4MWriter(path string) *Y4MWriter {
	return &Y4MWriter{BaseSink: graph.NewBaseSink(), path: path}
}

func (y *Y4MWriter) Start() bool {
	y.mu.Lock()
	defer y.mu.Unlock()
	if y.file == nil {
		f, err := os.Create(y.path)
		if err != nil {
			return false
		}
		y.file = f
		y.w = bufio.NewWriter(f)
	}
	return y.BaseSink.Start()
}

func (y *Y4MWriter) Stop() {
	y.BaseSink.Stop()
	y.mu.Lock()
	defer y.mu.Unlock()
	if y.w != nil {
		y.w.Flush()
	}
	if y.file != nil {
		y.file.Close()
		y.file = nil
		y.w = nil
		y.headerWritten = false
	}
}

// OnFrame writes the stream header (once, sized from the first frame)
// followed by a "FRAME\n" marker and the frame's raw I420 payload.
// Non-I420, invalid, or post-Stop frames are dropped and counted.
func (y *Y4MWriter) OnFrame(f *frame.Frame) {
	if !y.IsRunning() || !f.IsValid() || f.Format() != frame.I420 {
		y.framesDropped.Add(1)
		return
	}

	y.mu.Lock()
	defer y.mu.Unlock()
	if y.w == nil {
		y.framesDropped.Add(1)
		return
	}

	if !y.headerWritten {
		fps := f.FrameRate()
		if fps <= 0 {
			fps = 30
		}
		fmt.Fprintf(y.w, "YUV4MPEG2 W%d H%d F%d:1 Ip A1:1 C420jpeg\n", f.Width(), f.Height(), fps)
		y.headerWritten = true
	}

	y.w.WriteString("FRAME\n")
	y.w.Write(f.Bytes()[:f.Size()])
	y.framesWritten.Add(1)
}

func (y *Y4MWriter) FramesWritten() uint64 { return y.framesWritten.Load() }
func (y *Y4MWriter) FramesDropped() uint64 { return y.framesDropped.Load() }

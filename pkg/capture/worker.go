package capture

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// CaptureFunc performs one capture attempt. It returns a non-nil *Error
// only for conditions the worker loop should surface (e.g. access lost);
// a timeout/no-new-frame poll returns (false, nil) to mean "nothing to
// emit this tick, keep going" per the spec.
type CaptureFunc func() (emitted bool, err *Error)

// Worker runs the common capture loop described in the spec (§4.3),
// shared by every backend so each one only has to supply CaptureFunc:
// track last_frame_time, wake roughly every frame_interval, otherwise
// sleep ~1ms to avoid busy-waiting. Cancellation is cooperative via an
// atomic "should stop" flag, matching the spec's concurrency model (§5).
type Worker struct {
	shouldStop atomic.Bool
	running    atomic.Bool
	wg         sync.WaitGroup

	mu      sync.Mutex
	onError func(*Error)
}

// Start launches the worker goroutine calling capture at the given frame
// rate until Stop is called. Idempotent: calling Start while already
// running is a no-op. A capture error goes to onError, or is logged via
// slog.Default() when onError is nil; either way the loop continues.
func (w *Worker) Start(frameRate int, capture CaptureFunc, onError func(*Error)) {
	if w.running.Load() {
		return
	}
	w.mu.Lock()
	w.onError = onError
	w.mu.Unlock()

	w.shouldStop.Store(false)
	w.running.Store(true)
	w.wg.Add(1)

	go w.loop(frameRate, capture)
}

func (w *Worker) loop(frameRate int, capture CaptureFunc) {
	defer w.wg.Done()
	defer w.running.Store(false)

	if frameRate < 1 {
		frameRate = 1
	}
	frameInterval := time.Second / time.Duration(frameRate)
	lastFrameTime := time.Now()

	for !w.shouldStop.Load() {
		elapsed := time.Since(lastFrameTime)
		if elapsed >= frameInterval {
			_, err := capture()
			lastFrameTime = time.Now()
			if err != nil {
				w.mu.Lock()
				cb := w.onError
				w.mu.Unlock()
				if cb != nil {
					cb(err)
				} else {
					slog.Default().Warn("capture worker: capture failed", "error", err)
				}
			}
			continue
		}
		time.Sleep(time.Millisecond)
	}
}

// Stop signals the loop to exit and joins it. Idempotent; safe to call
// even if the worker was never started.
func (w *Worker) Stop() {
	w.shouldStop.Store(true)
	w.wg.Wait()
}

func (w *Worker) IsRunning() bool {
	return w.running.Load()
}

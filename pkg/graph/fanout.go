package graph

import (
	"sync"

	"github.com/lmshao/remote-desk/pkg/frame"
)

// Fanout is the one concrete, reusable Source implementation: an ordered
// list of Sinks guarded by a reader-writer lock. Structural changes
// (add/remove/clear) take the write lock; Deliver takes the read lock, so
// concurrent deliveries never block each other but always serialize
// against a structural change.
type Fanout struct {
	id uint64

	mu    sync.RWMutex
	sinks []Sink
}

// NewFanout creates an empty fan-out set with a fresh diagnostic ID.
func NewFanout() *Fanout {
	return &Fanout{id: NewNodeID()}
}

func (s *Fanout) ID() uint64 { return s.id }

// AddSink appends s to the fan-out list unless a sink with the same ID is
// already present, in which case the call is a silent no-op (duplicates
// rejected by identity).
func (s *Fanout) AddSink(sink Sink) {
	if sink == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.sinks {
		if existing.ID() == sink.ID() {
			return
		}
	}
	s.sinks = append(s.sinks, sink)
}

// RemoveSink drops the first sink with a matching ID, if any.
func (s *Fanout) RemoveSink(sink Sink) {
	if sink == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.sinks {
		if existing.ID() == sink.ID() {
			s.sinks = append(s.sinks[:i], s.sinks[i+1:]...)
			return
		}
	}
}

// ClearSinks removes every sink from the fan-out set.
func (s *Fanout) ClearSinks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = nil
}

func (s *Fanout) SinkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sinks)
}

func (s *Fanout) HasSinks() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sinks) > 0
}

// Deliver drops invalid frames silently, then invokes each sink's OnFrame
// in insertion order under a shared (read) lock, passing the same frame
// reference to every sink. It does not recover from a sink panic — per
// the spec, a misbehaving sink is a programming bug, not a runtime
// condition to paper over.
func (s *Fanout) Deliver(f *frame.Frame) {
	if !f.IsValid() {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sink := range s.sinks {
		sink.OnFrame(f)
	}
}

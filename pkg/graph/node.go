// Package graph defines the node-graph capabilities shared by every
// pipeline component: Source (produces frames), Sink (consumes frames),
// and Processor (both). Fan-out from a Source to its Sinks is zero-copy —
// every sink in the list is handed the same *frame.Frame reference.
package graph

import (
	"sync/atomic"

	"github.com/lmshao/remote-desk/pkg/frame"
)

// nextNodeID hands out process-lifetime-unique, purely diagnostic IDs.
// The original implementation used the node's object address; Go has no
// stable address for a relocatable heap object, so an atomic counter is
// the idiomatic substitute the spec explicitly permits (§3 "Node identity").
var nextNodeID atomic.Uint64

// NewNodeID returns a fresh diagnostic ID, distinct across the process
// lifetime.
func NewNodeID() uint64 {
	return nextNodeID.Add(1)
}

// Sink consumes frames. Implementations must be safe to call on_frame
// concurrently if they are ever attached to a Source shared across
// goroutines delivering on multiple threads, and must ignore frames
// delivered while not running rather than erroring.
type Sink interface {
	// ID returns this sink's diagnostic node ID.
	ID() uint64

	// Initialize prepares the sink to run; called once before Start.
	Initialize() bool

	// Start transitions the sink to running. Sinks with no background
	// work may simply flip a flag and return true.
	Start() bool

	// Stop transitions the sink to not-running. Must be idempotent.
	Stop()

	// IsRunning reports whether the sink currently accepts frames.
	IsRunning() bool

	// OnFrame delivers one frame. Must not panic — a misbehaving sink is
	// a programming error per the spec, not a recoverable condition.
	// Sinks that are not running must silently drop the frame.
	OnFrame(f *frame.Frame)
}

// Source produces frames and fans them out to an ordered, deduplicated
// set of Sinks.
type Source interface {
	ID() uint64

	AddSink(s Sink)
	RemoveSink(s Sink)
	ClearSinks()
	SinkCount() int
	HasSinks() bool

	// Deliver is the only producer-visible emit primitive. Invalid frames
	// are dropped silently. Each sink in insertion order receives the
	// same shared frame reference.
	Deliver(f *frame.Frame)
}

// Processor is both a Sink and a Source: it consumes frames via OnFrame
// and publishes zero or more derived frames via its embedded Source's
// Deliver. Processors are passive and data-driven by default — Start/Stop
// are optional no-ops unless a processor runs an internal worker (the
// encoder is the documented exception, see package encode).
type Processor interface {
	Sink
	Source
}

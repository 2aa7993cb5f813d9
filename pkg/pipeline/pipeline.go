// Package pipeline assembles exactly one Source, an ordered chain of zero
// or more Processors, and one terminal Sink into a linear media pipeline,
// and orchestrates its start/stop lifecycle.
package pipeline

import (
	"fmt"
	"sync"

	"github.com/lmshao/remote-desk/pkg/graph"
)

// Pipeline owns one source, an ordered processor chain, and one sink. It
// is strictly linear — the underlying graph is a DAG with no back-edges.
type Pipeline struct {
	mu sync.Mutex

	source     graph.Source
	processors []graph.Processor
	sink       graph.Sink

	linked  bool
	running bool
}

// New returns an empty, unlinked Pipeline.
func New() *Pipeline {
	return &Pipeline{}
}

// SetSource installs the pipeline's single producer.
func (p *Pipeline) SetSource(s graph.Source) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.source = s
	p.linked = false
}

// SetSink installs the pipeline's single terminal consumer.
func (p *Pipeline) SetSink(s graph.Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sink = s
	p.linked = false
}

// AddProcessor appends a processor to the chain; order of addition is
// order in the chain.
func (p *Pipeline) AddProcessor(proc graph.Processor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processors = append(p.processors, proc)
	p.linked = false
}

// IsConnected reports whether both a source and a sink are set.
func (p *Pipeline) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source != nil && p.sink != nil
}

// ComponentCount returns source + processors + sink as installed so far
// (0, 1, or 2 for source/sink depending on whether they're set, plus
// len(processors)).
func (p *Pipeline) ComponentCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.processors)
	if p.source != nil {
		n++
	}
	if p.sink != nil {
		n++
	}
	return n
}

// LinkAll wires source -> processors... -> sink. It requires both a
// source and a sink to already be set. It is idempotent: calling it twice
// clears the previous edges first rather than duplicating them, since
// every upstream's Fanout rejects duplicate sinks by identity anyway but
// relinking against a different processor chain must still not leave
// stale edges from the old chain.
func (p *Pipeline) LinkAll() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.source == nil || p.sink == nil {
		return false
	}

	p.unlinkAllLocked()

	upstream := p.source
	for _, proc := range p.processors {
		upstream.AddSink(proc)
		upstream = proc
	}
	upstream.AddSink(p.sink)

	p.linked = true
	return true
}

// unlinkAllLocked clears every upstream's fan-out set. Callers must hold p.mu.
func (p *Pipeline) unlinkAllLocked() {
	if p.source != nil {
		p.source.ClearSinks()
	}
	for _, proc := range p.processors {
		proc.ClearSinks()
	}
}

// UnlinkAll clears every upstream's fan-out set, without dropping the
// component references themselves.
func (p *Pipeline) UnlinkAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unlinkAllLocked()
	p.linked = false
}

// Clear drops all component references and unlinks.
func (p *Pipeline) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unlinkAllLocked()
	p.source = nil
	p.sink = nil
	p.processors = nil
	p.linked = false
	p.running = false
}

// Start brings up the sink, then each processor forward, then the source
// last (consumers must be ready before the producer can emit). It returns
// false on the first component that fails to start and, per the spec's
// documented partial-start anomaly, does NOT roll back components that
// already started — callers must call Stop (idempotent) to clean up.
func (p *Pipeline) Start() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.linked {
		return false
	}
	if p.running {
		return true
	}

	if !p.sink.Initialize() || !p.sink.Start() {
		return false
	}
	for _, proc := range p.processors {
		if !proc.Initialize() || !proc.Start() {
			return false
		}
	}

	if src, ok := p.source.(Startable); ok {
		if !src.Start() {
			return false
		}
	}

	p.running = true
	return true
}

// Stop tears down the source first, then processors, then the sink —
// upstream must stop emitting before downstream releases buffers. Safe to
// call multiple times and safe to call on a pipeline that never fully
// started.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.source != nil {
		if src, ok := p.source.(Stoppable); ok {
			src.Stop()
		}
	}
	for i := len(p.processors) - 1; i >= 0; i-- {
		p.processors[i].Stop()
	}
	if p.sink != nil {
		p.sink.Stop()
	}
	p.running = false
}

// PipelineInfo returns a one-line diagnostic summary.
func (p *Pipeline) PipelineInfo() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	connected := p.source != nil && p.sink != nil
	return fmt.Sprintf("pipeline{connected=%v linked=%v running=%v processors=%d}",
		connected, p.linked, p.running, len(p.processors))
}

// Startable is implemented by sources that have their own lifecycle (e.g.
// a capture engine). Sources without background work need not implement
// it; Pipeline.Start treats a source with no Startable as already ready.
type Startable interface {
	Start() bool
}

// Stoppable is implemented by sources that need an explicit stop.
type Stoppable interface {
	Stop()
}

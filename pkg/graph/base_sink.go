package graph

import "sync/atomic"

// BaseSink provides the uniform sink lifecycle (Initialize/Start/Stop/
// IsRunning) as an embeddable default: always-ready, no background work.
// Passive processors (scaler, converter) embed this and only implement
// OnFrame. The encoder is the documented exception — it embeds BaseSink
// too but overrides Start/Stop to spin up its worker (see package encode).
type BaseSink struct {
	id      uint64
	running atomic.Bool
}

// NewBaseSink returns a BaseSink with a fresh diagnostic ID.
func NewBaseSink() BaseSink {
	return BaseSink{id: NewNodeID()}
}

func (b *BaseSink) ID() uint64 { return b.id }

// Initialize is a no-op that always succeeds for passive sinks.
func (b *BaseSink) Initialize() bool { return true }

// Start flips the running flag; idempotent.
func (b *BaseSink) Start() bool {
	b.running.Store(true)
	return true
}

// Stop flips the running flag off; idempotent.
func (b *BaseSink) Stop() {
	b.running.Store(false)
}

func (b *BaseSink) IsRunning() bool {
	return b.running.Load()
}

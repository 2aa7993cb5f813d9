package capture

import "github.com/lmshao/remote-desk/pkg/frame"

// FrameCallback receives each frame the engine produces, on the capture
// worker's goroutine. It must not block for long — fan-out to sinks is
// the callback's job, and the frame reference may be handed off or
// dropped immediately.
type FrameCallback func(f *frame.Frame)

// Engine is the platform-pluggable screen-capture contract. Every backend
// (X11, Desktop Duplication, the GNOME portal, CoreGraphics) implements
// it; Factory selects one at runtime and the owning caller never sees the
// concrete backend type.
type Engine interface {
	// Initialize validates cfg and acquires platform handles. Refuses if
	// already running.
	Initialize(cfg Config) error

	// Start spawns the capture worker; idempotent (returns nil if already
	// running).
	Start() error

	// Stop signals the worker to exit, joins it, and releases transient
	// resources while keeping handles so Start can be called again.
	Stop()

	IsRunning() bool

	// AvailableScreens enumerates monitors.
	AvailableScreens() ([]ScreenInfo, error)

	// SetFrameCallback installs the emission callback under lock,
	// replacing any prior callback.
	SetFrameCallback(cb FrameCallback)

	// UpdateConfig stops if running, re-initializes with cfg, and
	// restarts if it was running.
	UpdateConfig(cfg Config) error
}

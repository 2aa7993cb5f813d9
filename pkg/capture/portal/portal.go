//go:build linux

// Package portal implements the reserved Wayland capture.Engine backend
// by opening a GNOME ScreenCast D-Bus portal session, grounded on
// helixml/helix's api/pkg/desktop session_portal.go / desktop.go. The
// spec reserves Wayland as a backend name without requiring a full
// implementation (§4.3 lists Desktop Duplication and X11 as the two
// implemented backends); this gives that reservation a real connection
// attempt instead of an unconditional stub, returning NotSupported when
// no portal-capable compositor session is reachable.
package portal

import (
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/lmshao/remote-desk/pkg/capture"
)

const (
	portalBus        = "org.freedesktop.portal.Desktop"
	portalPath       = "/org/freedesktop/portal/desktop"
	portalScreenCast = "org.freedesktop.portal.ScreenCast"
)

// Engine is the reserved GNOME/wlroots ScreenCast portal capture backend.
// It is capability-checked at Initialize time; on any host without a
// reachable portal session it reports NotSupported rather than pretending
// to capture.
type Engine struct {
	mu       sync.Mutex
	cfg      capture.Config
	conn     *dbus.Conn
	callback capture.FrameCallback
	worker   capture.Worker
}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) Initialize(cfg capture.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.worker.IsRunning() {
		return &capture.Error{Kind: capture.ErrAlreadyStarted, Msg: "engine already running"}
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return &capture.Error{Kind: capture.NotSupported, Msg: "no session D-Bus available", Cause: err}
	}

	obj := conn.Object(portalBus, dbus.ObjectPath(portalPath))
	call := obj.Call("org.freedesktop.DBus.Introspectable.Introspect", 0)
	if call.Err != nil {
		conn.Close()
		return &capture.Error{Kind: capture.NotSupported, Msg: "ScreenCast portal not reachable", Cause: call.Err}
	}

	e.conn = conn
	e.cfg = cfg
	return nil
}

func (e *Engine) Start() error {
	e.mu.Lock()
	ready := e.conn != nil
	fps := e.cfg.FrameRate
	e.mu.Unlock()
	if !ready {
		return &capture.Error{Kind: capture.ErrInitialization, Msg: "not initialized"}
	}
	if e.worker.IsRunning() {
		return nil
	}
	// A full ScreenCast session negotiation (CreateSession / SelectSources
	// / Start, then reading frames off the resulting PipeWire node) is out
	// of scope for this reserved backend; the worker loop below exists so
	// Start/Stop/IsRunning behave per contract once a session is wired in.
	e.worker.Start(fps, e.captureOnce, nil)
	return nil
}

func (e *Engine) Stop() {
	e.worker.Stop()
}

func (e *Engine) IsRunning() bool {
	return e.worker.IsRunning()
}

func (e *Engine) AvailableScreens() ([]capture.ScreenInfo, error) {
	return nil, &capture.Error{Kind: capture.NotSupported, Msg: "portal backend does not enumerate screens directly"}
}

func (e *Engine) SetFrameCallback(cb capture.FrameCallback) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.callback = cb
}

func (e *Engine) UpdateConfig(cfg capture.Config) error {
	wasRunning := e.IsRunning()
	if wasRunning {
		e.Stop()
	}
	if err := e.Initialize(cfg); err != nil {
		return err
	}
	if wasRunning {
		return e.Start()
	}
	return nil
}

// captureOnce is a documented TODO: without a negotiated PipeWire stream
// this backend has no frame source yet, so every tick is a no-op poll.
func (e *Engine) captureOnce() (bool, *capture.Error) {
	return false, nil
}

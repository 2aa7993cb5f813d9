//go:build darwin

// Package coregraphics is the reserved macOS capture.Engine backend. The
// spec explicitly reserves CoreGraphics without requiring an MVP
// implementation; this backend always reports NotSupported, the
// documented behavior for an unimplemented-but-named Technology.
package coregraphics

import (
	"github.com/lmshao/remote-desk/pkg/capture"
)

type Engine struct{}

func New() *Engine { return &Engine{} }

func (e *Engine) Initialize(cfg capture.Config) error {
	return &capture.Error{Kind: capture.NotSupported, Msg: "CoreGraphics backend is reserved, not implemented"}
}

func (e *Engine) Start() error {
	return &capture.Error{Kind: capture.NotSupported, Msg: "CoreGraphics backend is reserved, not implemented"}
}

func (e *Engine) Stop() {}

func (e *Engine) IsRunning() bool { return false }

func (e *Engine) AvailableScreens() ([]capture.ScreenInfo, error) {
	return nil, &capture.Error{Kind: capture.NotSupported, Msg: "CoreGraphics backend is reserved, not implemented"}
}

func (e *Engine) SetFrameCallback(cb capture.FrameCallback) {}

func (e *Engine) UpdateConfig(cfg capture.Config) error {
	return &capture.Error{Kind: capture.NotSupported, Msg: "CoreGraphics backend is reserved, not implemented"}
}

// Package service implements the process-wide service registry (spec
// §4.8): a string-keyed directory of background services with a
// start-all/stop-all lifecycle and an event bus back to a parent
// controller, grounded on the teacher's session registry
// (api/pkg/desktop/session_registry.go), which keeps a process-wide
// sync.Map registry and an atomic counter for identity allocation.
package service

import "github.com/lmshao/remote-desk/pkg/frame"

// Service is the contract every registered background service must
// satisfy. Concrete services (a message relay, an RTSP delivery service)
// are out of scope for this module beyond conforming to this interface,
// exactly as spec.md §4.8 describes.
type Service interface {
	Initialize() bool
	Start() bool
	Stop()
	IsRunning() bool
}

// FrameReceiver is an optional extension a Service may implement if it
// also wants to sit in a pipeline as a sink.
type FrameReceiver interface {
	OnFrame(f *frame.Frame)
}

// Creator builds a fresh Service instance on demand. Registration stores
// a creator, not an instance — the instance is created lazily by
// StartService, matching spec.md's "{descriptor, creator, instance?,
// is_running}" registry entry shape.
type Creator func() Service

// Message is the event envelope a service publishes to the registry's
// single event callback via NotifyMain, mirroring spec.md's
// ServiceMessage{sender, event, data}.
type Message struct {
	Sender string
	Event  string
	Data   any
}

// EventCallback receives every Message published by any registered
// service.
type EventCallback func(Message)

// Info is the read-only snapshot returned by GetServiceInfo/GetAllServices.
type Info struct {
	Descriptor string
	IsRunning  bool
}

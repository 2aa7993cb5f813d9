//go:build !cgo

package encode

import "github.com/lmshao/remote-desk/pkg/frame"

// noopBackend reports an error on start when CGO (and therefore go-gst)
// isn't available, mirroring helixml/helix's gst_pipeline_nocgo.go stub.
type noopBackend struct{}

func newGstBackend() backend {
	return noopBackend{}
}

func (noopBackend) start(cfg Config, onPacket func(packet)) error {
	return encodeError("GStreamer support requires CGO")
}

func (noopBackend) push(f *frame.Frame)    {}
func (noopBackend) forceKeyframe()         {}
func (noopBackend) setBitrate(kbps int)    {}
func (noopBackend) flush()                 {}
func (noopBackend) stop()                  {}

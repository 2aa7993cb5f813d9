// Package encode implements the Video Encoder processor: the one
// component the spec treats as an external collaborator, specified only
// via its frame-in/packet-out contract (§4.6). It wraps an in-process
// GStreamer pipeline (appsrc ! videoconvert ! x264enc ! h264parse !
// appsink) built with go-gst, the same bindings and appsrc/appsink
// pattern as helixml/helix's gst_pipeline.go and mic_stream.go.
package encode

import "github.com/lmshao/remote-desk/pkg/frame"

// Config describes the target encode.
type Config struct {
	Width            int
	Height           int
	FPS              int
	Bitrate          int // kbps
	KeyframeInterval int // frames between forced keyframes
	InputFormat      frame.Format
	OutputFormat      frame.Format // H264 or H265
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return encodeError("width and height must be > 0")
	}
	if c.FPS <= 0 {
		return encodeError("fps must be > 0")
	}
	if c.Bitrate <= 0 {
		return encodeError("bitrate must be > 0")
	}
	if c.OutputFormat != frame.H264 && c.OutputFormat != frame.H265 {
		return encodeError("output_format must be H264 or H265")
	}
	return nil
}

type encodeError string

func (e encodeError) Error() string { return "encode: " + string(e) }

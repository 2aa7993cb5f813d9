// Package convert implements the Pixel-Format Converter processor: a
// single-pass mapping between {RGB24, BGR24, RGBA32, BGRA32} and I420,
// forwarding unchanged (zero-copy) when the input already matches the
// configured output format.
package convert

import "github.com/lmshao/remote-desk/pkg/frame"

// Config selects the converter's fixed output format.
type Config struct {
	InputFormat     frame.Format // advisory; OnFrame trusts the incoming frame's own Format
	OutputFormat    frame.Format
	EnableThreading bool
}

func supported(f frame.Format) bool {
	switch f {
	case frame.RGB24, frame.BGR24, frame.RGBA32, frame.BGRA32, frame.I420:
		return true
	default:
		return false
	}
}

// Validate reports whether OutputFormat is one this converter can produce.
func (c Config) Validate() error {
	if !supported(c.OutputFormat) {
		return errInvalid("unsupported output_format " + c.OutputFormat.String())
	}
	return nil
}

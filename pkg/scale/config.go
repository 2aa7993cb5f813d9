// Package scale implements the Video Scaler processor: resampling BGRA32/
// RGBA32 frames to a target resolution, optionally preserving aspect
// ratio. Bilinear is the only algorithm implemented in the MVP; the others
// named in Algorithm are reserved.
package scale

import "github.com/lmshao/remote-desk/pkg/frame"

// Algorithm names a resampling filter. Only Bilinear is implemented.
type Algorithm int

const (
	Bilinear Algorithm = iota
	Nearest
	Bicubic
	Lanczos
)

func (a Algorithm) String() string {
	switch a {
	case Nearest:
		return "NEAREST"
	case Bilinear:
		return "BILINEAR"
	case Bicubic:
		return "BICUBIC"
	case Lanczos:
		return "LANCZOS"
	default:
		return "BILINEAR"
	}
}

// Config describes a scaling target.
type Config struct {
	TargetWidth         int
	TargetHeight        int
	Algorithm           Algorithm
	MaintainAspectRatio bool
	EnableThreading     bool
}

// Validate reports the scaler's one boundary condition: both target
// dimensions must be positive.
func (c Config) Validate() error {
	if c.TargetWidth <= 0 || c.TargetHeight <= 0 {
		return scaleError("target_width and target_height must be > 0")
	}
	return nil
}

type scaleError string

func (e scaleError) Error() string { return "scale: " + string(e) }

func supportedInput(f frame.Format) bool {
	return f == frame.BGRA32 || f == frame.RGBA32
}

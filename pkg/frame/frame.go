package frame

import "sync/atomic"

// Frame is an immutable-after-publish, reference-counted buffer carrying
// either video pixels or audio samples plus timing metadata. A Frame is
// created by exactly one producer, fanned out by reference to zero or more
// sinks, and released when the last holder drops it. Once delivered via a
// Source's Deliver, the byte payload must not be mutated by any holder.
type Frame struct {
	bytes []byte
	size  int

	format    Format
	timestamp int64 // microseconds, monotonic within one pipeline run

	// Video metadata.
	width      int
	height     int
	frameRate  int
	isKeyframe bool
	stride     int // bytes per row; 0 means "no padding, derive from width"

	// Audio metadata.
	channels        int
	sampleRate      int
	samplesPerFrame int
	bytesPerSample  int

	refs atomic.Int32
	pool *Pool // non-nil when bytes was checked out of a Pool
}

// New builds a video Frame. stride of 0 means rows are packed
// (width * bytesPerPixel); pass an explicit stride for padded layouts.
func New(format Format, width, height int, bytes []byte, stride int) *Frame {
	f := &Frame{
		bytes:  bytes,
		size:   len(bytes),
		format: format,
		width:  width,
		height: height,
		stride: stride,
	}
	f.refs.Store(1)
	return f
}

// NewAudio builds an audio Frame.
func NewAudio(format Format, bytes []byte, channels, sampleRate, samplesPerFrame, bytesPerSample int) *Frame {
	f := &Frame{
		bytes:           bytes,
		size:            len(bytes),
		format:          format,
		channels:        channels,
		sampleRate:      sampleRate,
		samplesPerFrame: samplesPerFrame,
		bytesPerSample:  bytesPerSample,
	}
	f.refs.Store(1)
	return f
}

// fromPool is used by Pool.Get to stamp the owning pool onto a checked-out
// buffer's eventual Frame so Release can return it.
func fromPool(p *Pool, format Format, width, height int, bytes []byte, stride int) *Frame {
	f := New(format, width, height, bytes, stride)
	f.pool = p
	return f
}

// Bytes returns the payload. Callers must treat it as read-only.
func (f *Frame) Bytes() []byte { return f.bytes }

// Size is the valid byte length of the payload (may be less than cap(Bytes())).
func (f *Frame) Size() int { return f.size }

func (f *Frame) Format() Format      { return f.format }
func (f *Frame) Timestamp() int64    { return f.timestamp }
func (f *Frame) Width() int          { return f.width }
func (f *Frame) Height() int         { return f.height }
func (f *Frame) FrameRate() int      { return f.frameRate }
func (f *Frame) IsKeyframe() bool    { return f.isKeyframe }
func (f *Frame) Stride() int         { return f.stride }
func (f *Frame) Channels() int       { return f.channels }
func (f *Frame) SampleRate() int     { return f.sampleRate }
func (f *Frame) SamplesPerFrame() int { return f.samplesPerFrame }
func (f *Frame) BytesPerSample() int { return f.bytesPerSample }

// SetTimestamp, SetFrameRate and SetKeyframe exist for producers assembling
// a Frame before its first Deliver; they must not be called once a Frame
// has been handed to a sink.
func (f *Frame) SetTimestamp(ts int64)     { f.timestamp = ts }
func (f *Frame) SetFrameRate(fps int)      { f.frameRate = fps }
func (f *Frame) SetKeyframe(kf bool)       { f.isKeyframe = kf }

// EffectiveStride returns Stride if set, otherwise width * bytesPerPixel
// for packed-pixel video formats.
func (f *Frame) EffectiveStride() int {
	if f.stride > 0 {
		return f.stride
	}
	return f.width * f.format.BytesPerPixel()
}

// IsValid implements the spec's invariant: non-empty payload, positive
// size, and (for video) a size consistent with the declared dimensions.
func (f *Frame) IsValid() bool {
	if f == nil || len(f.bytes) == 0 || f.size <= 0 {
		return false
	}
	if f.format.IsVideo() {
		if f.width <= 0 || f.height <= 0 {
			return false
		}
		if f.format == I420 {
			return f.size >= i420Size(f.width, f.height)
		}
		// Formats with no fixed bytes-per-pixel (compressed codecs, NV12's
		// planar layout) have no stride-based size floor beyond size > 0,
		// already checked above.
		if f.format.BytesPerPixel() > 0 {
			min := f.EffectiveStride() * f.height
			if min <= 0 || f.size < min {
				return false
			}
		}
	}
	return true
}

// i420Size returns the byte size of a full I420 plane set: Y at full
// resolution, U and V each at half width * half height.
func i420Size(width, height int) int {
	cw, ch := (width+1)/2, (height+1)/2
	return width*height + 2*cw*ch
}

// Retain increments the reference count. Call it before handing the same
// Frame to an additional independent holder beyond the one the producer
// already has (Source.Deliver itself does not need callers to Retain —
// fan-out shares the single incoming reference across all sinks for the
// duration of the call. Retain is for a sink that wants to keep the Frame
// alive past its on_frame call, e.g. to queue it).
func (f *Frame) Retain() {
	f.refs.Add(1)
}

// Release decrements the reference count. When it reaches zero the
// backing buffer is returned to its Pool, if it came from one.
func (f *Frame) Release() {
	if f.refs.Add(-1) == 0 && f.pool != nil {
		f.pool.put(f.bytes)
	}
}

// RefCount reports the current reference count; for diagnostics/tests only.
func (f *Frame) RefCount() int32 {
	return f.refs.Load()
}

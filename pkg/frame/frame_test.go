package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameIsValid(t *testing.T) {
	f := New(BGRA32, 640, 480, make([]byte, 640*480*4), 0)
	assert.True(t, f.IsValid())

	empty := New(BGRA32, 640, 480, nil, 0)
	assert.False(t, empty.IsValid())

	short := New(BGRA32, 640, 480, make([]byte, 10), 0)
	assert.False(t, short.IsValid())
}

func TestFrameI420Size(t *testing.T) {
	f := New(I420, 4, 2, make([]byte, 12), 0)
	require.True(t, f.IsValid())
	assert.Equal(t, 12, f.Size())

	tooShort := New(I420, 4, 2, make([]byte, 10), 0)
	assert.False(t, tooShort.IsValid())
}

func TestFrameCompressedFormatIsValidWithoutStrideFloor(t *testing.T) {
	// H264 has no fixed bytes-per-pixel; a small NAL payload is still valid.
	f := New(H264, 1920, 1080, make([]byte, 37), 0)
	assert.True(t, f.IsValid())

	empty := New(H264, 1920, 1080, nil, 0)
	assert.False(t, empty.IsValid())
}

func TestFrameStride(t *testing.T) {
	f := New(BGRA32, 100, 50, make([]byte, 120*50), 120)
	assert.Equal(t, 120, f.EffectiveStride())

	packed := New(BGRA32, 100, 50, make([]byte, 100*50*4), 0)
	assert.Equal(t, 400, packed.EffectiveStride())
}

func TestFrameRefCounting(t *testing.T) {
	pool := NewPool()
	f := pool.NewFrame(BGRA32, 8, 8, 8*8*4, 0)
	assert.EqualValues(t, 1, f.RefCount())

	f.Retain()
	assert.EqualValues(t, 2, f.RefCount())

	f.Release()
	assert.EqualValues(t, 1, f.RefCount())

	f.Release()
	assert.EqualValues(t, 0, f.RefCount())
}

func TestFormatPredicates(t *testing.T) {
	assert.True(t, BGRA32.IsVideo())
	assert.False(t, BGRA32.IsAudio())
	assert.True(t, Opus.IsAudio())
	assert.False(t, Opus.IsVideo())
	assert.Equal(t, "BGRA32", BGRA32.String())
}

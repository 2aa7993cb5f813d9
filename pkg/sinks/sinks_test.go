package sinks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmshao/remote-desk/pkg/frame"
)

func i420Frame(w, h int) *frame.Frame {
	size := w*h + 2*(w/2)*(h/2)
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = byte(i)
	}
	f := frame.New(frame.I420, w, h, buf, 0)
	f.SetFrameRate(25)
	return f
}

func TestY4MWriterHeaderAndFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.y4m")
	w := NewY4MWriter(path)
	require.True(t, w.Start())

	f1 := i420Frame(4, 2)
	f2 := i420Frame(4, 2)
	w.OnFrame(f1)
	w.OnFrame(f2)
	w.Stop()

	assert.Equal(t, uint64(2), w.FramesWritten())
	assert.Equal(t, uint64(0), w.FramesDropped())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "YUV4MPEG2 W4 H2 F25:1 Ip A1:1 C420jpeg\n"))
	assert.Equal(t, 2, strings.Count(content, "FRAME\n"))
}

func TestY4MWriterDropsNonI420(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.y4m")
	w := NewY4MWriter(path)
	require.True(t, w.Start())
	defer w.Stop()

	rgba := frame.New(frame.RGBA32, 2, 2, make([]byte, 2*2*4), 0)
	w.OnFrame(rgba)

	assert.Equal(t, uint64(0), w.FramesWritten())
	assert.Equal(t, uint64(1), w.FramesDropped())
}

func TestY4MWriterDropsWhenNotRunning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.y4m")
	w := NewY4MWriter(path)
	w.OnFrame(i420Frame(4, 2))
	assert.Equal(t, uint64(1), w.FramesDropped())
}

func TestRawWriterAppendsPayloadUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bgra")
	w := NewRawWriter(path)
	require.True(t, w.Start())

	payload := make([]byte, 4*2*4)
	for i := range payload {
		payload[i] = byte(i + 1)
	}
	f := frame.New(frame.BGRA32, 4, 2, payload, 0)
	w.OnFrame(f)
	w.Stop()

	assert.Equal(t, uint64(1), w.FramesWritten())
	assert.Equal(t, uint64(len(payload)), w.BytesWritten())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestRawWriterDropsInvalidFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bgra")
	w := NewRawWriter(path)
	require.True(t, w.Start())
	defer w.Stop()

	invalid := frame.New(frame.BGRA32, 4, 2, nil, 0)
	w.OnFrame(invalid)
	assert.Equal(t, uint64(1), w.FramesDropped())
}

func TestRawWriterStartFailsOnBadPath(t *testing.T) {
	w := NewRawWriter(filepath.Join(t.TempDir(), "missing-dir", "out.bgra"))
	assert.False(t, w.Start())
}

//go:build linux

// Package x11 implements the capture.Engine contract against an X11
// display via XGetImage, grounded on the jezek/xgb protocol bindings
// (the same library IntuitionAmiga/IntuitionEngine pulls in for its own
// X11 windowing path).
package x11

import (
	"fmt"
	"os"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/lmshao/remote-desk/pkg/capture"
	"github.com/lmshao/remote-desk/pkg/frame"
)

// Engine captures the X11 root window via XGetImage.
type Engine struct {
	mu       sync.Mutex
	cfg      capture.Config
	conn     *xgb.Conn
	root     xproto.Window
	rectX    int16
	rectY    int16
	rectW    uint16
	rectH    uint16
	format   frame.Format
	callback capture.FrameCallback

	worker capture.Worker
}

// New returns an uninitialized X11 engine.
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

	if os.Getenv("DISPLAY") == "" {
		return &capture.Error{Kind: capture.ErrNoDisplay, Msg: "DISPLAY is not set"}
	}

	conn, err := xgb.NewConn()
	if err != nil {
		return &capture.Error{Kind: capture.ErrNoDisplay, Msg: "cannot open X11 display", Cause: err}
	}

	screen := xproto.Setup(conn).DefaultScreen(conn)
	root := screen.Root

	red, green, blue, ok := rootVisualMasks(screen)
	if !ok {
		conn.Close()
		return &capture.Error{Kind: capture.ErrInitialization, Msg: "root visual not found among screen depths"}
	}
	format, ok := detectFormat(red, green, blue)
	if !ok {
		conn.Close()
		return &capture.Error{Kind: capture.ErrUnknown, Msg: fmt.Sprintf("unrecognized RGB mask order %#08x/%#08x/%#08x", red, green, blue)}
	}

	width, height := cfg.Width, cfg.Height
	if width == 0 {
		width = int(screen.WidthInPixels)
	}
	if height == 0 {
		height = int(screen.HeightInPixels)
	}

	if e.conn != nil {
		e.conn.Close()
	}
	e.conn = conn
	e.root = root
	e.rectX = int16(cfg.OffsetX)
	e.rectY = int16(cfg.OffsetY)
	e.rectW = uint16(width)
	e.rectH = uint16(height)
	e.format = format
	e.cfg = cfg
	return nil
}

// rootVisualMasks locates screen.RootVisual among the visuals listed
// under the screen's allowed depths and returns its RGB channel masks.
func rootVisualMasks(screen *xproto.ScreenInfo) (red, green, blue uint32, ok bool) {
	for _, depthInfo := range screen.AllowedDepths {
		for _, visual := range depthInfo.Visuals {
			if visual.VisualId == screen.RootVisual {
				return visual.RedMask, visual.GreenMask, visual.BlueMask, true
			}
		}
	}
	return 0, 0, 0, false
}

func (e *Engine) Start() error {
	e.mu.Lock()
	if e.conn == nil {
		e.mu.Unlock()
		return &capture.Error{Kind: capture.ErrInitialization, Msg: "not initialized"}
	}
	frameRate := e.cfg.FrameRate
	e.mu.Unlock()

	if e.worker.IsRunning() {
		return nil
	}
	e.worker.Start(frameRate, e.captureOnce, nil)
	return nil
}

func (e *Engine) Stop() {
	e.worker.Stop()
}

func (e *Engine) IsRunning() bool {
	return e.worker.IsRunning()
}

func (e *Engine) AvailableScreens() ([]capture.ScreenInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.conn == nil {
		return nil, &capture.Error{Kind: capture.ErrInitialization, Msg: "not initialized"}
	}
	screen := xproto.Setup(e.conn).DefaultScreen(e.conn)
	return []capture.ScreenInfo{{
		ID:           0,
		Width:        int(screen.WidthInPixels),
		Height:       int(screen.HeightInPixels),
		BitsPerPixel: int(screen.RootDepth),
		IsPrimary:    true,
		Name:         "X11 default screen",
	}}, nil
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

// captureOnce issues one XGetImage call against the configured rectangle
// and, on success, builds and emits a BGRA32 or RGBA32 frame depending on
// the server's reported channel masks.
func (e *Engine) captureOnce() (bool, *capture.Error) {
	e.mu.Lock()
	conn, root := e.conn, e.root
	x, y, w, h := e.rectX, e.rectY, e.rectW, e.rectH
	format := e.format
	cb := e.callback
	fps := e.cfg.FrameRate
	e.mu.Unlock()

	if conn == nil {
		return false, &capture.Error{Kind: capture.ErrInitialization, Msg: "not initialized"}
	}

	reply, err := xproto.GetImage(conn, xproto.ImageFormatZPixmap, xproto.Drawable(root),
		x, y, w, h, 0xffffffff).Reply()
	if err != nil {
		return false, &capture.Error{Kind: capture.ErrAccessDenied, Msg: "XGetImage failed", Cause: err}
	}
	if reply == nil {
		return false, nil
	}

	width, height := int(w), int(h)
	bytesPerLine := len(reply.Data) / height
	var payload []byte
	if bytesPerLine == width*4 {
		payload = append([]byte(nil), reply.Data...)
	} else {
		payload = make([]byte, width*4*height)
		rowBytes := width * 4
		for row := 0; row < height; row++ {
			src := reply.Data[row*bytesPerLine : row*bytesPerLine+rowBytes]
			copy(payload[row*rowBytes:(row+1)*rowBytes], src)
		}
	}

	f := frame.New(format, width, height, payload, width*4)
	f.SetFrameRate(fps)

	if cb != nil {
		cb(f)
	}
	return true, nil
}

// detectFormat maps a visual's RGB channel masks to the pixel format
// XGetImage's ZPixmap data actually carries, per spec.md §4.3: the
// common 0x00FF0000/0x0000FF00/0x000000FF mask order decodes to BGRA32
// byte order on a little-endian host; the reversed order
// (0x000000FF/0x0000FF00/0x00FF0000) decodes to RGBA32. Anything else is
// UNKNOWN.
func detectFormat(red, green, blue uint32) (frame.Format, bool) {
	switch {
	case red == 0x00FF0000 && green == 0x0000FF00 && blue == 0x000000FF:
		return frame.BGRA32, true
	case red == 0x000000FF && green == 0x0000FF00 && blue == 0x00FF0000:
		return frame.RGBA32, true
	default:
		return frame.Unknown, false
	}
}

//go:build cgo

package encode

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/go-gst/go-gst/gst"
	"github.com/go-gst/go-gst/gst/app"

	"github.com/lmshao/remote-desk/pkg/frame"
)

var gstInitOnce sync.Once

func initGStreamer() {
	gstInitOnce.Do(func() {
		gst.Init(nil)
	})
}

// gstBackend drives an in-process GStreamer pipeline
// (appsrc ! videoconvert ! x264enc/x265enc ! h264parse/h265parse !
// appsink), following the appsrc push / appsink pull pattern of
// helixml/helix's mic_stream.go and gst_pipeline.go.
type gstBackend struct {
	mu       sync.Mutex
	pipeline *gst.Pipeline
	src      *app.Source
	sink     *app.Sink
	encoder  *gst.Element

	forceKey atomic.Bool
	onPacket func(packet)
}

func newGstBackend() backend {
	return &gstBackend{}
}

func (b *gstBackend) start(cfg Config, onPacket func(packet)) error {
	initGStreamer()

	encoderElem := "x264enc"
	parseElem := "h264parse"
	if cfg.OutputFormat == frame.H265 {
		encoderElem = "x265enc"
		parseElem = "h265parse"
	}

	pipelineStr := fmt.Sprintf(
		"appsrc name=encsrc format=time is-live=true do-timestamp=true ! videoconvert ! "+
			"%s name=enc bitrate=%d key-int-max=%d tune=zerolatency ! %s ! "+
			"appsink name=encsink emit-signals=true sync=false",
		encoderElem, cfg.Bitrate, cfg.KeyframeInterval, parseElem)

	pipeline, err := gst.NewPipelineFromString(pipelineStr)
	if err != nil {
		return fmt.Errorf("encode: failed to parse pipeline: %w", err)
	}

	srcElem, err := pipeline.GetElementByName("encsrc")
	if err != nil {
		pipeline.SetState(gst.StateNull)
		return fmt.Errorf("encode: missing encsrc element: %w", err)
	}
	src := app.SrcFromElement(srcElem)

	caps := gst.NewCapsFromString(inputCapsString(cfg))
	src.SetProperty("caps", caps)

	encElem, err := pipeline.GetElementByName("enc")
	if err != nil {
		pipeline.SetState(gst.StateNull)
		return fmt.Errorf("encode: missing enc element: %w", err)
	}

	sinkElem, err := pipeline.GetElementByName("encsink")
	if err != nil {
		pipeline.SetState(gst.StateNull)
		return fmt.Errorf("encode: missing encsink element: %w", err)
	}
	sink := app.SinkFromElement(sinkElem)
	sink.SetProperty("emit-signals", true)
	sink.SetProperty("sync", false)

	b.mu.Lock()
	b.pipeline = pipeline
	b.src = src
	b.sink = sink
	b.encoder = encElem
	b.onPacket = onPacket
	b.mu.Unlock()

	sink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: b.onNewSample,
	})

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return fmt.Errorf("encode: failed to set pipeline to playing: %w", err)
	}
	return nil
}

func inputCapsString(cfg Config) string {
	format := "I420"
	if cfg.InputFormat == frame.NV12 {
		format = "NV12"
	}
	return "video/x-raw,format=" + format +
		",width=" + strconv.Itoa(cfg.Width) +
		",height=" + strconv.Itoa(cfg.Height) +
		",framerate=" + strconv.Itoa(cfg.FPS) + "/1"
}

func (b *gstBackend) onNewSample(sink *app.Sink) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		return gst.FlowOK
	}
	buffer := sample.GetBuffer()
	if buffer == nil {
		return gst.FlowOK
	}
	mapInfo := buffer.Map(gst.MapRead)
	if mapInfo == nil {
		return gst.FlowOK
	}
	defer buffer.Unmap()

	data := make([]byte, len(mapInfo.Bytes()))
	copy(data, mapInfo.Bytes())

	var pts int64
	if d := buffer.PresentationTimestamp().AsDuration(); d != nil {
		pts = d.Microseconds()
	}
	isKeyframe := !buffer.HasFlags(gst.BufferFlagDeltaUnit)

	b.mu.Lock()
	cb := b.onPacket
	b.mu.Unlock()
	if cb != nil {
		cb(packet{data: data, isKeyframe: isKeyframe, pts: pts})
	}
	return gst.FlowOK
}

func (b *gstBackend) push(f *frame.Frame) {
	b.mu.Lock()
	src := b.src
	b.mu.Unlock()
	if src == nil {
		return
	}

	buf := gst.NewBufferFromBytes(f.Bytes())
	if b.forceKey.CompareAndSwap(true, false) {
		b.sendForceKeyUnit()
	}
	src.PushBuffer(buf)
}

// sendForceKeyUnit asks the encoder element to make its next output frame
// a keyframe via GStreamer's standard upstream force-key-unit event.
func (b *gstBackend) sendForceKeyUnit() {
	b.mu.Lock()
	enc := b.encoder
	b.mu.Unlock()
	if enc == nil {
		return
	}
	pad := enc.GetStaticPad("sink")
	if pad == nil {
		return
	}
	st := gst.NewStructure("GstForceKeyUnit")
	st.SetValue("all-headers", true)
	event := gst.NewCustomEvent(gst.EventTypeCustomUpstream, st)
	pad.SendEvent(event)
}

func (b *gstBackend) forceKeyframe() {
	b.forceKey.Store(true)
}

func (b *gstBackend) setBitrate(kbps int) {
	b.mu.Lock()
	enc := b.encoder
	b.mu.Unlock()
	if enc != nil {
		enc.SetProperty("bitrate", kbps)
	}
}

func (b *gstBackend) flush() {
	b.mu.Lock()
	pipeline := b.pipeline
	b.mu.Unlock()
	if pipeline == nil {
		return
	}
	pipeline.SendEvent(gst.NewEOSEvent())
}

func (b *gstBackend) stop() {
	b.mu.Lock()
	pipeline := b.pipeline
	src := b.src
	b.mu.Unlock()
	if src != nil {
		src.EndStream()
	}
	if pipeline != nil {
		pipeline.SetState(gst.StateNull)
	}
}

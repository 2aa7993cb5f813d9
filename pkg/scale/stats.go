package scale

import "sync"

// stats tracks the scaler's running counters under one mutex, separate
// from the frame-delivery path so updating them never blocks Deliver.
type stats struct {
	mu sync.Mutex

	framesProcessed uint64
	framesDropped   uint64
	avgScalingTime  float64 // seconds, exponential moving average, alpha=0.1
	haveAvg         bool

	inputW, inputH   int
	outputW, outputH int
}

const emaAlpha = 0.1

func (s *stats) recordProcessed(inW, inH, outW, outH int, elapsedSeconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.framesProcessed++
	s.inputW, s.inputH = inW, inH
	s.outputW, s.outputH = outW, outH
	if !s.haveAvg {
		s.avgScalingTime = elapsedSeconds
		s.haveAvg = true
	} else {
		s.avgScalingTime = emaAlpha*elapsedSeconds + (1-emaAlpha)*s.avgScalingTime
	}
}

func (s *stats) recordDropped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.framesDropped++
}

// Snapshot is a point-in-time copy of the scaler's stats.
type Snapshot struct {
	FramesProcessed uint64
	FramesDropped   uint64
	AvgScalingTime  float64
	InputWidth      int
	InputHeight     int
	OutputWidth     int
	OutputHeight    int
}

func (s *stats) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		FramesProcessed: s.framesProcessed,
		FramesDropped:   s.framesDropped,
		AvgScalingTime:  s.avgScalingTime,
		InputWidth:      s.inputW,
		InputHeight:     s.inputH,
		OutputWidth:     s.outputW,
		OutputHeight:    s.outputH,
	}
}

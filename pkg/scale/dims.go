package scale

// targetDimensions computes the output size for one input, given the
// configured target and aspect-ratio policy. With MaintainAspectRatio
// false, the configured target is used exactly. Otherwise the input is
// fit within the target box preserving its aspect ratio, and each
// resulting dimension is rounded up to the nearest even number (required
// by several downstream YUV formats and by the spec's invariant).
func targetDimensions(inputW, inputH int, cfg Config) (int, int) {
	if !cfg.MaintainAspectRatio {
		return cfg.TargetWidth, cfg.TargetHeight
	}

	scaleW := float64(cfg.TargetWidth) / float64(inputW)
	scaleH := float64(cfg.TargetHeight) / float64(inputH)
	s := scaleW
	if scaleH < s {
		s = scaleH
	}

	w := int(float64(inputW)*s + 0.5)
	h := int(float64(inputH)*s + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return ceilEven(w), ceilEven(h)
}

func ceilEven(n int) int {
	if n%2 != 0 {
		n++
	}
	return n
}

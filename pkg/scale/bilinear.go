package scale

// bilinearResample resamples a packed 4-bytes-per-pixel (BGRA32/RGBA32,
// channel order is irrelevant since all four channels are treated
// identically) buffer from (srcW, srcH) to (dstW, dstH).
func bilinearResample(src []byte, srcW, srcH, dstW, dstH int) []byte {
	dst := make([]byte, dstW*dstH*4)

	for y := 0; y < dstH; y++ {
		sy := float64(y) * float64(srcH) / float64(dstH)
		y0 := int(sy)
		if y0 > srcH-1 {
			y0 = srcH - 1
		}
		y1 := y0 + 1
		if y1 > srcH-1 {
			y1 = srcH - 1
		}
		dy := sy - float64(y0)

		for x := 0; x < dstW; x++ {
			sx := float64(x) * float64(srcW) / float64(dstW)
			x0 := int(sx)
			if x0 > srcW-1 {
				x0 = srcW - 1
			}
			x1 := x0 + 1
			if x1 > srcW-1 {
				x1 = srcW - 1
			}
			dx := sx - float64(x0)

			p00 := src[(y0*srcW+x0)*4 : (y0*srcW+x0)*4+4]
			p10 := src[(y0*srcW+x1)*4 : (y0*srcW+x1)*4+4]
			p01 := src[(y1*srcW+x0)*4 : (y1*srcW+x0)*4+4]
			p11 := src[(y1*srcW+x1)*4 : (y1*srcW+x1)*4+4]

			out := dst[(y*dstW+x)*4 : (y*dstW+x)*4+4]
			for c := 0; c < 4; c++ {
				top := float64(p00[c])*(1-dx) + float64(p10[c])*dx
				bot := float64(p01[c])*(1-dx) + float64(p11[c])*dx
				v := top*(1-dy) + bot*dy
				out[c] = clamp8(v)
			}
		}
	}
	return dst
}

func clamp8(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v + 0.5)
}

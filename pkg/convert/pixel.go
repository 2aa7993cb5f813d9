package convert

import "github.com/lmshao/remote-desk/pkg/frame"

// layout describes where R, G, B live within one packed pixel of a format,
// and how many bytes the pixel occupies. Alpha, when present, always comes
// last and is not read by any conversion here.
type layout struct {
	r, g, b int
	bpp     int
}

func layoutOf(f frame.Format) (layout, bool) {
	switch f {
	case frame.RGB24:
		return layout{r: 0, g: 1, b: 2, bpp: 3}, true
	case frame.BGR24:
		return layout{r: 2, g: 1, b: 0, bpp: 3}, true
	case frame.RGBA32:
		return layout{r: 0, g: 1, b: 2, bpp: 4}, true
	case frame.BGRA32:
		return layout{r: 2, g: 1, b: 0, bpp: 4}, true
	default:
		return layout{}, false
	}
}

func clamp8(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// reorderRGB rewrites one packed-RGB frame into another, permuting channels
// per pixel and filling a new alpha channel with 255 when the destination
// has one the source doesn't.
func reorderRGB(src []byte, width, height int, in, out layout) []byte {
	dst := make([]byte, width*height*out.bpp)
	for i := 0; i < width*height; i++ {
		s := src[i*in.bpp : i*in.bpp+in.bpp]
		d := dst[i*out.bpp : i*out.bpp+out.bpp]
		d[out.r] = s[in.r]
		d[out.g] = s[in.g]
		d[out.b] = s[in.b]
		if out.bpp == 4 {
			d[3] = 255
		}
	}
	return dst
}

// rgbToI420 converts a packed-RGB frame to planar I420 using the BT.601
// integer coefficients from the spec, with even-sample (nearest) chroma
// subsampling rather than 2x2 averaging.
func rgbToI420(src []byte, width, height int, in layout) []byte {
	cw, ch := width/2, height/2
	ySize := width * height
	out := make([]byte, ySize+2*cw*ch)
	yPlane := out[:ySize]
	uPlane := out[ySize : ySize+cw*ch]
	vPlane := out[ySize+cw*ch:]

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			p := src[i*in.bpp : i*in.bpp+in.bpp]
			r, g, b := int32(p[in.r]), int32(p[in.g]), int32(p[in.b])
			// The +128 before each shift rounds to nearest instead of
			// truncating: a pure-blue pixel gives Y = 7523 >> 8 = 29,
			// where a truncating shift (7395 >> 8) would give 28.
			yVal := (77*r + 150*g + 29*b + 128) >> 8
			yPlane[i] = clamp8(yVal)

			if y%2 == 0 && x%2 == 0 {
				uVal := ((-43*r-85*g+128*b+128)>>8) + 128
				vVal := ((128*r-107*g-21*b+128)>>8) + 128
				cx, cy := x/2, y/2
				uPlane[cy*cw+cx] = clamp8(uVal)
				vPlane[cy*cw+cx] = clamp8(vVal)
			}
		}
	}
	return out
}

package raster

import (
	"image"
	"math"
)

// SampleTexture reads tex at (u, v) with bilinear filtering. Coordinates
// repeat outside [0, 1) and v runs down the image rows.
func SampleTexture(tex *image.NRGBA, u, v float64) (r, g, b, a uint8) {
	w, h := tex.Rect.Dx(), tex.Rect.Dy()
	if w == 0 || h == 0 {
		return 0, 0, 0, 0
	}

	fx := (u - math.Floor(u)) * float64(w-1)
	fy := (v - math.Floor(v)) * float64(h-1)
	x0, y0 := int(fx), int(fy)
	x1, y1 := (x0+1)%w, (y0+1)%h
	dx, dy := fx-float64(x0), fy-float64(y0)

	taps := [4]struct {
		off    int
		weight float64
	}{
		{y0*tex.Stride + x0*4, (1 - dx) * (1 - dy)},
		{y0*tex.Stride + x1*4, dx * (1 - dy)},
		{y1*tex.Stride + x0*4, (1 - dx) * dy},
		{y1*tex.Stride + x1*4, dx * dy},
	}
	var sum [4]float64
	for _, t := range taps {
		for c := range 4 {
			sum[c] += float64(tex.Pix[t.off+c]) * t.weight
		}
	}
	return uint8(sum[0] + 0.5), uint8(sum[1] + 0.5), uint8(sum[2] + 0.5), uint8(sum[3] + 0.5)
}

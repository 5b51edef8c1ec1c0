package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample shrinks a supersampled render by factor on both axes. Filtering
// happens on premultiplied color so transparent edges do not bleed dark.
func Downsample(img *image.NRGBA, factor int) *image.NRGBA {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	rect := image.Rect(0, 0, max(b.Dx()/factor, 1), max(b.Dy()/factor, 1))

	// image/draw premultiplies when copying NRGBA into RGBA.
	premul := image.NewRGBA(b)
	draw.Draw(premul, b, img, b.Min, draw.Src)

	small := image.NewRGBA(rect)
	draw.CatmullRom.Scale(small, rect, premul, b, draw.Src, nil)

	// Catmull-Rom overshoots, so color can exceed alpha; clamp while
	// dividing it back out.
	out := image.NewNRGBA(rect)
	for i := 0; i < len(small.Pix); i += 4 {
		a := small.Pix[i+3]
		out.Pix[i+3] = a
		if a <= 1 {
			continue
		}
		inv := 255 / float64(a)
		for c := range 3 {
			out.Pix[i+c] = uint8(min(float64(small.Pix[i+c])*inv, 255) + 0.5)
		}
	}
	return out
}

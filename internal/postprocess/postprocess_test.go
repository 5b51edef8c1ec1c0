package postprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func TestDownsample(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	fill(img, img.Bounds(), color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	out := Downsample(img, 2)
	assert.Equal(t, image.Rect(0, 0, 4, 4), out.Bounds())
	c := out.NRGBAAt(2, 2)
	assert.InDelta(t, 200, int(c.R), 1)
	assert.Equal(t, uint8(255), c.A)

	assert.Same(t, img, Downsample(img, 1))
}

func TestRemoveSmallClusters(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	fill(img, image.Rect(2, 2, 12, 12), color.NRGBA{R: 255, A: 255})
	fill(img, image.Rect(18, 18, 19, 19), color.NRGBA{G: 255, A: 255})

	out, cleared := RemoveSmallClusters(img, 0.02)
	assert.Equal(t, 1, cleared)
	assert.Zero(t, out.NRGBAAt(18, 18).A)
	assert.Equal(t, uint8(255), out.NRGBAAt(5, 5).A)
	assert.Equal(t, uint8(255), img.NRGBAAt(18, 18).A, "input untouched")

	single, cleared := RemoveSmallClusters(out, 0.02)
	assert.Zero(t, cleared)
	assert.Same(t, out, single)
}

func TestCropAndCenter(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	fill(img, image.Rect(0, 0, 20, 10), color.NRGBA{B: 255, A: 255})

	out := CropAndCenter(img, 64, 0.5)
	require.Equal(t, image.Rect(0, 0, 64, 64), out.Bounds())
	// 20×10 scales to 32×16 centered: x 16..48, y 24..40.
	assert.Equal(t, uint8(255), out.NRGBAAt(32, 32).A)
	assert.Zero(t, out.NRGBAAt(10, 32).A)
	assert.Zero(t, out.NRGBAAt(32, 20).A)

	empty := CropAndCenter(image.NewNRGBA(image.Rect(0, 0, 10, 10)), 16, 0.9)
	assert.Equal(t, image.Rect(0, 0, 16, 16), empty.Bounds())
	assert.Zero(t, empty.NRGBAAt(8, 8).A)
}

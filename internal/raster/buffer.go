package raster

import (
	"image"
	"math"
)

// FrameBuffer holds straight-alpha RGBA color and one depth value per pixel.
// Larger depth is closer to the camera.
type FrameBuffer struct {
	Width, Height int
	Color         []uint8
	Depth         []float64
}

// NewFrameBuffer returns a transparent buffer with every depth at -Inf.
func NewFrameBuffer(w, h int) *FrameBuffer {
	depth := make([]float64, w*h)
	for i := range depth {
		depth[i] = math.Inf(-1)
	}
	return &FrameBuffer{Width: w, Height: h, Color: make([]uint8, w*h*4), Depth: depth}
}

// Image wraps the color buffer without copying it.
func (fb *FrameBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    fb.Color,
		Stride: fb.Width * 4,
		Rect:   image.Rect(0, 0, fb.Width, fb.Height),
	}
}

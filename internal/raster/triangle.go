package raster

import (
	"image"
	"image/color"
	"math"

	"castkit/internal/mathutil"
)

// Projected holds screen-space vertex positions: x to the right, y down and
// z growing towards the viewer.
type Projected struct {
	X, Y, Z []float64
}

// Surface is what a triangle is painted with.
type Surface struct {
	Texture *image.NRGBA // nil paints Color
	UV      []float32    // u, v pairs indexed like the vertices
	Color   color.NRGBA
}

func (s *Surface) textured(idx [3]int) bool {
	if s.Texture == nil {
		return false
	}
	for _, i := range idx {
		if 2*i+1 >= len(s.UV) {
			return false
		}
	}
	return true
}

// DrawTriangle rasterizes the triangle idx of p into fb with a depth test,
// flat shading from its face normal and s as the color source. Triangles
// with an index out of range or no area are skipped. Texels that are nearly
// transparent neither draw nor write depth.
//
// No allocation in the pixel loop.
func (fb *FrameBuffer) DrawTriangle(p Projected, idx [3]int, s *Surface, lc *LightConfig) {
	for _, i := range idx {
		if i < 0 || i >= len(p.X) || i >= len(p.Y) || i >= len(p.Z) {
			return
		}
	}
	var v [3]mathutil.Vec3
	for k, i := range idx {
		v[k] = mathutil.Vec3{p.X[i], p.Y[i], p.Z[i]}
	}

	normal := v[1].Sub(v[0]).Cross(v[2].Sub(v[0]))
	if normal.Len() < 1e-8 {
		return
	}
	shade := lc.Shade(normal.Normalize())

	area := edge(v[0], v[1], v[2][0], v[2][1])
	if math.Abs(area) < 1e-8 {
		return
	}
	inv := 1 / area

	minX := max(int(min(v[0][0], v[1][0], v[2][0])), 0)
	maxX := min(int(max(v[0][0], v[1][0], v[2][0]))+1, fb.Width-1)
	minY := max(int(min(v[0][1], v[1][1], v[2][1])), 0)
	maxY := min(int(max(v[0][1], v[1][1], v[2][1]))+1, fb.Height-1)

	textured := s.textured(idx)
	var uv [3][2]float64
	if textured {
		for k, i := range idx {
			uv[k] = [2]float64{float64(s.UV[2*i]), float64(s.UV[2*i+1])}
		}
	}

	// Slight negative tolerance closes hairline gaps between neighbours.
	const inside = -0.001
	for y := minY; y <= maxY; y++ {
		fy := float64(y)
		for x := minX; x <= maxX; x++ {
			fx := float64(x)
			w0 := edge(v[1], v[2], fx, fy) * inv
			w1 := edge(v[2], v[0], fx, fy) * inv
			w2 := 1 - w0 - w1
			if w0 < inside || w1 < inside || w2 < inside {
				continue
			}

			pix := y*fb.Width + x
			z := w0*v[0][2] + w1*v[1][2] + w2*v[2][2]
			if z <= fb.Depth[pix] {
				continue
			}

			c := s.Color
			if textured {
				u := w0*uv[0][0] + w1*uv[1][0] + w2*uv[2][0]
				t := w0*uv[0][1] + w1*uv[1][1] + w2*uv[2][1]
				c.R, c.G, c.B, c.A = SampleTexture(s.Texture, u, t)
			}
			if c.A < 8 {
				continue
			}
			fb.Depth[pix] = z

			o := pix * 4
			fb.Color[o] = lc.Light(c.R, shade)
			fb.Color[o+1] = lc.Light(c.G, shade)
			fb.Color[o+2] = lc.Light(c.B, shade)
			fb.Color[o+3] = c.A
		}
	}
}

// edge is twice the signed area of the triangle a, b, (x, y).
func edge(a, b mathutil.Vec3, x, y float64) float64 {
	return (b[0]-a[0])*(y-a[1]) - (b[1]-a[1])*(x-a[0])
}

func clamp255(v float64) uint8 {
	return uint8(min(max(v, 0), 255) + 0.5)
}

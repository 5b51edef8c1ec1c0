package viewmatrix

import (
	"fmt"
	"math"
	"sort"

	"castkit/internal/mathutil"
)

// Camera presets. Every preset looks down -Z after rotation, with +Y up on
// screen.
const (
	Front = "front"
	Iso   = "iso"
	Top   = "top"
	Side  = "side"
)

var presets = map[string]mathutil.Mat3{
	Front: mathutil.Mat3Identity(),
	// Rx(20°) @ Ry(-35°): the three-quarter catalog view.
	Iso:  mathutil.Mat3Mul(mathutil.RotX(mathutil.Deg2Rad(20)), mathutil.RotY(mathutil.Deg2Rad(-35))),
	Top:  mathutil.RotX(mathutil.Deg2Rad(90)),
	Side: mathutil.RotY(mathutil.Deg2Rad(-90)),
}

// Presets lists the preset names in sorted order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Camera describes how a model is turned before projection.
type Camera struct {
	Preset string

	// ZUp rotates Z-up content into Y-up before the preset applies.
	ZUp bool

	// Perspective enables a pinhole projection with the given vertical FOV in
	// degrees. Zero FOV falls back to DefaultFOV.
	Perspective bool
	FOV         float64
}

// DefaultFOV is used when a perspective camera leaves FOV unset.
const DefaultFOV = 30.0

// ViewMatrix resolves the camera into a single 3×3 rotation.
func (c Camera) ViewMatrix() (mathutil.Mat3, error) {
	name := c.Preset
	if name == "" {
		name = Iso
	}
	r, ok := presets[name]
	if !ok {
		return mathutil.Mat3{}, fmt.Errorf("viewmatrix: unknown camera preset %q", c.Preset)
	}
	if c.ZUp {
		r = mathutil.Mat3Mul(r, mathutil.ZUpToYUp)
	}
	return r, nil
}

// Frame is the screen placement shared by every mesh of one render.
type Frame struct {
	R      mathutil.Mat3
	Center mathutil.Vec3
	Scale  float64
	Size   int

	// Perspective parameters, set by Fit when the camera asks for it.
	perspective bool
	camDist     float64
}

// Fit centers the rotated bounds of points in a size×size target with margin
// pixels left free on every side.
func Fit(cam Camera, points []mathutil.Vec3, size, margin int) (Frame, error) {
	r, err := cam.ViewMatrix()
	if err != nil {
		return Frame{}, err
	}
	f := Frame{R: r, Size: size, Scale: 1}
	if len(points) == 0 {
		return f, nil
	}

	lo := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range points {
		t := r.MulVec3(p)
		lo = lo.Min(t)
		hi = hi.Max(t)
	}
	f.Center = lo.Add(hi).Scale(0.5)

	span := math.Max(hi[0]-lo[0], hi[1]-lo[1])
	if span < 0.001 {
		span = 0.001
	}
	f.Scale = float64(size-2*margin) / span

	if cam.Perspective {
		fov := cam.FOV
		if fov == 0 {
			fov = DefaultFOV
		}
		f.perspective = true
		f.camDist = (span / 2) / math.Tan(mathutil.Deg2Rad(fov/2))
	}
	return f, nil
}

// ProjectVertices transforms flat x, y, z positions to screen coordinates.
// Returns px, py, pz slices (screen X, screen Y, depth; larger is nearer).
func (f Frame) ProjectVertices(xyz []float32) ([]float64, []float64, []float64) {
	n := len(xyz) / 3
	px := make([]float64, n)
	py := make([]float64, n)
	pz := make([]float64, n)

	half := float64(f.Size) / 2
	for i := 0; i < n; i++ {
		v := mathutil.Vec3{float64(xyz[i*3]), float64(xyz[i*3+1]), float64(xyz[i*3+2])}
		t := f.R.MulVec3(v).Sub(f.Center)

		if f.perspective {
			depth := math.Max(f.camDist-t[2], 0.1)
			factor := f.camDist / depth
			t[0] *= factor
			t[1] *= factor
		}

		px[i] = t[0]*f.Scale + half
		py[i] = -t[1]*f.Scale + half
		pz[i] = t[2]
	}
	return px, py, pz
}

package viewmatrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"castkit/internal/mathutil"
)

func TestViewMatrix(t *testing.T) {
	r, err := Camera{Preset: Front}.ViewMatrix()
	require.NoError(t, err)
	assert.Equal(t, mathutil.Mat3Identity(), r)

	_, err = Camera{Preset: "fisheye"}.ViewMatrix()
	assert.ErrorContains(t, err, "fisheye")

	def, err := Camera{}.ViewMatrix()
	require.NoError(t, err)
	iso, _ := Camera{Preset: Iso}.ViewMatrix()
	assert.Equal(t, iso, def)

	// Z-up content: +Z must end up pointing at screen up.
	zup, err := Camera{Preset: Front, ZUp: true}.ViewMatrix()
	require.NoError(t, err)
	up := zup.MulVec3(mathutil.Vec3{0, 0, 1})
	assert.InDelta(t, 1.0, up[1], 1e-9)

	assert.Equal(t, []string{Front, Iso, Side, Top}, Presets())
}

func TestFitAndProject(t *testing.T) {
	xyz := []float32{-1, -1, 0, 1, -1, 0, 1, 1, 0}
	points := []mathutil.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}}

	f, err := Fit(Camera{Preset: Front}, points, 100, 10)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, f.Scale, 1e-9)

	px, py, pz := f.ProjectVertices(xyz)
	require.Len(t, px, 3)
	assert.InDelta(t, 10.0, px[0], 1e-9)
	assert.InDelta(t, 90.0, py[0], 1e-9) // screen Y grows downwards
	assert.InDelta(t, 90.0, px[2], 1e-9)
	assert.InDelta(t, 10.0, py[2], 1e-9)
	assert.InDelta(t, 0.0, pz[1], 1e-9)
}

func TestFitPerspectiveShrinksFarPoints(t *testing.T) {
	points := []mathutil.Vec3{{-1, -1, -1}, {1, 1, 1}}
	f, err := Fit(Camera{Preset: Front, Perspective: true}, points, 100, 0)
	require.NoError(t, err)

	px, _, _ := f.ProjectVertices([]float32{1, 0, 1, 1, 0, -1})
	assert.Greater(t, px[0], px[1], "near point projects further from center")
}

func TestFitEmpty(t *testing.T) {
	f, err := Fit(Camera{}, nil, 64, 4)
	require.NoError(t, err)
	assert.Equal(t, 64, f.Size)
	px, _, _ := f.ProjectVertices(nil)
	assert.Empty(t, px)
}

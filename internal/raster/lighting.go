package raster

import (
	"math"

	"castkit/internal/mathutil"
)

// LightConfig is a key light, a rim light and a hemisphere fill, all fixed
// in view space so every preview is lit the same way regardless of camera.
type LightConfig struct {
	Key  mathutil.Vec3
	Rim  mathutil.Vec3
	Half mathutil.Vec3 // Blinn-Phong half vector of Key and the view direction

	Ambient     float64
	Hemi        float64
	Direct      float64
	RimStrength float64
	Specular    float64
	Shininess   float64
	Exposure    float64
	Gamma       float64
}

// DefaultLightConfig returns the studio lighting used for catalog previews.
func DefaultLightConfig() LightConfig {
	key := mathutil.Vec3{180, 260, 140}.Normalize()
	view := mathutil.Vec3{0, -110, -400}.Normalize()
	return LightConfig{
		Key:         key,
		Rim:         mathutil.Vec3{-160, 130, -210}.Normalize(),
		Half:        key.Sub(view).Normalize(),
		Ambient:     0.55,
		Hemi:        0.50,
		Direct:      1.50,
		RimStrength: 0.60,
		Specular:    0.45,
		Shininess:   12,
		Exposure:    1.05,
		Gamma:       2.2,
	}
}

// Shade returns the light intensity for a unit face normal. Faces are lit
// from both sides.
func (lc *LightConfig) Shade(n mathutil.Vec3) float64 {
	hemi := ((1-math.Abs(n[1]))*0.5 + 0.5) * lc.Hemi
	spec := math.Pow(max(n.Dot(lc.Half), 0), lc.Shininess) * lc.Specular
	return lc.Ambient + hemi +
		math.Abs(n.Dot(lc.Key))*lc.Direct +
		math.Abs(n.Dot(lc.Rim))*lc.RimStrength +
		spec
}

// srgbToLinear decodes 8-bit sRGB with a plain 2.2 power curve.
var srgbToLinear = func() (lut [256]float64) {
	for i := range lut {
		lut[i] = math.Pow(float64(i)/255, 2.2)
	}
	return lut
}()

// Light scales an sRGB channel by shade in linear space, tone maps it with
// the ACES filmic fit and encodes it back to sRGB.
func (lc *LightConfig) Light(c uint8, shade float64) uint8 {
	x := srgbToLinear[c] * shade * lc.Exposure
	x = (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
	return clamp255(math.Pow(x, 1/lc.Gamma) * 255)
}

package mathutil

// Mat4 is a row-major 4×4 affine transform. The translation sits in the
// last column.
type Mat4 [16]float64

func Mat4Identity() Mat4 {
	return FromMat3Translation(Mat3Identity(), Vec3{})
}

// FromMat3Translation builds the affine transform that applies r then adds t.
func FromMat3Translation(r Mat3, t Vec3) Mat4 {
	return Mat4{
		r[0], r[1], r[2], t[0],
		r[3], r[4], r[5], t[1],
		r[6], r[7], r[8], t[2],
		0, 0, 0, 1,
	}
}

// Compose builds translation × rotation × scale.
func Compose(t Vec3, q Quat, s Vec3) Mat4 {
	return FromMat3Translation(Mat3Mul(QuatToMat3(q), Mat3Diag(s[0], s[1], s[2])), t)
}

// Mat4Mul returns a × b, so b is applied first.
func Mat4Mul(a, b Mat4) Mat4 {
	var m Mat4
	for r := range 4 {
		for c := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[r*4+k] * b[k*4+c]
			}
			m[r*4+c] = sum
		}
	}
	return m
}

// MulPoint transforms p as a position (w = 1).
func (m Mat4) MulPoint(p Vec3) Vec3 {
	var out Vec3
	for r := range 3 {
		out[r] = m[r*4]*p[0] + m[r*4+1]*p[1] + m[r*4+2]*p[2] + m[r*4+3]
	}
	return out
}

func (m Mat4) Translation() Vec3 { return Vec3{m[3], m[7], m[11]} }

// Rotation returns the upper 3×3 block with each column rescaled to unit
// length, which removes any scale.
func (m Mat4) Rotation() Mat3 {
	r := Mat3{m[0], m[1], m[2], m[4], m[5], m[6], m[8], m[9], m[10]}
	for c := range 3 {
		l := Vec3{r[c], r[3+c], r[6+c]}.Len()
		if l < Epsilon {
			continue
		}
		r[c], r[3+c], r[6+c] = r[c]/l, r[3+c]/l, r[6+c]/l
	}
	return r
}

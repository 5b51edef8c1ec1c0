package mathutil

import "math"

// Epsilon is the threshold below which lengths and determinants count as zero.
const Epsilon = 1e-12

// ZUpToYUp rotates Z-up content into the renderer's Y-up space: Rx(-90°).
var ZUpToYUp = RotX(math.Pi / -2)

// ApproxEqual reports whether a and b differ by at most tol.
func ApproxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

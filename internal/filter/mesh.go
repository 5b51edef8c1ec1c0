package filter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// MeshFilter decides which meshes of a model are left out of a render and
// trims stray geometry from the ones that stay. A nil *MeshFilter keeps
// everything.
type MeshFilter struct {
	exclude []*regexp.Regexp

	// MinComponentVerts is the size below which a disconnected piece of a
	// mesh is dropped unless it sits close to the main piece. Zero disables
	// component filtering.
	MinComponentVerts int
}

// New compiles the exclude patterns. Patterns are matched case-insensitively
// against the mesh name and against the stem of its texture path.
func New(patterns []string, minComponentVerts int) (*MeshFilter, error) {
	f := &MeshFilter{MinComponentVerts: minComponentVerts}
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("filter: pattern %q: %w", p, err)
		}
		f.exclude = append(f.exclude, re)
	}
	return f, nil
}

// Excludes reports whether a mesh with this name and texture should not be
// drawn. Either argument may be empty.
func (f *MeshFilter) Excludes(name, texPath string) bool {
	if f == nil {
		return false
	}
	stem := ""
	if texPath != "" {
		slashed := strings.ReplaceAll(texPath, "\\", "/")
		stem = strings.TrimSuffix(filepath.Base(slashed), filepath.Ext(slashed))
	}
	for _, re := range f.exclude {
		if name != "" && re.MatchString(name) {
			return true
		}
		if stem != "" && re.MatchString(stem) {
			return true
		}
	}
	return false
}

// Faces removes small disconnected components from a triangle list. xyz is
// the packed vertex position buffer; faces holds three indices per triangle.
// The result shares no memory with faces unless nothing was removed.
func (f *MeshFilter) Faces(xyz []float32, faces []uint32) []uint32 {
	if f == nil || f.MinComponentVerts <= 0 {
		return faces
	}
	minVerts := f.MinComponentVerts
	nv := len(xyz) / 3
	if nv == 0 || len(faces) < 3 {
		return faces
	}
	// Very small meshes (billboards, simple quads) are left alone so
	// symmetric pairs are not split up.
	if nv <= 2*minVerts {
		return faces
	}

	vert := func(i int) [3]float32 { return [3]float32{xyz[3*i], xyz[3*i+1], xyz[3*i+2]} }

	// Build adjacency
	adj := make(map[int][]int)
	for t := 0; t+2 < len(faces); t += 3 {
		for a := 0; a < 3; a++ {
			for b := a + 1; b < 3; b++ {
				va, vb := int(faces[t+a]), int(faces[t+b])
				if va >= nv || vb >= nv {
					continue
				}
				adj[va] = append(adj[va], vb)
				adj[vb] = append(adj[vb], va)
			}
		}
	}

	// DFS connected components
	visited := make([]bool, nv)
	var components [][]int
	for v := 0; v < nv; v++ {
		if visited[v] || len(adj[v]) == 0 {
			continue
		}
		comp := []int{}
		stack := []int{v}
		for len(stack) > 0 {
			curr := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[curr] {
				continue
			}
			visited[curr] = true
			comp = append(comp, curr)
			for _, nb := range adj[curr] {
				if !visited[nb] {
					stack = append(stack, nb)
				}
			}
		}
		components = append(components, comp)
	}

	if len(components) <= 1 {
		return faces
	}

	largestIdx := 0
	for i, c := range components {
		if len(c) > len(components[largestIdx]) {
			largestIdx = i
		}
	}
	largest := components[largestIdx]

	// Bounding box and span of the largest component
	lMin, lMax := vert(largest[0]), vert(largest[0])
	for _, vi := range largest {
		v := vert(vi)
		for k := 0; k < 3; k++ {
			lMin[k] = min(lMin[k], v[k])
			lMax[k] = max(lMax[k], v[k])
		}
	}
	var lSpan float64
	for k := 0; k < 3; k++ {
		lSpan = max(lSpan, float64(lMax[k]-lMin[k]))
	}

	keep := make([]bool, nv)
	for i, comp := range components {
		if i != largestIdx && len(comp) < minVerts && !near(comp, vert, lMin, lMax, lSpan) {
			continue
		}
		for _, vi := range comp {
			keep[vi] = true
		}
	}

	out := make([]uint32, 0, len(faces))
	for t := 0; t+2 < len(faces); t += 3 {
		a, b, c := int(faces[t]), int(faces[t+1]), int(faces[t+2])
		if a < nv && b < nv && c < nv && keep[a] && keep[b] && keep[c] {
			out = append(out, faces[t], faces[t+1], faces[t+2])
		}
	}
	return out
}

// near reports whether the centroid of comp lies within 0.4 spans of the
// box lMin..lMax.
func near(comp []int, vert func(int) [3]float32, lMin, lMax [3]float32, lSpan float64) bool {
	var center [3]float64
	for _, vi := range comp {
		v := vert(vi)
		for k := 0; k < 3; k++ {
			center[k] += float64(v[k])
		}
	}
	var distSq float64
	for k := 0; k < 3; k++ {
		c := center[k] / float64(len(comp))
		lo, hi := float64(lMin[k]), float64(lMax[k])
		if c < lo {
			distSq += (lo - c) * (lo - c)
		} else if c > hi {
			distSq += (c - hi) * (c - hi)
		}
	}
	return distSq < lSpan*lSpan*0.16
}

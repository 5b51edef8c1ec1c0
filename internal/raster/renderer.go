package raster

import (
	"errors"
	"image"
	"image/color"

	"castkit/internal/cast"
	"castkit/internal/filter"
	"castkit/internal/mathutil"
	"castkit/internal/texture"
	"castkit/internal/viewmatrix"
)

// ErrNoGeometry is returned for models without a single drawable mesh.
var ErrNoGeometry = errors.New("raster: model has no drawable meshes")

var untextured = color.NRGBA{R: 160, G: 160, B: 170, A: 255}

// Options controls one render.
type Options struct {
	Camera      viewmatrix.Camera
	Textures    texture.Resolver   // nil renders untextured
	Filter      *filter.MeshFilter // nil draws every mesh
	Size        int
	Supersample int
}

type part struct {
	mesh  *cast.Mesh
	xyz   []float32
	faces []uint32
}

// RenderModel renders every mesh of model to an NRGBA image of
// Size*Supersample pixels square.
func RenderModel(model *cast.Model, opts Options) (*image.NRGBA, error) {
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	renderSize := opts.Size * opts.Supersample

	var parts []part
	for _, m := range drawable(model.Meshes()) {
		name, _ := m.Name()
		texPath, _ := TexturePath(m)
		if opts.Filter.Excludes(name, texPath) {
			continue
		}
		xyz, _ := m.VertexPositionBuffer()
		faces, _ := m.FaceBuffer()
		faces = opts.Filter.Faces(xyz, faces)
		if len(faces) < 3 {
			continue
		}
		parts = append(parts, part{mesh: m, xyz: xyz, faces: faces})
	}
	if len(parts) == 0 {
		return nil, ErrNoGeometry
	}

	// Bounding box of all referenced vertices
	var points []mathutil.Vec3
	for _, p := range parts {
		seen := make([]bool, len(p.xyz)/3)
		for _, vi := range p.faces {
			if int(vi) >= len(seen) || seen[vi] {
				continue
			}
			seen[vi] = true
			points = append(points, mathutil.Vec3{float64(p.xyz[3*vi]), float64(p.xyz[3*vi+1]), float64(p.xyz[3*vi+2])})
		}
	}

	margin := 16 * opts.Supersample
	frame, err := viewmatrix.Fit(opts.Camera, points, renderSize, margin)
	if err != nil {
		return nil, err
	}

	fb := NewFrameBuffer(renderSize, renderSize)
	lc := DefaultLightConfig()

	for _, p := range parts {
		px, py, pz := frame.ProjectVertices(p.xyz)
		proj := Projected{X: px, Y: py, Z: pz}

		surf := Surface{Color: untextured}
		surf.UV, _ = p.mesh.VertexUVLayerBuffer(0)
		if opts.Textures != nil {
			if path, ok := TexturePath(p.mesh); ok {
				surf.Texture = opts.Textures.Resolve(path)
			}
		}
		// Faces without UVs still pick up the texture's overall tone.
		if surf.Texture != nil {
			surf.Color = averageColor(surf.Texture)
		}

		for f := 0; f+2 < len(p.faces); f += 3 {
			fb.DrawTriangle(proj, [3]int{int(p.faces[f]), int(p.faces[f+1]), int(p.faces[f+2])}, &surf, &lc)
		}
	}

	return fb.Image(), nil
}

// TexturePath returns the path of the File bound to the mesh material's
// albedo slot, falling back to diffuse.
func TexturePath(mesh *cast.Mesh) (string, bool) {
	mat, ok := mesh.Material()
	if !ok {
		return "", false
	}
	for _, slot := range []string{cast.SlotAlbedo, cast.SlotDiffuse} {
		n, ok := mat.Slot(slot)
		if !ok {
			continue
		}
		if f, ok := n.(*cast.File); ok {
			if path, ok := f.Path(); ok {
				return path, true
			}
		}
	}
	return "", false
}

func drawable(meshes []*cast.Mesh) []*cast.Mesh {
	var out []*cast.Mesh
	for _, m := range meshes {
		vc, ok := m.VertexCount()
		if !ok || vc == 0 {
			continue
		}
		if fc, ok := m.FaceCount(); !ok || fc == 0 {
			continue
		}
		out = append(out, m)
	}
	return out
}

func averageColor(tex *image.NRGBA) color.NRGBA {
	w, h := tex.Rect.Dx(), tex.Rect.Dy()
	if w == 0 || h == 0 {
		return untextured
	}
	var sum [3]float64
	for y := range h {
		row := tex.Pix[y*tex.Stride : y*tex.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			sum[0] += float64(row[i])
			sum[1] += float64(row[i+1])
			sum[2] += float64(row[i+2])
		}
	}
	n := float64(w * h)
	return color.NRGBA{R: uint8(sum[0]/n + 0.5), G: uint8(sum[1]/n + 0.5), B: uint8(sum[2]/n + 0.5), A: 255}
}

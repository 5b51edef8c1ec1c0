package cast

import "fmt"

// Property names used by models, meshes and blend shapes.
const (
	PropName                    = "n"
	PropVertexPositionBuffer    = "vp"
	PropVertexNormalBuffer      = "vn"
	PropVertexTangentBuffer     = "vt"
	PropVertexColorBuffer       = "vc"
	PropVertexWeightBoneBuffer  = "wb"
	PropVertexWeightValueBuffer = "wv"
	PropFaceBuffer              = "f"
	PropUVLayerCount            = "ul"
	PropMaximumWeightInfluence  = "mi"
	PropSkinningMethod          = "sm"
	PropMaterial                = "m"
	PropBaseShape               = "b"
	PropTargetShapes            = "t"
	PropTargetWeightScales      = "ts"
)

// UVLayerProperty returns the property name of UV layer i ("u0", "u1", ...).
func UVLayerProperty(i int) string {
	return fmt.Sprintf("u%d", i)
}

// Model is the root of a mesh/skeleton/material hierarchy.
type Model struct{ Base }

// NewModel returns an empty model with a hash from the process-wide sequence.
func NewModel() *Model {
	return New(TagModel).(*Model)
}

func (m *Model) Name() (string, bool) { return m.text(PropName) }
func (m *Model) SetName(name string)  { m.setText(PropName, name) }

func (m *Model) Skeleton() (*Skeleton, bool) {
	return FirstChildOf[*Skeleton](m)
}

func (m *Model) Meshes() []*Mesh {
	return ChildrenOf[*Mesh](m)
}

func (m *Model) Materials() []*Material {
	return ChildrenOf[*Material](m)
}

func (m *Model) BlendShapes() []*BlendShape {
	return ChildrenOf[*BlendShape](m)
}

// Animations lists animations stored under the model rather than at the root.
func (m *Model) Animations() []*Animation {
	return ChildrenOf[*Animation](m)
}

func (m *Model) CreateSkeleton() *Skeleton {
	return create[*Skeleton](m, TagSkeleton)
}

func (m *Model) CreateMesh() *Mesh {
	return create[*Mesh](m, TagMesh)
}

func (m *Model) CreateMaterial() *Material {
	return create[*Material](m, TagMaterial)
}

func (m *Model) CreateBlendShape() *BlendShape {
	return create[*BlendShape](m, TagBlendShape)
}

func (m *Model) CreateAnimation() *Animation {
	return create[*Animation](m, TagAnimation)
}

// Mesh holds vertex and face buffers. Buffers are flat: positions are x, y, z
// triples and faces are index triples.
type Mesh struct{ Base }

func (m *Mesh) Name() (string, bool) { return m.text(PropName) }
func (m *Mesh) SetName(name string)  { m.setText(PropName, name) }

// VertexCount is the position buffer length divided by three.
func (m *Mesh) VertexCount() (int, bool) {
	p, ok := m.Property(PropVertexPositionBuffer)
	if !ok {
		return 0, false
	}
	return p.Len() / 3, true
}

// FaceCount is the face buffer length divided by three.
func (m *Mesh) FaceCount() (int, bool) {
	p, ok := m.Property(PropFaceBuffer)
	if !ok {
		return 0, false
	}
	return p.Len() / 3, true
}

func (m *Mesh) UVLayerCount() (int, bool) {
	v, ok := m.uint64At(PropUVLayerCount)
	return int(v), ok
}

func (m *Mesh) SetUVLayerCount(n int) {
	m.SetProperty(NewSmallestUnsigned(PropUVLayerCount, []uint32{uint32(n)}))
}

func (m *Mesh) MaximumWeightInfluence() (int, bool) {
	v, ok := m.uint64At(PropMaximumWeightInfluence)
	return int(v), ok
}

func (m *Mesh) SetMaximumWeightInfluence(n int) {
	m.SetProperty(NewSmallestUnsigned(PropMaximumWeightInfluence, []uint32{uint32(n)}))
}

// SkinningMethod is "linear" or "quaternion" when set.
func (m *Mesh) SkinningMethod() (string, bool) { return m.text(PropSkinningMethod) }
func (m *Mesh) SetSkinningMethod(method string) {
	m.setText(PropSkinningMethod, method)
}

func (m *Mesh) FaceBuffer() ([]uint32, bool) { return m.uint32s(PropFaceBuffer) }
func (m *Mesh) SetFaceBuffer(indices []uint32) {
	m.SetProperty(NewSmallestUnsigned(PropFaceBuffer, indices))
}

func (m *Mesh) VertexPositionBuffer() ([]float32, bool) {
	return m.float32s(PropVertexPositionBuffer)
}

func (m *Mesh) SetVertexPositionBuffer(xyz []float32) {
	m.setVectors(PropVertexPositionBuffer, TypeVector3, xyz)
}

func (m *Mesh) VertexNormalBuffer() ([]float32, bool) {
	return m.float32s(PropVertexNormalBuffer)
}

func (m *Mesh) SetVertexNormalBuffer(xyz []float32) {
	m.setVectors(PropVertexNormalBuffer, TypeVector3, xyz)
}

func (m *Mesh) VertexTangentBuffer() ([]float32, bool) {
	return m.float32s(PropVertexTangentBuffer)
}

func (m *Mesh) SetVertexTangentBuffer(xyz []float32) {
	m.setVectors(PropVertexTangentBuffer, TypeVector3, xyz)
}

// VertexColorBuffer returns one packed RGBA value per vertex.
func (m *Mesh) VertexColorBuffer() ([]uint32, bool) { return m.uint32s(PropVertexColorBuffer) }
func (m *Mesh) SetVertexColorBuffer(rgba []uint32) {
	m.SetProperty(NewIntegers(PropVertexColorBuffer, rgba...))
}

// VertexUVLayerBuffer returns the u, v pairs of layer i.
func (m *Mesh) VertexUVLayerBuffer(i int) ([]float32, bool) {
	return m.float32s(UVLayerProperty(i))
}

func (m *Mesh) SetVertexUVLayerBuffer(i int, uv []float32) {
	m.setVectors(UVLayerProperty(i), TypeVector2, uv)
}

func (m *Mesh) VertexWeightBoneBuffer() ([]uint32, bool) {
	return m.uint32s(PropVertexWeightBoneBuffer)
}

func (m *Mesh) SetVertexWeightBoneBuffer(bones []uint32) {
	m.SetProperty(NewSmallestUnsigned(PropVertexWeightBoneBuffer, bones))
}

func (m *Mesh) VertexWeightValueBuffer() ([]float32, bool) {
	return m.float32s(PropVertexWeightValueBuffer)
}

func (m *Mesh) SetVertexWeightValueBuffer(weights []float32) {
	m.SetProperty(NewFloats(PropVertexWeightValueBuffer, weights...))
}

// Material resolves the mesh's material hash among its siblings. A detached
// mesh, a dangling hash or a non-material target all report false.
func (m *Mesh) Material() (*Material, bool) {
	n, ok := m.resolve(PropMaterial)
	if !ok {
		return nil, false
	}
	mat, ok := n.(*Material)
	return mat, ok
}

func (m *Mesh) SetMaterial(hash uint64) {
	m.SetProperty(NewLongs(PropMaterial, hash))
}

// BlendShape deforms a base mesh towards one or more target meshes.
type BlendShape struct{ Base }

func (s *BlendShape) Name() (string, bool) { return s.text(PropName) }
func (s *BlendShape) SetName(name string)  { s.setText(PropName, name) }

func (s *BlendShape) BaseShape() (*Mesh, bool) {
	n, ok := s.resolve(PropBaseShape)
	if !ok {
		return nil, false
	}
	mesh, ok := n.(*Mesh)
	return mesh, ok
}

func (s *BlendShape) SetBaseShape(hash uint64) {
	s.SetProperty(NewLongs(PropBaseShape, hash))
}

// TargetShapes resolves every target hash. The result lines up with
// TargetWeightScales; targets that do not resolve to a mesh are nil.
func (s *BlendShape) TargetShapes() ([]*Mesh, bool) {
	p, ok := s.Property(PropTargetShapes)
	if !ok {
		return nil, false
	}
	hashes, ok := p.Uint64s()
	if !ok {
		return nil, false
	}
	out := make([]*Mesh, len(hashes))
	for i, h := range hashes {
		if n, err := Resolve(s, h); err == nil {
			out[i], _ = n.(*Mesh)
		}
	}
	return out, true
}

func (s *BlendShape) SetTargetShapes(hashes ...uint64) {
	s.SetProperty(NewLongs(PropTargetShapes, hashes...))
}

func (s *BlendShape) TargetWeightScales() ([]float32, bool) {
	return s.float32s(PropTargetWeightScales)
}

func (s *BlendShape) SetTargetWeightScales(scales ...float32) {
	s.SetProperty(NewFloats(PropTargetWeightScales, scales...))
}

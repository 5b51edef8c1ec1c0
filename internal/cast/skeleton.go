package cast

// Property names used by bones.
const (
	PropParentIndex            = "p"
	PropSegmentScaleCompensate = "ssc"
	PropLocalPosition          = "lp"
	PropLocalRotation          = "lr"
	PropWorldPosition          = "wp"
	PropWorldRotation          = "wr"
	PropScale                  = "s"
)

// Skeleton groups the bones of a model.
type Skeleton struct{ Base }

func (s *Skeleton) Bones() []*Bone {
	return ChildrenOf[*Bone](s)
}

func (s *Skeleton) CreateBone() *Bone {
	return create[*Bone](s, TagBone)
}

// Bone is one joint. Rotations are quaternions stored as x, y, z, w.
type Bone struct{ Base }

func (b *Bone) Name() (string, bool) { return b.text(PropName) }
func (b *Bone) SetName(name string)  { b.setText(PropName, name) }

// ParentIndex is the index of the parent bone within the skeleton, or -1 for
// a root bone. The wire value is unsigned; the sign is recovered by
// two's-complement reinterpretation of the low 32 bits.
func (b *Bone) ParentIndex() (int32, bool) {
	v, ok := b.uint64At(PropParentIndex)
	if !ok {
		return 0, false
	}
	return SignedIndex(uint32(v)), true
}

func (b *Bone) SetParentIndex(index int32) {
	b.SetProperty(NewIntegers(PropParentIndex, uint32(index)))
}

// SignedIndex maps an unsigned 32-bit wire index into -1..MaxInt32.
func SignedIndex(v uint32) int32 {
	return int32(int64(v^0x80000000) - 0x80000000)
}

func (b *Bone) SegmentScaleCompensate() (bool, bool) {
	v, ok := b.uint64At(PropSegmentScaleCompensate)
	return v == 1, ok
}

func (b *Bone) SetSegmentScaleCompensate(enabled bool) {
	b.setBool(PropSegmentScaleCompensate, enabled)
}

func (b *Bone) LocalPosition() ([3]float32, bool) { return b.vec3(PropLocalPosition) }
func (b *Bone) LocalRotation() ([4]float32, bool) { return b.vec4(PropLocalRotation) }
func (b *Bone) WorldPosition() ([3]float32, bool) { return b.vec3(PropWorldPosition) }
func (b *Bone) WorldRotation() ([4]float32, bool) { return b.vec4(PropWorldRotation) }
func (b *Bone) Scale() ([3]float32, bool)         { return b.vec3(PropScale) }

func (b *Bone) SetLocalPosition(v [3]float32) {
	b.setVectors(PropLocalPosition, TypeVector3, v[:])
}

func (b *Bone) SetLocalRotation(q [4]float32) {
	b.setVectors(PropLocalRotation, TypeVector4, q[:])
}

func (b *Bone) SetWorldPosition(v [3]float32) {
	b.setVectors(PropWorldPosition, TypeVector3, v[:])
}

func (b *Bone) SetWorldRotation(q [4]float32) {
	b.setVectors(PropWorldRotation, TypeVector4, q[:])
}

func (b *Bone) SetScale(v [3]float32) {
	b.setVectors(PropScale, TypeVector3, v[:])
}

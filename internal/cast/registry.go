package cast

import "fmt"

// Tag identifies a node kind on the wire. The values are the kind's four
// letter mnemonic read as a little-endian uint32 and are part of the format.
type Tag uint32

const (
	TagModel             Tag = 0x6C646F6D
	TagMesh              Tag = 0x6873656D
	TagBlendShape        Tag = 0x68736C62
	TagSkeleton          Tag = 0x6C656B73
	TagAnimation         Tag = 0x6D696E61
	TagCurve             Tag = 0x76727563
	TagNotificationTrack Tag = 0x6669746E
	TagBone              Tag = 0x656E6F62
	TagMaterial          Tag = 0x6C74616D
	TagFile              Tag = 0x656C6966
)

type kind struct {
	name string
	new  func() Node
}

var registry = map[Tag]kind{
	TagModel:             {"Model", func() Node { return &Model{} }},
	TagMesh:              {"Mesh", func() Node { return &Mesh{} }},
	TagBlendShape:        {"BlendShape", func() Node { return &BlendShape{} }},
	TagSkeleton:          {"Skeleton", func() Node { return &Skeleton{} }},
	TagAnimation:         {"Animation", func() Node { return &Animation{} }},
	TagCurve:             {"Curve", func() Node { return &Curve{} }},
	TagNotificationTrack: {"NotificationTrack", func() Node { return &NotificationTrack{} }},
	TagBone:              {"Bone", func() Node { return &Bone{} }},
	TagMaterial:          {"Material", func() Node { return &Material{} }},
	TagFile:              {"File", func() Node { return &File{} }},
}

// wireTag gives each variant its tag even when it was built as a zero value
// rather than through New.
func (*Model) wireTag() Tag             { return TagModel }
func (*Mesh) wireTag() Tag              { return TagMesh }
func (*BlendShape) wireTag() Tag        { return TagBlendShape }
func (*Skeleton) wireTag() Tag          { return TagSkeleton }
func (*Animation) wireTag() Tag         { return TagAnimation }
func (*Curve) wireTag() Tag             { return TagCurve }
func (*NotificationTrack) wireTag() Tag { return TagNotificationTrack }
func (*Bone) wireTag() Tag              { return TagBone }
func (*Material) wireTag() Tag          { return TagMaterial }
func (*File) wireTag() Tag              { return TagFile }

// Known reports whether tag maps to a typed node variant.
func (t Tag) Known() bool {
	_, ok := registry[t]
	return ok
}

func (t Tag) String() string {
	if k, ok := registry[t]; ok {
		return k.name
	}
	return fmt.Sprintf("0x%08X", uint32(t))
}

// newNode constructs the variant registered for tag, or a Generic node.
func newNode(tag Tag, hash uint64, seq *Sequence) Node {
	var n Node
	if k, ok := registry[tag]; ok {
		n = k.new()
	} else {
		n = &Generic{}
	}
	b := n.base()
	b.tag = tag
	b.hash = hash
	b.seq = seq
	b.self = n
	return n
}

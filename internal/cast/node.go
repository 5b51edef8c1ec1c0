package cast

import (
	"encoding/binary"
	"fmt"
	"slices"
)

const nodeHeaderSize = 24

// Node is one entry of the document tree. Every variant embeds Base, which
// implements the whole interface; the variants only add typed accessors.
type Node interface {
	Tag() Tag
	Hash() uint64

	Properties() []*Property
	Property(name string) (*Property, bool)
	SetProperty(p *Property)
	RemoveProperty(name string) bool

	Children() []Node
	Parent() Node
	ChildByHash(hash uint64) (Node, bool)
	AddChild(child Node) Node

	// Length is the encoded size of the node and its whole subtree.
	Length() int

	base() *Base
	wireTag() Tag
}

// Base holds the state shared by all node variants.
type Base struct {
	tag  Tag
	hash uint64

	props []*Property
	names map[string]int

	children []Node

	// parent is a lookup-only back reference. Ownership runs strictly from
	// parent to children; encoding never follows this link.
	parent Node
	self   Node
	seq    *Sequence
}

// Generic is a node whose tag has no registered variant. Its properties and
// children are kept and written back unchanged.
type Generic struct{ Base }

func (b *Base) base() *Base { return b }

func (b *Base) wireTag() Tag { return b.tag }

// adopt completes a node that was built as a Go literal instead of through
// New: it gets its variant tag, a hash from the default sequence and the
// self link its children need for parent lookups. Nodes from New or Decode
// are left alone.
func adopt(n Node) {
	b := n.base()
	if b.self != nil {
		return
	}
	b.self = n
	if b.tag == 0 {
		b.tag = n.wireTag()
	}
	if b.hash == 0 {
		b.hash = defaultSequence.Next()
	}
	for _, c := range b.children {
		c.base().parent = n
		adopt(c)
	}
}

func (b *Base) Tag() Tag { return b.tag }

func (b *Base) Hash() uint64 { return b.hash }

// Parent returns the node this one is attached to, or nil for roots and
// detached nodes.
func (b *Base) Parent() Node { return b.parent }

// Children returns the owned child nodes in stream order.
func (b *Base) Children() []Node { return b.children }

// Properties returns the properties in insertion order.
func (b *Base) Properties() []*Property {
	return b.props
}

func (b *Base) Property(name string) (*Property, bool) {
	i, ok := b.names[name]
	if !ok {
		return nil, false
	}
	return b.props[i], true
}

// SetProperty adds p, replacing any property with the same name in place.
func (b *Base) SetProperty(p *Property) {
	if b.names == nil {
		b.names = make(map[string]int)
	}
	if i, ok := b.names[p.name]; ok {
		b.props[i] = p
		return
	}
	b.names[p.name] = len(b.props)
	b.props = append(b.props, p)
}

func (b *Base) RemoveProperty(name string) bool {
	i, ok := b.names[name]
	if !ok {
		return false
	}
	b.props = append(b.props[:i], b.props[i+1:]...)
	delete(b.names, name)
	for j := i; j < len(b.props); j++ {
		b.names[b.props[j].name] = j
	}
	return true
}

// ChildByHash returns the first direct child with the given identity hash.
func (b *Base) ChildByHash(hash uint64) (Node, bool) {
	for _, c := range b.children {
		if c.Hash() == hash {
			return c, true
		}
	}
	return nil, false
}

// AddChild appends child and points its parent link at this node. A child
// that already has a parent is moved, not shared.
func (b *Base) AddChild(child Node) Node {
	adopt(child)
	cb := child.base()
	if cb == b {
		return child
	}
	if cb.parent != nil {
		cb.parent.base().removeChild(child)
	}
	cb.parent = b.self
	b.children = append(b.children, child)
	return child
}

func (b *Base) removeChild(child Node) {
	for i, c := range b.children {
		if c == child {
			b.children = slices.Delete(b.children, i, i+1)
			return
		}
	}
}

// Length recomputes the encoded size from the current tree.
func (b *Base) Length() int {
	n := nodeHeaderSize
	for _, p := range b.props {
		n += p.Length()
	}
	for _, c := range b.children {
		n += c.Length()
	}
	return n
}

func (b *Base) sequence() *Sequence {
	if b.seq == nil {
		return defaultSequence
	}
	return b.seq
}

// create builds a child of the given kind with a fresh hash from the owner's
// sequence and attaches it to owner.
func create[T Node](owner Node, tag Tag) T {
	adopt(owner)
	return owner.AddChild(owner.base().sequence().New(tag)).(T)
}

// ChildrenOf returns the direct children of n that are of variant T.
func ChildrenOf[T Node](n Node) []T {
	var out []T
	for _, c := range n.Children() {
		if t, ok := c.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// FirstChildOf returns the first direct child of n that is of variant T.
func FirstChildOf[T Node](n Node) (T, bool) {
	for _, c := range n.Children() {
		if t, ok := c.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// Resolve follows a stored hash through the parent of n. Node accessors use
// it for cross references and report failures as absence.
func Resolve(n Node, hash uint64) (Node, error) {
	parent := n.Parent()
	if parent == nil {
		return nil, fmt.Errorf("cast: %s %#x is not attached: %w", n.Tag(), n.Hash(), ErrUnresolvedReference)
	}
	target, ok := parent.ChildByHash(hash)
	if !ok {
		return nil, fmt.Errorf("cast: %s %#x: no sibling with hash %#x: %w", n.Tag(), n.Hash(), hash, ErrUnresolvedReference)
	}
	return target, nil
}

// Property helpers shared by the variant accessors.

func (b *Base) text(name string) (string, bool) {
	p, ok := b.Property(name)
	if !ok {
		return "", false
	}
	return p.Text()
}

func (b *Base) uint64At(name string) (uint64, bool) {
	p, ok := b.Property(name)
	if !ok {
		return 0, false
	}
	return p.Uint64At(0)
}

func (b *Base) float64At(name string) (float64, bool) {
	p, ok := b.Property(name)
	if !ok {
		return 0, false
	}
	return p.Float64At(0)
}

func (b *Base) float32s(name string) ([]float32, bool) {
	p, ok := b.Property(name)
	if !ok {
		return nil, false
	}
	return p.Float32s()
}

func (b *Base) uint32s(name string) ([]uint32, bool) {
	p, ok := b.Property(name)
	if !ok {
		return nil, false
	}
	return p.Uint32s()
}

func (b *Base) vec3(name string) ([3]float32, bool) {
	v, ok := b.float32s(name)
	if !ok || len(v) < 3 {
		return [3]float32{}, false
	}
	return [3]float32{v[0], v[1], v[2]}, true
}

func (b *Base) vec4(name string) ([4]float32, bool) {
	v, ok := b.float32s(name)
	if !ok || len(v) < 4 {
		return [4]float32{}, false
	}
	return [4]float32{v[0], v[1], v[2], v[3]}, true
}

func (b *Base) resolve(name string) (Node, bool) {
	hash, ok := b.uint64At(name)
	if !ok || b.self == nil {
		return nil, false
	}
	target, err := Resolve(b.self, hash)
	if err != nil {
		return nil, false
	}
	return target, true
}

func (b *Base) setText(name, value string) {
	b.SetProperty(NewString(name, value))
}

func (b *Base) setVectors(name string, typ PropertyType, values []float32) {
	b.SetProperty(&Property{name: name, typ: typ, values: slices.Clone(values)})
}

func (b *Base) setBool(name string, v bool) {
	var x uint8
	if v {
		x = 1
	}
	b.SetProperty(NewBytes(name, x))
}

// appendNode writes the subtree in one pass and patches the byte length into
// the header once the body is known.
func appendNode(buf []byte, n Node) ([]byte, error) {
	b := n.base()
	start := len(buf)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(b.tag))
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = binary.LittleEndian.AppendUint64(buf, b.hash)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(b.props)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(b.children)))

	var err error
	for _, p := range b.props {
		if buf, err = appendProperty(buf, p); err != nil {
			return nil, fmt.Errorf("cast: %s %#x: %w", b.tag, b.hash, err)
		}
	}
	for _, c := range b.children {
		if buf, err = appendNode(buf, c); err != nil {
			return nil, err
		}
	}
	binary.LittleEndian.PutUint32(buf[start+4:], uint32(len(buf)-start))
	return buf, nil
}

func (d *Decoder) readNode(r *reader, parent Node) (Node, error) {
	start := r.off
	if err := r.need(nodeHeaderSize, "node header"); err != nil {
		return nil, err
	}
	tag := Tag(r.u32())
	length := r.u32()
	hash := r.u64()
	propCount := r.u32()
	childCount := r.u32()

	n := newNode(tag, hash, nil)
	b := n.base()
	b.parent = parent

	// Every property needs at least its header, so a count the stream cannot
	// hold fails here instead of after a huge allocation.
	if uint64(propCount)*propertyHeaderSize > uint64(r.remaining()) {
		return nil, fmt.Errorf("cast: %s at offset %d declares %d properties: %w", tag, start, propCount, ErrTruncatedStream)
	}
	b.props = make([]*Property, 0, propCount)
	b.names = make(map[string]int, propCount)
	for i := uint32(0); i < propCount; i++ {
		p, err := readProperty(r)
		if err != nil {
			return nil, err
		}
		b.SetProperty(p)
	}

	if uint64(childCount)*nodeHeaderSize > uint64(r.remaining()) {
		return nil, fmt.Errorf("cast: %s at offset %d declares %d children: %w", tag, start, childCount, ErrTruncatedStream)
	}
	b.children = make([]Node, 0, childCount)
	for i := uint32(0); i < childCount; i++ {
		c, err := d.readNode(r, n)
		if err != nil {
			return nil, err
		}
		b.children = append(b.children, c)
	}

	if consumed := r.off - start; uint64(consumed) != uint64(length) {
		if d.Strict {
			return nil, fmt.Errorf("cast: %s %#x at offset %d: header says %d bytes, read %d: %w",
				tag, hash, start, length, consumed, ErrLengthMismatch)
		}
		d.logger().Warn("cast: node length mismatch",
			"tag", tag.String(), "hash", fmt.Sprintf("%#x", hash),
			"offset", start, "declared", length, "consumed", consumed)
	}
	return n, nil
}

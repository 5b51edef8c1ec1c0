package cast

// Property names used by materials and files.
const (
	PropType = "t"
	PropPath = "p"
)

// Common material slot names.
const (
	SlotAlbedo    = "albedo"
	SlotDiffuse   = "diffuse"
	SlotNormal    = "normal"
	SlotSpecular  = "specular"
	SlotEmissive  = "emissive"
	SlotGloss     = "gloss"
	SlotRoughness = "roughness"
	SlotAO        = "ao"
	SlotCavity    = "cavity"
)

// Material binds texture slots to File nodes. Every property other than the
// name and type is a slot holding the hash of the bound node.
type Material struct{ Base }

func (m *Material) Name() (string, bool) { return m.text(PropName) }
func (m *Material) Type() (string, bool) { return m.text(PropType) }
func (m *Material) SetName(name string)  { m.setText(PropName, name) }
func (m *Material) SetType(typ string)   { m.setText(PropType, typ) }

// Slot resolves a single slot.
func (m *Material) Slot(name string) (Node, bool) {
	if name == PropName || name == PropType {
		return nil, false
	}
	hash, ok := m.uint64At(name)
	if !ok {
		return nil, false
	}
	return m.lookup(hash)
}

// Slots maps every slot name to the node it references. Slots whose hash
// does not resolve map to nil.
func (m *Material) Slots() map[string]Node {
	slots := make(map[string]Node)
	for _, p := range m.props {
		if p.name == PropName || p.name == PropType {
			continue
		}
		hash, ok := p.Uint64At(0)
		if !ok {
			slots[p.name] = nil
			continue
		}
		slots[p.name], _ = m.lookup(hash)
	}
	return slots
}

// lookup searches the material's siblings first and then its own children,
// where exporters usually place the File nodes.
func (m *Material) lookup(hash uint64) (Node, bool) {
	if n, err := Resolve(m, hash); err == nil {
		return n, true
	}
	return m.ChildByHash(hash)
}

func (m *Material) SetSlot(name string, hash uint64) {
	m.SetProperty(NewLongs(name, hash))
}

// CreateFile adds a File child, ready to be bound with SetSlot.
func (m *Material) CreateFile() *File {
	return create[*File](m, TagFile)
}

// File references an external file, usually a texture.
type File struct{ Base }

func (f *File) Path() (string, bool) { return f.text(PropPath) }
func (f *File) SetPath(path string)  { f.setText(PropPath, path) }

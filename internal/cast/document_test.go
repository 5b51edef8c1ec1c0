package cast

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshot is a comparable view of a node tree.
type snapshot struct {
	Tag      Tag
	Hash     uint64
	Props    []propSnapshot
	Children []snapshot
}

type propSnapshot struct {
	Name   string
	Type   string
	Values any
}

func snap(n Node) snapshot {
	s := snapshot{Tag: n.Tag(), Hash: n.Hash()}
	for _, p := range n.Properties() {
		s.Props = append(s.Props, propSnapshot{Name: p.Name(), Type: p.Type().Tag, Values: p.Raw()})
	}
	for _, c := range n.Children() {
		s.Children = append(s.Children, snap(c))
	}
	return s
}

func snapDocument(d *Document) []snapshot {
	var out []snapshot
	for _, r := range d.Roots() {
		out = append(out, snap(r))
	}
	return out
}

// sampleDocument builds a document touching every node kind and property type.
func sampleDocument(t *testing.T) *Document {
	t.Helper()
	seq := NewSequence(HashSeed)
	doc := NewDocument()

	model := doc.AddRoot(seq.New(TagModel)).(*Model)
	model.SetName("crate")

	skel := model.CreateSkeleton()
	root := skel.CreateBone()
	root.SetName("root")
	root.SetParentIndex(-1)
	root.SetLocalPosition([3]float32{0, 1, 0})
	root.SetLocalRotation([4]float32{0, 0, 0, 1})
	root.SetScale([3]float32{1, 1, 1})
	root.SetSegmentScaleCompensate(true)
	child := skel.CreateBone()
	child.SetName("lid")
	child.SetParentIndex(0)

	mat := model.CreateMaterial()
	mat.SetName("wood")
	mat.SetType("pbr")
	file := model.AddChild(seq.New(TagFile)).(*File)
	file.SetPath("textures/wood.png")
	mat.SetSlot(SlotAlbedo, file.Hash())

	mesh := model.CreateMesh()
	mesh.SetName("body")
	mesh.SetVertexPositionBuffer([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	mesh.SetVertexNormalBuffer([]float32{0, 0, 1, 0, 0, 1, 0, 0, 1})
	mesh.SetVertexUVLayerBuffer(0, []float32{0, 0, 1, 0, 0, 1})
	mesh.SetUVLayerCount(1)
	mesh.SetVertexColorBuffer([]uint32{0xFFFFFFFF, 0xFF0000FF, 0xFF00FF00})
	mesh.SetVertexWeightBoneBuffer([]uint32{0, 1, 1})
	mesh.SetVertexWeightValueBuffer([]float32{1, 1, 1})
	mesh.SetMaximumWeightInfluence(1)
	mesh.SetSkinningMethod("linear")
	mesh.SetFaceBuffer([]uint32{0, 1, 2})
	mesh.SetMaterial(mat.Hash())
	mesh.SetProperty(NewDoubles("precise", 0.1))
	mesh.SetProperty(NewShorts("shorts", 1, 65535))

	anim := doc.AddRoot(seq.New(TagAnimation)).(*Animation)
	anim.SetFramerate(30)
	anim.SetLooping(true)
	curve := anim.CreateCurve()
	curve.SetNodeName("lid")
	curve.SetKeyPropertyName("rq")
	curve.SetMode(ModeAbsolute)
	curve.SetKeyFrameBuffer([]uint32{0, 10})
	kv, err := NewVectors("ignored", TypeVector4, []float32{0, 0, 0, 1, 0, 0.7071, 0, 0.7071})
	require.NoError(t, err)
	curve.SetKeyValueBuffer(kv)
	track := anim.CreateNotificationTrack()
	track.SetName("open")
	track.SetKeyFrameBuffer([]uint32{5})

	generic := doc.AddRoot(NewWithHash(0xDEADBEEF, 9))
	generic.SetProperty(NewString("note", "kept as is"))

	return doc
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := sampleDocument(t)
	data, err := doc.Encode()
	require.NoError(t, err)
	assert.Equal(t, doc.Length(), len(data))

	back, err := (&Decoder{Strict: true}).Decode(data)
	require.NoError(t, err)
	if diff := cmp.Diff(snapDocument(doc), snapDocument(back)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	again, err := back.Encode()
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestDocumentRoundTrip_Accessors(t *testing.T) {
	data, err := sampleDocument(t).Encode()
	require.NoError(t, err)
	doc, err := Decode(data)
	require.NoError(t, err)

	require.Len(t, doc.Models(), 1)
	model := doc.Models()[0]
	name, ok := model.Name()
	require.True(t, ok)
	assert.Equal(t, "crate", name)

	skel, ok := model.Skeleton()
	require.True(t, ok)
	bones := skel.Bones()
	require.Len(t, bones, 2)
	idx, ok := bones[0].ParentIndex()
	require.True(t, ok)
	assert.Equal(t, int32(-1), idx)
	ssc, ok := bones[0].SegmentScaleCompensate()
	assert.True(t, ok)
	assert.True(t, ssc)

	mesh := model.Meshes()[0]
	mat, ok := mesh.Material()
	require.True(t, ok)
	matName, _ := mat.Name()
	assert.Equal(t, "wood", matName)
	albedo, ok := mat.Slot(SlotAlbedo)
	require.True(t, ok)
	path, _ := albedo.(*File).Path()
	assert.Equal(t, "textures/wood.png", path)

	require.Len(t, doc.Animations(), 1)
	anim := doc.Animations()[0]
	fps, ok := anim.Framerate()
	require.True(t, ok)
	assert.Equal(t, float32(30), fps)
	assert.True(t, anim.Looping())
	kv, ok := anim.Curves()[0].KeyValueBuffer()
	require.True(t, ok)
	assert.Equal(t, TypeVector4, kv.Type())
	assert.Equal(t, 2, kv.ElementCount())

	assert.Nil(t, model.Parent())
	assert.Len(t, doc.Roots(), 3)
}

func TestDocumentRoundTrip_LiteralNodes(t *testing.T) {
	model := &Model{}
	mesh := model.CreateMesh()
	mat := model.CreateMaterial()
	mesh.SetMaterial(mat.Hash())

	skel := &Skeleton{}
	bone := skel.AddChild(&Bone{}).(*Bone)
	bone.SetName("root")
	model.AddChild(skel)

	assert.Same(t, model, mesh.Parent())
	assert.Same(t, skel, bone.Parent())
	got, ok := mesh.Material()
	require.True(t, ok)
	assert.Same(t, mat, got)
	assert.Equal(t, TagModel, model.Tag())
	assert.Equal(t, TagBone, bone.Tag())
	assert.NotZero(t, model.Hash())
	assert.NotEqual(t, model.Hash(), skel.Hash())

	doc := NewDocument()
	doc.AddRoot(model)
	doc.AddRoot(&Animation{})
	data, err := doc.Encode()
	require.NoError(t, err)

	back, err := (&Decoder{Strict: true}).Decode(data)
	require.NoError(t, err)
	if diff := cmp.Diff(snapDocument(doc), snapDocument(back)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, back.Models(), 1)
	require.Len(t, back.Animations(), 1)
	meshes := back.Models()[0].Meshes()
	require.Len(t, meshes, 1)
	backMat, ok := meshes[0].Material()
	require.True(t, ok)
	assert.Equal(t, mat.Hash(), backMat.Hash())
	backSkel, ok := back.Models()[0].Skeleton()
	require.True(t, ok)
	require.Len(t, backSkel.Bones(), 1)
}

func TestAddRootDetachesFromParent(t *testing.T) {
	model := NewSequence(1).New(TagModel).(*Model)
	mesh := model.CreateMesh()

	doc := NewDocument()
	doc.AddRoot(model)
	doc.AddRoot(mesh)
	assert.Nil(t, mesh.Parent())
	assert.Empty(t, model.Children())

	doc.AddRoot(model)
	require.Len(t, doc.Roots(), 2)
	assert.Same(t, mesh, doc.Roots()[0])
	assert.Same(t, model, doc.Roots()[1])
}

func TestDecode_EmptyDocument(t *testing.T) {
	doc, err := Decode(rawDocument(Magic, 1))
	require.NoError(t, err)
	assert.Empty(t, doc.Roots())
	assert.Equal(t, Version, doc.Version)

	data, err := doc.Encode()
	require.NoError(t, err)
	assert.Equal(t, rawDocument(Magic, 1), data)
}

func TestDecode_BadMagic(t *testing.T) {
	_, err := Decode(rawDocument(0x12345678, 1))
	assert.ErrorIs(t, err, ErrBadMagic)

	_, err = Decode([]byte("cas"))
	assert.ErrorIs(t, err, ErrTruncatedStream)
}

func TestDecode_TruncatedRoot(t *testing.T) {
	full := rawDocument(Magic, 1, rawNode(uint32(TagModel), 0, 1,
		[][]byte{rawProperty("s", "n", 1, []byte("crate\x00"))}, nil))
	for cut := documentHeaderSize; cut < len(full); cut++ {
		_, err := Decode(full[:cut])
		require.ErrorIs(t, err, ErrTruncatedStream, "cut at %d", cut)
	}
	_, err := Decode(full[:10])
	assert.ErrorIs(t, err, ErrTruncatedStream)
}

func TestDecode_OtherVersionAccepted(t *testing.T) {
	doc, err := Decode(rawDocument(Magic, 2, rawNode(uint32(TagModel), 0, 1, nil, nil)))
	require.NoError(t, err)
	assert.Equal(t, uint32(2), doc.Version)

	// Encoding always writes the current version.
	data, err := doc.Encode()
	require.NoError(t, err)
	back, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, Version, back.Version)
}

func TestDecode_TrailingBytesWarn(t *testing.T) {
	var logs bytes.Buffer
	d := &Decoder{Logger: slog.New(slog.NewTextHandler(&logs, nil))}
	data := append(rawDocument(Magic, 1), 0xAA, 0xBB)
	doc, err := d.Decode(data)
	require.NoError(t, err)
	assert.Empty(t, doc.Roots())
	assert.Contains(t, logs.String(), "trailing bytes")
}

type failingWriter struct{ writes int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, errors.New("disk full")
}

func TestSave_EncodeErrorWritesNothing(t *testing.T) {
	doc := NewDocument()
	mesh := doc.AddRoot(NewWithHash(TagMesh, 1))
	bad, err := NewVectors("vp", TypeVector3, []float32{1, 2})
	require.NoError(t, err)
	mesh.SetProperty(bad)

	w := &failingWriter{}
	err = doc.Save(w)
	assert.ErrorIs(t, err, ErrInconsistentPropertyLength)
	assert.Zero(t, w.writes)

	var buf bytes.Buffer
	require.Error(t, doc.Save(&buf))
	assert.Zero(t, buf.Len())
}

func TestSave_WriteError(t *testing.T) {
	err := sampleDocument(t).Save(&failingWriter{})
	assert.ErrorContains(t, err, "disk full")
}

func TestSaveFileLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.cast")
	doc := sampleDocument(t)
	require.NoError(t, doc.SaveFile(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(doc.Length()), info.Size())

	back, err := LoadFile(path)
	require.NoError(t, err)
	if diff := cmp.Diff(snapDocument(doc), snapDocument(back)); diff != "" {
		t.Fatalf("file round trip mismatch (-want +got):\n%s", diff)
	}

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	streamed, err := Load(f)
	require.NoError(t, err)
	assert.Len(t, streamed.Roots(), len(doc.Roots()))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.cast"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

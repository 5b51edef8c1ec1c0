package dump

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"castkit/internal/cast"
)

func sample() *cast.Document {
	seq := cast.NewSequence(0x10)
	doc := cast.NewDocument()
	model := doc.AddRoot(seq.New(cast.TagModel)).(*cast.Model)
	model.SetName("crate")
	mat := model.CreateMaterial()
	mat.SetName("wood")
	file := mat.CreateFile()
	file.SetPath("wood.png")
	mat.SetSlot(cast.SlotAlbedo, file.Hash())
	mat.SetSlot(cast.SlotNormal, 0xBAD)

	mesh := model.CreateMesh()
	mesh.SetVertexPositionBuffer(make([]float32, 3*20))
	mesh.SetFaceBuffer([]uint32{0, 1, 2})
	mesh.SetMaterial(mat.Hash())
	return doc
}

func TestBuild(t *testing.T) {
	entries := Build(sample(), Options{})
	require.Len(t, entries, 1)
	model := entries[0]
	assert.Equal(t, "Model", model.Kind)
	assert.Equal(t, "0x0000000000000010", model.Hash)
	require.Len(t, model.Children, 2)

	mat := model.Children[0]
	props := map[string]Property{}
	for _, p := range mat.Properties {
		props[p.Name] = p
	}
	assert.Equal(t, `File 0x0000000000000012 "wood.png"`, props[cast.SlotAlbedo].Ref)
	assert.Equal(t, "unresolved", props[cast.SlotNormal].Ref)
	assert.Empty(t, props[cast.PropName].Ref)

	mesh := model.Children[1]
	vp := mesh.Properties[0]
	assert.Equal(t, "3v", vp.Type)
	assert.Equal(t, 20, vp.Elements)
	assert.True(t, vp.Truncated)
	assert.Len(t, vp.Value, DefaultMaxValues)

	m := mesh.Properties[2]
	assert.Equal(t, cast.PropMaterial, m.Name)
	assert.Equal(t, []string{"0x0000000000000011"}, m.Value)
	assert.Equal(t, `Material 0x0000000000000011 "wood"`, m.Ref)

	all := Build(sample(), Options{MaxValues: -1})
	assert.Len(t, all[0].Children[1].Properties[0].Value, 60)
}

func TestWriteText(t *testing.T) {
	text := Text(Build(sample(), Options{}))
	lines := strings.Split(strings.TrimSpace(text), "\n")
	assert.Equal(t, "Model 0x0000000000000010", lines[0])
	assert.Equal(t, `  n (s) "crate"`, lines[1])
	assert.Contains(t, text, "    vp (3v) [0 0 0 0 0 0 0 0 0 0 0 0 ... 20 elements]\n")
	assert.Contains(t, text, `-> Material 0x0000000000000011 "wood"`)

	var buf bytes.Buffer
	pal := Palette{Kind: func(a ...any) string { return "<" + a[0].(string) + ">" }}
	require.NoError(t, Write(&buf, Build(sample(), Options{}), FormatText, pal))
	assert.True(t, strings.HasPrefix(buf.String(), "<Model> 0x"))
}

func TestWriteStructured(t *testing.T) {
	entries := Build(sample(), Options{})

	var js bytes.Buffer
	require.NoError(t, Write(&js, entries, FormatJSON, Palette{}))
	var fromJSON []map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &fromJSON))
	assert.Equal(t, "Model", fromJSON[0]["kind"])

	var ys bytes.Buffer
	require.NoError(t, Write(&ys, entries, FormatYAML, Palette{}))
	var fromYAML []map[string]any
	require.NoError(t, yaml.Unmarshal(ys.Bytes(), &fromYAML))
	assert.Equal(t, "Model", fromYAML[0]["kind"])

	assert.ErrorContains(t, Write(&ys, entries, "xml", Palette{}), "unknown format")
}

func TestDiff(t *testing.T) {
	a := "Model\n  n \"a\"\n  Mesh\n"
	b := "Model\n  n \"b\"\n  Mesh\n"

	lines := Diff(a, b)
	assert.True(t, Changed(lines))
	assert.Equal(t, []Line{
		{OpEqual, "Model"},
		{OpDelete, `  n "a"`},
		{OpInsert, `  n "b"`},
		{OpEqual, "  Mesh"},
	}, lines)

	assert.False(t, Changed(Diff(a, a)))
}

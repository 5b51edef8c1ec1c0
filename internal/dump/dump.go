// Package dump renders cast documents as plain trees for people and tools:
// indented text, JSON or YAML, and line diffs between two renderings.
package dump

import (
	"fmt"
	"strconv"
	"strings"

	"castkit/internal/cast"
)

// DefaultMaxValues is how many array values Build keeps per property.
const DefaultMaxValues = 12

// Entry is one node of the rendered tree.
type Entry struct {
	Kind       string     `json:"kind" yaml:"kind"`
	Tag        string     `json:"tag" yaml:"tag"`
	Hash       string     `json:"hash" yaml:"hash"`
	Properties []Property `json:"properties,omitempty" yaml:"properties,omitempty"`
	Children   []Entry    `json:"children,omitempty" yaml:"children,omitempty"`
}

// Property is one rendered property. Ref is set for properties that hold
// the hash of another node.
type Property struct {
	Name      string `json:"name" yaml:"name"`
	Type      string `json:"type" yaml:"type"`
	Elements  int    `json:"elements" yaml:"elements"`
	Value     any    `json:"value" yaml:"value"`
	Truncated bool   `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	Ref       string `json:"ref,omitempty" yaml:"ref,omitempty"`
}

// Options controls Build.
type Options struct {
	// MaxValues caps the values kept per array property. Zero means
	// DefaultMaxValues; negative keeps everything.
	MaxValues int
}

// Build converts the roots of doc into entries.
func Build(doc *cast.Document, opts Options) []Entry {
	if opts.MaxValues == 0 {
		opts.MaxValues = DefaultMaxValues
	}
	entries := make([]Entry, 0, len(doc.Roots()))
	for _, n := range doc.Roots() {
		entries = append(entries, build(n, opts))
	}
	return entries
}

func build(n cast.Node, opts Options) Entry {
	e := Entry{
		Kind: n.Tag().String(),
		Tag:  fmt.Sprintf("0x%08X", uint32(n.Tag())),
		Hash: FormatHash(n.Hash()),
	}
	refs := references(n)
	for _, p := range n.Properties() {
		prop := Property{
			Name:     p.Name(),
			Type:     p.Type().Tag,
			Elements: p.ElementCount(),
		}
		prop.Value, prop.Truncated = values(p, opts.MaxValues)
		if target, ok := refs[p.Name()]; ok {
			prop.Ref = target
		}
		e.Properties = append(e.Properties, prop)
	}
	for _, c := range n.Children() {
		e.Children = append(e.Children, build(c, opts))
	}
	return e
}

// FormatHash renders an identity hash the way every output mode shows it.
func FormatHash(h uint64) string {
	return fmt.Sprintf("0x%016X", h)
}

func values(p *cast.Property, limit int) (any, bool) {
	if s, ok := p.Text(); ok {
		return s, false
	}
	if p.Type() == cast.TypeLong {
		// Hashes read better in hex.
		v, _ := p.Uint64s()
		out := make([]string, 0, len(v))
		for _, x := range v {
			out = append(out, FormatHash(x))
		}
		return clip(out, limit)
	}
	if v, ok := p.Uint64s(); ok {
		return clip(v, limit)
	}
	if v, ok := p.Float64s(); ok {
		return clip(v, limit)
	}
	return nil, false
}

func clip[T any](v []T, limit int) ([]T, bool) {
	if limit < 0 || len(v) <= limit {
		return v, false
	}
	return v[:limit], true
}

// references describes the targets of the hash-valued properties of n.
func references(n cast.Node) map[string]string {
	refs := map[string]string{}
	switch v := n.(type) {
	case *cast.Mesh:
		if _, ok := v.Property(cast.PropMaterial); ok {
			mat, found := v.Material()
			refs[cast.PropMaterial] = describeTarget(mat, found)
		}
	case *cast.BlendShape:
		if _, ok := v.Property(cast.PropBaseShape); ok {
			base, found := v.BaseShape()
			refs[cast.PropBaseShape] = describeTarget(base, found)
		}
		if targets, ok := v.TargetShapes(); ok {
			out := make([]string, len(targets))
			for i, t := range targets {
				out[i] = describeTarget(t, t != nil)
			}
			refs[cast.PropTargetShapes] = strings.Join(out, ", ")
		}
	case *cast.Material:
		for name, target := range v.Slots() {
			refs[name] = describeTarget(target, target != nil)
		}
	}
	return refs
}

type named interface {
	cast.Node
	Name() (string, bool)
}

func describeTarget[T cast.Node](n T, found bool) string {
	if !found {
		return "unresolved"
	}
	s := n.Tag().String() + " " + FormatHash(n.Hash())
	if nn, ok := any(n).(named); ok {
		if name, ok := nn.Name(); ok {
			s += " " + strconv.Quote(name)
		}
	}
	if f, ok := any(n).(*cast.File); ok {
		if path, ok := f.Path(); ok {
			s += " " + strconv.Quote(path)
		}
	}
	return s
}

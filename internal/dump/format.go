package dump

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Formats accepted by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Palette decorates parts of the text rendering. Nil functions leave the
// text unchanged.
type Palette struct {
	Kind func(a ...any) string
	Name func(a ...any) string
	Ref  func(a ...any) string
}

func (p Palette) paint(f func(a ...any) string, s string) string {
	if f == nil {
		return s
	}
	return f(s)
}

// Write renders entries to w in the given format. The palette only applies
// to text.
func Write(w io.Writer, entries []Entry, format string, pal Palette) error {
	switch format {
	case FormatText, "":
		return WriteText(w, entries, pal)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("dump: json: %w", err)
		}
		return nil
	case FormatYAML:
		data, err := yaml.Marshal(entries)
		if err != nil {
			return fmt.Errorf("dump: yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("dump: unknown format %q", format)
}

// WriteText renders entries as an indented tree, one node or property per
// line.
func WriteText(w io.Writer, entries []Entry, pal Palette) error {
	var b strings.Builder
	for _, e := range entries {
		writeEntry(&b, e, 0, pal)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Text is WriteText into a string without colors.
func Text(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		writeEntry(&b, e, 0, Palette{})
	}
	return b.String()
}

func writeEntry(b *strings.Builder, e Entry, depth int, pal Palette) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s%s %s\n", indent, pal.paint(pal.Kind, e.Kind), e.Hash)
	for _, p := range e.Properties {
		fmt.Fprintf(b, "%s  %s (%s) %s", indent, pal.paint(pal.Name, p.Name), p.Type, formatValue(p))
		if p.Ref != "" {
			fmt.Fprintf(b, " -> %s", pal.paint(pal.Ref, p.Ref))
		}
		b.WriteByte('\n')
	}
	for _, c := range e.Children {
		writeEntry(b, c, depth+1, pal)
	}
}

func formatValue(p Property) string {
	if s, ok := p.Value.(string); ok {
		return strconv.Quote(s)
	}
	var parts []string
	switch v := p.Value.(type) {
	case []string:
		parts = v
	case []uint64:
		for _, x := range v {
			parts = append(parts, strconv.FormatUint(x, 10))
		}
	case []float64:
		for _, x := range v {
			parts = append(parts, strconv.FormatFloat(x, 'g', -1, 32))
		}
	}
	s := "[" + strings.Join(parts, " ")
	if p.Truncated {
		s += fmt.Sprintf(" ... %d elements", p.Elements)
	}
	return s + "]"
}

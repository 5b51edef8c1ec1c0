package cast

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
)

const (
	// Magic is "cast" as it appears in the first four bytes of a file.
	Magic uint32 = 0x74736163

	// Version is the only version written by Save.
	Version uint32 = 1

	documentHeaderSize = 16
)

// Document is a complete cast file: an ordered list of root nodes.
type Document struct {
	// Version as read from the header. Save always writes Version.
	Version uint32

	roots []Node
}

func NewDocument() *Document {
	return &Document{Version: Version}
}

// Roots returns the root nodes in file order.
func (d *Document) Roots() []Node {
	return d.roots
}

// AddRoot appends n as a root node. A node that was attached elsewhere is
// detached from its parent first; adding an existing root again moves it to
// the end.
func (d *Document) AddRoot(n Node) Node {
	adopt(n)
	b := n.base()
	if b.parent != nil {
		b.parent.base().removeChild(n)
		b.parent = nil
	}
	d.roots = slices.DeleteFunc(d.roots, func(r Node) bool { return r == n })
	d.roots = append(d.roots, n)
	return n
}

// Models returns the Model roots.
func (d *Document) Models() []*Model {
	return rootsOf[*Model](d.roots)
}

// Animations returns the Animation roots.
func (d *Document) Animations() []*Animation {
	return rootsOf[*Animation](d.roots)
}

func rootsOf[T Node](roots []Node) []T {
	var out []T
	for _, n := range roots {
		if t, ok := n.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Decoder reads cast documents. The zero value is ready to use.
type Decoder struct {
	// Strict turns a node byte length that disagrees with the bytes actually
	// read into ErrLengthMismatch. Otherwise the mismatch is logged and the
	// property and child counts win.
	Strict bool

	// Logger receives decode warnings. Nil discards them.
	Logger *slog.Logger
}

func (d *Decoder) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

// Decode parses a complete document held in memory.
func (d *Decoder) Decode(data []byte) (*Document, error) {
	r := &reader{data: data}
	if err := r.need(4, "document magic"); err != nil {
		return nil, err
	}
	if magic := r.u32(); magic != Magic {
		return nil, fmt.Errorf("cast: magic %#08x: %w", magic, ErrBadMagic)
	}
	if err := r.need(documentHeaderSize-4, "document header"); err != nil {
		return nil, err
	}
	doc := &Document{Version: r.u32()}
	rootCount := r.u32()
	_ = r.u32() // flags, reserved

	if uint64(rootCount)*nodeHeaderSize > uint64(r.remaining()) {
		return nil, fmt.Errorf("cast: document declares %d roots: %w", rootCount, ErrTruncatedStream)
	}
	doc.roots = make([]Node, 0, rootCount)
	for i := uint32(0); i < rootCount; i++ {
		n, err := d.readNode(r, nil)
		if err != nil {
			return nil, err
		}
		doc.roots = append(doc.roots, n)
	}

	if r.remaining() > 0 {
		d.logger().Warn("cast: trailing bytes after last root", "offset", r.off, "bytes", r.remaining())
	}
	return doc, nil
}

// Load reads the whole stream and decodes it.
func (d *Decoder) Load(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cast: read: %w", err)
	}
	return d.Decode(data)
}

// LoadFile decodes the cast file at path.
func (d *Decoder) LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cast: read %s: %w", path, err)
	}
	doc, err := d.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}
	return doc, nil
}

// Decode parses data with a default Decoder.
func Decode(data []byte) (*Document, error) {
	return (&Decoder{}).Decode(data)
}

// Load decodes a document from r with a default Decoder.
func Load(r io.Reader) (*Document, error) {
	return (&Decoder{}).Load(r)
}

// LoadFile decodes the file at path with a default Decoder.
func LoadFile(path string) (*Document, error) {
	return (&Decoder{}).LoadFile(path)
}

// Length is the encoded size of the whole document.
func (d *Document) Length() int {
	n := documentHeaderSize
	for _, root := range d.roots {
		n += root.Length()
	}
	return n
}

// Encode serializes the document. Nothing is returned on error.
func (d *Document) Encode() ([]byte, error) {
	buf := make([]byte, 0, d.Length())
	buf = binary.LittleEndian.AppendUint32(buf, Magic)
	buf = binary.LittleEndian.AppendUint32(buf, Version)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(d.roots)))
	buf = binary.LittleEndian.AppendUint32(buf, 0)

	var err error
	for _, root := range d.roots {
		if buf, err = appendNode(buf, root); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// Save encodes the document and writes it to w. The document is fully encoded
// before the first write, so an encode error leaves w untouched.
func (d *Document) Save(w io.Writer) error {
	data, err := d.Encode()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("cast: write: %w", err)
	}
	return nil
}

// SaveFile writes the document to path, replacing any existing file.
func (d *Document) SaveFile(path string) (err error) {
	data, err := d.Encode()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cast: create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("cast: write %s: %w", path, err)
	}
	return nil
}

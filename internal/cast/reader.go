package cast

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// reader walks a fully buffered cast stream. Every read is bounds checked and
// reports ErrTruncatedStream with the offset it failed at.
type reader struct {
	data []byte
	off  int
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}

func (r *reader) need(n int, what string) error {
	if n < 0 || r.remaining() < n {
		return fmt.Errorf("cast: %s at offset %d: need %d bytes, have %d: %w",
			what, r.off, n, r.remaining(), ErrTruncatedStream)
	}
	return nil
}

func (r *reader) next(n int, what string) ([]byte, error) {
	if err := r.need(n, what); err != nil {
		return nil, err
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Fixed-width helpers; callers check the width first with need.

func (r *reader) u16() uint16 {
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *reader) u32() uint32 {
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *reader) u64() uint64 {
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v
}

// cstring reads a null-terminated UTF-8 string and consumes the terminator.
func (r *reader) cstring(what string) (string, error) {
	end := bytes.IndexByte(r.data[r.off:], 0)
	if end < 0 {
		return "", fmt.Errorf("cast: %s at offset %d: missing string terminator: %w",
			what, r.off, ErrTruncatedStream)
	}
	raw := r.data[r.off : r.off+end]
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("cast: %s at offset %d: %w", what, r.off, ErrInvalidEncoding)
	}
	r.off += end + 1
	return string(raw), nil
}

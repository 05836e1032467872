// Package kbin reads and writes the primitive encodings shared by the BILD
// and ANIM formats: little-endian int32 and float32 values, length-prefixed
// ASCII strings, bare four-byte magic tags and the trailing name hash table.
package kbin

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/skairunner/kparserX/khash"
)

// ASCIIError is returned when a string that is about to be written contains
// a byte outside of 7-bit ASCII. The writer does not transcode.
type ASCIIError struct {
	S   string
	Pos int
}

func (e *ASCIIError) Error() string {
	return fmt.Sprintf("string %q is not ASCII (byte %d is 0x%02x)", e.S, e.Pos, e.S[e.Pos])
}

func checkASCII(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7F {
			return &ASCIIError{S: s, Pos: i}
		}
	}
	return nil
}

// Writer writes primitives to an underlying buffered writer. The first error
// encountered is kept and all later writes become no-ops; check Err or the
// result of Flush once done.
type Writer struct {
	w   *bufio.Writer
	err error
	buf [4]byte
	n   int64
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) write(b []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(b)
	w.n += int64(n)
	if err != nil {
		w.err = errors.Wrap(err, "kbin write")
	}
}

// WriteMagic writes a four character tag without a length prefix.
func (w *Writer) WriteMagic(tag string) {
	if w.err != nil {
		return
	}
	if len(tag) != 4 {
		w.err = errors.Errorf("magic %q must be 4 bytes long", tag)
		return
	}
	if err := checkASCII(tag); err != nil {
		w.err = err
		return
	}
	w.write([]byte(tag))
}

func (w *Writer) WriteInt32(v int32) {
	binary.LittleEndian.PutUint32(w.buf[:], uint32(v))
	w.write(w.buf[:])
}

func (w *Writer) WriteFloat32(v float32) {
	binary.LittleEndian.PutUint32(w.buf[:], math.Float32bits(v))
	w.write(w.buf[:])
}

// WriteString writes the byte length of s followed by its bytes.
func (w *Writer) WriteString(s string) {
	if w.err != nil {
		return
	}
	if err := checkASCII(s); err != nil {
		w.err = err
		return
	}
	w.WriteInt32(int32(len(s)))
	w.write([]byte(s))
}

// WriteHashTable writes the table size followed by a (hash, name) pair for
// every name, in the table's insertion order.
func (w *Writer) WriteHashTable(t *khash.Table) {
	w.WriteInt32(int32(t.Len()))
	t.Each(func(name string, hash int32) {
		w.WriteInt32(hash)
		w.WriteString(name)
	})
}

// Err returns the first error encountered, if any.
func (w *Writer) Err() error {
	return w.err
}

// Len returns the number of bytes handed to the buffer so far.
func (w *Writer) Len() int64 {
	return w.n
}

// Flush flushes buffered data and returns the first error encountered.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		w.err = errors.Wrap(err, "kbin flush")
	}
	return w.err
}

// Reader is the counterpart of Writer. Like Writer, it keeps the first error.
type Reader struct {
	r   *bufio.Reader
	err error
	buf [4]byte
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

func (r *Reader) read(b []byte) bool {
	if r.err != nil {
		return false
	}
	if _, err := io.ReadFull(r.r, b); err != nil {
		r.err = errors.Wrap(err, "kbin read")
		return false
	}
	return true
}

// ReadMagic reads four bytes and checks them against want.
func (r *Reader) ReadMagic(want string) {
	var tag [4]byte
	if !r.read(tag[:]) {
		return
	}
	if string(tag[:]) != want {
		r.err = errors.Errorf("bad magic: got %q, want %q", tag[:], want)
	}
}

func (r *Reader) ReadInt32() int32 {
	if !r.read(r.buf[:]) {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(r.buf[:]))
}

func (r *Reader) ReadFloat32() float32 {
	if !r.read(r.buf[:]) {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(r.buf[:]))
}

// maxString guards against allocating huge buffers for corrupt input.
const maxString = 1 << 16

func (r *Reader) ReadString() string {
	n := r.ReadInt32()
	if r.err != nil {
		return ""
	}
	if n < 0 || n > maxString {
		r.err = errors.Errorf("string length %d out of range", n)
		return ""
	}
	b := make([]byte, n)
	if !r.read(b) {
		return ""
	}
	return string(b)
}

// ReadHashTable reads a table written by WriteHashTable. Hashes are taken
// from the file; a hash that does not match the name is reported as an error.
func (r *Reader) ReadHashTable() *khash.Table {
	t := khash.NewTable()
	n := r.ReadInt32()
	for i := int32(0); i < n && r.err == nil; i++ {
		h := r.ReadInt32()
		name := r.ReadString()
		if r.err != nil {
			break
		}
		if got := t.Add(name); got != h {
			r.err = errors.Errorf("hash table entry %q: stored hash %d, computed %d", name, h, got)
		}
	}
	return t
}

// Count reads an element count, rejecting negative values.
func (r *Reader) Count(what string) int {
	n := r.ReadInt32()
	if r.err == nil && n < 0 {
		r.err = errors.Errorf("negative %s count %d", what, n)
	}
	if r.err != nil {
		return 0
	}
	return int(n)
}

func (r *Reader) Err() error {
	return r.err
}

package kbin

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"

	"github.com/skairunner/kparserX/khash"
	"github.com/skairunner/kparserX/ttesting"
)

func TestWriterPrimitives(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf)
	w.WriteMagic("BILD")
	w.WriteInt32(10)
	w.WriteInt32(-1)
	w.WriteFloat32(1.0)
	w.WriteFloat32(-0.5)
	w.WriteString("ab")
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	want := []byte{
		'B', 'I', 'L', 'D',
		0x0a, 0x00, 0x00, 0x00,
		0xff, 0xff, 0xff, 0xff,
		0x00, 0x00, 0x80, 0x3f,
		0x00, 0x00, 0x00, 0xbf,
		0x02, 0x00, 0x00, 0x00, 'a', 'b',
	}
	ttesting.AssertEqualBytes(t, "little endian layout", buf.Bytes(), want)
	ttesting.AssertEqualInt(t, "byte count", int(w.Len()), len(want))
}

func TestWriterRejectsNonASCII(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf)
	w.WriteString("ok")
	w.WriteString("sprïte")
	w.WriteInt32(1)
	err := w.Flush()
	if err == nil {
		t.Fatalf("Flush succeeded; want ASCIIError")
	}
	var asciiErr *ASCIIError
	if !errors.As(err, &asciiErr) {
		t.Fatalf("got %T (%v); want *ASCIIError", err, err)
	}
	ttesting.AssertEqualInt(t, "offending byte", asciiErr.Pos, 3)
	ttesting.AssertEqualInt(t, "nothing flushed after failure", buf.Len(), 0)
}

func TestWriterRejectsBadMagic(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})
	w.WriteMagic("BILDX")
	if w.Err() == nil {
		t.Errorf("5-byte magic accepted")
	}
}

func TestHashTableRoundTrip(t *testing.T) {
	tab := khash.NewTable()
	tab.Add("body")
	tab.Add("idle")

	buf := &bytes.Buffer{}
	w := NewWriter(buf)
	w.WriteHashTable(tab)
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	want := []byte{
		0x02, 0x00, 0x00, 0x00,
		0x22, 0xbb, 0xa8, 0x06, 0x04, 0x00, 0x00, 0x00, 'b', 'o', 'd', 'y',
		0xb4, 0xc7, 0xf5, 0x46, 0x04, 0x00, 0x00, 0x00, 'i', 'd', 'l', 'e',
	}
	ttesting.AssertEqualBytes(t, "hash table bytes", buf.Bytes(), want)

	r := NewReader(bytes.NewReader(buf.Bytes()))
	got := r.ReadHashTable()
	if err := r.Err(); err != nil {
		t.Fatalf("ReadHashTable: %v", err)
	}
	ttesting.AssertEqualInt(t, "entries read back", got.Len(), 2)
	ttesting.AssertEqualString(t, "first name", got.Names()[0], "body")
}

func TestReader(t *testing.T) {
	in := []byte{
		'A', 'N', 'I', 'M',
		0x05, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x80, 0x3f,
		0x03, 0x00, 0x00, 0x00, 'r', 'u', 'n',
	}
	r := NewReader(bytes.NewReader(in))
	r.ReadMagic("ANIM")
	ttesting.AssertEqualInt32(t, "int", r.ReadInt32(), 5)
	ttesting.AssertEqualFloat32(t, "float", r.ReadFloat32(), 1)
	ttesting.AssertEqualString(t, "string", r.ReadString(), "run")
	if err := r.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r.ReadInt32()
	if r.Err() == nil {
		t.Errorf("reading past the end did not fail")
	}

	r = NewReader(bytes.NewReader(in))
	r.ReadMagic("BILD")
	if r.Err() == nil {
		t.Errorf("wrong magic accepted")
	}
}

package atlas

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/skairunner/kparserX/ttesting"
)

const header = `
hero.png
size: 256, 128
format: RGBA8888
filter: Nearest, Nearest
repeat: none
`

func record(name string, x, y, w, h, index int) string {
	return fmt.Sprintf("%s\n  rotate: false\n  xy: %d, %d\n  size: %d, %d\n  orig: %d, %d\n  offset: 0, 0\n  index: %d\n",
		name, x, y, w, h, w, h, index)
}

func TestParse(t *testing.T) {
	src := header +
		record("body", 2, 2, 64, 32, 0) +
		record("body", 68, 2, 64, 32, 1) +
		record("head", 2, 36, 16, 16, 0)

	m, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ttesting.AssertEqualInt(t, "entry count", len(m.Entries), 3)
	ttesting.AssertEqualInt(t, "nothing skipped", m.Skipped, 0)
	ttesting.AssertEqualString(t, "page image", m.Page.Image, "hero.png")
	ttesting.AssertEqualInt(t, "page width", m.Page.Width, 256)
	ttesting.AssertEqualInt(t, "page height", m.Page.Height, 128)
	ttesting.AssertEqualString(t, "page filter", m.Page.Filter, "Nearest,Nearest")

	e := m.Entries[1]
	ttesting.AssertEqualString(t, "name", e.Name, "body")
	ttesting.AssertEqualInt(t, "x", e.X, 68)
	ttesting.AssertEqualInt(t, "y", e.Y, 2)
	ttesting.AssertEqualInt(t, "w", e.W, 64)
	ttesting.AssertEqualInt(t, "h", e.H, 32)
	ttesting.AssertEqualInt(t, "index", e.Index, 1)
	if e.Key() != (Key{"body", 1}) {
		t.Errorf("Key() = %+v", e.Key())
	}
	ttesting.AssertEqualString(t, "last name", m.Entries[2].Name, "head")
}

func TestParseSkipsMalformedRecords(t *testing.T) {
	bad := "broken\n  rotate: false\n  xy: two, 2\n  size: 1, 1\n  orig: 1, 1\n  offset: 0, 0\n  index: 0\n"
	badIndex := strings.Replace(record("arm", 0, 0, 4, 4, 0), "index: 0", "index: x", 1)
	src := header +
		record("a", 0, 0, 4, 4, 0) +
		bad +
		record("b", 4, 0, 4, 4, 0) +
		badIndex +
		record("c", 8, 0, 4, 4, 0) +
		"d\n  rotate: false\n  xy: 1, 1\n" // truncated trailing record

	m, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ttesting.AssertEqualInt(t, "well formed survivors", len(m.Entries), 3)
	ttesting.AssertEqualInt(t, "skipped", m.Skipped, 3)
	var names []string
	for _, e := range m.Entries {
		names = append(names, e.Name)
	}
	ttesting.AssertEqualString(t, "relative order kept", strings.Join(names, ","), "a,b,c")
}

func TestParseCRLFAndRotate(t *testing.T) {
	src := strings.Replace(header+record("leg", 1, 2, 3, 4, 7), "\n", "\r\n", -1)
	src = strings.Replace(src, "rotate: false", "rotate: TRUE", 1)
	m, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(m.Entries) != 1 {
		t.Fatalf("got %d entries; want 1", len(m.Entries))
	}
	ttesting.AssertEqualString(t, "name without carriage return", m.Entries[0].Name, "leg")
	if !m.Entries[0].Rotated {
		t.Errorf("rotate: TRUE parsed as false")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	entries := []Entry{
		{Name: "body", X: 2, Y: 2, W: 64, H: 32, OriginX: 64, OriginY: 32, Index: 0},
		{Name: "head", X: 2, Y: 36, W: 16, H: 16, OriginX: 16, OriginY: 16, Index: 3},
	}
	buf := &bytes.Buffer{}
	if err := Write(buf, Page{Image: "hero.png", Width: 128, Height: 128}, entries); err != nil {
		t.Fatalf("Write: %v", err)
	}
	m, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ttesting.AssertEqualInt(t, "entries", len(m.Entries), 2)
	for i := range entries {
		if m.Entries[i] != entries[i] {
			t.Errorf("entry %d: got %+v; want %+v", i, m.Entries[i], entries[i])
		}
	}
	ttesting.AssertEqualString(t, "format default", m.Page.Format, "RGBA8888")
}

func ExampleParse() {
	src := "\nhero.png\nsize: 64, 64\nformat: RGBA8888\nfilter: Nearest, Nearest\nrepeat: none\n" +
		"head\n  rotate: false\n  xy: 0, 0\n  size: 16, 16\n  orig: 16, 16\n  offset: 0, 0\n  index: 0\n"
	m, _ := Parse(strings.NewReader(src))
	fmt.Println(m.Entries[0])
	// Output: [atlas entry "head":0]
}

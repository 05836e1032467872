package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/skairunner/kparserX/anim"
	"github.com/skairunner/kparserX/bild"
	"github.com/skairunner/kparserX/khash"
)

// dumpFile prints a readable listing of a BILD or ANIM file.
func dumpFile(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) < 4 {
		return errors.Errorf("%s: too short for an asset file", path)
	}
	fmt.Fprintf(w, "%s (%s)\n", path, humanize.Bytes(uint64(len(data))))

	var hashes *khash.Table
	switch string(data[:4]) {
	case bild.Magic:
		b, h, err := bild.Decode(bytes.NewReader(data))
		if err != nil {
			return errors.Wrap(err, path)
		}
		hashes = h
		dumpBuild(w, b, h)
	case anim.Magic:
		a, h, err := anim.Decode(bytes.NewReader(data))
		if err != nil {
			return errors.Wrap(err, path)
		}
		hashes = h
		dumpAnim(w, a, h)
	default:
		return errors.Errorf("%s: unknown magic %q", path, data[:4])
	}

	fmt.Fprintf(w, "hash table (%d):\n", hashes.Len())
	hashes.Each(func(name string, hash int32) {
		fmt.Fprintf(w, "  %11d %s\n", hash, name)
	})
	return nil
}

func nameOf(hashes *khash.Table, hash int32) string {
	for _, n := range hashes.Names() {
		if h, _ := hashes.Lookup(n); h == hash {
			return n
		}
	}
	return fmt.Sprintf("#%d", hash)
}

func dumpBuild(w io.Writer, b *bild.Build, hashes *khash.Table) {
	fmt.Fprintf(w, "BILD v%d %q: %d symbols, %d frames\n", b.Version, b.Name, b.SymbolCount, b.FrameCount)
	for _, s := range b.Symbols {
		fmt.Fprintf(w, "  symbol %s (%d frames)\n", nameOf(hashes, s.Hash), s.FrameCount)
		for _, f := range s.Frames {
			fmt.Fprintf(w, "    frame %d: uv (%g,%g)-(%g,%g) pivot (%g,%g) size %gx%g\n",
				f.SourceFrame, f.U1, f.V1, f.U2, f.V2, f.PivotX, f.PivotY, f.PivotW, f.PivotH)
		}
	}
}

func dumpAnim(w io.Writer, a *anim.Anim, hashes *khash.Table) {
	fmt.Fprintf(w, "ANIM v%d: %d banks, at most %d visible symbol frames\n", a.Version, len(a.Banks), a.MaxVisibleSymbolFrames)
	for _, b := range a.Banks {
		fmt.Fprintf(w, "  bank %q at %g fps (%d frames)\n", b.Name, b.Rate, len(b.Frames))
		for i, f := range b.Frames {
			fmt.Fprintf(w, "    frame %d: center (%g,%g) size %gx%g\n", i, f.X, f.Y, f.W, f.H)
			for _, e := range f.Elements {
				fmt.Fprintf(w, "      %s_%d [%g %g %g %g] (%g,%g)\n",
					nameOf(hashes, e.Image), e.Index, e.M1, e.M2, e.M3, e.M4, e.M5, e.M6)
			}
		}
	}
}

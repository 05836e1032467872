package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skairunner/kparserX/bild"
	"github.com/skairunner/kparserX/khash"
)

func TestDumpBuild(t *testing.T) {
	hashes := khash.NewTable()
	b := &bild.Build{
		Version:     bild.Version,
		SymbolCount: 1,
		FrameCount:  1,
		Name:        "ball",
		Symbols: []*bild.Symbol{{
			Hash:       hashes.Add("ball"),
			Path:       khash.Hash("ball"),
			FrameCount: 1,
			Frames:     []bild.Frame{{Duration: 1, U2: 1, V2: 0.5}},
		}},
	}
	var enc bytes.Buffer
	if err := b.Encode(&enc, hashes); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "ball_build.bytes")
	if err := os.WriteFile(path, enc.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := dumpFile(&out, path); err != nil {
		t.Fatalf("dumpFile: %v", err)
	}
	for _, want := range []string{`BILD v10 "ball"`, "symbol ball (1 frames)", "uv (0,0)-(1,0.5)", "-3415041 ball"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("dump lacks %q:\n%s", want, out.String())
		}
	}

	if err := os.WriteFile(path, []byte("XXXX"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := dumpFile(&out, path); err == nil {
		t.Errorf("dumpFile accepted an unknown magic")
	}
}

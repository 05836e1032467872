package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skairunner/kparserX/ttesting"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFind(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	touch(t, filepath.Join(second, "kparser.yml"))
	if err := os.Mkdir(filepath.Join(first, "kparser.yml"), 0o755); err != nil {
		t.Fatal(err)
	}

	ttesting.AssertEqualString(t, "found", find("kparser.yml", []string{first, second}), filepath.Join(second, "kparser.yml"))
	ttesting.AssertEqualString(t, "missing", find("other.yml", []string{first, second}), "")
}

func TestExpandSCML(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.scml"))
	touch(t, filepath.Join(dir, "a.scml"))
	touch(t, filepath.Join(dir, "a_0.png"))
	single := filepath.Join(t.TempDir(), "hero.scml")
	touch(t, single)

	got, err := ExpandSCML([]string{single, dir})
	if err != nil {
		t.Fatalf("ExpandSCML: %v", err)
	}
	want := []string{single, filepath.Join(dir, "a.scml"), filepath.Join(dir, "b.scml")}
	ttesting.AssertEqualString(t, "paths", strings.Join(got, "|"), strings.Join(want, "|"))

	if _, err := ExpandSCML([]string{t.TempDir()}); err == nil {
		t.Errorf("ExpandSCML of an empty directory succeeded")
	}
	if _, err := ExpandSCML([]string{filepath.Join(dir, "nope.scml")}); err == nil {
		t.Errorf("ExpandSCML of a missing file succeeded")
	}
}

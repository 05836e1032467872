// Package symtab derives the per-symbol lookups shared by the BILD and ANIM
// encoders from the packed atlas entries: name hashes, frame counts per name,
// and the SCML file element describing each packed frame.
package symtab

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/skairunner/kparserX/atlas"
	"github.com/skairunner/kparserX/khash"
	"github.com/skairunner/kparserX/scml"
)

// UnresolvedError reports a reference that does not resolve: an atlas sprite
// without a matching SCML file, an object pointing at an unknown file id, or
// an image name that was never hashed.
type UnresolvedError struct {
	What string
	Name string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("%s %q was not found in the source", e.What, e.Name)
}

// Table is the symbol table for one entity.
type Table struct {
	hashes *khash.Table
	counts map[string]int
	files  map[string]*scml.File
}

// New builds the table. Every distinct entry name is added to hashes in
// first-seen order; the same hashes table is later extended with animation
// names by the ANIM encoder.
func New(entries []atlas.Entry, hashes *khash.Table, files []*scml.File) *Table {
	t := &Table{
		hashes: hashes,
		counts: make(map[string]int),
		files:  make(map[string]*scml.File, len(files)),
	}
	for _, e := range entries {
		hashes.Add(e.Name)
		t.counts[e.Name]++
	}
	for _, f := range files {
		t.files[f.Name] = f
	}
	glog.V(2).Infof("symtab: %d entries, %d distinct names, %d source files", len(entries), len(t.counts), len(files))
	return t
}

// Hashes returns the shared name hash table.
func (t *Table) Hashes() *khash.Table {
	return t.hashes
}

// Count returns how many atlas entries carry name.
func (t *Table) Count(name string) int {
	return t.counts[name]
}

// Hash returns the cached hash for name, adding it if needed.
func (t *Table) Hash(name string) int32 {
	return t.hashes.Add(name)
}

// Source returns the SCML file element for an atlas entry, matched by exact
// name "<name>_<index>" or "<name>_<index>.png".
func (t *Table) Source(e atlas.Entry) (*scml.File, error) {
	base := fmt.Sprintf("%s_%d", e.Name, e.Index)
	if f, ok := t.files[base]; ok {
		return f, nil
	}
	if f, ok := t.files[base+".png"]; ok {
		return f, nil
	}
	return nil, &UnresolvedError{What: "sprite", Name: base}
}

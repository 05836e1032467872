package khash

// Hash folds the bytes of s into a 32-bit signed hash. Letters are
// lowercased (ASCII only) before folding, so the hash is case-insensitive.
// The empty string hashes to 0.
func Hash(s string) int32 {
	var h int32
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		h = int32(c) + (h << 6) + (h << 16) - h
	}
	return h
}

// Table caches hashes of names in the order they were first seen.
//
// A single Table is shared between the build and animation passes, so both
// output files carry identical hashes and the same name listing.
type Table struct {
	names  []string
	hashes map[string]int32
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{hashes: make(map[string]int32)}
}

// Add hashes name unless it has already been seen, and returns its hash.
func (t *Table) Add(name string) int32 {
	if h, ok := t.hashes[name]; ok {
		return h
	}
	h := Hash(name)
	t.hashes[name] = h
	t.names = append(t.names, name)
	return h
}

// Lookup returns the cached hash for name.
func (t *Table) Lookup(name string) (int32, bool) {
	h, ok := t.hashes[name]
	return h, ok
}

// Len returns the number of distinct names in the table.
func (t *Table) Len() int {
	return len(t.names)
}

// Each calls fn for every name in insertion order.
func (t *Table) Each(fn func(name string, hash int32)) {
	for _, name := range t.names {
		fn(name, t.hashes[name])
	}
}

// Names returns a copy of the names in insertion order.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

package khash

import (
	"fmt"
	"testing"

	"github.com/skairunner/kparserX/ttesting"
)

func TestHash(t *testing.T) {
	ttesting.AssertEqualInt32(t, "empty string hashes to zero", Hash(""), 0)
	ttesting.AssertEqualInt32(t, "single letter is its code", Hash("a"), 97)
	ttesting.AssertEqualInt32(t, "case insensitive", Hash("Foo"), Hash("foo"))
	ttesting.AssertEqualInt32(t, "all caps", Hash("BODY"), Hash("body"))
	ttesting.AssertEqualInt32(t, "folds bytes, not runes", Hash("\u00e9"), 12791974)

	golden := map[string]int32{
		"foo":                        849955110,
		"body":                       111721250,
		"head":                       417465280,
		"idle":                       1190512564,
		"walk":                       -790953047,
		"ball":                       -3415041,
		"player_anim":                782590223,
		"abcdefghijklmnopqrstuvwxyz": -1486267571,
	}
	for s, want := range golden {
		ttesting.AssertEqualInt32(t, fmt.Sprintf("golden %q", s), Hash(s), want)
	}
}

func TestTable(t *testing.T) {
	tab := NewTable()
	tab.Add("head")
	tab.Add("body")
	tab.Add("head")
	tab.Add("idle")

	ttesting.AssertEqualInt(t, "distinct names", tab.Len(), 3)

	var order []string
	tab.Each(func(name string, hash int32) {
		order = append(order, name)
		ttesting.AssertEqualInt32(t, "cached hash for "+name, hash, Hash(name))
	})
	ttesting.AssertEqualString(t, "insertion order", fmt.Sprint(order), "[head body idle]")

	if _, ok := tab.Lookup("walk"); ok {
		t.Errorf("Lookup(walk) found a name never added")
	}
	if h, ok := tab.Lookup("body"); !ok || h != 111721250 {
		t.Errorf("Lookup(body) = %d, %v; want 111721250, true", h, ok)
	}
}

func ExampleHash() {
	fmt.Println(Hash("head"), Hash("HEAD"))
	// Output: 417465280 417465280
}

// Package ttesting contains assertion helpers shared by the package tests.
//
// Every assertion runs as its own subtest, so a failure names the property
// that was checked.
package ttesting

import (
	"bytes"
	"encoding/hex"
	"math"
	"testing"
)

func AssertEqualInt(t *testing.T, name string, got, want int) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %d; want %d", got, want)
		}
	})
}

func AssertEqualInt32(t *testing.T, name string, got, want int32) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %d; want %d", got, want)
		}
	})
}

// AssertEqualFloat32 compares with a small absolute tolerance. Infinities
// must match exactly.
func AssertEqualFloat32(t *testing.T, name string, got, want float32) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if math.IsInf(float64(want), 0) || math.IsInf(float64(got), 0) {
			if got != want {
				t.Errorf("got %g; want %g", got, want)
			}
			return
		}
		if math.Abs(float64(got-want)) > 1e-4 {
			t.Errorf("got %g; want %g", got, want)
		}
	})
}

func AssertInRangeFloat32(t *testing.T, name string, got, wantMin, wantMax float32) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got < wantMin || got > wantMax {
			t.Errorf("got %g; want [%g,%g]", got, wantMin, wantMax)
		}
	})
}

func AssertEqualString(t *testing.T, name string, got, want string) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %q; want %q", got, want)
		}
	})
}

// AssertEqualBytes reports both buffers as hex dumps on mismatch.
func AssertEqualBytes(t *testing.T, name string, got, want []byte) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if !bytes.Equal(got, want) {
			t.Errorf("got:\n%s\nwant:\n%s", hex.Dump(got), hex.Dump(want))
		}
	})
}

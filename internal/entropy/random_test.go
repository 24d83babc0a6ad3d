package entropy

import "testing"

func TestSeededIsReplayable(t *testing.T) {
	a := NewSeeded(7)
	b := NewSeeded(7)
	for i := 0; i < 100; i++ {
		if av, bv := a.Float(), b.Float(); av != bv {
			t.Fatalf("sequences diverged at draw %d: %g vs %g", i, av, bv)
		}
	}
}

func TestSeededRange(t *testing.T) {
	s := NewSeeded(1)
	for i := 0; i < 1000; i++ {
		if v := s.Float(); v < 0 || v >= 1 {
			t.Fatalf("draw %d out of [0, 1): %g", i, v)
		}
	}
}

func TestCryptoRange(t *testing.T) {
	var c Crypto
	for i := 0; i < 100; i++ {
		if v := c.Float(); v < 0 || v >= 1 {
			t.Fatalf("draw %d out of [0, 1): %g", i, v)
		}
	}
}

func TestFixedCycles(t *testing.T) {
	f := &Fixed{Values: []float64{0.1, 0.9}}
	want := []float64{0.1, 0.9, 0.1, 0.9}
	for i, w := range want {
		if got := f.Float(); got != w {
			t.Fatalf("draw %d: expected %g, got %g", i, w, got)
		}
	}
}

func TestFixedEmptyDefaults(t *testing.T) {
	f := &Fixed{}
	if got := f.Float(); got != 0.5 {
		t.Fatalf("expected 0.5 from empty sequence, got %g", got)
	}
}

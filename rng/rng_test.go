package rng

import "testing"

func TestSameSeedReproducesSameDraws(t *testing.T) {
	a := New(42, 4)
	b := New(42, 4)

	for w := 0; w < 4; w++ {
		sa, sb := a.Worker(w), b.Worker(w)
		for i := 0; i < 100; i++ {
			da, db := sa.Dice(1000), sb.Dice(1000)
			if da != db {
				t.Fatalf("worker %d draw %d: got %d and %d, want equal", w, i, da, db)
			}
		}
	}
}

func TestDifferentWorkersDiverge(t *testing.T) {
	s := New(42, 2)
	w0, w1 := s.Worker(0), s.Worker(1)

	same := 0
	for i := 0; i < 50; i++ {
		if w0.Dice(1 << 30) == w1.Dice(1 << 30) {
			same++
		}
	}
	if same > 1 {
		t.Fatalf("worker streams collided %d/50 times, want near zero", same)
	}
}

func TestDiceUniformRange(t *testing.T) {
	s := New(7, 1).Worker(0)
	const ceiling = 10
	counts := make([]int, ceiling)
	const n = 50000
	for i := 0; i < n; i++ {
		v := s.Dice(ceiling)
		if v < 0 || v >= ceiling {
			t.Fatalf("dice out of range: %d", v)
		}
		counts[v]++
	}
	for v, c := range counts {
		if c < n/ceiling/2 {
			t.Fatalf("value %d drawn only %d/%d times, distribution looks skewed", v, c, n)
		}
	}
}

func TestDiceZeroCeiling(t *testing.T) {
	s := New(1, 1).Worker(0)
	if v := s.Dice(0); v != 0 {
		t.Fatalf("dice(0): got %d want 0", v)
	}
}

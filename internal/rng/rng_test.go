package rng

import (
	"math"
	"testing"
)

func TestUnseededStreamPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic from unseeded stream")
		}
	}()

	var s Stream
	s.Uint64()
}

func TestZeroSeedIsUsable(t *testing.T) {
	s := New(0)
	if s.Uint64() == 0 {
		t.Error("zero seed should map to a non-degenerate state")
	}
}

func TestDeterministicSequence(t *testing.T) {
	a := New(98765)
	b := New(98765)
	for i := 0; i < 1000; i++ {
		if a.Uint64() != b.Uint64() {
			t.Fatalf("streams diverged at draw %d", i)
		}
	}
}

// Pinned regression values. These are load-bearing for replay: any change
// to the draw algorithm breaks recorded games.
func TestPinnedFirstFloat(t *testing.T) {
	s := New(12345)
	got := s.Float64()
	want := 1.440861930160288e-06
	if math.Abs(got-want) > 1e-21 {
		t.Errorf("first Float64 for seed 12345 = %v, want %v", got, want)
	}
}

func TestPinnedWeightedChoice(t *testing.T) {
	s := New(12345)
	weights := []float64{0.25, 0.25, 0.25, 0.25}

	if got := s.WeightedChoice(weights); got != 0 {
		t.Fatalf("first weighted pick for seed 12345 = %d, want 0", got)
	}

	// Continuation of the same stream.
	rest := []int{0, 1, 1, 3, 3, 3, 0}
	for i, want := range rest {
		if got := s.WeightedChoice(weights); got != want {
			t.Errorf("pick %d = %d, want %d", i+1, got, want)
		}
	}
}

func TestPinnedIntRange(t *testing.T) {
	s := New(12345)
	want := []int{4, 4, 6, 1, 3, 4}
	for i, w := range want {
		if got := s.IntRange(1, 6); got != w {
			t.Errorf("IntRange(1,6) draw %d = %d, want %d", i, got, w)
		}
	}
}

func TestPinnedChance(t *testing.T) {
	s := New(12345)
	if !s.Chance(0.5) {
		t.Error("first Chance(0.5) for seed 12345 should be true")
	}
}

func TestWeightedChoiceBounds(t *testing.T) {
	s := New(7)
	for i := 0; i < 500; i++ {
		idx := s.WeightedChoice([]float64{0.1, 0.0, 0.9})
		if idx != 0 && idx != 2 {
			t.Fatalf("zero-weight index chosen: %d", idx)
		}
	}

	if got := s.WeightedChoice(nil); got != -1 {
		t.Errorf("empty weights should return -1, got %d", got)
	}
	if got := s.WeightedChoice([]float64{0, -1}); got != -1 {
		t.Errorf("non-positive weights should return -1, got %d", got)
	}
}

func TestWeightedChoiceSingle(t *testing.T) {
	s := New(1)
	for i := 0; i < 100; i++ {
		if got := s.WeightedChoice([]float64{3.5}); got != 0 {
			t.Fatalf("single weight must always pick 0, got %d", got)
		}
	}
}

func TestChanceExtremes(t *testing.T) {
	s := New(42)
	for i := 0; i < 50; i++ {
		if s.Chance(0) {
			t.Fatal("Chance(0) must never succeed")
		}
		if !s.Chance(1) {
			t.Fatal("Chance(1) must always succeed")
		}
	}
}

func TestIntRangeInclusive(t *testing.T) {
	s := New(2024)
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		v := s.IntRange(3, 5)
		if v < 3 || v > 5 {
			t.Fatalf("IntRange(3,5) out of bounds: %d", v)
		}
		seen[v] = true
	}
	for v := 3; v <= 5; v++ {
		if !seen[v] {
			t.Errorf("IntRange(3,5) never produced %d in 1000 draws", v)
		}
	}
}

func TestFloatRangeBounds(t *testing.T) {
	s := New(9)
	for i := 0; i < 1000; i++ {
		v := s.FloatRange(-2.0, 3.0)
		if v < -2.0 || v >= 3.0 {
			t.Fatalf("FloatRange(-2,3) out of bounds: %v", v)
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	s := New(555)
	vals := []int{0, 1, 2, 3, 4, 5, 6, 7}
	s.Shuffle(vals)

	seen := make(map[int]bool)
	for _, v := range vals {
		if seen[v] {
			t.Fatalf("duplicate value after shuffle: %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 8 {
		t.Errorf("shuffle lost values: %v", vals)
	}
}

func TestSplitIndependence(t *testing.T) {
	parent := New(12345)
	childA := parent.Split(1)

	// Same root seed and same split call gives the same child stream.
	parent2 := New(12345)
	childA2 := parent2.Split(1)
	for i := 0; i < 100; i++ {
		if childA.Uint64() != childA2.Uint64() {
			t.Fatalf("split children diverged at draw %d", i)
		}
	}

	// Different offsets from the same parent state give different streams.
	p3 := New(12345)
	p4 := New(12345)
	c3 := p3.Split(1)
	c4 := p4.Split(2)
	if c3.Uint64() == c4.Uint64() {
		t.Error("children with different offsets should differ")
	}
}

func TestSplitConsumesParentDraw(t *testing.T) {
	a := New(777)
	b := New(777)

	a.Split(1)
	b.Uint64()

	// After one consumed draw both parents must be in the same state.
	if a.Uint64() != b.Uint64() {
		t.Error("Split should consume exactly one parent draw")
	}
}

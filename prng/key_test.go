package prng

import "testing"

func TestSplitDeterministic(t *testing.T) {
	a := NewKey(42).Split(8)
	b := NewKey(42).Split(8)

	for i := range a {
		if a[i] != b[i] {
			t.Errorf("child %d differs between identical splits", i)
		}
	}
}

func TestSplitChildrenDistinct(t *testing.T) {
	keys := NewKey(7).Split(64)
	seen := make(map[Key]bool)
	for _, k := range keys {
		if seen[k] {
			t.Fatalf("duplicate child key %v", k)
		}
		seen[k] = true
	}
}

func TestSplitDoesNotConsumeParent(t *testing.T) {
	k := NewKey(3)
	_ = k.Split(4)
	first := k.Split(4)
	second := k.Split(4)
	for i := range first {
		if first[i] != second[i] {
			t.Fatal("split mutated parent key state")
		}
	}
}

func TestStreamReproducible(t *testing.T) {
	k := NewKey(123)
	s1 := k.Stream()
	s2 := k.Stream()

	for i := 0; i < 100; i++ {
		u1, u2 := s1.Uniform(), s2.Uniform()
		if u1 != u2 {
			t.Fatalf("draw %d differs: %v vs %v", i, u1, u2)
		}
		if u1 < 0 || u1 >= 1 {
			t.Fatalf("draw %d out of [0,1): %v", i, u1)
		}
	}
}

func TestStreamsIndependentAcrossKeys(t *testing.T) {
	keys := NewKey(9).Split(2)
	s0 := keys[0].Stream()
	s1 := keys[1].Stream()

	same := 0
	for i := 0; i < 50; i++ {
		if s0.Uniform() == s1.Uniform() {
			same++
		}
	}
	if same == 50 {
		t.Error("sibling keys produced identical streams")
	}
}

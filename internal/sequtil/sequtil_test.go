package sequtil

import (
	"math/rand"
	"testing"
)

func TestShuffleIsPermutation(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	in := []int{4, 8, 15, 16, 23, 42}

	out := Shuffle(rnd, in)
	if len(out) != len(in) {
		t.Fatalf("expected %d elements, got %d", len(in), len(out))
	}

	counts := map[int]int{}
	for _, v := range in {
		counts[v]++
	}
	for _, v := range out {
		counts[v]--
	}
	for v, c := range counts {
		if c != 0 {
			t.Fatalf("element %d count off by %d", v, c)
		}
	}
}

func TestShuffleDoesNotMutateInput(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	in := []string{"a", "b", "c", "d"}
	want := []string{"a", "b", "c", "d"}

	for i := 0; i < 50; i++ {
		_ = Shuffle(rnd, in)
	}
	for i := range want {
		if in[i] != want[i] {
			t.Fatalf("input mutated at %d: %v", i, in)
		}
	}
}

// TestShuffleIsUnbiased shuffles three elements many times and checks each
// of the six permutations lands close to the expected frequency.
func TestShuffleIsUnbiased(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	in := []int{0, 1, 2}

	const trials = 60000
	freq := map[[3]int]int{}
	for i := 0; i < trials; i++ {
		out := Shuffle(rnd, in)
		freq[[3]int{out[0], out[1], out[2]}]++
	}

	if len(freq) != 6 {
		t.Fatalf("expected 6 permutations, got %d", len(freq))
	}
	expected := trials / 6
	for perm, n := range freq {
		// 5% tolerance is generous; bias from a broken Fisher-Yates
		// (e.g. Intn(len)) is far larger.
		if n < expected*95/100 || n > expected*105/100 {
			t.Fatalf("permutation %v occurred %d times, expected ~%d", perm, n, expected)
		}
	}
}

func TestDistinctByIDKeepsFirstOccurrenceOrder(t *testing.T) {
	type row struct {
		id   int
		name string
	}
	in := []row{{3, "first-3"}, {1, "one"}, {3, "second-3"}, {2, "two"}, {1, "again"}}

	out := DistinctByID(in, func(r row) int { return r.id })

	want := []row{{3, "first-3"}, {1, "one"}, {2, "two"}}
	if len(out) != len(want) {
		t.Fatalf("expected %d rows, got %d: %v", len(want), len(out), out)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("row %d: expected %+v, got %+v", i, want[i], out[i])
		}
	}
}

func TestDistinctByIDNoDuplicates(t *testing.T) {
	in := []int{5, 6, 7}
	out := DistinctByID(in, func(v int) int { return v })
	if len(out) != 3 || out[0] != 5 || out[1] != 6 || out[2] != 7 {
		t.Fatalf("expected input unchanged, got %v", out)
	}
}

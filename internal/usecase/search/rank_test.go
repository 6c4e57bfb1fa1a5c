package search

import (
	"math"
	"testing"

	"github.com/kailas-cloud/menudex/internal/repository/vector"
)

const tolerance = 1e-6

func TestCosineSimilarity_SelfIsOne(t *testing.T) {
	vecs := [][]float32{
		{1, 0},
		{0.3, -0.7, 2.1},
		{5},
	}
	for _, v := range vecs {
		if got := CosineSimilarity(v, v); math.Abs(got-1) > tolerance {
			t.Errorf("cos(v, v) = %f for %v, want 1", got, v)
		}
	}
}

func TestCosineSimilarity_NegationIsMinusOne(t *testing.T) {
	v := []float32{0.3, -0.7, 2.1}
	neg := []float32{-0.3, 0.7, -2.1}
	if got := CosineSimilarity(v, neg); math.Abs(got+1) > tolerance {
		t.Errorf("cos(v, -v) = %f, want -1", got)
	}
}

func TestCosineSimilarity_ZeroVectorIsZero(t *testing.T) {
	zero := []float32{0, 0, 0}
	v := []float32{1, 2, 3}

	if got := CosineSimilarity(zero, v); got != 0 {
		t.Errorf("cos(0, v) = %f, want exactly 0", got)
	}
	if got := CosineSimilarity(v, zero); got != 0 {
		t.Errorf("cos(v, 0) = %f, want exactly 0", got)
	}
	if got := CosineSimilarity(zero, zero); got != 0 {
		t.Errorf("cos(0, 0) = %f, want exactly 0", got)
	}
}

func TestCosineSimilarity_LengthMismatchIsZero(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}); got != 0 {
		t.Errorf("mismatched lengths = %f, want 0", got)
	}
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 0}, []float32{0, 1}); math.Abs(got) > tolerance {
		t.Errorf("cos of orthogonal vectors = %f, want 0", got)
	}
}

func TestRank_ToyCatalog(t *testing.T) {
	// A=[1,0], B=[0,1], C=[0.7,0.7]; query=[1,0]
	candidates := []vector.Entry{
		{ID: "B", Vector: []float32{0, 1}},
		{ID: "C", Vector: []float32{0.7, 0.7}},
		{ID: "A", Vector: []float32{1, 0}},
	}

	ranked := Rank([]float32{1, 0}, candidates, 3)

	if len(ranked) != 3 {
		t.Fatalf("len = %d, want 3", len(ranked))
	}
	wantOrder := []string{"A", "C", "B"}
	wantScores := []float64{1.0, math.Sqrt2 / 2, 0.0}
	for i := range wantOrder {
		if ranked[i].ID() != wantOrder[i] {
			t.Errorf("rank %d: id = %q, want %q", i+1, ranked[i].ID(), wantOrder[i])
		}
		if math.Abs(ranked[i].Score()-wantScores[i]) > 1e-3 {
			t.Errorf("rank %d: score = %f, want %f", i+1, ranked[i].Score(), wantScores[i])
		}
		if ranked[i].Rank() != i+1 {
			t.Errorf("rank position = %d, want %d", ranked[i].Rank(), i+1)
		}
	}
}

func TestRank_TiesBrokenByIDAscending(t *testing.T) {
	candidates := []vector.Entry{
		{ID: "zeta", Vector: []float32{1, 0}},
		{ID: "alpha", Vector: []float32{1, 0}},
		{ID: "mid", Vector: []float32{2, 0}}, // same direction, same score
	}

	ranked := Rank([]float32{1, 0}, candidates, 3)

	wantOrder := []string{"alpha", "mid", "zeta"}
	for i, want := range wantOrder {
		if ranked[i].ID() != want {
			t.Errorf("rank %d: id = %q, want %q (ties break by id asc)", i+1, ranked[i].ID(), want)
		}
	}
}

func TestRank_DeterministicRegardlessOfInputOrder(t *testing.T) {
	a := []vector.Entry{
		{ID: "x", Vector: []float32{1, 0}},
		{ID: "y", Vector: []float32{0.5, 0.5}},
		{ID: "z", Vector: []float32{0, 1}},
	}
	b := []vector.Entry{a[2], a[0], a[1]}

	ra := Rank([]float32{1, 0}, a, 3)
	rb := Rank([]float32{1, 0}, b, 3)

	for i := range ra {
		if ra[i].ID() != rb[i].ID() {
			t.Errorf("rank %d differs by input order: %q vs %q", i+1, ra[i].ID(), rb[i].ID())
		}
	}
}

func TestRank_TruncatesToTopK(t *testing.T) {
	var candidates []vector.Entry
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		candidates = append(candidates, vector.Entry{ID: id, Vector: []float32{1, 0}})
	}

	ranked := Rank([]float32{1, 0}, candidates, 2)
	if len(ranked) != 2 {
		t.Errorf("len = %d, want 2", len(ranked))
	}
}

func TestRank_TopKBelowOneUsesDefault(t *testing.T) {
	var candidates []vector.Entry
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		candidates = append(candidates, vector.Entry{ID: id, Vector: []float32{1, 0}})
	}

	ranked := Rank([]float32{1, 0}, candidates, 0)
	if len(ranked) != DefaultTopK {
		t.Errorf("len = %d, want DefaultTopK=%d", len(ranked), DefaultTopK)
	}
}

func TestRank_SortedDescending(t *testing.T) {
	candidates := []vector.Entry{
		{ID: "far", Vector: []float32{-1, 0}},
		{ID: "near", Vector: []float32{1, 0.1}},
		{ID: "side", Vector: []float32{0, 1}},
	}

	ranked := Rank([]float32{1, 0}, candidates, 3)
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score() > ranked[i-1].Score() {
			t.Errorf("scores not descending at %d: %f > %f", i, ranked[i].Score(), ranked[i-1].Score())
		}
	}
}

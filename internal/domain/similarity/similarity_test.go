package similarity

import (
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/semseo/internal/domain"
)

const eps = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < eps }

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
		want float64
	}{
		{"identical", Vector{1, 2, 3}, Vector{1, 2, 3}, 1},
		{"scaled", Vector{1, 2, 3}, Vector{2, 4, 6}, 1},
		{"orthogonal", Vector{1, 0}, Vector{0, 1}, 0},
		{"opposite", Vector{1, 1}, Vector{-1, -1}, -1},
		{"zero left", Vector{0, 0}, Vector{1, 1}, 0},
		{"zero right", Vector{3, 4}, Vector{0, 0}, 0},
		{"both zero", Vector{0, 0, 0}, Vector{0, 0, 0}, 0},
		{"empty", Vector{}, Vector{}, 0},
		{"45 degrees", Vector{1, 0}, Vector{1, 1}, 1 / math.Sqrt2},
		{"huge identical", Vector{1e100, 1e100}, Vector{1e100, 1e100}, 1},
		{"huge near overflow", Vector{1e160, 2e160}, Vector{1e160, 2e160}, 1},
		{"tiny identical", Vector{1e-170, 1e-170}, Vector{1e-170, 1e-170}, 1},
		{"huge vs small scaled", Vector{3e200, 4e200}, Vector{3, 4}, 1},
		{"tiny orthogonal", Vector{1e-170, 0}, Vector{0, 1e-170}, 0},
		{"huge opposite", Vector{1e300, -1e300}, Vector{-1e300, 1e300}, -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Cosine(tc.a, tc.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !approx(got, tc.want) {
				t.Errorf("Cosine(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestCosine_Symmetric(t *testing.T) {
	pairs := [][2]Vector{
		{{0.3, -1.2, 5}, {2, 0.1, -0.7}},
		{{1, 2}, {3, 4}},
		{{0, 0}, {1, 0}},
	}
	for _, p := range pairs {
		ab, _ := Cosine(p[0], p[1])
		ba, _ := Cosine(p[1], p[0])
		if ab != ba {
			t.Errorf("Cosine not symmetric for %v: %v vs %v", p, ab, ba)
		}
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := Cosine(Vector{1, 2, 3}, Vector{1, 2})
	if !errors.Is(err, domain.ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidValue) {
		t.Error("shape error must not match ErrInvalidValue")
	}

	var se *domain.ShapeError
	if !errors.As(err, &se) {
		t.Fatalf("expected *ShapeError, got %T", err)
	}
	if se.Want != 3 || se.Got != 2 {
		t.Errorf("unexpected dims: want=%d got=%d", se.Want, se.Got)
	}
}

func TestFromFloat32(t *testing.T) {
	v := FromFloat32([]float32{0.5, -1, 2})
	if len(v) != 3 || v[0] != 0.5 || v[1] != -1 || v[2] != 2 {
		t.Errorf("unexpected conversion: %v", v)
	}
	if len(FromFloat32(nil)) != 0 {
		t.Error("expected empty vector")
	}
}

func TestPairwiseMatrix(t *testing.T) {
	vs := []Vector{
		{1, 0, 0},
		{0, 1, 0},
		{1, 1, 0},
		{0, 0, 0},
	}
	mat, err := PairwiseMatrix(vs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mat) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(mat))
	}

	for i := range mat {
		if len(mat[i]) != 4 {
			t.Fatalf("row %d: expected 4 columns, got %d", i, len(mat[i]))
		}
		for j := range mat[i] {
			if mat[i][j] != mat[j][i] {
				t.Errorf("not symmetric at (%d,%d): %v vs %v", i, j, mat[i][j], mat[j][i])
			}
		}
	}

	for i, want := range []float64{1, 1, 1, 0} {
		if !approx(mat[i][i], want) {
			t.Errorf("diagonal %d = %v, want %v", i, mat[i][i], want)
		}
	}
	if !approx(mat[0][1], 0) {
		t.Errorf("mat[0][1] = %v, want 0", mat[0][1])
	}
	if !approx(mat[0][2], 1/math.Sqrt2) {
		t.Errorf("mat[0][2] = %v, want %v", mat[0][2], 1/math.Sqrt2)
	}
}

func TestPairwiseMatrix_ExtremeMagnitudes(t *testing.T) {
	vs := []Vector{
		{1e100, 1e100},
		{1e160, 2e160},
		{1e-170, 1e-170},
	}
	mat, err := PairwiseMatrix(vs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range vs {
		if !approx(mat[i][i], 1) {
			t.Errorf("diagonal %d = %v, want 1", i, mat[i][i])
		}
	}
	if !approx(mat[0][2], 1) {
		t.Errorf("mat[0][2] = %v, want 1 (same direction)", mat[0][2])
	}
	if want := 3 / math.Sqrt(10); !approx(mat[0][1], want) {
		t.Errorf("mat[0][1] = %v, want %v", mat[0][1], want)
	}
}

func TestPairwiseMatrix_Empty(t *testing.T) {
	mat, err := PairwiseMatrix(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mat) != 0 {
		t.Errorf("expected empty matrix, got %v", mat)
	}
}

func TestPairwiseMatrix_DimensionMismatch(t *testing.T) {
	_, err := PairwiseMatrix([]Vector{{1, 2}, {1, 2}, {1, 2, 3}})
	if !errors.Is(err, domain.ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}
}

func TestGapScores_EmptyContents(t *testing.T) {
	queries := []Query{
		{Text: "a", Vector: Vector{1, 0}},
		{Text: "b", Vector: Vector{0, 1}},
		{Text: "c", Vector: Vector{1, 2, 3}},
	}
	res, err := GapScores(queries, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != len(queries) {
		t.Fatalf("expected %d results, got %d", len(queries), len(res))
	}
	for i, r := range res {
		if r.Query != queries[i].Text {
			t.Errorf("result %d: query %q, want %q", i, r.Query, queries[i].Text)
		}
		if r.MaxSimilarity != 0 {
			t.Errorf("result %d: expected 0, got %v", i, r.MaxSimilarity)
		}
	}
}

func TestGapScores_ExactMatch(t *testing.T) {
	q := Vector{0.2, 0.7, -0.1}
	contents := []Vector{{1, 0, 0}, {0.2, 0.7, -0.1}, {0, 0, 1}}

	res, err := GapScores([]Query{{Text: "a", Vector: q}}, contents)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 1 || res[0].Query != "a" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !approx(res[0].MaxSimilarity, 1) {
		t.Errorf("expected max similarity 1, got %v", res[0].MaxSimilarity)
	}
}

func TestGapScores_PreservesOrderAndTakesMax(t *testing.T) {
	queries := []Query{
		{Text: "covered", Vector: Vector{1, 0}},
		{Text: "gap", Vector: Vector{-1, 0}},
		{Text: "partial", Vector: Vector{1, 1}},
	}
	contents := []Vector{{1, 0}, {0, 1}}

	res, err := GapScores(queries, contents)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []GapResult{
		{"covered", 1},
		{"gap", 0},
		{"partial", 1 / math.Sqrt2},
	}
	for i, w := range want {
		if res[i].Query != w.Query || !approx(res[i].MaxSimilarity, w.MaxSimilarity) {
			t.Errorf("result %d = %+v, want %+v", i, res[i], w)
		}
	}
}

func TestGapScores_AllNegative(t *testing.T) {
	res, err := GapScores(
		[]Query{{Text: "q", Vector: Vector{1, 0}}},
		[]Vector{{-1, 0}, {-1, -1}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(res[0].MaxSimilarity, -1/math.Sqrt2) {
		t.Errorf("expected %v, got %v", -1/math.Sqrt2, res[0].MaxSimilarity)
	}
}

func TestGapScores_DimensionMismatch(t *testing.T) {
	_, err := GapScores(
		[]Query{{Text: "q", Vector: Vector{1, 0, 0}}},
		[]Vector{{1, 0}},
	)
	if !errors.Is(err, domain.ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}
}

func TestGapScores_NoQueries(t *testing.T) {
	res, err := GapScores(nil, []Vector{{1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 0 {
		t.Errorf("expected no results, got %v", res)
	}
}

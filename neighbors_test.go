package bayesspace

import (
	"errors"
	"testing"
)

func TestValidateNeighbors(t *testing.T) {
	tests := []struct {
		name      string
		neighbors [][]int
		n         int
		wantErr   bool
	}{
		{"valid", [][]int{{1}, {0, 2}, {}}, 3, false},
		{"all empty", [][]int{{}, {}, nil}, 3, false},
		{"too few entries", [][]int{{1}, {0}}, 3, true},
		{"negative index", [][]int{{-1}, {}, {}}, 3, true},
		{"index equal to n", [][]int{{}, {3}, {}}, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNeighbors(tt.neighbors, tt.n)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error %v does not wrap ErrInvalidInput", err)
			}
		})
	}
}

func TestGraphComponents(t *testing.T) {
	// 0-1-2 chain, 3-4 pair given in one direction only, 5 isolated,
	// 6 only lists itself.
	neighbors := [][]int{{1}, {0, 2}, {1}, {4}, {}, {}, {6}}
	components, isolated := GraphComponents(neighbors)
	if components != 4 {
		t.Errorf("components = %d, want 4", components)
	}
	if isolated != 2 {
		t.Errorf("isolated = %d, want 2", isolated)
	}
}

func TestFindNeighbors_MatchesBruteForce(t *testing.T) {
	n, dims := 250, 2
	flat := randomCoords(n, dims, 5)
	coords := make([][]float64, n)
	for i := range coords {
		coords[i] = flat[i*dims : (i+1)*dims]
	}

	for _, m := range []DistanceMetric{EuclideanMetric{}, ManhattanMetric{}, ChebyshevMetric{}} {
		got, err := FindNeighbors(coords, 2, m)
		if err != nil {
			t.Fatalf("%T: unexpected error: %v", m, err)
		}
		for i := 0; i < n; i++ {
			var want []int
			for _, p := range bruteRadius(flat, n, dims, coords[i], 2, m) {
				if p != i {
					want = append(want, p)
				}
			}
			if !intsEqual(got[i], want) {
				t.Errorf("%T spot %d: got %v, want %v", m, i, got[i], want)
			}
		}
	}
}

func TestFindNeighbors_NilMetricIsEuclidean(t *testing.T) {
	coords := [][]float64{{0, 0}, {0.8, 0.8}, {1, 0}}
	got, err := FindNeighbors(coords, 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// |(0,0)-(0.8,0.8)| = 1.13 > 1.
	if !intsEqual(got[0], []int{2}) {
		t.Errorf("neighbors of 0 = %v, want [2]", got[0])
	}
}

func TestFindNeighbors_InvalidInput(t *testing.T) {
	if _, err := FindNeighbors([][]float64{{0, 0}, {1}}, 1, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ragged coords: got %v, want ErrInvalidInput", err)
	}
	if _, err := FindNeighbors([][]float64{{0, 0}}, -1, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative radius: got %v, want ErrInvalidInput", err)
	}
}

func TestKNearestNeighbors_Line(t *testing.T) {
	coords := [][]float64{{0}, {1}, {3}, {6}, {10}}
	got, err := KNearestNeighbors(coords, 2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]int{{1, 2}, {0, 2}, {1, 0}, {2, 4}, {3, 2}}
	for i := range want {
		if !intsEqual(got[i], want[i]) {
			t.Errorf("spot %d: got %v, want %v", i, got[i], want[i])
		}
	}

	if _, err := KNearestNeighbors(coords, 5, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("k = n: got %v, want ErrInvalidInput", err)
	}
}

func TestLatticeNeighbors_Visium(t *testing.T) {
	// A hexagon around (2, 2) plus (0, 2) and (4, 2), which are in the
	// second ring of (2, 2).
	rows := []int{2, 2, 2, 1, 1, 3, 3, 0, 4}
	cols := []int{2, 0, 4, 1, 3, 1, 3, 2, 2}
	got, err := LatticeNeighbors(rows, cols, PlatformVisium)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !intsEqual(got[0], []int{1, 2, 3, 4, 5, 6}) {
		t.Errorf("center neighbors = %v, want [1 2 3 4 5 6]", got[0])
	}
	// (0, 2) touches (1, 1) and (1, 3).
	if !intsEqual(got[7], []int{3, 4}) {
		t.Errorf("top neighbors = %v, want [3 4]", got[7])
	}
}

func TestLatticeNeighbors_ST(t *testing.T) {
	// 3×3 grid in row-major order.
	var rows, cols []int
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			rows = append(rows, r)
			cols = append(cols, c)
		}
	}
	got, err := LatticeNeighbors(rows, cols, PlatformST)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !intsEqual(got[4], []int{1, 3, 5, 7}) {
		t.Errorf("center neighbors = %v, want [1 3 5 7]", got[4])
	}
	if !intsEqual(got[0], []int{1, 3}) {
		t.Errorf("corner neighbors = %v, want [1 3]", got[0])
	}
}

func TestLatticeNeighbors_Errors(t *testing.T) {
	if _, err := LatticeNeighbors([]int{0}, []int{0, 1}, PlatformST); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("length mismatch: got %v, want ErrInvalidInput", err)
	}
	if _, err := LatticeNeighbors([]int{0}, []int{0}, Platform("slide-seq")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown platform: got %v, want ErrInvalidInput", err)
	}
}

package bayesspace

import (
	"context"
	"testing"
)

func TestEdgeCase_SingleObservation(t *testing.T) {
	data := [][]float64{{1.0, 2.0}}
	cfg := testConfig(10, 1)
	cfg.Clusters = 2
	res, err := Sample(context.Background(), data, [][]int{nil}, []int{2}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Completed != 10 || len(res.Labels) != 10 {
		t.Fatalf("Completed = %d with %d labels, want 10", res.Completed, len(res.Labels))
	}
	for i, z := range res.Labels {
		if z != 1 && z != 2 {
			t.Errorf("iteration %d: label %d outside [1, 2]", i, z)
		}
	}
}

func TestEdgeCase_SingleCluster(t *testing.T) {
	data, neighbors, _ := spatialFixture(t, 30, 5, 6)
	init := make([]int, len(data))
	for j := range init {
		init[j] = 1
	}
	cfg := testConfig(15, 2)
	cfg.Clusters = 1
	res, err := Sample(context.Background(), data, neighbors, init, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, z := range res.Labels {
		if z != 1 {
			t.Fatalf("label %d with a single cluster", z)
		}
	}
	for i, a := range res.Accepted {
		if a != 0 {
			t.Errorf("iteration %d: accepted %d proposals with a single cluster", i, a)
		}
	}
	for i := 1; i < res.Completed; i++ {
		if res.PseudoLogLik[i] == 0 {
			t.Errorf("iteration %d: pseudo-log-likelihood not recorded", i)
		}
	}
}

func TestEdgeCase_AllIdenticalPoints(t *testing.T) {
	data := make([][]float64, 20)
	neighbors := make([][]int, 20)
	init := make([]int, 20)
	for j := range data {
		data[j] = []float64{2.5, -1.0}
		init[j] = j%3 + 1
		if j > 0 {
			neighbors[j] = []int{j - 1}
		}
	}
	res, err := Sample(context.Background(), data, neighbors, init, testConfig(20, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, w := range res.Weights {
		if !(w > 0) {
			t.Fatalf("weight %d = %v, want > 0", i, w)
		}
	}
}

func TestEdgeCase_OneFeature(t *testing.T) {
	data := [][]float64{{-3}, {-2.8}, {-3.1}, {3}, {2.9}, {3.2}}
	neighbors := [][]int{{1}, {0, 2}, {1}, {4}, {3, 5}, {4}}
	cfg := testConfig(30, 4)
	cfg.Clusters = 2
	res, err := Sample(context.Background(), data, neighbors, []int{1, 1, 1, 2, 2, 2}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Dims != 1 || len(res.Precisions) != 30 {
		t.Errorf("Dims = %d with %d precision entries, want 1 and 30", res.Dims, len(res.Precisions))
	}
}

func TestEdgeCase_ZeroGammaIgnoresNeighbors(t *testing.T) {
	data, neighbors, init := spatialFixture(t, 40, 5, 7)
	cfg := testConfig(15, 9)
	cfg.Gamma = 0

	withGraph, err := Sample(context.Background(), data, neighbors, init, cfg)
	if err != nil {
		t.Fatal(err)
	}
	withoutGraph, err := Sample(context.Background(), data, make([][]int, len(data)), init, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !intsEqual(withGraph.Labels, withoutGraph.Labels) {
		t.Error("label traces differ with gamma = 0")
	}
	if !floatsEqual(withGraph.PseudoLogLik, withoutGraph.PseudoLogLik) {
		t.Error("pseudo-log-likelihood traces differ with gamma = 0")
	}
}

func TestEdgeCase_SelfLoopsAndDuplicateNeighbors(t *testing.T) {
	data := [][]float64{{0, 0}, {0.1, 0.2}, {5, 5}}
	neighbors := [][]int{{0, 1, 1}, {0}, {2}}
	cfg := testConfig(10, 5)
	cfg.Clusters = 2
	if _, err := Sample(context.Background(), data, neighbors, []int{1, 1, 2}, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

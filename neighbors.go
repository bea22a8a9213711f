package bayesspace

import (
	"math"
	"runtime"
)

// ValidateNeighbors checks that neighbors has one entry per observation and
// that every index is in [0, n). Empty neighbor lists are allowed.
func ValidateNeighbors(neighbors [][]int, n int) error {
	if len(neighbors) != n {
		return invalidf("neighbors has %d entries, data has %d observations", len(neighbors), n)
	}
	for j, nb := range neighbors {
		for _, i := range nb {
			if i < 0 || i >= n {
				return invalidf("neighbors[%d] contains %d, outside [0, %d)", j, i, n)
			}
		}
	}
	return nil
}

// GraphComponents returns the number of connected components of the
// neighbor graph, treating every edge as undirected, and the number of
// observations that have no edges at all. neighbors must be valid.
func GraphComponents(neighbors [][]int) (components, isolated int) {
	n := len(neighbors)
	uf := NewUnionFind(n)
	linked := make([]bool, n)
	for j, nb := range neighbors {
		for _, i := range nb {
			if i == j {
				continue
			}
			uf.Union(j, i)
			linked[i], linked[j] = true, true
		}
	}
	for _, l := range linked {
		if !l {
			isolated++
		}
	}
	return uf.Sets(), isolated
}

// spatialLeafSize is the KD-tree leaf size used for neighbor queries.
// Spot coordinates are low dimensional, so small leaves prune well.
const spatialLeafSize = 16

// flattenCoords checks that coords is rectangular and finite and returns it
// flat and row-major.
func flattenCoords(coords [][]float64) ([]float64, int, error) {
	if len(coords) == 0 {
		return nil, 0, nil
	}
	dims := len(coords[0])
	if dims == 0 {
		return nil, 0, invalidf("coordinates have no dimensions")
	}
	flat := make([]float64, 0, len(coords)*dims)
	for i, c := range coords {
		if len(c) != dims {
			return nil, 0, invalidf("coordinate %d has %d dimensions, want %d", i, len(c), dims)
		}
		for _, x := range c {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, 0, invalidf("coordinate %d is not finite", i)
			}
		}
		flat = append(flat, c...)
	}
	return flat, dims, nil
}

// FindNeighbors returns, for every spot, the indices of the other spots
// within radius of it (inclusive) under metric, in ascending order. A nil
// metric means EuclideanMetric. Queries run on runtime.NumCPU() goroutines
// against a shared KD-tree.
func FindNeighbors(coords [][]float64, radius float64, metric DistanceMetric) ([][]int, error) {
	if !(radius >= 0) || math.IsInf(radius, 1) {
		return nil, invalidf("radius must be finite and >= 0, got %f", radius)
	}
	if metric == nil {
		metric = EuclideanMetric{}
	}
	flat, dims, err := flattenCoords(coords)
	if err != nil {
		return nil, err
	}
	n := len(coords)
	tree := NewKDTree(flat, n, dims, metric, spatialLeafSize)

	neighbors := make([][]int, n)
	parallelRange(n, runtime.NumCPU(), func(start, end int) {
		for i := start; i < end; i++ {
			found := tree.QueryRadius(tree.point(i), radius)
			nb := make([]int, 0, max(len(found)-1, 0))
			for _, p := range found {
				if p != i {
					nb = append(nb, p)
				}
			}
			neighbors[i] = nb
		}
	})
	return neighbors, nil
}

// KNearestNeighbors returns, for every spot, the k other spots nearest to
// it under metric, nearest first. Spots equidistant from the query are
// ordered by index. A nil metric means EuclideanMetric.
func KNearestNeighbors(coords [][]float64, k int, metric DistanceMetric) ([][]int, error) {
	if k < 0 || (len(coords) > 0 && k >= len(coords)) {
		return nil, invalidf("k must be in [0, %d), got %d", len(coords), k)
	}
	if metric == nil {
		metric = EuclideanMetric{}
	}
	flat, dims, err := flattenCoords(coords)
	if err != nil {
		return nil, err
	}
	n := len(coords)
	tree := NewKDTree(flat, n, dims, metric, spatialLeafSize)

	neighbors := make([][]int, n)
	parallelRange(n, runtime.NumCPU(), func(start, end int) {
		for i := start; i < end; i++ {
			// One extra result covers the query spot itself.
			idx, _ := tree.QueryKNN(tree.point(i), k+1)
			nb := make([]int, 0, k)
			for _, p := range idx {
				if p != i && len(nb) < k {
					nb = append(nb, p)
				}
			}
			neighbors[i] = nb
		}
	})
	return neighbors, nil
}

// Platform names a spot lattice layout.
type Platform string

const (
	// PlatformVisium is the hexagonal Visium array: spot (r, c) touches
	// (r, c±2) and (r±1, c±1).
	PlatformVisium Platform = "Visium"
	// PlatformST is the square ST array: spot (r, c) touches (r±1, c) and
	// (r, c±1).
	PlatformST Platform = "ST"
)

// LatticeNeighbors builds the neighbor graph of spots on a platform array
// from their integer row and column indices.
func LatticeNeighbors(rows, cols []int, platform Platform) ([][]int, error) {
	if len(rows) != len(cols) {
		return nil, invalidf("rows has %d entries, cols has %d", len(rows), len(cols))
	}
	coords := make([][]float64, len(rows))
	switch platform {
	case PlatformVisium:
		// Map the offset hex grid onto the plane so that all six touching
		// spots sit at distance 2 and the next ring at 2·sqrt(3).
		for i := range rows {
			coords[i] = []float64{float64(cols[i]), float64(rows[i]) * math.Sqrt(3)}
		}
		return FindNeighbors(coords, 2+1e-6, EuclideanMetric{})
	case PlatformST:
		for i := range rows {
			coords[i] = []float64{float64(cols[i]), float64(rows[i])}
		}
		return FindNeighbors(coords, 1, ManhattanMetric{})
	default:
		return nil, invalidf("unknown platform %q", string(platform))
	}
}

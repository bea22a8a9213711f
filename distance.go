package bayesspace

import "math"

// DistanceMetric measures distance between spot coordinates when building a
// neighbor graph. ReducedDistance is any monotone transform of Distance that
// is cheaper to compute (squared Euclidean skips the sqrt); DistToRdist maps
// a distance into that reduced space.
//
// FindNeighbors and KNearestNeighbors prune KD-tree nodes with the distance
// from a query to the closest point of a node's bounding box, so a metric
// must not decrease when any coordinate moves away from the query.
type DistanceMetric interface {
	Distance(a, b []float64) float64
	ReducedDistance(a, b []float64) float64
	DistToRdist(d float64) float64
}

// EuclideanMetric is the L2 distance. Use it on physical spot positions.
type EuclideanMetric struct{}

func (EuclideanMetric) Distance(a, b []float64) float64 {
	return math.Sqrt(sumOfSquares(a, b))
}

func (EuclideanMetric) ReducedDistance(a, b []float64) float64 { return sumOfSquares(a, b) }

func (EuclideanMetric) DistToRdist(d float64) float64 { return d * d }

func sumOfSquares(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// ManhattanMetric is the L1 distance. Radius 1 on integer array coordinates
// gives the 4-neighborhood of a square lattice.
type ManhattanMetric struct{}

func (ManhattanMetric) Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

func (m ManhattanMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }

func (ManhattanMetric) DistToRdist(d float64) float64 { return d }

// ChebyshevMetric is the L∞ distance. Radius 1 on integer array coordinates
// gives the 8-neighborhood of a square lattice.
type ChebyshevMetric struct{}

func (ChebyshevMetric) Distance(a, b []float64) float64 {
	var maxVal float64
	for i := range a {
		if v := math.Abs(a[i] - b[i]); v > maxVal {
			maxVal = v
		}
	}
	return maxVal
}

func (m ChebyshevMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }

func (ChebyshevMetric) DistToRdist(d float64) float64 { return d }

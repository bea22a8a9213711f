package bayesspace

import "gonum.org/v1/gonum/mat"

// Result holds the raw per-iteration trace of a Sample run. Every trace is
// flat and row-major with one row per recorded iteration; row 0 is the
// initial state.
type Result struct {
	// N is the number of observations, Dims the feature dimension and
	// Clusters the number of mixture components q.
	N, Dims, Clusters int

	// Iterations is the number of iterations requested. Completed is the
	// number of rows actually recorded; it is smaller than Iterations only
	// when the run was cancelled or failed.
	Iterations int
	Completed  int

	// Labels is Completed×N, values in [1, Clusters].
	Labels []int

	// Means is Completed×(Clusters·Dims); each row concatenates the cluster
	// means in cluster order.
	Means []float64

	// Precisions stores one Dims×Dims precision matrix per row, row-major,
	// with both triangles filled.
	Precisions []float64

	// Weights is Completed×N, every value strictly positive.
	Weights []float64

	// PseudoLogLik holds the label-sweep score of each iteration. Row 0,
	// which no sweep produced, is 0.
	PseudoLogLik []float64

	// Accepted counts the label proposals accepted in each iteration.
	Accepted []int
}

// newResult allocates a trace with room for iterations rows.
func newResult(iterations, n, dims, clusters int) *Result {
	return &Result{
		N:            n,
		Dims:         dims,
		Clusters:     clusters,
		Iterations:   iterations,
		Labels:       make([]int, iterations*n),
		Means:        make([]float64, iterations*clusters*dims),
		Precisions:   make([]float64, iterations*dims*dims),
		Weights:      make([]float64, iterations*n),
		PseudoLogLik: make([]float64, iterations),
		Accepted:     make([]int, iterations),
	}
}

// LabelsAt returns the labels recorded at iteration i. The slice shares
// storage with the trace.
func (r *Result) LabelsAt(i int) []int {
	return r.Labels[i*r.N : (i+1)*r.N]
}

// WeightsAt returns the weights recorded at iteration i. The slice shares
// storage with the trace.
func (r *Result) WeightsAt(i int) []float64 {
	return r.Weights[i*r.N : (i+1)*r.N]
}

// MeansAt returns the Clusters×Dims mean matrix recorded at iteration i,
// backed by the trace.
func (r *Result) MeansAt(i int) *mat.Dense {
	size := r.Clusters * r.Dims
	return mat.NewDense(r.Clusters, r.Dims, r.Means[i*size:(i+1)*size])
}

// PrecisionAt returns the precision matrix recorded at iteration i, backed
// by the trace.
func (r *Result) PrecisionAt(i int) *mat.SymDense {
	size := r.Dims * r.Dims
	return mat.NewSymDense(r.Dims, r.Precisions[i*size:(i+1)*size])
}

// setMeans records means at iteration i.
func (r *Result) setMeans(i int, means *mat.Dense) {
	r.MeansAt(i).Copy(means)
}

// setPrecision records lambda at iteration i, filling both triangles.
func (r *Result) setPrecision(i int, lambda mat.Symmetric) {
	size := r.Dims * r.Dims
	row := r.Precisions[i*size : (i+1)*size]
	for a := 0; a < r.Dims; a++ {
		for b := 0; b < r.Dims; b++ {
			row[a*r.Dims+b] = lambda.At(a, b)
		}
	}
}

// truncate drops every row from completed onward.
func (r *Result) truncate(completed int) {
	r.Completed = completed
	r.Labels = r.Labels[:completed*r.N]
	r.Means = r.Means[:completed*r.Clusters*r.Dims]
	r.Precisions = r.Precisions[:completed*r.Dims*r.Dims]
	r.Weights = r.Weights[:completed*r.N]
	r.PseudoLogLik = r.PseudoLogLik[:completed]
	r.Accepted = r.Accepted[:completed]
}

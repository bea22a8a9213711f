package bayesspace

import "gonum.org/v1/gonum/mat"

// weightChunk is the number of observations that share one child stream
// when weights are drawn in parallel. It is fixed so that the draws do not
// depend on the worker count.
const weightChunk = 512

// UpdateWeights draws the per-observation scale-mixture weights that turn
// the Gaussian likelihood into a multivariate t with 4 degrees of freedom:
//
//	w_j ~ Gamma(shape = (d+4)/2, scale = 2 / (r_jᵀ·lambda·r_j + 4))
//
// where r_j is row j of resid.
func UpdateWeights(resid *mat.Dense, lambda mat.Symmetric, v Variates, workers int) []float64 {
	n, d := resid.Dims()
	shape := (float64(d) + 4) / 2
	weights := make([]float64, n)

	drawRange := func(start, end int, vj Variates) {
		for j := start; j < end; j++ {
			r := mat.NewVecDense(d, resid.RawRowView(j))
			weights[j] = vj.Gamma(shape, 2/(mat.Inner(r, lambda, r)+4))
		}
	}

	splitter, ok := v.(Splitter)
	if !ok {
		drawRange(0, n, v)
		return weights
	}

	chunks := (n + weightChunk - 1) / weightChunk
	streams := splitter.Split(chunks)
	parallelRange(chunks, workers, func(start, end int) {
		for c := start; c < end; c++ {
			drawRange(c*weightChunk, min((c+1)*weightChunk, n), streams[c])
		}
	})
	return weights
}

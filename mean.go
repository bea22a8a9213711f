package bayesspace

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// UpdateMeans draws a new q×d matrix of cluster means from the conjugate
// posterior given the current labels (1-based), weights and shared
// precision lambda. The prior on every mean is N(mu0, lambda0⁻¹).
//
// For cluster k with weighted count n_k = Σ w_j and weighted sum
// ȳ_k = Σ w_j·y_j over its members, the posterior is
//
//	N(P⁻¹(lambda0·mu0 + lambda·ȳ_k), P⁻¹),  P = lambda0 + n_k·lambda
//
// An empty cluster therefore resamples from the prior.
//
// When v is a Splitter each cluster draws from its own child stream and the
// draws are spread over workers goroutines; the result does not depend on
// workers. Otherwise the clusters are drawn in order from v.
func UpdateMeans(y *mat.Dense, labels []int, weights []float64, lambda0, lambda mat.Symmetric, mu0 []float64, q int, v Variates, workers int) (*mat.Dense, error) {
	n, d := y.Dims()

	counts := make([]float64, q)
	sums := mat.NewDense(q, d, nil)
	for j := 0; j < n; j++ {
		k := labels[j] - 1
		counts[k] += weights[j]
		floats.AddScaled(sums.RawRowView(k), weights[j], y.RawRowView(j))
	}

	var priorTerm mat.VecDense
	priorTerm.MulVec(lambda0, mat.NewVecDense(d, mu0))

	means := mat.NewDense(q, d, nil)
	draw := func(k int, vk Variates) error {
		var prec mat.SymDense
		prec.ScaleSym(counts[k], lambda)
		prec.AddSym(&prec, lambda0)

		var chol mat.Cholesky
		if !chol.Factorize(&prec) {
			return fmt.Errorf("cluster %d posterior precision: %w", k+1, ErrNotPositiveDefinite)
		}
		var cov mat.SymDense
		if err := inverseTo(&chol, &cov); err != nil {
			return fmt.Errorf("cluster %d posterior covariance: %w", k+1, err)
		}

		var rhs mat.VecDense
		rhs.MulVec(lambda, mat.NewVecDense(d, sums.RawRowView(k)))
		rhs.AddVec(&rhs, &priorTerm)

		var mean mat.VecDense
		mean.MulVec(&cov, &rhs)

		if err := vk.MVNormal(means.RawRowView(k), mean.RawVector().Data, &cov); err != nil {
			return fmt.Errorf("cluster %d: %w", k+1, err)
		}
		return nil
	}

	splitter, ok := v.(Splitter)
	if !ok {
		for k := 0; k < q; k++ {
			if err := draw(k, v); err != nil {
				return nil, err
			}
		}
		return means, nil
	}

	streams := splitter.Split(q)
	err := parallelRangeErr(q, workers, func(start, end int) error {
		for k := start; k < end; k++ {
			if err := draw(k, streams[k]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return means, nil
}

// tileMeans returns a q×d matrix whose every row is mu0.
func tileMeans(mu0 []float64, q int) *mat.Dense {
	d := len(mu0)
	means := mat.NewDense(q, d, nil)
	for k := 0; k < q; k++ {
		copy(means.RawRowView(k), mu0)
	}
	return means
}

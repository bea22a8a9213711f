package bayesspace

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LabelSweep summarizes one pass of UpdateLabels.
type LabelSweep struct {
	// PseudoLogLik is the sum over observations of the log-score of the
	// label each observation held before its proposal was evaluated.
	PseudoLogLik float64

	// Accepted counts the proposals that changed a label.
	Accepted int
}

// UpdateLabels runs one single-site Metropolis-Hastings sweep over the
// 1-based labels, in place and in ascending observation order.
//
// Observation j proposes a label uniformly from the q-1 labels it does not
// hold and scores a label k as
//
//	h(k) = gamma/|N(j)| · 2 · #{i in N(j): labels[i] = k} + log N(y_j; mu_k, sigma/w_j)
//
// with the spatial term taken as 0 when j has no neighbors. The proposal is
// accepted with probability min(1, exp(h(new) - h(prev))). Neighbor labels
// are read from labels as the sweep mutates it, so an observation sees
// neighbors already updated earlier in the same sweep.
//
// Every observation with q > 1 consumes exactly one IntN and one Float64
// draw from v, whatever the acceptance probability. With q = 1 there is
// nothing to propose and no randomness is consumed.
func UpdateLabels(y, means *mat.Dense, sigma mat.Symmetric, weights []float64, neighbors [][]int, labels []int, gamma float64, q int, v Variates) (LabelSweep, error) {
	scorer, err := newGaussianScorer(sigma)
	if err != nil {
		return LabelSweep{}, err
	}

	var sweep LabelSweep
	for j := range labels {
		x := y.RawRowView(j)
		nb := neighbors[j]
		score := func(k int) float64 {
			return spatialScore(labels, nb, k, gamma) + scorer.logDensity(x, means.RawRowView(k-1), weights[j])
		}

		prev := labels[j]
		hPrev := score(prev)
		sweep.PseudoLogLik += hPrev
		if q < 2 {
			continue
		}

		// Uniform over {1..q} \ {prev}.
		next := v.IntN(q-1) + 1
		if next >= prev {
			next++
		}

		p := math.Min(1, math.Exp(score(next)-hPrev))
		if v.Float64() < p {
			labels[j] = next
			sweep.Accepted++
		}
	}
	return sweep, nil
}

// spatialScore is the Potts term of the label score: 2·gamma times the
// fraction of j's neighbors currently labeled k.
func spatialScore(labels, nb []int, k int, gamma float64) float64 {
	if len(nb) == 0 {
		return 0
	}
	same := 0
	for _, i := range nb {
		if labels[i] == k {
			same++
		}
	}
	return gamma / float64(len(nb)) * 2 * float64(same)
}

// gaussianScorer evaluates log N(x; mu, sigma/w) for a fixed sigma, reusing
// one Cholesky factorization across all observations and labels. It keeps
// scratch vectors and is not safe for concurrent use.
type gaussianScorer struct {
	chol    mat.Cholesky
	logNorm float64 // -(d·log 2π + log|sigma|)/2
	halfDim float64
	diff    *mat.VecDense
	sol     *mat.VecDense
}

func newGaussianScorer(sigma mat.Symmetric) (*gaussianScorer, error) {
	d := sigma.SymmetricDim()
	s := &gaussianScorer{
		halfDim: 0.5 * float64(d),
		diff:    mat.NewVecDense(d, nil),
		sol:     mat.NewVecDense(d, nil),
	}
	if !s.chol.Factorize(sigma) {
		return nil, fmt.Errorf("covariance: %w", ErrNotPositiveDefinite)
	}
	s.logNorm = -0.5 * (float64(d)*math.Log(2*math.Pi) + s.chol.LogDet())
	return s, nil
}

// logDensity returns the Gaussian log-density of x with mean mu and
// covariance sigma/w. Dividing the covariance by w scales the Mahalanobis
// term by w and adds d/2·log w to the normalizer.
func (s *gaussianScorer) logDensity(x, mu []float64, w float64) float64 {
	floats.SubTo(s.diff.RawVector().Data, x, mu)
	// Only a finite mat.Condition can come back here; the solve has completed.
	_ = s.chol.SolveVecTo(s.sol, s.diff)
	maha := mat.Dot(s.diff, s.sol)
	return s.logNorm + s.halfDim*math.Log(w) - 0.5*w*maha
}

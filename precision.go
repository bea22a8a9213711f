package bayesspace

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Residuals returns y minus each observation's assigned cluster mean.
// labels are 1-based rows of means.
func Residuals(y, means *mat.Dense, labels []int) *mat.Dense {
	n, d := y.Dims()
	resid := mat.NewDense(n, d, nil)
	for j := 0; j < n; j++ {
		floats.SubTo(resid.RawRowView(j), y.RawRowView(j), means.RawRowView(labels[j]-1))
	}
	return resid
}

// WeightedScatter returns residᵀ·diag(w)·resid.
func WeightedScatter(resid *mat.Dense, weights []float64) *mat.SymDense {
	n, d := resid.Dims()
	ss := mat.NewSymDense(d, nil)
	for j := 0; j < n; j++ {
		ss.SymRankOne(ss, weights[j], mat.NewVecDense(d, resid.RawRowView(j)))
	}
	return ss
}

// UpdatePrecision draws the shared precision matrix from its Wishart
// posterior:
//
//	lambda ~ Wishart(n + alpha, (beta·I + residᵀ·diag(w)·resid)⁻¹)
func UpdatePrecision(resid *mat.Dense, weights []float64, alpha, beta float64, v Variates) (*mat.SymDense, error) {
	n, d := resid.Dims()

	inner := WeightedScatter(resid, weights)
	for i := 0; i < d; i++ {
		inner.SetSym(i, i, inner.At(i, i)+beta)
	}

	var chol mat.Cholesky
	if !chol.Factorize(inner) {
		return nil, fmt.Errorf("wishart inverse scale: %w", ErrNotPositiveDefinite)
	}
	var scale mat.SymDense
	if err := inverseTo(&chol, &scale); err != nil {
		return nil, fmt.Errorf("wishart scale: %w", err)
	}

	lambda := mat.NewSymDense(d, nil)
	if err := v.Wishart(lambda, float64(n)+alpha, &scale); err != nil {
		return nil, err
	}
	return lambda, nil
}

// covariance returns lambda⁻¹ via its Cholesky factorization.
func covariance(lambda mat.Symmetric) (*mat.SymDense, error) {
	var chol mat.Cholesky
	if !chol.Factorize(lambda) {
		return nil, fmt.Errorf("precision: %w", ErrNotPositiveDefinite)
	}
	sigma := mat.NewSymDense(lambda.SymmetricDim(), nil)
	if err := inverseTo(&chol, sigma); err != nil {
		return nil, fmt.Errorf("precision inverse: %w", err)
	}
	return sigma, nil
}

// inverseTo stores the inverse of the factorized matrix in dst. A finite
// mat.Condition from gonum only flags an ill-conditioned matrix, so it is
// not treated as a failure.
func inverseTo(chol *mat.Cholesky, dst *mat.SymDense) error {
	err := chol.InverseTo(dst)
	var cond mat.Condition
	if errors.As(err, &cond) && !math.IsInf(float64(cond), 1) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotPositiveDefinite, err)
	}
	return nil
}

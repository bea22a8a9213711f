package bayesspace

import (
	"fmt"
	"math"
	"runtime"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Config controls the sampler. Start with [DefaultConfig], set Clusters,
// and override the fields you need.
type Config struct {
	// Iterations is the number of trace rows to produce, including the
	// initial state in row 0. Must be >= 1. Default: 50000.
	Iterations int

	// Clusters is the number of mixture components q. Labels take values in
	// [1, Clusters]. Must be >= 1. Required.
	Clusters int

	// Gamma is the strength of the Potts smoothing prior. 0 ignores the
	// neighbor graph. Must be >= 0. Default: 3.
	Gamma float64

	// Mu0 is the prior mean of every cluster mean and the initial value of
	// each. Must have one entry per feature. Default: column means of the
	// data.
	Mu0 []float64

	// Lambda0 is the prior precision of the cluster means and the initial
	// shared precision. Must be Dims×Dims and positive definite.
	// Default: 0.01·I.
	Lambda0 mat.Symmetric

	// Alpha is added to the observation count to form the Wishart degrees of
	// freedom. Must be > 0. Default: 1.
	Alpha float64

	// Beta is the diagonal of the Wishart prior inverse scale. Must be > 0.
	// Default: 0.01.
	Beta float64

	// Workers is the number of goroutines for the mean and weight updates.
	// The label sweep is always sequential. 0 means runtime.NumCPU().
	Workers int

	// Seed seeds the default Variates. Ignored when Variates is set.
	Seed uint64

	// Variates supplies every random draw. Default: NewVariates(Seed).
	Variates Variates

	// CheckEvery is how many iterations pass between cancellation checks.
	// Default: 10.
	CheckEvery int

	// LogEvery is how many iterations pass between debug progress logs.
	// Default: 1000.
	LogEvery int

	// Logger receives run-level and progress logs. Default: zap.NewNop().
	Logger *zap.Logger
}

// DefaultConfig returns a Config with the usual hyperparameters for spatial
// transcriptomics clustering. Clusters must still be set.
func DefaultConfig() Config {
	return Config{
		Iterations: 50000,
		Gamma:      3,
		Alpha:      1,
		Beta:       0.01,
		CheckEvery: 10,
		LogEvery:   1000,
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
// y must already be validated.
func applyDefaults(cfg *Config, y *mat.Dense) {
	_, d := y.Dims()
	if cfg.Mu0 == nil {
		cfg.Mu0 = make([]float64, d)
		for c := range cfg.Mu0 {
			cfg.Mu0[c] = stat.Mean(mat.Col(nil, c, y), nil)
		}
	}
	if cfg.Lambda0 == nil {
		l0 := mat.NewSymDense(d, nil)
		for i := 0; i < d; i++ {
			l0.SetSym(i, i, 0.01)
		}
		cfg.Lambda0 = l0
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Variates == nil {
		cfg.Variates = NewVariates(cfg.Seed)
	}
	if cfg.CheckEvery == 0 {
		cfg.CheckEvery = 10
	}
	if cfg.LogEvery == 0 {
		cfg.LogEvery = 1000
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
}

// validateConfig checks cfg against data with n observations of dimension d.
func validateConfig(cfg *Config, n, d int) error {
	if cfg.Iterations < 1 {
		return invalidf("Iterations must be >= 1, got %d", cfg.Iterations)
	}
	if cfg.Clusters < 1 {
		return invalidf("Clusters must be >= 1, got %d", cfg.Clusters)
	}
	if !(cfg.Gamma >= 0) || math.IsInf(cfg.Gamma, 1) {
		return invalidf("Gamma must be finite and >= 0, got %f", cfg.Gamma)
	}
	if !(cfg.Alpha > 0) {
		return invalidf("Alpha must be > 0, got %f", cfg.Alpha)
	}
	if !(cfg.Beta > 0) {
		return invalidf("Beta must be > 0, got %f", cfg.Beta)
	}
	if float64(n)+cfg.Alpha <= float64(d-1) {
		return invalidf("Wishart degrees of freedom n+Alpha = %g must exceed Dims-1 = %d", float64(n)+cfg.Alpha, d-1)
	}
	if cfg.Workers < 0 {
		return invalidf("Workers must be >= 0, got %d", cfg.Workers)
	}
	if cfg.CheckEvery < 1 {
		return invalidf("CheckEvery must be >= 1, got %d", cfg.CheckEvery)
	}
	if cfg.LogEvery < 1 {
		return invalidf("LogEvery must be >= 1, got %d", cfg.LogEvery)
	}
	if len(cfg.Mu0) != d {
		return invalidf("Mu0 has length %d, data has %d columns", len(cfg.Mu0), d)
	}
	for i, m := range cfg.Mu0 {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return invalidf("Mu0[%d] is not finite", i)
		}
	}
	if r, c := cfg.Lambda0.Dims(); r != d || c != d {
		return invalidf("Lambda0 is %d×%d, want %d×%d", r, c, d, d)
	}
	var chol mat.Cholesky
	if !chol.Factorize(cfg.Lambda0) {
		return fmt.Errorf("bayesspace: %w: Lambda0: %w", ErrInvalidInput, ErrNotPositiveDefinite)
	}
	return nil
}

// validateData checks that data is a non-empty rectangular matrix of
// finite values and returns it as a dense matrix.
func validateData(data [][]float64) (*mat.Dense, error) {
	n := len(data)
	if n == 0 {
		return nil, invalidf("data has no observations")
	}
	d := len(data[0])
	if d == 0 {
		return nil, invalidf("data has no features")
	}
	y := mat.NewDense(n, d, nil)
	for j, row := range data {
		if len(row) != d {
			return nil, invalidf("data row %d has %d features, want %d", j, len(row), d)
		}
		for c, x := range row {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, invalidf("data[%d][%d] is not finite", j, c)
			}
		}
		y.SetRow(j, row)
	}
	return y, nil
}

// validateLabels checks that init holds one label in [1, q] per observation.
func validateLabels(init []int, n, q int) error {
	if len(init) != n {
		return invalidf("init has %d labels, data has %d observations", len(init), n)
	}
	for j, z := range init {
		if z < 1 || z > q {
			return invalidf("init[%d] = %d is outside [1, %d]", j, z, q)
		}
	}
	return nil
}

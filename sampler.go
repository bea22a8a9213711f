package bayesspace

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Sample runs the spatial clustering MCMC chain on data (n observations of
// d features each) and returns the full trace.
//
// neighbors[j] lists the 0-based indices of observation j's spatial
// neighbors and may be empty. init holds the starting label of every
// observation, in [1, cfg.Clusters].
//
// Each iteration updates, in order, the cluster means, the shared precision,
// the observation weights and the labels, each from the values of the
// previous iteration or of the steps already run in this one.
//
// Invalid inputs are reported before any iteration runs with an error
// wrapping ErrInvalidInput and a nil Result. A numerical failure stops the
// chain with a *NumericalError; cancellation of ctx, checked every
// cfg.CheckEvery iterations, stops it with an error wrapping ctx.Err(). In
// both cases the returned Result holds every completed iteration.
func Sample(ctx context.Context, data [][]float64, neighbors [][]int, init []int, cfg Config) (*Result, error) {
	y, err := validateData(data)
	if err != nil {
		return nil, err
	}
	n, d := y.Dims()

	applyDefaults(&cfg, y)
	if err := validateConfig(&cfg, n, d); err != nil {
		return nil, err
	}
	if err := validateLabels(init, n, cfg.Clusters); err != nil {
		return nil, err
	}
	if err := ValidateNeighbors(neighbors, n); err != nil {
		return nil, err
	}

	logger := cfg.Logger.Named("bayesspace")
	components, isolated := GraphComponents(neighbors)
	logger.Info("starting sampler",
		zap.Int("observations", n),
		zap.Int("features", d),
		zap.Int("clusters", cfg.Clusters),
		zap.Int("iterations", cfg.Iterations),
		zap.Int("workers", cfg.Workers),
		zap.Float64("gamma", cfg.Gamma),
		zap.Int("graph_components", components),
		zap.Int("isolated", isolated),
	)

	res := newResult(cfg.Iterations, n, d, cfg.Clusters)
	copy(res.LabelsAt(0), init)
	res.setMeans(0, tileMeans(cfg.Mu0, cfg.Clusters))
	res.setPrecision(0, cfg.Lambda0)
	for j := range res.WeightsAt(0) {
		res.WeightsAt(0)[j] = 1
	}

	for i := 1; i < cfg.Iterations; i++ {
		if i%cfg.CheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				res.truncate(i)
				logger.Warn("sampler cancelled", zap.Int("completed", i), zap.Error(err))
				return res, fmt.Errorf("bayesspace: sampling cancelled after %d iterations: %w", i, err)
			}
		}

		if err := step(res, i, y, neighbors, &cfg); err != nil {
			res.truncate(i)
			logger.Error("sampler failed", zap.Int("iteration", i), zap.Error(err))
			return res, err
		}

		if i%cfg.LogEvery == 0 {
			logger.Debug("iteration",
				zap.Int("iteration", i),
				zap.Float64("pseudo_loglik", res.PseudoLogLik[i]),
				zap.Float64("acceptance", float64(res.Accepted[i])/float64(n)),
			)
		}
	}

	res.Completed = cfg.Iterations
	logger.Info("sampler finished", zap.Int("iterations", cfg.Iterations))
	return res, nil
}

// step computes row i of res from row i-1.
func step(res *Result, i int, y *mat.Dense, neighbors [][]int, cfg *Config) error {
	v := cfg.Variates
	labelsPrev := res.LabelsAt(i - 1)
	weightsPrev := res.WeightsAt(i - 1)

	means, err := UpdateMeans(y, labelsPrev, weightsPrev, cfg.Lambda0, res.PrecisionAt(i-1), cfg.Mu0, cfg.Clusters, v, cfg.Workers)
	if err != nil {
		return &NumericalError{Iteration: i, Step: "mean", Err: err}
	}
	res.setMeans(i, means)

	resid := Residuals(y, means, labelsPrev)
	lambda, err := UpdatePrecision(resid, weightsPrev, cfg.Alpha, cfg.Beta, v)
	if err != nil {
		return &NumericalError{Iteration: i, Step: "precision", Err: err}
	}
	res.setPrecision(i, lambda)
	sigma, err := covariance(lambda)
	if err != nil {
		return &NumericalError{Iteration: i, Step: "precision", Err: err}
	}

	weights := UpdateWeights(resid, lambda, v, cfg.Workers)
	copy(res.WeightsAt(i), weights)

	labels := res.LabelsAt(i)
	copy(labels, labelsPrev)
	sweep, err := UpdateLabels(y, means, sigma, weights, neighbors, labels, cfg.Gamma, cfg.Clusters, v)
	if err != nil {
		return &NumericalError{Iteration: i, Step: "label", Err: err}
	}
	res.PseudoLogLik[i] = sweep.PseudoLogLik
	res.Accepted[i] = sweep.Accepted
	return nil
}

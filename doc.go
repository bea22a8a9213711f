// Package bayesspace implements spatial clustering of spot-level
// transcriptomics data with a Bayesian Gaussian mixture and a Potts
// smoothing prior, sampled by Gibbs and Metropolis-Hastings updates.
//
// Each spot carries a feature vector (typically principal components of
// its expression profile) and a position on the array. Spots that touch on
// the array are encouraged to share a cluster label with strength Gamma.
// The observation model is a multivariate t with 4 degrees of freedom,
// written as a scale mixture of Gaussians with one weight per spot.
//
// Basic usage:
//
//	neighbors, err := bayesspace.LatticeNeighbors(rows, cols, bayesspace.PlatformVisium)
//	cfg := bayesspace.DefaultConfig()
//	cfg.Clusters = 7
//	cfg.Seed = 149
//	res, err := bayesspace.Sample(ctx, pcs, neighbors, init, cfg)
//	// res.LabelsAt(i)[j] is the 1-based label of spot j at iteration i
//	// res.MeansAt(i), res.PrecisionAt(i) and res.WeightsAt(i) hold the
//	// mixture parameters
//
// Neighbor graphs for coordinates that are not on a platform lattice come
// from [FindNeighbors] (fixed radius) or [KNearestNeighbors]. Both query a
// KD-tree over the spot positions.
//
// # Iteration
//
// Every iteration runs four updates in order:
//
//	UpdateMeans      cluster means from their conjugate normal posterior
//	UpdatePrecision  shared precision from its Wishart posterior
//	UpdateWeights    per-spot weights from their gamma posterior
//	UpdateLabels     one Metropolis-Hastings sweep over the labels
//
// The updaters are exported so that callers can compose their own loops.
//
// # Randomness
//
// All draws go through a [Variates]. The default, [NewVariates], is
// seeded from Config.Seed and is a [Splitter], which lets the mean and
// weight updates run on Config.Workers goroutines while producing the same
// trace for any worker count.
package bayesspace

package bayesspace

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// Variates is the source of randomness for every updater. Implementations
// are not required to be safe for concurrent use; the sampler only shares a
// Variates across goroutines through Split.
type Variates interface {
	// MVNormal stores a draw from N(mean, cov) in dst.
	MVNormal(dst, mean []float64, cov mat.Symmetric) error

	// Wishart stores a draw from a Wishart distribution with nu degrees of
	// freedom and the given scale matrix in dst. nu must exceed dim-1.
	Wishart(dst *mat.SymDense, nu float64, scale mat.Symmetric) error

	// Gamma returns a draw from Gamma(shape, scale). Note scale, not rate.
	Gamma(shape, scale float64) float64

	// IntN returns a uniform integer in [0, n).
	IntN(n int) int

	// Float64 returns a uniform value in [0, 1).
	Float64() float64
}

// Splitter is implemented by a Variates that can derive independent child
// streams. The mean and weight updaters only run in parallel when the
// injected Variates is a Splitter.
type Splitter interface {
	// Split consumes randomness from the receiver to seed n child streams.
	// The children are a deterministic function of the receiver's state.
	Split(n int) []Variates
}

// GonumVariates draws from gonum's distmv, distmat and distuv packages. All
// draws, including uniforms, consume a single PCG stream.
type GonumVariates struct {
	src rand.Source
	rnd *rand.Rand
}

var (
	_ Variates = (*GonumVariates)(nil)
	_ Splitter = (*GonumVariates)(nil)
)

// NewVariates returns a GonumVariates seeded with seed.
func NewVariates(seed uint64) *GonumVariates {
	return newGonumVariates(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func newGonumVariates(src rand.Source) *GonumVariates {
	return &GonumVariates{src: src, rnd: rand.New(src)}
}

func (v *GonumVariates) MVNormal(dst, mean []float64, cov mat.Symmetric) error {
	normal, ok := distmv.NewNormal(mean, cov, v.src)
	if !ok {
		return fmt.Errorf("multivariate normal covariance: %w", ErrNotPositiveDefinite)
	}
	normal.Rand(dst)
	return nil
}

func (v *GonumVariates) Wishart(dst *mat.SymDense, nu float64, scale mat.Symmetric) error {
	if d := scale.SymmetricDim(); nu <= float64(d-1) {
		return fmt.Errorf("wishart degrees of freedom %g must exceed %d", nu, d-1)
	}
	w, ok := distmat.NewWishart(scale, nu, v.src)
	if !ok {
		return fmt.Errorf("wishart scale: %w", ErrNotPositiveDefinite)
	}
	w.RandSymTo(dst)
	return nil
}

func (v *GonumVariates) Gamma(shape, scale float64) float64 {
	return distuv.Gamma{Alpha: shape, Beta: 1 / scale, Src: v.src}.Rand()
}

func (v *GonumVariates) IntN(n int) int { return v.rnd.IntN(n) }

func (v *GonumVariates) Float64() float64 { return v.rnd.Float64() }

func (v *GonumVariates) Split(n int) []Variates {
	children := make([]Variates, n)
	for i := range children {
		children[i] = newGonumVariates(rand.NewPCG(v.rnd.Uint64(), v.rnd.Uint64()))
	}
	return children
}

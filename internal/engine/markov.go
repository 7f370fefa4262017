package engine

// MarkovChain is a 256x256 row-stochastic matrix of first-order byte
// transitions derived from a depth-2 Scheme. It retains a reference to the
// originating scheme so its marginal P(i) stays reachable.
type MarkovChain struct {
	scheme *Scheme
	matrix []float64 // M[i][j] stored at i+256*j
}

// NewMarkovChain derives a chain from a depth-2 scheme. It fails with
// ErrInvalidOperation if scheme is not depth 2.
func NewMarkovChain(scheme *Scheme) (*MarkovChain, error) {
	if scheme.Depth() != 2 {
		return nil, ErrInvalidOperation
	}
	mc := &MarkovChain{scheme: scheme}
	mc.recompute(true)
	return mc, nil
}

// recompute fills the transition matrix. applyCutoff mirrors the
// construction-time rule that zeroes out transitions built from P(i,j)
// below 1e-10; after smoothing no cell is zero, so the cutoff is skipped.
func (mc *MarkovChain) recompute(applyCutoff bool) {
	mc.matrix = make([]float64, 65536)
	for i := 0; i < 256; i++ {
		pi := mc.scheme.P(i)
		for j := 0; j < 256; j++ {
			pij, _ := mc.scheme.PPair(i, j)
			if applyCutoff && pij < 1e-10 {
				continue
			}
			if pi == 0 {
				continue
			}
			mc.matrix[i+256*j] = pij / pi
		}
	}
}

// Transition returns M[i][j] = P(i,j)/P(i).
func (mc *MarkovChain) Transition(i, j int) float64 { return mc.matrix[i+256*j] }

// Marginal returns P(i) from the stored scheme.
func (mc *MarkovChain) Marginal(i int) float64 { return mc.scheme.P(i) }

// Size is the number of distinct byte values, 256.
func (mc *MarkovChain) Size() int { return 256 }

// Smooth applies additive smoothing to the stored scheme and rebuilds the
// transition matrix without the 1e-10 cutoff, since smoothing leaves no
// zero cells.
func (mc *MarkovChain) Smooth(kappa float64) error {
	if err := mc.scheme.Smooth(kappa); err != nil {
		return err
	}
	mc.recompute(false)
	return nil
}

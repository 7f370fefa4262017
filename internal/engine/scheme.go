package engine

import "fmt"

// Scheme is a normalized discrete probability distribution derived from a
// FrequencyVector, plus the raw counts it was built from. Depth-1 schemes
// are distributions over single bytes; depth-2 schemes are distributions
// over byte pairs and additionally expose the marginal P(i) = Σⱼ P(i,j).
type Scheme struct {
	depth       int
	numerators  []float64
	denominator float64
	probs       []float64

	// marginalNum and marginalProb hold depth-2 row sums; unused at depth 1.
	marginalNum  []float64
	marginalProb []float64
}

// NewScheme builds a Scheme from freq. If every element of freq is zero,
// the denominator and every probability are left at zero; a later call to
// Smooth restores a proper distribution.
func NewScheme(depth int, freq FrequencyVector) (*Scheme, error) {
	size, err := sizeForDepth(depth)
	if err != nil {
		return nil, err
	}
	if len(freq) != size {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrInvalidLength, size, len(freq))
	}

	s := &Scheme{depth: depth, numerators: make([]float64, size)}
	for i, c := range freq {
		s.numerators[i] = float64(c)
	}
	s.recompute()
	return s, nil
}

func (s *Scheme) recompute() {
	s.denominator = 0
	for _, n := range s.numerators {
		s.denominator += n
	}

	s.probs = make([]float64, len(s.numerators))
	if s.denominator > 0 {
		for i, n := range s.numerators {
			s.probs[i] = n / s.denominator
		}
	}

	if s.depth != 2 {
		return
	}

	s.marginalNum = make([]float64, 256)
	for i := 0; i < 256; i++ {
		var sum float64
		for j := 0; j < 256; j++ {
			sum += s.numerators[i+256*j]
		}
		s.marginalNum[i] = sum
	}
	s.marginalProb = make([]float64, 256)
	if s.denominator > 0 {
		for i, n := range s.marginalNum {
			s.marginalProb[i] = n / s.denominator
		}
	}
}

// Depth reports the n-gram order of this scheme.
func (s *Scheme) Depth() int { return s.depth }

// Size reports the length of the scheme's base set (256 or 65536).
func (s *Scheme) Size() int { return len(s.numerators) }

// Denominator is the sum of all numerators.
func (s *Scheme) Denominator() float64 { return s.denominator }

// Numerator returns the raw count at index i.
func (s *Scheme) Numerator(i int) float64 { return s.numerators[i] }

// NumeratorPair returns the raw pair count for (i, j). It fails with
// ErrInvalidOperation on a depth-1 scheme.
func (s *Scheme) NumeratorPair(i, j int) (float64, error) {
	if s.depth != 2 {
		return 0, ErrInvalidOperation
	}
	return s.numerators[i+256*j], nil
}

// P returns P(i): the direct probability at depth 1, or the marginal
// Σⱼ P(i,j) at depth 2.
func (s *Scheme) P(i int) float64 {
	if s.depth == 1 {
		return s.probs[i]
	}
	return s.marginalProb[i]
}

// PPair returns P(i,j). It fails with ErrInvalidOperation on a depth-1
// scheme.
func (s *Scheme) PPair(i, j int) (float64, error) {
	if s.depth != 2 {
		return 0, ErrInvalidOperation
	}
	return s.probs[i+256*j], nil
}

// Numerators exposes the raw numerator vector, used directly by the
// chi-square metric.
func (s *Scheme) Numerators() []float64 { return s.numerators }

// Probabilities exposes the normalized probability vector, used directly
// by the information-distance metric.
func (s *Scheme) Probabilities() []float64 { return s.probs }

// Smooth applies the local additive-smoothing variant: every zero
// numerator becomes 1, every positive numerator is multiplied by kappa,
// and the denominator/probabilities are recomputed from the result. This
// is not classical add-one smoothing.
func (s *Scheme) Smooth(kappa float64) error {
	if kappa <= 0 {
		return fmt.Errorf("engine: smoothing kappa must be positive, got %v", kappa)
	}
	for i, n := range s.numerators {
		if n > 0 {
			s.numerators[i] = n * kappa
		} else {
			s.numerators[i] = 1
		}
	}
	s.recompute()
	return nil
}

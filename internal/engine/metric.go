package engine

import (
	"fmt"
	"math"
)

// LogLikelihood scores observed depth-2 pair-frequencies under chain.
// Pairs with zero observed count are skipped (not merely zero transition
// probability), avoiding 0*log(0) and matching reference numerics. Higher
// is better.
func LogLikelihood(observed FrequencyVector, chain *MarkovChain) (float64, error) {
	if len(observed) != 65536 {
		return 0, fmt.Errorf("%w: observed frequency vector must have length 65536", ErrMismatchedSchemes)
	}

	var score float64
	for idx, f := range observed {
		if f == 0 {
			continue
		}
		score += float64(f) * math.Log10(chain.matrix[idx])
	}
	return score, nil
}

// ChiSquare computes the chi-square divergence of test against theory's
// raw numerator vectors. Cells where theory's numerator is zero are
// skipped. Lower is better.
func ChiSquare(test, theory *Scheme) (float64, error) {
	if err := requireMatching(test, theory); err != nil {
		return 0, err
	}

	var sum float64
	a, b := test.numerators, theory.numerators
	for k, bk := range b {
		if bk == 0 {
			continue
		}
		d := a[k] - bk
		sum += d * d / bk
	}
	return sum, nil
}

// InfoDistance computes the Kullback-Leibler divergence, in log base 2,
// between p and q's normalized probability vectors. Cells where either
// side is zero are skipped. Lower is better.
func InfoDistance(p, q *Scheme) (float64, error) {
	if err := requireMatching(p, q); err != nil {
		return 0, err
	}

	var sum float64
	pp, qp := p.probs, q.probs
	for k, pk := range pp {
		qk := qp[k]
		if pk == 0 || qk == 0 {
			continue
		}
		sum += pk * math.Log2(pk/qk)
	}
	return sum, nil
}

func requireMatching(a, b *Scheme) error {
	if a.Depth() != b.Depth() || len(a.numerators) != len(b.numerators) {
		return ErrMismatchedSchemes
	}
	return nil
}

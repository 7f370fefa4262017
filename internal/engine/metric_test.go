package engine_test

import (
	"math"
	"testing"

	"github.com/dantte-lp/ptrid/internal/engine"
)

// buildScheme constructs a depth-1 scheme whose first five cells hold the
// literal counts, mirroring the hand-built vectors used by the original test
// suite. The remaining 251 cells stay zero; both metrics skip zero cells, so
// the results equal those of a five-element base set.
func buildScheme(t *testing.T, counts [5]uint64) *engine.Scheme {
	t.Helper()
	freq, err := engine.NewFrequencyVector(1)
	if err != nil {
		t.Fatalf("NewFrequencyVector: %v", err)
	}
	copy(freq, counts[:])
	s, err := engine.NewScheme(1, freq)
	if err != nil {
		t.Fatalf("NewScheme: %v", err)
	}
	return s
}

func TestInfoDistanceKnownValue(t *testing.T) {
	t.Parallel()

	p := buildScheme(t, [5]uint64{3, 5, 2, 0, 0})
	q := buildScheme(t, [5]uint64{5, 3, 1, 0, 1})

	d, err := engine.InfoDistance(p, q)
	if err != nil {
		t.Fatalf("InfoDistance: %v", err)
	}
	if math.Abs(d-0.3) > 0.1 {
		t.Errorf("InfoDistance = %v, want 0.3 ± 0.1", d)
	}
}

func TestChiSquareKnownValue(t *testing.T) {
	t.Parallel()

	test := buildScheme(t, [5]uint64{3, 5, 2, 0, 0})
	theory := buildScheme(t, [5]uint64{5, 3, 1, 0, 1})

	chi2, err := engine.ChiSquare(test, theory)
	if err != nil {
		t.Fatalf("ChiSquare: %v", err)
	}
	if math.Abs(chi2-4.13) > 0.01 {
		t.Errorf("ChiSquare = %v, want 4.13 ± 0.01", chi2)
	}
}

func TestInfoDistanceSelfIsZero(t *testing.T) {
	t.Parallel()

	p := buildScheme(t, [5]uint64{3, 5, 2, 0, 1})
	d, err := engine.InfoDistance(p, p)
	if err != nil {
		t.Fatalf("InfoDistance: %v", err)
	}
	if d != 0 {
		t.Errorf("InfoDistance(p, p) = %v, want 0", d)
	}
}

func TestChiSquareSelfIsZero(t *testing.T) {
	t.Parallel()

	a := buildScheme(t, [5]uint64{3, 5, 2, 0, 1})
	chi2, err := engine.ChiSquare(a, a)
	if err != nil {
		t.Fatalf("ChiSquare: %v", err)
	}
	if chi2 != 0 {
		t.Errorf("ChiSquare(a, a) = %v, want 0", chi2)
	}
}

func TestMetricsRejectMismatchedSchemes(t *testing.T) {
	t.Parallel()

	small := buildScheme(t, [5]uint64{1, 1, 1, 1, 1})
	bigFreq, _ := engine.NewFrequencyVector(2)
	big, err := engine.NewScheme(2, bigFreq)
	if err != nil {
		t.Fatalf("NewScheme: %v", err)
	}

	if _, err := engine.ChiSquare(small, big); err != engine.ErrMismatchedSchemes {
		t.Errorf("ChiSquare size mismatch: err = %v, want ErrMismatchedSchemes", err)
	}
	if _, err := engine.InfoDistance(small, big); err != engine.ErrMismatchedSchemes {
		t.Errorf("InfoDistance size mismatch: err = %v, want ErrMismatchedSchemes", err)
	}
}

func TestLogLikelihoodSkipsZeroObservedCounts(t *testing.T) {
	t.Parallel()

	freq, _ := engine.NewFrequencyVector(2)
	freq[int('a')+256*int('b')] = 5
	scheme, err := engine.NewScheme(2, freq)
	if err != nil {
		t.Fatalf("NewScheme: %v", err)
	}
	if err := scheme.Smooth(1000); err != nil {
		t.Fatalf("Smooth: %v", err)
	}
	chain, err := engine.NewMarkovChain(scheme)
	if err != nil {
		t.Fatalf("NewMarkovChain: %v", err)
	}

	observed, _ := engine.NewFrequencyVector(2)
	observed[int('a')+256*int('b')] = 3
	// Every other cell stays zero and must be skipped, not scored as
	// 0*log10(M[i][j]).
	score, err := engine.LogLikelihood(observed, chain)
	if err != nil {
		t.Fatalf("LogLikelihood: %v", err)
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		t.Fatalf("LogLikelihood = %v, want a finite score", score)
	}

	want := 3 * math.Log10(chain.Transition(int('a'), int('b')))
	if math.Abs(score-want) > 1e-9 {
		t.Errorf("LogLikelihood = %v, want %v", score, want)
	}
}

func TestLogLikelihoodRejectsWrongLength(t *testing.T) {
	t.Parallel()

	freq, _ := engine.NewFrequencyVector(1)
	scheme, err := engine.NewScheme(2, make(engine.FrequencyVector, 65536))
	if err != nil {
		t.Fatalf("NewScheme: %v", err)
	}
	chain, err := engine.NewMarkovChain(scheme)
	if err != nil {
		t.Fatalf("NewMarkovChain: %v", err)
	}
	if _, err := engine.LogLikelihood(freq, chain); err == nil {
		t.Error("expected an error for a depth-1-length observation vector")
	}
}

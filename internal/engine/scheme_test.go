package engine_test

import (
	"math"
	"testing"

	"github.com/dantte-lp/ptrid/internal/engine"
)

func TestSchemeProbabilitiesSumToOne(t *testing.T) {
	t.Parallel()

	freq, err := engine.NewFrequencyVector(1)
	if err != nil {
		t.Fatalf("NewFrequencyVector: %v", err)
	}
	freq[10] = 3
	freq[20] = 5
	freq[30] = 2

	s, err := engine.NewScheme(1, freq)
	if err != nil {
		t.Fatalf("NewScheme: %v", err)
	}

	var sum float64
	for i := 0; i < s.Size(); i++ {
		sum += s.P(i)
	}
	if math.Abs(sum-1) > 1e-10 {
		t.Errorf("Σ P(i) = %v, want 1", sum)
	}
}

func TestSchemeDepth2MarginalSumsToOne(t *testing.T) {
	t.Parallel()

	freq, err := engine.NewFrequencyVector(2)
	if err != nil {
		t.Fatalf("NewFrequencyVector: %v", err)
	}
	freq[int('a')+256*int('b')] = 4
	freq[int('a')+256*int('c')] = 1
	freq[int('z')+256*int('y')] = 2

	s, err := engine.NewScheme(2, freq)
	if err != nil {
		t.Fatalf("NewScheme: %v", err)
	}

	var sum float64
	for i := 0; i < 256; i++ {
		sum += s.P(i)
	}
	if math.Abs(sum-1) > 1e-10 {
		t.Errorf("Σ P(i) marginal = %v, want 1", sum)
	}

	pab, err := s.PPair(int('a'), int('b'))
	if err != nil {
		t.Fatalf("PPair: %v", err)
	}
	if math.Abs(pab-4.0/7.0) > 1e-10 {
		t.Errorf("P(a,b) = %v, want %v", pab, 4.0/7.0)
	}
}

func TestSchemeDepth1PairQueryFails(t *testing.T) {
	t.Parallel()

	freq, _ := engine.NewFrequencyVector(1)
	s, err := engine.NewScheme(1, freq)
	if err != nil {
		t.Fatalf("NewScheme: %v", err)
	}

	if _, err := s.PPair(0, 1); err != engine.ErrInvalidOperation {
		t.Errorf("PPair on depth-1 scheme: err = %v, want ErrInvalidOperation", err)
	}
	if _, err := s.NumeratorPair(0, 1); err != engine.ErrInvalidOperation {
		t.Errorf("NumeratorPair on depth-1 scheme: err = %v, want ErrInvalidOperation", err)
	}
}

func TestSchemeMismatchedLengthFails(t *testing.T) {
	t.Parallel()

	if _, err := engine.NewScheme(1, make(engine.FrequencyVector, 10)); err == nil {
		t.Error("expected an error for a length-10 vector at depth 1")
	}
}

func TestSchemeSmoothing(t *testing.T) {
	t.Parallel()

	freq, _ := engine.NewFrequencyVector(1)
	freq[0] = 2
	freq[1] = 0
	freq[2] = 5

	s, err := engine.NewScheme(1, freq)
	if err != nil {
		t.Fatalf("NewScheme: %v", err)
	}
	if err := s.Smooth(10); err != nil {
		t.Fatalf("Smooth: %v", err)
	}

	if got, want := s.Numerator(0), 20.0; got != want {
		t.Errorf("numerator(0) after smoothing = %v, want %v", got, want)
	}
	if got, want := s.Numerator(1), 1.0; got != want {
		t.Errorf("numerator(1) after smoothing (was zero) = %v, want %v", got, want)
	}
	if got, want := s.Numerator(2), 50.0; got != want {
		t.Errorf("numerator(2) after smoothing = %v, want %v", got, want)
	}

	var sum float64
	for i := 0; i < s.Size(); i++ {
		sum += s.P(i)
	}
	if math.Abs(sum-1) > 1e-10 {
		t.Errorf("Σ P(i) after smoothing = %v, want 1", sum)
	}
}

func TestSchemeAllZeroFrequencies(t *testing.T) {
	t.Parallel()

	freq, _ := engine.NewFrequencyVector(1)
	s, err := engine.NewScheme(1, freq)
	if err != nil {
		t.Fatalf("NewScheme: %v", err)
	}
	if got := s.Denominator(); got != 0 {
		t.Errorf("Denominator() = %v, want 0", got)
	}
	for i := 0; i < s.Size(); i++ {
		if got := s.P(i); got != 0 {
			t.Fatalf("P(%d) = %v, want 0 before smoothing", i, got)
		}
	}
}

package engine

import (
	"fmt"
	"strings"
)

// Metric selects which comparison function a ReferenceLibrary scores
// observations with. It corresponds to the original tool's compile-time
// preprocessor switch, exposed here as a runtime choice per §9's
// recommendation of "a sum type of three variants."
type Metric int

const (
	// MetricMarkovLogLikelihood scores observed pair-frequencies against a
	// Markov chain via log-likelihood; higher is better. CLI tag "MC".
	MetricMarkovLogLikelihood Metric = iota
	// MetricChiSquare scores an observation scheme against each reference
	// scheme via chi-square divergence; lower is better. The offline
	// classifier smooths its observation first; the online classifier does
	// not. CLI tag "CHI2".
	MetricChiSquare
	// MetricInfoDistance scores an observation scheme against each
	// reference scheme via KL information distance; lower is better.
	// Smoothing of the observation is as for MetricChiSquare. CLI tag "ID".
	MetricInfoDistance
)

// String returns the metric's command-line tag, as printed in offline
// classification output ("Type: k (<metric_tag>)").
func (m Metric) String() string {
	switch m {
	case MetricMarkovLogLikelihood:
		return "MC"
	case MetricChiSquare:
		return "CHI2"
	case MetricInfoDistance:
		return "ID"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// ParseMetric parses the --mode flag value ("MC", "ID", "CHI2",
// case-insensitive).
func ParseMetric(s string) (Metric, error) {
	switch strings.ToUpper(s) {
	case "MC":
		return MetricMarkovLogLikelihood, nil
	case "CHI2":
		return MetricChiSquare, nil
	case "ID":
		return MetricInfoDistance, nil
	default:
		return 0, fmt.Errorf("engine: unknown mode %q, want MC, ID, or CHI2", s)
	}
}

// ReferenceType is one named entry in a ReferenceLibrary: either a smoothed
// Markov chain or a smoothed probabilistic scheme, depending on the
// library's active metric.
type ReferenceType struct {
	Name   string
	Chain  *MarkovChain
	Scheme *Scheme
}

// ReferenceLibrary holds one ReferenceType per training directory plus a
// synthetic "random" type appended last.
type ReferenceLibrary struct {
	Metric Metric
	Types  []ReferenceType
}

// referenceSmoothingKappa is the fixed smoothing factor applied when
// building reference types (§4.5); it is independent of the kappa an
// offline or online caller applies to its own observation scheme.
const referenceSmoothingKappa = 1000

// BuildReferenceLibrary builds one reference type per (dirs[i], names[i])
// pair plus a synthetic uniform "random" type, all scored under metric.
func BuildReferenceLibrary(metric Metric, dirs, names []string, cache *FrequencyCache) (*ReferenceLibrary, error) {
	if len(dirs) != len(names) {
		return nil, fmt.Errorf("engine: %d training directories but %d names", len(dirs), len(names))
	}

	lib := &ReferenceLibrary{Metric: metric}
	for i, dir := range dirs {
		rt, err := buildReferenceType(metric, names[i], dir, cache)
		if err != nil {
			return nil, fmt.Errorf("engine: building reference type %q: %w", names[i], err)
		}
		lib.Types = append(lib.Types, rt)
	}

	randomType, err := buildRandomType(metric)
	if err != nil {
		return nil, err
	}
	lib.Types = append(lib.Types, randomType)

	if len(lib.Types) == 0 {
		return nil, ErrEmptyLibrary
	}
	return lib, nil
}

func buildReferenceType(metric Metric, name, dir string, cache *FrequencyCache) (ReferenceType, error) {
	reader, err := NewReader(2, cache)
	if err != nil {
		return ReferenceType{}, err
	}
	if err := reader.ReadDirectory(dir); err != nil {
		return ReferenceType{}, err
	}

	scheme, err := NewScheme(2, reader.Snapshot())
	if err != nil {
		return ReferenceType{}, err
	}
	if err := scheme.Smooth(referenceSmoothingKappa); err != nil {
		return ReferenceType{}, err
	}

	rt := ReferenceType{Name: name}
	if metric == MetricMarkovLogLikelihood {
		chain, err := NewMarkovChain(scheme)
		if err != nil {
			return ReferenceType{}, err
		}
		rt.Chain = chain
	} else {
		rt.Scheme = scheme
	}
	return rt, nil
}

// buildRandomType builds the synthetic uniform reference: an all-ones
// depth-2 frequency vector, unsmoothed (it is already uniform).
func buildRandomType(metric Metric) (ReferenceType, error) {
	uniform, err := NewFrequencyVector(2)
	if err != nil {
		return ReferenceType{}, err
	}
	for i := range uniform {
		uniform[i] = 1
	}

	scheme, err := NewScheme(2, uniform)
	if err != nil {
		return ReferenceType{}, err
	}

	rt := ReferenceType{Name: "random"}
	if metric == MetricMarkovLogLikelihood {
		chain, err := NewMarkovChain(scheme)
		if err != nil {
			return ReferenceType{}, err
		}
		rt.Chain = chain
	} else {
		rt.Scheme = scheme
	}
	return rt, nil
}

// Classify scores an observation against every reference type and returns
// the index and name of the best-ranked one (maximum log-likelihood,
// minimum chi-square, or minimum information distance). Exactly one of
// observedFreq (for MetricMarkovLogLikelihood) or observedScheme (for the
// other two metrics) is consulted, matching what each metric function
// expects.
func (lib *ReferenceLibrary) Classify(observedFreq FrequencyVector, observedScheme *Scheme) (int, string, error) {
	if len(lib.Types) == 0 {
		return 0, "", ErrEmptyLibrary
	}

	best := -1
	var bestScore float64
	for i, rt := range lib.Types {
		var score float64
		var err error
		switch lib.Metric {
		case MetricMarkovLogLikelihood:
			score, err = LogLikelihood(observedFreq, rt.Chain)
		case MetricChiSquare:
			score, err = ChiSquare(observedScheme, rt.Scheme)
		case MetricInfoDistance:
			score, err = InfoDistance(rt.Scheme, observedScheme)
		default:
			return 0, "", fmt.Errorf("engine: unknown metric %v", lib.Metric)
		}
		if err != nil {
			return 0, "", err
		}

		switch {
		case best == -1:
			best, bestScore = i, score
		case lib.Metric == MetricMarkovLogLikelihood && score > bestScore:
			best, bestScore = i, score
		case lib.Metric != MetricMarkovLogLikelihood && score < bestScore:
			best, bestScore = i, score
		}
	}
	return best, lib.Types[best].Name, nil
}

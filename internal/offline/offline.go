package offline

import (
	"fmt"

	"github.com/dantte-lp/ptrid/internal/engine"
)

// observationSmoothingKappa is the fixed smoothing factor applied to a
// target file's depth-2 scheme before scoring (§4.7), independent of the
// kappa used when building the reference library itself.
const observationSmoothingKappa = 1000

// Result is the outcome of classifying one file: the winning reference
// type's index (1-based, matching the offline CLI's "Type: k" numbering),
// name, and the metric tag that produced it.
type Result struct {
	Index  int
	Name   string
	Metric engine.Metric
}

// String renders the offline tool's classification line: "Type: k (<metric>)".
func (r Result) String() string {
	return fmt.Sprintf("Type: %d (%s)", r.Index, r.Metric)
}

// Classify reads path as a depth-2 byte stream, applies additive smoothing
// with kappa 1000, and scores the result against every type in lib. The
// observed frequency vector (not the smoothed scheme) is used for the
// Markov log-likelihood metric, matching the contract in §4.4 that the
// metric operates on raw observed counts; the smoothed scheme is used for
// chi-square and information distance.
func Classify(path string, lib *engine.ReferenceLibrary, cache *engine.FrequencyCache) (Result, error) {
	reader, err := engine.NewReader(2, cache)
	if err != nil {
		return Result{}, err
	}
	if err := reader.ReadFile(path); err != nil {
		return Result{}, fmt.Errorf("offline: reading %s: %w", path, err)
	}
	freq := reader.Snapshot()

	scheme, err := engine.NewScheme(2, freq)
	if err != nil {
		return Result{}, err
	}
	if err := scheme.Smooth(observationSmoothingKappa); err != nil {
		return Result{}, err
	}

	var idx int
	var name string
	if lib.Metric == engine.MetricMarkovLogLikelihood {
		idx, name, err = lib.Classify(freq, nil)
	} else {
		idx, name, err = lib.Classify(nil, scheme)
	}
	if err != nil {
		return Result{}, err
	}

	return Result{Index: idx + 1, Name: name, Metric: lib.Metric}, nil
}

// Package engine implements the statistical classification core: byte
// frequency accumulation, probabilistic schemes, first-order Markov chains,
// the three comparison metrics, and the reference library builder that ties
// them together for both the offline and online classifiers.
package engine

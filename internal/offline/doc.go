// Package offline implements the one-shot file classifier: read a single
// target file, score it against a reference library, and report the
// best-ranked reference type.
package offline

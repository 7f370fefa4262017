// Package classifier implements the online session classifier: the
// per-4-tuple HTTP session map and the packet-driven state machine that
// creates sessions on GET requests, accumulates response-body frequencies,
// and emits classification verdicts.
package classifier

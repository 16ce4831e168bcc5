// Package primitives provides the foundational, zero-dependency building blocks
// for the state tree engine: path segment parsing and the transition FIFO.
//
// This package uses ONLY the Go standard library. It knows nothing about state
// nodes; the root package threads nodes through these helpers.
//
// Core invariants:
// - Path parsing is pure (no caches, no allocation beyond the segment slice)
// - Queue is FIFO and single-goroutine (no locking)
package primitives

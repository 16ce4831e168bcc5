// Package production provides integrations around a statetree chart:
// snapshot dumps and versioning, observer adapters for event publishing and
// Prometheus metrics, Graphviz export, and a serialized event pump.
//
// Nothing here changes engine semantics. Observers only watch, and Drain is
// the single goroutine allowed to call Send on the tree it drives.
package production

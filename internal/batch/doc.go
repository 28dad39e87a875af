// Package batch runs groups of independent tasks with bounded
// concurrency. Unlike errgroup, a failure does not cancel the rest of
// the group: every task settles and the failures come back as one
// aggregated error.
package batch

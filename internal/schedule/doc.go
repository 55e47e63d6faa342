// Package schedule runs the pipeline stages on fixed intervals, one
// goroutine per job with missed-tick coalescing and panic recovery.
package schedule

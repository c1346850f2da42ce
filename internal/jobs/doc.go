// Package jobs runs background work outside the request path.
//
// Producers push Jobs onto a bounded Queue and a WorkerPool drains it with a
// fixed number of goroutines. Jobs are in-memory only: a job lost to a
// restart or a failure is logged and not retried.
package jobs

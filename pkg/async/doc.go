// Package async provides a small Future abstraction used by the dispatcher
// for logically-parallel fan-out: preference checks and push sends for one
// event run concurrently across recipients, and the caller awaits the
// ordered results.
package async

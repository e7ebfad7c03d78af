// Package client provides the producer and consumer sessions applications use
// to talk to a queue.Store.
//
// Each client acquires its own channel on construction. Every operation
// returns its result directly and also emits a matching notification on the
// client's event bus, so callers may use whichever delivery suits them.
package client

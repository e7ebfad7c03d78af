// Package events delivers lifecycle notifications from stores and clients to
// interested listeners.
//
// A Bus fans each Event out to synchronous handlers registered with Subscribe
// and to buffered channels registered with Channel. Channel delivery never
// blocks the emitter; events are dropped when a subscriber's buffer is full.
// Notifications are always in addition to the error or result an operation
// returns, never instead of it.
package events

// Package broadcast implements a minimal publish/subscribe primitive used
// for live-session delivery of in-app notifications.
//
// A Broadcaster fans messages out to any number of Subscribers without ever
// blocking the publisher: slow consumers lose messages instead of stalling
// dispatch. The presence channel is best effort, so lost frames are
// acceptable.
//
// Hub adds per-key routing on top of MemoryBroadcaster for per-user live
// streams; the live key set is bounded by an LRU.
package broadcast

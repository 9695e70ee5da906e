// Package cache provides a generic LRU cache with an eviction callback.
//
// The engine uses it for process-wide caches that the design keeps explicit
// instead of hiding behind singletons: the per-user live-session broadcaster
// map and the renderer's compiled template cache. Both are bounded and expose
// Clear for invalidation.
package cache

// Package cmap provides a concurrent-safe sharded map with string keys.
//
// Keys are spread over a power-of-two number of shards by their murmur3
// hash; every shard has its own RWMutex. Update and Pop are atomic per key,
// Range is consistent per shard only.
//
// Usage:
//
//	m := cmap.New[map[int]string]()
//	m.Update("session", func(slots map[int]string, ok bool) map[int]string { ... })
//	slots, ok := m.Get("session")
package cmap

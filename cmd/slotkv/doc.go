// Package main provides the entry point for slotkv.
//
// slotkv stores key/value pairs packed into a fixed number of
// size-limited slots of a shared medium:
//
//   - Entry access (get, set, rm, clear, keys, list, len)
//   - Capacity inspection (remaining, slots, stats)
//   - Following changes made by other writers (watch)
//   - Configuration management
//
// Usage:
//
//	slotkv [global flags] command [flags] [args]
//	slotkv set theme dark
//	slotkv --location session -o json list
//	slotkv --backend badger --path /var/lib/slotkv watch
//
// Build information is injected with:
//
//	-ldflags "-X github.com/yndnr/slotkv/internal/infra/buildinfo.Version=v1.0.0"
package main

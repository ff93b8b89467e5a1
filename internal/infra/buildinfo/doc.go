// Package buildinfo exposes build-time information injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/slotkv/internal/infra/buildinfo.Version=v1.0.0"
//
// Fields left at their defaults are filled from the module build info
// embedded by the Go toolchain where available.
package buildinfo

// Package command provides the slotkv command-line interface.
//
// Commands are built with urfave/cli/v2. Each invocation loads the layered
// configuration, opens the configured slot medium and runs one engine
// operation against it.
//
//   - root.go: application, global flags and per-invocation runtime
//   - medium.go: medium construction per backend
//   - entry.go: get, set, rm, clear, keys, list, len
//   - inspect.go: remaining, slots, stats
//   - watch.go: follow external slot changes
//   - config.go: config show and init
//   - version.go: build information
package command

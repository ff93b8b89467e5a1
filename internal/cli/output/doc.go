// Package output renders CLI results.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: column-aligned tables for entries, slots and stats
//   - json.go, yaml.go: machine-readable output
//   - usage.go: slot usage bars
package output

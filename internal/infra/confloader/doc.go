// Package confloader loads layered configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables
//  3. Configuration file (YAML)
//  4. Default values (WithDefaults)
//
// Environment variables carry a prefix and use a double underscore between
// nesting levels, so single underscores stay part of a key name:
// SLOTKV_STORAGE__MAX_BYTE_SIZE sets storage.max_byte_size.
//
// Watcher reports writes to files in watched directories. It backs config
// reloads and the CLI watch command.
package confloader

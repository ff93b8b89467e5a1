// Package config defines the SlotKV configuration.
//
//   - spec.go: Config struct, defaults and validation (~/.slotkv/config.yaml)
//   - loader.go: layered loading through confloader, and saving
package config

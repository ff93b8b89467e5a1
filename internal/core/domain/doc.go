// Package domain defines the core value types of SlotKV.
//
// The types here carry no IO dependencies:
//
//   - Entry: a key/value pair as seen by engine callers
//   - Location: a named slot partition with its own numbering and budget
//   - Errors: coded error values shared by the codec, media and engine
package domain

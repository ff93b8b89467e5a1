// Package storage provides the SlotKV storage engine.
//
// An Engine exposes a key/value view of one location of a slot medium. Each
// slot holds one text blob of at most MaxByteSize estimated bytes and the
// medium holds at most MaxSlots slots across all locations. Values longer
// than the room left in a slot are split, and their fragments are joined
// again when the location is read back.
//
// Architecture:
//
//   - slot.Medium: raw slot store (memory, cookie jar, Badger, SQLite)
//   - codec: record format, packing and trimming
//   - syncmon: detects writes made to the medium by someone else
//
// The engine keeps an in-memory mirror of its location. Before every call it
// compares the medium fingerprint with the last one it saw and rebuilds the
// mirror from the slots when they differ. Writes pack the complete new entry
// set, rewrite the location, and only then update the mirror.
//
// Engine methods are serialized by a mutex. Two engines (or processes)
// writing the same location are not coordinated: each write replaces the
// whole location, so the last writer wins.
package storage

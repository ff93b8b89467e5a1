// Package slot defines the transport the storage engine persists into.
//
// A Medium stores opaque text blobs at (location, index) addresses. It does
// not know about records or byte budgets; keeping every blob within the
// slot size is the caller's job. Implementations live in sub-packages:
//
//   - memslot: process-local map, for tests and embedding
//   - cookieslot: an http.CookieJar, one cookie per slot
//   - badgerslot: Badger key/value store on disk
//   - sqliteslot: SQLite table, safe for several processes
package slot

// Package storage is the key/value blob store holding the watchlist and the
// persisted notification state.
//
// It currently supports:
//   - "file": one JSON file per key under a directory
//   - "sqlite": a single blobs table in a SQLite database
package storage

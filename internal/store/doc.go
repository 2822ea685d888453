// Package store is the synchronization boundary: durable whole-document
// storage for tracks.
//
// Every track is one row holding its canonical JSON document. A write
// replaces that document inside a transaction and bumps the row's version.
// SaveTrack names the version its tree was derived from; if another write
// landed first it fails with PersistenceConflict and nothing is merged.
// Accepted writes are also appended to track_revisions.
//
// Connections run in WAL mode with synchronous=NORMAL and foreign keys on.
// Listings are ordered by creation seq, never by wall time.
//
// MemoryStore implements the same boundary without SQLite for tests and
// scenario runs.
package store

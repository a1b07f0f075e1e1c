// Package runlog persists a record of every pipeline run in SQLite.
//
// Each run is inserted when it starts, its state column follows the
// pipeline as stages complete, and the final transcript, corrected text,
// output path, and error are written when the run ends. The store backs the
// `revoice history` commands and the HTTP run listing.
//
// The database lives at paths.history_db. Schema changes bump schemaVersion;
// older databases are rejected with ErrSchemaMismatch rather than migrated.
package runlog

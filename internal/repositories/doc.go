// Package repositories implements SQLite persistence for the lyrics and tokens stores.
//
// Every per-artist table exists twice: raw lyrics in the lyrics store and token ids in
// the tokens store. Rows are paired by id; a tokens row always carries the id of the
// lyrics row it was derived from.
//
// Key Implementations:
//   - [Stores] : owns both connections; [Stores.WithSession] scopes one transaction per store
//   - [Session] : provisions per-artist tables and saves lyrics/tokens pairs atomically
//   - [RunRepository] : ingest log with status tracking
//   - [LyricsRepository] : read side used by export and table listings
//
// A session commits whatever it saved when its callback returns, error or not, and
// rolls back only when the callback panics or the lyrics commit fails.
package repositories

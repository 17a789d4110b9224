// Package models defines the types that flow through the lyrx ingest pipeline.
//
// # Lifecycle
//
//   - [Artist] : resolved once per run from a free-text query, read-only afterwards
//   - [SongReference] : created per discovery page, discarded after extraction
//   - [LyricsRecord] / [TokenRecord] : append-only rows in the lyrics and tokens stores
//   - [Run] : one row per ingest run, opened before discovery and closed after the stores commit
//
// A [TokenRecord] shares its ID with the [LyricsRecord] it was derived from, so the two
// stores can be joined without relying on insertion order.
package models

// Package tasks orchestrates an ingest run with real-time progress reporting.
//
// # Run
//
// [Pipeline.Run] drives one run end to end:
//
//  1. Resolve the free-text query to a canonical artist. Failure ends the run
//     before anything is written.
//  2. Open a session on both stores and provision the artist's tables.
//  3. For every discovered song: extract the artist's verses, tokenize them
//     through the configured [tokenizer.Runner], and save the pair.
//  4. Commit and record the outcome in the run log.
//
// A single bad song never stops the run. Extraction failures, songs with no
// attributable verses, duplicates and tokenizer failures are logged and
// counted in [RunResult.Skipped]. Transient network errors are skipped or
// abort the run depending on [NetworkPolicy].
//
// # Progress Reporting
//
// Progress updates use non-blocking channels.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// An [Indicator] is started once the artist is resolved and stopped on every exit path.
package tasks

// Package ingestion provides the batch pipeline that populates the four
// persistent stores from raw conversation records.
//
// One Run executes three stages:
//   - Extract: obtain raw records from a Source
//   - Validate+Transform: coerce records at the boundary and embed messages
//   - Load: clear-then-insert into document, vector, graph and analytics
//     stores, in that fixed order
//
// Per-record validation failures drop the record and continue; an empty
// batch or an unusable source halts the run with no store mutation. The load
// stage is intentionally not transactional across stores: a mid-load failure
// leaves an inconsistency window that the next successful run closes.
//
// Embedding is performed concurrently on a worker pool; runs themselves are
// single-writer and must not execute concurrently.
package ingestion

// Package ingest provides pipeline orchestration for loading FAQ records.
//
// The Pipeline type manages the ingestion workflow for FAQ records, including:
//   - Adding records to storage
//   - Generating question embeddings asynchronously
//   - Backfilling embeddings for records that are missing them
//
// Embedding is performed concurrently using a worker pool. Errors during
// async processing are logged but do not fail the ingestion operation.
package ingest

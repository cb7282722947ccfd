// Package pipeline provides the embedding pipeline for catalogue collections.
//
// The pipeline selects the records of a collection that are eligible for a
// given modality, embeds their text or image content in batches through an
// ai.Provider, unit-normalizes the resulting vectors, and attaches them to
// the records. Previously computed vectors are read back from an optional
// storage.VectorRepository cache so interrupted runs resume without
// re-encoding.
//
// Records are processed strictly in order and one batch at a time. The
// package also provides progress tracking and retry logic with exponential
// backoff for transient encoder failures.
package pipeline

// Package index exports vectorized collections to a similarity-search store.
//
// An export walks the filtered records of a collection in row order and, for
// each requested modality, emits one entry per record that carries a vector
// for that modality. Each entry pairs the vector with the source document,
// a metadata map and a positional entry ID, so downstream search results can
// be traced back to the originating catalogue row.
package index

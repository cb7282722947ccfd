// Package fetch downloads catalogue images into the flat local cache.
//
// Fetching is strictly best-effort: a non-200 response or a network error
// skips that one image and leaves its Downloaded flag false for a later
// pass. Fetching is also deliberately slow — a rate limiter plus a
// randomized inter-request delay keep the load on the institutions' image
// servers polite. Batches are bounded so full catalogues can be pulled
// incrementally across several invocations; after each batch the cache
// directory is rescanned and that scan, not an in-memory counter, decides
// what is downloaded.
package fetch

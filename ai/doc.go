// Package ai defines the multimodal encoder abstraction used by the
// embedding pipeline.
//
// The encoder itself is an external pretrained model served behind an
// OpenAI-compatible embeddings API; this package only knows how to talk to
// it. An Embedder turns batches of texts or image bytes into fixed-length
// vectors; a Provider owns the shared encoder client, creating it lazily on
// first use and releasing it on Close.
package ai

// Package openai implements the ai interfaces against any OpenAI-compatible
// embeddings endpoint serving a multimodal (CLIP-class) model, such as a
// local infinity or vLLM instance.
//
// Texts are submitted as-is; images are submitted as base64 data URIs
// through the same endpoint, which multimodal embedding servers accept in
// place of plain text input.
package openai

// Package mock provides test doubles for the ai interfaces.
//
// The default behavior is deterministic: the same input always produces
// the same unit-length vector, so tests can assert on stable values
// without a live encoder service.
package mock

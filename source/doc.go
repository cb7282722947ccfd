// Package source defines the contract between institution-specific catalogue
// exports and the canonical record shape.
//
// Each institution ships its catalogue in a different format (newline-delimited
// JSON, XML, CSV) with a different schema. A Normalizer parses one such export
// into canonical core.Record rows; an ImageArchive describes the institution's
// image-hosting convention (how to turn a record's image location into a
// fetchable URL and a flat local filename).
//
// Normalizers are selected by name through a Registry rather than a type
// hierarchy, so adding an institution means registering one implementation.
package source

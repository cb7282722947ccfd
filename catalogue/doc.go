// Package catalogue holds the canonical working table for one collection.
//
// A Collection owns the normalized records, the flat local image cache
// directory, and the columnar Dataset view the embedding pipeline maps
// over. Filtering never mutates rows away; it builds a reduced table and
// immediately rebuilds the Dataset so filtered rows cannot leak into later
// stages. The Downloaded flag is always recomputed from a directory scan,
// never tracked incrementally, so files added or removed out of band are
// picked up on the next load.
package catalogue

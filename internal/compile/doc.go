// Package compile drives verb expansion over an ordered list of author
// invocations, accumulating canonical instructions, lineage receipts,
// warnings and errors.
//
// A run is single-threaded and synchronous. Its only cross-step state is
// the value-slot counter; the output sequences are fresh per run, owned by
// the caller once returned, and reproducible byte-for-byte given identical
// inputs.
package compile

// Package codec holds the two ticket boundaries: the deterministic CBOR
// encoding used by storage, and the JSON ticket decoder that accepts both
// the canonical and the legacy player shapes.
package codec

// Package snapshot persists arena blocks.
//
// Every reference inside a block is an offset from its start, so a block can
// be written out and later adopted by arena.Open at any address. A snapshot
// is a small binary envelope around a deterministic CBOR manifest and the
// used prefix of the block:
//
//	| magic "JSS1" | version | reserved | manifest len | block len |
//	| 0..4         | 4       | 5..8     | 8..12        | 12..16    |
//	| manifest (CBOR) ...                | block[0:used] ...        |
//
// The manifest carries a sha256 digest of the block. A Sealer signs the
// manifest as a COSE Sign1 message so a reader holding the public key can
// check where the snapshot came from.
package snapshot

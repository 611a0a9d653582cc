// Package codec converts between compact JSON text and store values.
//
// Both directions are driven by explicit, fixed capacity stacks rather than
// recursion, so the depth of a document is bounded by configuration and never
// by the goroutine stack. Exceeding a capacity is reported as an error.
//
// Dump walks each object's trie depth first, children before siblings, and
// reconstructs keys in a shared buffer. Keys therefore come out in trie
// order: a key before its extensions, children before later siblings, and
// the empty key last.
//
// Parse is a table free state machine over a stack of pending grammar
// productions. Keys and strings are staged in a scratch buffer, array
// elements in a value stack, until their closing delimiter is seen.
package codec

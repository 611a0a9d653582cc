// Package store implements the JSON value model over an arena block.
//
// Objects are tries keyed one byte per level: a node's sibling chain holds the
// alternatives at one depth (in insertion order) and its child link advances
// the depth. The value for a key lives on the node reached after every byte
// of the key has been matched, so the empty key is the root node's own value.
//
// Every record is addressed by an arena.Ref. Handles (Object, Array, Node)
// pair a Ref with the Store that owns it, and operations reject handles that
// belong to a different store.
//
// With a fixed arena.Arena nothing is freed until the arena is Reset. With an
// arena.Heap, overwriting a key or element releases the previous value depth
// first: array elements, then trie nodes, then the container itself. A
// container value is owned by the key or element it was stored under, storing
// the same container in two places is not supported under the heap.
package store

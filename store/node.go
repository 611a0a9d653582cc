package store

import "github.com/forestrie/go-jsonarena/arena"

// Node is a read only handle to one trie vertex, for callers that walk an
// object's trie directly.
type Node struct {
	st  *Store
	ref arena.Ref
}

func (n Node) Ref() arena.Ref { return n.ref }

// Letter returns the node's key byte. ok is false for an unset node.
func (n Node) Letter() (letter byte, ok bool) {
	return n.st.nodeLetter(n.ref)
}

func (n Node) Sibling() (Node, bool) {
	ref := n.st.nodeSibling(n.ref)
	return Node{st: n.st, ref: ref}, ref != arena.NoRef
}

func (n Node) Child() (Node, bool) {
	ref := n.st.nodeChild(n.ref)
	return Node{st: n.st, ref: ref}, ref != arena.NoRef
}

// Value returns the data held by the node, if any.
func (n Node) Value() (Value, bool) {
	ref := n.st.nodeData(n.ref)
	if ref == arena.NoRef {
		return Value{}, false
	}
	return n.st.valueAt(ref), true
}

package store

import (
	"fmt"

	"github.com/forestrie/go-jsonarena/arena"
)

// Object is a handle to a trie of keyed values.
type Object struct {
	st  *Store
	ref arena.Ref
}

// Ref returns the offset of the object's root node.
func (o Object) Ref() arena.Ref { return o.ref }

// Store returns the store that holds the object.
func (o Object) Store() *Store { return o.st }

// Root returns the object's root node.
func (o Object) Root() Node { return Node{st: o.st, ref: o.ref} }

func (o Object) check() (*Store, error) {
	if o.st == nil {
		return nil, ErrInvalidHandle
	}
	return o.st, o.st.own(o.st, o.ref)
}

// Get returns the value stored under key.
func (o Object) Get(key string) (Value, error) {
	s, err := o.check()
	if err != nil {
		return Value{}, err
	}
	n := s.lookup(o.ref, key)
	if n == arena.NoRef {
		return Value{}, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	data := s.nodeData(n)
	if data == arena.NoRef {
		return Value{}, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	return s.valueAt(data), nil
}

// Has reports whether key holds a value.
func (o Object) Has(key string) bool {
	_, err := o.Get(key)
	return err == nil
}

// Set stores v under key, creating the path through the trie as needed. Any
// previous value under key is released.
func (o Object) Set(key string, v Value) error {
	s, err := o.check()
	if err != nil {
		return err
	}
	p, err := s.prepare(v)
	if err != nil {
		return err
	}
	n, err := s.descend(o.ref, key)
	if err != nil {
		s.discard(p)
		return err
	}
	if data := s.nodeData(n); data != arena.NoRef {
		s.overwrite(data, v, p)
		return nil
	}
	data, err := s.alloc.Alloc(s.lay.valueBytes, s.align())
	if err != nil {
		s.discard(p)
		return err
	}
	s.writeValue(data, p)
	s.setNodeData(n, data)
	return nil
}

func (o Object) SetNull(key string) error             { return o.Set(key, NullValue()) }
func (o Object) SetString(key, s string) error        { return o.Set(key, StringValue(s)) }
func (o Object) SetBool(key string, b bool) error     { return o.Set(key, BoolValue(b)) }
func (o Object) SetFloat(key string, f float32) error { return o.Set(key, FloatValue(f)) }
func (o Object) SetObject(key string, c Object) error { return o.Set(key, ObjectValue(c)) }
func (o Object) SetArray(key string, a Array) error   { return o.Set(key, ArrayValue(a)) }

func (o Object) GetString(key string) (string, error) {
	v, err := o.Get(key)
	if err != nil {
		return "", err
	}
	return v.Str()
}

func (o Object) GetBool(key string) (bool, error) {
	v, err := o.Get(key)
	if err != nil {
		return false, err
	}
	return v.Bool()
}

func (o Object) GetFloat(key string) (float32, error) {
	v, err := o.Get(key)
	if err != nil {
		return 0, err
	}
	return v.Float()
}

func (o Object) GetObject(key string) (Object, error) {
	v, err := o.Get(key)
	if err != nil {
		return Object{}, err
	}
	return v.Object()
}

func (o Object) GetArray(key string) (Array, error) {
	v, err := o.Get(key)
	if err != nil {
		return Array{}, err
	}
	return v.Array()
}

// lookup returns the node addressed by key, or NoRef.
func (s *Store) lookup(root arena.Ref, key string) arena.Ref {
	n := root
	for i := 0; i < len(key); i++ {
		n = s.chainFind(n, key[i])
		if n == arena.NoRef {
			return arena.NoRef
		}
		n = s.nodeChild(n)
		if n == arena.NoRef {
			return arena.NoRef
		}
	}
	return n
}

func (s *Store) chainFind(head arena.Ref, c byte) arena.Ref {
	for n := head; n != arena.NoRef; n = s.nodeSibling(n) {
		if l, ok := s.nodeLetter(n); ok && l == c {
			return n
		}
	}
	return arena.NoRef
}

// descend is lookup that creates missing siblings and children.
func (s *Store) descend(root arena.Ref, key string) (arena.Ref, error) {
	n := root
	for i := 0; i < len(key); i++ {
		var err error
		if n, err = s.chainFindOrAdd(n, key[i]); err != nil {
			return arena.NoRef, err
		}
		child := s.nodeChild(n)
		if child == arena.NoRef {
			if child, err = s.newNode(0, false); err != nil {
				return arena.NoRef, err
			}
			s.setNodeChild(n, child)
		}
		n = child
	}
	return n, nil
}

// chainFindOrAdd returns the node for c in the chain starting at head. An
// unset head takes the letter in place, otherwise a new sibling is appended.
func (s *Store) chainFindOrAdd(head arena.Ref, c byte) (arena.Ref, error) {
	if _, ok := s.nodeLetter(head); !ok {
		s.setNodeLetter(head, c)
		return head, nil
	}
	n := head
	for {
		if l, ok := s.nodeLetter(n); ok && l == c {
			return n, nil
		}
		next := s.nodeSibling(n)
		if next == arena.NoRef {
			break
		}
		n = next
	}
	sib, err := s.newNode(c, true)
	if err != nil {
		return arena.NoRef, err
	}
	s.setNodeSibling(n, sib)
	return sib, nil
}

// Valid reports whether o refers to an object in some store.
func (o Object) Valid() bool { return o.st != nil && o.ref != arena.NoRef }

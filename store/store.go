package store

import (
	"fmt"
	"math"

	"github.com/forestrie/go-jsonarena/arena"
)

// Store builds and mutates JSON values inside an allocator's block.
//
// A Store is not safe for concurrent use.
type Store struct {
	alloc arena.Allocator
	lay   layout
}

// New returns a Store that allocates from alloc. The allocator's reference
// width determines the record layouts.
func New(alloc arena.Allocator) *Store {
	return &Store{alloc: alloc, lay: newLayout(alloc.Width())}
}

// Allocator returns the allocator backing the store.
func (s *Store) Allocator() arena.Allocator { return s.alloc }

// NewObject creates an empty object: a single root node with no letter.
func (s *Store) NewObject() (Object, error) {
	ref, err := s.newNode(0, false)
	if err != nil {
		return Object{}, err
	}
	return Object{st: s, ref: ref}, nil
}

// NewArray creates an array of length slots, all Unset.
func (s *Store) NewArray(length int) (Array, error) {
	if length < 0 || uint64(length) > uint64(s.lay.w.MaxValue()) {
		return Array{}, fmt.Errorf("%w: array length %d", ErrTooLarge, length)
	}
	elemBytes := uint64(length) * uint64(s.lay.valueBytes)
	if elemBytes > math.MaxUint32 {
		return Array{}, fmt.Errorf("%w: array length %d", ErrTooLarge, length)
	}

	ref, err := s.alloc.Alloc(s.lay.arrayBytes, s.align())
	if err != nil {
		return Array{}, err
	}
	var elems arena.Ref
	if length > 0 {
		elems, err = s.alloc.Alloc(uint32(elemBytes), s.align())
		if err != nil {
			s.free(ref, s.lay.arrayBytes)
			return Array{}, err
		}
	}
	s.lay.w.Put(s.alloc.Bytes()[ref:], uint32(length))
	s.setField(ref, 1, elems)
	return Array{st: s, ref: ref}, nil
}

// SetRoot records o as the document root in the allocator header.
func (s *Store) SetRoot(o Object) error {
	if err := s.own(o.st, o.ref); err != nil {
		return err
	}
	s.alloc.SetRoot(o.ref)
	return nil
}

// Root returns the document root recorded in the allocator header.
func (s *Store) Root() (Object, bool) {
	ref := s.alloc.Root()
	if ref == arena.NoRef {
		return Object{}, false
	}
	return Object{st: s, ref: ref}, true
}

func (s *Store) own(st *Store, ref arena.Ref) error {
	if st == nil || ref == arena.NoRef {
		return ErrInvalidHandle
	}
	if st != s {
		return ErrForeignHandle
	}
	return nil
}

func (s *Store) free(ref arena.Ref, size uint32) {
	if r, ok := s.alloc.(arena.Reclaimer); ok {
		r.Free(ref, size)
	}
}

// prepare validates v and allocates whatever v needs outside its value
// record (the bytes of a string).
func (s *Store) prepare(v Value) (payload, error) {
	p := payload{kind: v.kind}
	switch v.kind {
	case KindNull:
	case KindBool:
		if v.b {
			p.a = 1
		}
	case KindFloat:
		p.a = math.Float32bits(v.f)
	case KindString:
		n := len(v.s)
		if uint64(n) > uint64(s.lay.w.MaxValue()) {
			return payload{}, fmt.Errorf("%w: string of %d bytes", ErrTooLarge, n)
		}
		if n == 0 {
			return p, nil
		}
		ref, err := s.alloc.Alloc(uint32(n), 1)
		if err != nil {
			return payload{}, err
		}
		copy(s.alloc.Bytes()[ref:], v.s)
		p.a, p.b = uint32(ref), uint32(n)
	case KindObject, KindArray:
		if err := s.own(v.st, v.ref); err != nil {
			return payload{}, err
		}
		p.a = uint32(v.ref)
	default:
		return payload{}, fmt.Errorf("%w: cannot store %s", ErrInvalidType, v.kind)
	}
	return p, nil
}

// discard undoes prepare when the value could not be stored. Containers
// belong to the caller and are left alone.
func (s *Store) discard(p payload) {
	if p.kind == KindString && p.b > 0 {
		s.free(arena.Ref(p.a), p.b)
	}
}

// overwrite replaces the value held in the record at ref, releasing the old
// payload first. Parts of the old value that v still holds are kept.
func (s *Store) overwrite(ref arena.Ref, v Value, p payload) {
	s.releasePayload(ref, v)
	s.writeValue(ref, p)
}

package store

import (
	"math"

	"github.com/forestrie/go-jsonarena/arena"
)

// Record layouts, w is the arena reference width in bytes.
//
//	node:  | state | letter | ... | child  | sibling | data  |
//	       | 0     | 1      |     | w..2w  | 2w..3w  | 3w..4w|
//
//	value: | kind  | ...    | a      | b      |
//	       | 0     |        | w..2w  | 2w..3w |
//
//	array: | length | elements |
//	       | 0..w   | w..2w    |
//
// A float value stores its 32 bits at [w, w+4) which, for w=2, spans a and b.
// Strings store (bytes ref, length) in (a, b). Objects store their root node
// in a and arrays their array record in a.
type layout struct {
	w          arena.RefWidth
	nodeBytes  uint32
	valueBytes uint32
	arrayBytes uint32
}

const (
	nodeStateUnset = 0
	nodeStateKey   = 1
)

func newLayout(w arena.RefWidth) layout {
	n := uint32(w)
	return layout{
		w:          w,
		nodeBytes:  4 * n,
		valueBytes: 3 * n,
		arrayBytes: 2 * n,
	}
}

func (s *Store) align() uint32 { return uint32(s.lay.w) }

func (s *Store) rec(ref arena.Ref, n uint32) []byte {
	return s.alloc.Bytes()[ref : uint32(ref)+n]
}

func (s *Store) field(ref arena.Ref, i uint32) arena.Ref {
	w := uint32(s.lay.w)
	return s.lay.w.GetRef(s.alloc.Bytes()[uint32(ref)+i*w:])
}

func (s *Store) setField(ref arena.Ref, i uint32, v arena.Ref) {
	w := uint32(s.lay.w)
	s.lay.w.PutRef(s.alloc.Bytes()[uint32(ref)+i*w:], v)
}

// node records

func (s *Store) newNode(letter byte, keyed bool) (arena.Ref, error) {
	ref, err := s.alloc.Alloc(s.lay.nodeBytes, s.align())
	if err != nil {
		return arena.NoRef, err
	}
	rec := s.rec(ref, s.lay.nodeBytes)
	if keyed {
		rec[0] = nodeStateKey
		rec[1] = letter
	}
	return ref, nil
}

func (s *Store) nodeLetter(ref arena.Ref) (byte, bool) {
	rec := s.rec(ref, 2)
	return rec[1], rec[0] == nodeStateKey
}

func (s *Store) setNodeLetter(ref arena.Ref, letter byte) {
	rec := s.rec(ref, 2)
	rec[0] = nodeStateKey
	rec[1] = letter
}

func (s *Store) nodeChild(ref arena.Ref) arena.Ref   { return s.field(ref, 1) }
func (s *Store) nodeSibling(ref arena.Ref) arena.Ref { return s.field(ref, 2) }
func (s *Store) nodeData(ref arena.Ref) arena.Ref    { return s.field(ref, 3) }

func (s *Store) setNodeChild(ref, child arena.Ref)     { s.setField(ref, 1, child) }
func (s *Store) setNodeSibling(ref, sibling arena.Ref) { s.setField(ref, 2, sibling) }
func (s *Store) setNodeData(ref, data arena.Ref)       { s.setField(ref, 3, data) }

// array records

func (s *Store) arrayLen(ref arena.Ref) uint32 {
	return s.lay.w.Get(s.alloc.Bytes()[ref:])
}

func (s *Store) arrayElements(ref arena.Ref) arena.Ref { return s.field(ref, 1) }

func (s *Store) elementRef(arr arena.Ref, i uint32) arena.Ref {
	return s.arrayElements(arr) + arena.Ref(i*s.lay.valueBytes)
}

// value records

// payload is the encoded form of a Value, ready to be written into a value
// record.
type payload struct {
	kind Kind
	a    uint32
	b    uint32
}

func (s *Store) writeValue(ref arena.Ref, p payload) {
	rec := s.rec(ref, s.lay.valueBytes)
	clear(rec)
	rec[0] = byte(p.kind)
	w := uint32(s.lay.w)
	switch p.kind {
	case KindBool, KindFloat:
		writeU32BE(rec[w:w+4], p.a)
	case KindString, KindObject, KindArray:
		s.lay.w.Put(rec[w:], p.a)
		s.lay.w.Put(rec[2*w:], p.b)
	}
}

func (s *Store) readPayload(ref arena.Ref) payload {
	rec := s.rec(ref, s.lay.valueBytes)
	w := uint32(s.lay.w)
	p := payload{kind: Kind(rec[0])}
	switch p.kind {
	case KindBool, KindFloat:
		p.a = readU32BE(rec[w : w+4])
	case KindString, KindObject, KindArray:
		p.a = s.lay.w.Get(rec[w:])
		p.b = s.lay.w.Get(rec[2*w:])
	}
	return p
}

func (s *Store) valueAt(ref arena.Ref) Value {
	p := s.readPayload(ref)
	switch p.kind {
	case KindNull:
		return NullValue()
	case KindBool:
		return BoolValue(p.a != 0)
	case KindFloat:
		return FloatValue(math.Float32frombits(p.a))
	case KindString:
		if p.b == 0 {
			return StringValue("")
		}
		return StringValue(string(s.rec(arena.Ref(p.a), p.b)))
	case KindObject:
		return Value{kind: KindObject, st: s, ref: arena.Ref(p.a)}
	case KindArray:
		return Value{kind: KindArray, st: s, ref: arena.Ref(p.a)}
	default:
		return Value{}
	}
}

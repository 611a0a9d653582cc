package codec

import (
	"fmt"
	"math"
	"strconv"

	"github.com/forestrie/go-jsonarena/store"
)

// dumpFrame is an open object or array.
type dumpFrame struct {
	kind store.Kind
	root store.Node
	arr  store.Array
	// base is where this object's keys start in the key buffer.
	base int
	// floor is the pending node count when the object was opened, the
	// object is exhausted when the count falls back to it.
	floor   int
	index   int
	count   int
	closing bool
}

type dumper struct {
	out   []byte
	key   []byte
	nodes stack[store.Node]
	pos   stack[int]
	open  stack[dumpFrame]
}

// Dump returns o as compact JSON.
func Dump(o store.Object, opts ...Option) ([]byte, error) {
	return AppendValue(nil, store.ObjectValue(o), opts...)
}

// AppendDump appends o as compact JSON to dst.
func AppendDump(dst []byte, o store.Object, opts ...Option) ([]byte, error) {
	return AppendValue(dst, store.ObjectValue(o), opts...)
}

// AppendValue appends any value as compact JSON to dst. Unset array slots are
// written as null. On error dst is returned unchanged.
func AppendValue(dst []byte, v store.Value, opts ...Option) ([]byte, error) {
	o := newOptions(opts...)
	d := &dumper{
		out:   dst,
		key:   make([]byte, o.maxKeyBytes),
		nodes: newStack[store.Node]("node", o.maxPending),
		pos:   newStack[int]("key position", o.maxPending),
		open:  newStack[dumpFrame]("container", o.maxDepth),
	}
	if err := d.value(v, 0); err != nil {
		return dst, err
	}
	for d.open.len() > 0 {
		if err := d.step(); err != nil {
			return dst, err
		}
	}
	return d.out, nil
}

func (d *dumper) pushNode(n store.Node, pos int) error {
	if err := d.nodes.push(n); err != nil {
		return err
	}
	return d.pos.push(pos)
}

// step advances the innermost open container by one node or element.
func (d *dumper) step() error {
	f := d.open.peek()

	if f.kind == store.KindArray {
		if f.index >= f.arr.Len() {
			d.out = append(d.out, ']')
			d.open.pop()
			return nil
		}
		v, err := f.arr.Get(f.index)
		if err != nil {
			return err
		}
		if f.index > 0 {
			d.out = append(d.out, ',')
		}
		f.index++
		return d.value(v, f.base)
	}

	if d.nodes.len() > f.floor {
		n := d.nodes.pop()
		pos := d.pos.pop()
		if letter, ok := n.Letter(); ok {
			if pos >= len(d.key) {
				return fmt.Errorf("%w: %d bytes", ErrKeyTooLong, len(d.key))
			}
			d.key[pos] = letter
			if sib, ok := n.Sibling(); ok {
				if err := d.pushNode(sib, pos); err != nil {
					return err
				}
			}
			if child, ok := n.Child(); ok {
				if err := d.pushNode(child, pos+1); err != nil {
					return err
				}
			}
		}
		if n.Ref() == f.root.Ref() {
			return nil
		}
		if v, ok := n.Value(); ok {
			return d.member(f, d.key[f.base:pos], v, pos+1)
		}
		return nil
	}

	// the root node's own value is the empty key, written last
	if !f.closing {
		f.closing = true
		if v, ok := f.root.Value(); ok {
			return d.member(f, nil, v, f.base)
		}
	}
	d.out = append(d.out, '}')
	d.open.pop()
	return nil
}

func (d *dumper) member(f *dumpFrame, key []byte, v store.Value, base int) error {
	if f.count > 0 {
		d.out = append(d.out, ',')
	}
	f.count++
	d.out = appendQuoted(d.out, key)
	d.out = append(d.out, ':')
	return d.value(v, base)
}

// value writes a scalar, or opens a container for step to walk.
func (d *dumper) value(v store.Value, base int) error {
	switch v.Kind() {
	case store.KindUnset, store.KindNull:
		d.out = append(d.out, "null"...)
	case store.KindBool:
		b, _ := v.Bool()
		d.out = strconv.AppendBool(d.out, b)
	case store.KindFloat:
		f, _ := v.Float()
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return fmt.Errorf("%w: %v", ErrUnsupportedFloat, f)
		}
		d.out = strconv.AppendFloat(d.out, float64(f), 'g', -1, 32)
	case store.KindString:
		s, _ := v.Str()
		d.out = appendQuoted(d.out, s)
	case store.KindObject:
		o, _ := v.Object()
		if !o.Valid() {
			return store.ErrInvalidHandle
		}
		if err := d.open.push(dumpFrame{kind: store.KindObject, root: o.Root(), base: base, floor: d.nodes.len()}); err != nil {
			return err
		}
		d.out = append(d.out, '{')
		return d.pushNode(o.Root(), base)
	case store.KindArray:
		a, _ := v.Array()
		if !a.Valid() {
			return store.ErrInvalidHandle
		}
		if err := d.open.push(dumpFrame{kind: store.KindArray, arr: a, base: base}); err != nil {
			return err
		}
		d.out = append(d.out, '[')
	default:
		return fmt.Errorf("%w: %s", store.ErrInvalidType, v.Kind())
	}
	return nil
}

func appendQuoted[T string | []byte](dst []byte, s T) []byte {
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			dst = append(dst, '\\', c)
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			dst = append(dst, c)
		}
	}
	return append(dst, '"')
}

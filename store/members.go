package store

import (
	"github.com/forestrie/go-jsonarena/arena"
)

// Member is one key and its value.
type Member struct {
	Key   string
	Value Value
}

// Members lists the object's keys and values in serialization order: a
// depth first walk that visits children before siblings, with the empty key
// last.
func (o Object) Members() ([]Member, error) {
	s, err := o.check()
	if err != nil {
		return nil, err
	}

	type frame struct {
		ref   arena.Ref
		depth int
	}
	var (
		out   []Member
		key   []byte
		stack = []frame{{ref: o.ref}}
	)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// the data on a node is the value of the key above it
		if f.depth > 0 {
			if data := s.nodeData(f.ref); data != arena.NoRef {
				out = append(out, Member{Key: string(key[:f.depth]), Value: s.valueAt(data)})
			}
		}

		letter, ok := s.nodeLetter(f.ref)
		if !ok {
			continue
		}
		key = append(key[:f.depth], letter)
		if sib := s.nodeSibling(f.ref); sib != arena.NoRef {
			stack = append(stack, frame{ref: sib, depth: f.depth})
		}
		if child := s.nodeChild(f.ref); child != arena.NoRef {
			stack = append(stack, frame{ref: child, depth: f.depth + 1})
		}
	}
	if data := s.nodeData(o.ref); data != arena.NoRef {
		out = append(out, Member{Key: "", Value: s.valueAt(data)})
	}
	return out, nil
}

// Equal reports whether a and b hold the same JSON value. Objects compare by
// their members in serialization order, so a and b may live in different
// stores. A pair of containers met again inside itself compares equal, so
// self-containing values terminate.
func Equal(a, b Value) (bool, error) {
	type pair struct{ a, b Value }
	type visit struct {
		ast, bst *Store
		aref     arena.Ref
		bref     arena.Ref
	}
	seen := map[visit]bool{}
	work := []pair{{a, b}}
	for len(work) > 0 {
		p := work[len(work)-1]
		work = work[:len(work)-1]

		if p.a.kind != p.b.kind {
			return false, nil
		}
		if p.a.isContainer() {
			k := visit{ast: p.a.st, bst: p.b.st, aref: p.a.ref, bref: p.b.ref}
			if seen[k] {
				continue
			}
			seen[k] = true
		}
		switch p.a.kind {
		case KindString:
			if p.a.s != p.b.s {
				return false, nil
			}
		case KindBool:
			if p.a.b != p.b.b {
				return false, nil
			}
		case KindFloat:
			if p.a.f != p.b.f {
				return false, nil
			}
		case KindObject:
			ma, err := Object{st: p.a.st, ref: p.a.ref}.Members()
			if err != nil {
				return false, err
			}
			mb, err := Object{st: p.b.st, ref: p.b.ref}.Members()
			if err != nil {
				return false, err
			}
			if len(ma) != len(mb) {
				return false, nil
			}
			for i := range ma {
				if ma[i].Key != mb[i].Key {
					return false, nil
				}
				work = append(work, pair{ma[i].Value, mb[i].Value})
			}
		case KindArray:
			aa, ab := Array{st: p.a.st, ref: p.a.ref}, Array{st: p.b.st, ref: p.b.ref}
			if _, err := aa.check(); err != nil {
				return false, err
			}
			if _, err := ab.check(); err != nil {
				return false, err
			}
			n := aa.Len()
			if n != ab.Len() {
				return false, nil
			}
			for i := 0; i < n; i++ {
				va, _ := aa.Get(i)
				vb, _ := ab.Get(i)
				work = append(work, pair{va, vb})
			}
		}
	}
	return true, nil
}

package store

import "github.com/forestrie/go-jsonarena/arena"

type releaseOp uint8

const (
	// free a block of known size
	releaseBlock releaseOp = iota
	// release whatever the value record at ref points to
	releasePayload
	// release a node, its data, its child and its later siblings
	releaseNode
	// release an array record and its elements
	releaseArray
)

type releaseItem struct {
	op   releaseOp
	ref  arena.Ref
	size uint32
}

// Release frees the storage held by a container value. It is a no-op for
// scalars and for allocators that cannot free.
func (s *Store) Release(v Value) error {
	var item releaseItem
	switch v.kind {
	case KindObject:
		item = releaseItem{op: releaseNode, ref: v.ref}
	case KindArray:
		item = releaseItem{op: releaseArray, ref: v.ref}
	default:
		return nil
	}
	if err := s.own(v.st, v.ref); err != nil {
		return err
	}
	s.release(item, Value{})
	return nil
}

// releasePayload releases what the value record at rec points to, except
// for keep and every container reachable from it.
func (s *Store) releasePayload(rec arena.Ref, keep Value) {
	s.release(releaseItem{op: releasePayload, ref: rec}, keep)
}

// release runs a depth first walk over an explicit work stack. Blocks are
// pushed before the items they own so they are freed after them. Containers
// reachable from keep are left alone.
func (s *Store) release(root releaseItem, keep Value) {
	r, ok := s.alloc.(arena.Reclaimer)
	if !ok {
		return
	}
	seen := map[arena.Ref]bool{}
	if keep.isContainer() {
		s.markReachable(keep, seen)
	}
	work := []releaseItem{root}
	for len(work) > 0 {
		it := work[len(work)-1]
		work = work[:len(work)-1]

		switch it.op {
		case releaseBlock:
			r.Free(it.ref, it.size)

		case releasePayload:
			p := s.readPayload(it.ref)
			switch p.kind {
			case KindString:
				work = append(work, releaseItem{op: releaseBlock, ref: arena.Ref(p.a), size: p.b})
			case KindObject:
				work = append(work, releaseItem{op: releaseNode, ref: arena.Ref(p.a)})
			case KindArray:
				work = append(work, releaseItem{op: releaseArray, ref: arena.Ref(p.a)})
			}

		case releaseNode:
			if it.ref == arena.NoRef || seen[it.ref] {
				continue
			}
			seen[it.ref] = true
			work = append(work, releaseItem{op: releaseBlock, ref: it.ref, size: s.lay.nodeBytes})
			if data := s.nodeData(it.ref); data != arena.NoRef {
				work = append(work,
					releaseItem{op: releaseBlock, ref: data, size: s.lay.valueBytes},
					releaseItem{op: releasePayload, ref: data})
			}
			if sib := s.nodeSibling(it.ref); sib != arena.NoRef {
				work = append(work, releaseItem{op: releaseNode, ref: sib})
			}
			if child := s.nodeChild(it.ref); child != arena.NoRef {
				work = append(work, releaseItem{op: releaseNode, ref: child})
			}

		case releaseArray:
			if it.ref == arena.NoRef || seen[it.ref] {
				continue
			}
			seen[it.ref] = true
			work = append(work, releaseItem{op: releaseBlock, ref: it.ref, size: s.lay.arrayBytes})
			n := s.arrayLen(it.ref)
			if n == 0 {
				continue
			}
			work = append(work, releaseItem{op: releaseBlock, ref: s.arrayElements(it.ref), size: n * s.lay.valueBytes})
			for i := n; i > 0; i-- {
				work = append(work, releaseItem{op: releasePayload, ref: s.elementRef(it.ref, i-1)})
			}
		}
	}
}

// markReachable adds v and every object root node and array record reachable
// from it to seen.
func (s *Store) markReachable(v Value, seen map[arena.Ref]bool) {
	var work []releaseItem
	push := func(kind Kind, ref arena.Ref) {
		switch kind {
		case KindObject:
			work = append(work, releaseItem{op: releaseNode, ref: ref})
		case KindArray:
			work = append(work, releaseItem{op: releaseArray, ref: ref})
		}
	}
	push(v.kind, v.ref)
	for len(work) > 0 {
		it := work[len(work)-1]
		work = work[:len(work)-1]
		if it.ref == arena.NoRef || seen[it.ref] {
			continue
		}
		seen[it.ref] = true

		if it.op == releaseArray {
			for i := uint32(0); i < s.arrayLen(it.ref); i++ {
				p := s.readPayload(s.elementRef(it.ref, i))
				push(p.kind, arena.Ref(p.a))
			}
			continue
		}
		// tries are trees, only their root nodes need marking
		nodes := []arena.Ref{it.ref}
		for len(nodes) > 0 {
			n := nodes[len(nodes)-1]
			nodes = nodes[:len(nodes)-1]
			if data := s.nodeData(n); data != arena.NoRef {
				p := s.readPayload(data)
				push(p.kind, arena.Ref(p.a))
			}
			if sib := s.nodeSibling(n); sib != arena.NoRef {
				nodes = append(nodes, sib)
			}
			if child := s.nodeChild(n); child != arena.NoRef {
				nodes = append(nodes, child)
			}
		}
	}
}

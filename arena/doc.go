package arena

/*

# Arena allocation for go-jsonarena

This package provides the allocators that back every JSON document record. A
document is a single contiguous byte block, and every reference inside it is
a byte offset from the start of that block (a Ref). Nothing stores a Go
pointer, so a block can be copied, persisted and re-opened elsewhere without
any fix ups.

Two allocators are provided:

- Arena: a bump allocator over a caller supplied, fixed size block. Nothing is
  freed individually. Reset rewinds the cursor and reclaims everything.
- Heap: the dynamic fallback. The block grows on demand and released regions
  are recycled through exact size free lists (see Reclaimer).

## Layout

Offset zero always holds the block header:

	| magic | version | width | reserved | top    | root    |
	| 0   3 | 4       | 5     | 6      7 | 8   11 | 12   15 |

top is the first unallocated byte and root is the Ref of the document root
object (NoRef if none has been recorded). Because the header occupies offset
zero, no allocation can ever return Ref 0, which is what makes zero safe as
the "no reference" value.

## Reference width

References are stored using a configurable width. RefWidth16 (the default)
bounds a block at 64KiB, RefWidth32 at 4GiB. Record layouts elsewhere are
expressed in multiples of the width.

*/

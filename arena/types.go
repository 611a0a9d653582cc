package arena

import "errors"

// Ref is a byte offset from the start of an allocator's block.
type Ref uint32

// NoRef is the zero offset, reserved for the header.
const NoRef = Ref(0)

// RefWidth is the number of bytes used to store a Ref (and record lengths)
// inside the block.
type RefWidth uint8

const (
	RefWidth16 RefWidth = 2
	RefWidth32 RefWidth = 4

	DefaultRefWidth = RefWidth16
)

var (
	ErrAllocationFailure = errors.New("arena: allocation failure")
	ErrBadAlignment      = errors.New("arena: alignment must be a power of two")
	ErrBadRefWidth       = errors.New("arena: reference width must be 2 or 4")
	ErrBlockTooSmall     = errors.New("arena: block too small for the header")
	ErrBlockTooLarge     = errors.New("arena: block exceeds the reference width")
	ErrBadMagic          = errors.New("arena: header magic invalid")
	ErrBadVersion        = errors.New("arena: header version invalid")
	ErrBadTop            = errors.New("arena: header top outside the block")
)

// Valid reports whether w is a supported width.
func (w RefWidth) Valid() bool {
	return w == RefWidth16 || w == RefWidth32
}

// MaxBlockBytes returns the largest block a width can address.
func (w RefWidth) MaxBlockBytes() uint64 {
	return uint64(1) << (8 * uint64(w))
}

// MaxValue returns the largest length or offset that fits in the width.
func (w RefWidth) MaxValue() uint32 {
	if w == RefWidth16 {
		return uint32(^uint16(0))
	}
	return ^uint32(0)
}

// Get reads a width sized value from b.
func (w RefWidth) Get(b []byte) uint32 {
	if w == RefWidth16 {
		return uint32(readU16BE(b))
	}
	return readU32BE(b)
}

// Put writes a width sized value into b. The caller must ensure v fits.
func (w RefWidth) Put(b []byte, v uint32) {
	if w == RefWidth16 {
		writeU16BE(b, uint16(v))
		return
	}
	writeU32BE(b, v)
}

// GetRef reads a Ref stored at b.
func (w RefWidth) GetRef(b []byte) Ref { return Ref(w.Get(b)) }

// PutRef stores r at b.
func (w RefWidth) PutRef(b []byte, r Ref) { w.Put(b, uint32(r)) }

// Stats reports allocator occupancy. Used counts bytes consumed by the bump
// cursor including padding, Live counts bytes handed out and not yet freed.
type Stats struct {
	Capacity uint64
	Used     uint64
	Live     uint64
	Allocs   uint64
	Frees    uint64
	Failures uint64
}

// Allocator is implemented by Arena and Heap.
//
// The slices returned by Bytes and Used are only valid until the next call to
// Alloc, as a Heap may grow (and so move) its block.
type Allocator interface {
	Alloc(size, align uint32) (Ref, error)
	Bytes() []byte
	Used() []byte
	Width() RefWidth
	Root() Ref
	SetRoot(r Ref)
	Stats() Stats
}

// Reclaimer is implemented by allocators that support freeing individual
// regions. The fixed Arena deliberately does not.
type Reclaimer interface {
	Free(r Ref, size uint32)
}

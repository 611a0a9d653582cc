package arena

import (
	"fmt"

	"github.com/datatrails/go-datatrails-common/logger"
)

const defaultHeapReserve = 1024

// Heap is the dynamic allocation fallback used when no fixed arena is
// configured. Its block grows on demand (up to what the reference width can
// address) and freed regions are recycled by exact size.
//
// Because every record is addressed by offset, growing the block and copying
// it is invisible to holders of a Ref. Slices obtained from Bytes are not.
type Heap struct {
	block []byte
	width RefWidth
	top   uint32
	root  Ref
	free  map[uint32][]Ref
	log   logger.Logger

	live     uint64
	allocs   uint64
	frees    uint64
	failures uint64
}

// NewHeap creates an empty heap.
func NewHeap(opts ...Option) (*Heap, error) {
	o := newOptions(opts...)
	if !o.width.Valid() {
		return nil, ErrBadRefWidth
	}
	reserve := uint64(o.reserve)
	if reserve == 0 {
		reserve = defaultHeapReserve
	}
	reserve = max(reserve, HeaderBytesV1)
	reserve = min(reserve, o.width.MaxBlockBytes())

	h := &Heap{
		block: make([]byte, reserve),
		width: o.width,
		top:   HeaderBytesV1,
		free:  map[uint32][]Ref{},
		log:   o.log,
	}
	_ = EncodeHeaderV1(h.block, HeaderV1{Width: h.width, Top: h.top})
	return h, nil
}

// Alloc returns a zero filled region of size bytes, preferring a previously
// freed region of exactly that size.
func (h *Heap) Alloc(size, align uint32) (Ref, error) {
	if err := checkAlign(align); err != nil {
		return NoRef, err
	}
	if size == 0 {
		return NoRef, nil
	}

	if r, ok := h.reuse(size, align); ok {
		h.live += uint64(size)
		h.allocs++
		return r, nil
	}

	start := alignUp(uint64(h.top), align)
	end := start + uint64(size)
	limit := h.width.MaxBlockBytes()
	if end > limit {
		h.failures++
		return NoRef, fmt.Errorf("%w: requested %d bytes, heap limit %d reached", ErrAllocationFailure, size, limit)
	}
	if end > uint64(len(h.block)) {
		h.grow(end)
	}

	padding := start - uint64(h.top)
	clear(h.block[start:end])
	h.top = uint32(end)
	writeU32BE(h.block[8:12], h.top)
	h.live += uint64(size)
	h.allocs++

	if h.log != nil {
		h.log.Debugf("heap: requested=%d align=%d padding=%d block=%d top=%d",
			size, align, padding, len(h.block), h.top)
	}
	return Ref(start), nil
}

func (h *Heap) reuse(size, align uint32) (Ref, bool) {
	refs := h.free[size]
	for i := len(refs) - 1; i >= 0; i-- {
		if uint32(refs[i])&(align-1) != 0 {
			continue
		}
		r := refs[i]
		h.free[size] = append(refs[:i], refs[i+1:]...)
		return r, true
	}
	return NoRef, false
}

func (h *Heap) grow(need uint64) {
	n := max(uint64(len(h.block))*2, need)
	n = min(n, h.width.MaxBlockBytes())
	block := make([]byte, n)
	copy(block, h.block[:h.top])
	h.block = block
}

// Free releases a region previously returned by Alloc. The region is zero
// filled and becomes available to later allocations of the same size.
func (h *Heap) Free(r Ref, size uint32) {
	if r == NoRef || size == 0 {
		return
	}
	clear(h.block[r : uint32(r)+size])
	h.free[size] = append(h.free[size], r)
	h.live -= uint64(size)
	h.frees++
}

func (h *Heap) Bytes() []byte { return h.block }

func (h *Heap) Width() RefWidth { return h.width }

func (h *Heap) Root() Ref { return h.root }

func (h *Heap) SetRoot(r Ref) {
	h.root = r
	writeU32BE(h.block[12:16], uint32(r))
}

// Used returns the block prefix that holds the header and every allocation.
func (h *Heap) Used() []byte { return h.block[:h.top] }

func (h *Heap) Stats() Stats {
	return Stats{
		Capacity: uint64(len(h.block)),
		Used:     uint64(h.top),
		Live:     h.live,
		Allocs:   h.allocs,
		Frees:    h.frees,
		Failures: h.failures,
	}
}

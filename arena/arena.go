package arena

import (
	"fmt"

	"github.com/datatrails/go-datatrails-common/logger"
)

// Arena is a bump allocator over a fixed, caller supplied block.
//
// It is not safe for concurrent use. Individual regions are never freed; use
// Reset to reclaim the whole block.
type Arena struct {
	block []byte
	width RefWidth
	top   uint32
	root  Ref
	log   logger.Logger

	live     uint64
	allocs   uint64
	failures uint64
}

// New configures an arena over block. Any previous content of block is
// discarded.
func New(block []byte, opts ...Option) (*Arena, error) {
	o := newOptions(opts...)
	if err := checkBlock(block, o.width); err != nil {
		return nil, err
	}
	a := &Arena{
		block: block,
		width: o.width,
		log:   o.log,
	}
	a.Reset()
	return a, nil
}

// Open adopts a block that already carries a header, for example one restored
// from a snapshot. Allocation resumes at the recorded top.
func Open(block []byte, opts ...Option) (*Arena, error) {
	o := newOptions(opts...)
	h, ok, err := DecodeHeaderV1(block)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: block is not initialized", ErrBadMagic)
	}
	if err := checkBlock(block, h.Width); err != nil {
		return nil, err
	}
	a := &Arena{
		block: block,
		width: h.Width,
		top:   h.Top,
		root:  h.Root,
		log:   o.log,
		live:  uint64(h.Top - HeaderBytesV1),
	}
	return a, nil
}

func checkBlock(block []byte, w RefWidth) error {
	if !w.Valid() {
		return ErrBadRefWidth
	}
	if len(block) < HeaderBytesV1 {
		return ErrBlockTooSmall
	}
	if uint64(len(block)) > w.MaxBlockBytes() {
		return fmt.Errorf("%w: %d bytes, width %d", ErrBlockTooLarge, len(block), w)
	}
	return nil
}

// Reset rewinds the arena to empty without reconfiguring it. Every Ref
// previously returned becomes invalid.
func (a *Arena) Reset() {
	a.top = HeaderBytesV1
	a.root = NoRef
	a.live = 0
	a.writeHeader()
}

func (a *Arena) writeHeader() {
	// checkBlock guarantees the header fits and the width is valid.
	_ = EncodeHeaderV1(a.block, HeaderV1{Width: a.width, Top: a.top, Root: a.root})
}

// Alloc reserves size bytes aligned to align (relative to the block start)
// and returns the offset of the zero filled region.
//
// Zero sized requests consume nothing and return NoRef.
func (a *Arena) Alloc(size, align uint32) (Ref, error) {
	if err := checkAlign(align); err != nil {
		return NoRef, err
	}
	if size == 0 {
		return NoRef, nil
	}

	start := alignUp(uint64(a.top), align)
	end := start + uint64(size)
	if end > uint64(len(a.block)) {
		a.failures++
		if a.log != nil {
			a.log.Debugf("arena: requested=%d align=%d free=%d: out of memory", size, align, a.Available())
		}
		return NoRef, fmt.Errorf("%w: requested %d bytes, %d free", ErrAllocationFailure, size, a.Available())
	}

	padding := start - uint64(a.top)
	clear(a.block[start:end])
	a.top = uint32(end)
	writeU32BE(a.block[8:12], a.top)
	a.live += uint64(size)
	a.allocs++

	if a.log != nil {
		a.log.Debugf("arena: requested=%d align=%d padding=%d free=%d top=%d",
			size, align, padding, a.Available(), a.top)
	}
	return Ref(start), nil
}

// Bytes returns the whole block.
func (a *Arena) Bytes() []byte { return a.block }

// Used returns the block prefix that holds the header and every allocation.
func (a *Arena) Used() []byte { return a.block[:a.top] }

// Available returns the number of bytes past the cursor.
func (a *Arena) Available() uint32 { return uint32(len(a.block)) - a.top }

func (a *Arena) Width() RefWidth { return a.width }

func (a *Arena) Root() Ref { return a.root }

// SetRoot records the document root in the header.
func (a *Arena) SetRoot(r Ref) {
	a.root = r
	writeU32BE(a.block[12:16], uint32(r))
}

func (a *Arena) Stats() Stats {
	return Stats{
		Capacity: uint64(len(a.block)),
		Used:     uint64(a.top),
		Live:     a.live,
		Allocs:   a.allocs,
		Failures: a.failures,
	}
}

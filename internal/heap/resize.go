package heap

import (
	"unsafe"

	"github.com/zmlabs/zmheap/internal/zmerrors"
)

// Resize implements spec.md §4.5. Order matters: size validation and the
// zero-size/nil-pointer special cases are checked before anything else,
// exactly as the source does.
func (h *Heap) Resize(p unsafe.Pointer, n uint32) unsafe.Pointer {
	h.clearErr()

	size := alignUp(n, h.align)
	if size > h.usableSize {
		h.setErr(zmerrors.InvalidSize(size, "heap.Resize: exceeds total capacity"))
		return nil
	}

	if n == 0 {
		h.Free(p)
		return nil
	}

	if size < h.minSize {
		size = h.minSize
	}

	if p == nil {
		return h.Allocate(size)
	}

	// Illegal-pointer leniency: an out-of-region pointer is returned
	// unchanged rather than rejected. This is deliberately surprising --
	// see SPEC_FULL.md §9 / Design Note 5 -- and preserved as specified.
	off, ok := h.offsetOf(p)
	if !ok {
		h.setErr(zmerrors.IllegalPointer("heap.Resize"))
		return p
	}

	hdr := headerAt(h.buf, off)
	curSize := hdr.next - off - h.headerSize

	if size == curSize {
		return p
	}

	if size+h.headerSize+h.minSize < curSize {
		return h.shrink(p, off, size, curSize)
	}

	return h.growOrSmallShrink(p, off, size, curSize)
}

// shrink carves a new free tail at off+H+size and coalesces it with
// whatever follows, leaving p's payload at the new, smaller size
// (spec.md §4.5 step 8).
func (h *Heap) shrink(p unsafe.Pointer, off, size, curSize uint32) unsafe.Pointer {
	hdr := headerAt(h.buf, off)
	tailOff := off + h.headerSize + size

	tail := headerAt(h.buf, tailOff)
	tail.magic = heapMagic
	tail.used = 0
	tail.next = hdr.next
	tail.prev = off

	hdr.next = tailOff

	if tail.next != h.sentinelOff {
		headerAt(h.buf, tail.next).prev = tailOff
	}

	h.subUsed(curSize - size)

	if tailOff < h.lfree {
		h.lfree = tailOff
	}

	h.putTogether(tailOff)

	return p
}

// growOrSmallShrink implements spec.md §4.5 step 9: allocate a fresh
// block, copy the overlapping prefix, free the original. On allocation
// failure the original pointer is left untouched and nil is returned.
func (h *Heap) growOrSmallShrink(p unsafe.Pointer, off, size, curSize uint32) unsafe.Pointer {
	newPtr := h.Allocate(size)
	if newPtr == nil {
		return nil
	}

	copySize := curSize
	if size < copySize {
		copySize = size
	}

	src := (*[1 << 30]byte)(p)[:copySize:copySize]
	dst := (*[1 << 30]byte)(newPtr)[:copySize:copySize]
	copy(dst, src)

	h.Free(p)

	return newPtr
}

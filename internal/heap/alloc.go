package heap

import (
	"unsafe"

	"github.com/zmlabs/zmheap/internal/zmerrors"
)

// Allocate implements spec.md §4.2: round n up to the alignment, clamp to
// the minimum payload size, and first-fit search the chain starting at
// lfree. Returns nil on a zero-size request, a request larger than the
// heap's total capacity, or exhaustion.
func (h *Heap) Allocate(n uint32) unsafe.Pointer {
	h.clearErr()

	if !h.Initialized() {
		h.setErr(zmerrors.InvalidSize(n, "heap.Allocate: heap not initialized"))
		return nil
	}

	if n == 0 {
		h.setErr(zmerrors.InvalidSize(n, "heap.Allocate"))
		return nil
	}

	size := alignUp(n, h.align)
	if size > h.usableSize {
		h.setErr(zmerrors.InvalidSize(size, "heap.Allocate: exceeds total capacity"))
		return nil
	}
	if size < h.minSize {
		size = h.minSize
	}

	// Terminal condition mirrors the source exactly: the loop index must
	// stay strictly below usableSize-size, which makes some final-block
	// layouts unreachable by design (a fit also needs room for a split
	// header). See SPEC_FULL.md §9.
	for idx := h.lfree; idx < h.usableSize-size; idx = headerAt(h.buf, idx).next {
		hdr := headerAt(h.buf, idx)
		if hdr.used == 0 && hdr.next-idx-h.headerSize >= size {
			h.consume(idx, size)
			h.advanceLowFreeFrom(idx)
			return unsafe.Pointer(&h.buf[idx+h.headerSize])
		}
	}

	h.setErr(zmerrors.OutOfMemory(size))
	return nil
}

// consume marks the block at idx used, splitting off a free tail when the
// remainder can host another block (spec.md §4.2 "Split policy").
func (h *Heap) consume(idx, size uint32) {
	hdr := headerAt(h.buf, idx)
	capacity := hdr.next - idx - h.headerSize

	if capacity >= size+h.headerSize+h.minSize {
		tailOff := idx + h.headerSize + size

		tail := headerAt(h.buf, tailOff)
		tail.magic = heapMagic
		tail.used = 0
		tail.next = hdr.next
		tail.prev = idx

		if tail.next != h.sentinelOff {
			headerAt(h.buf, tail.next).prev = tailOff
		}

		hdr.next = tailOff
		hdr.used = 1

		h.addUsed(size + h.headerSize)
	} else {
		hdr.used = 1
		h.addUsed(hdr.next - idx)
	}

	hdr.magic = heapMagic
}

// advanceLowFreeFrom updates lfree after the block at idx (the block
// lfree previously pointed at) has just been consumed, walking forward
// until a free block or the sentinel is reached (spec.md §4.2 "lfree
// update").
func (h *Heap) advanceLowFreeFrom(idx uint32) {
	if idx != h.lfree {
		return
	}

	for {
		cur := headerAt(h.buf, h.lfree)
		if h.lfree == h.sentinelOff || cur.used == 0 {
			break
		}
		h.lfree = cur.next
	}
}

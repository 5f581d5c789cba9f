package heap

import (
	"unsafe"

	"github.com/zmlabs/zmheap/internal/zmerrors"
)

// offsetOf converts a payload pointer into its byte offset in h.buf, and
// reports whether p lies within the legal payload range
// [base+H, sentinel) as required by spec.md §4.3.
func (h *Heap) offsetOf(p unsafe.Pointer) (uint32, bool) {
	if p == nil || !h.Initialized() {
		return 0, false
	}

	base := uintptr(unsafe.Pointer(&h.buf[0]))
	addr := uintptr(p)

	lowest := base + uintptr(h.headerSize)
	highest := base + uintptr(h.sentinelOff)

	if addr < lowest || addr >= highest {
		return 0, false
	}

	return uint32(addr-base) - h.headerSize, true
}

// Free implements spec.md §4.3: a nil or out-of-region pointer is a silent
// no-op; a pointer whose header fails its integrity check is a fatal
// corruption that halts the process via zmerrors.Halt.
func (h *Heap) Free(p unsafe.Pointer) {
	h.clearErr()

	if p == nil {
		return
	}

	off, ok := h.offsetOf(p)
	if !ok {
		h.setErr(zmerrors.IllegalPointer("heap.Free"))
		return
	}

	hdr := headerAt(h.buf, off)
	if hdr.magic != heapMagic || hdr.used == 0 {
		zmerrors.Halt(zmerrors.Corruption("heap.Free: bad magic or double free"))
		return
	}

	hdr.used = 0
	if off < h.lfree {
		h.lfree = off
	}

	h.subUsed(hdr.next - off)

	h.putTogether(off)
}

// putTogether implements spec.md §4.4 (coalesce / zm_putTogether): absorb
// a free forward neighbor, then a free backward neighbor, into the block
// at off.
func (h *Heap) putTogether(off uint32) {
	hdr := headerAt(h.buf, off)

	if isValidFree(h.buf, hdr.next, h.sentinelOff) {
		next := headerAt(h.buf, hdr.next)

		if h.lfree == hdr.next {
			h.lfree = off
		}

		hdr.next = next.next
		if hdr.next != h.sentinelOff {
			headerAt(h.buf, hdr.next).prev = off
		}
	}

	// The first block's prev==0 is self-referential, not "no predecessor
	// at offset 0" -- guard against merging a block into itself the same
	// way the source's `nextMem != pMem` check does, just against the
	// right neighbor: see SPEC_FULL.md §9 / Design Note 3.
	if hdr.prev != off && isValidFree(h.buf, hdr.prev, h.sentinelOff) {
		prev := headerAt(h.buf, hdr.prev)

		if h.lfree == off {
			h.lfree = hdr.prev
		}

		prev.next = hdr.next
		if hdr.next != h.sentinelOff {
			headerAt(h.buf, hdr.next).prev = hdr.prev
		}
	}
}

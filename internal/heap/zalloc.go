package heap

import (
	"unsafe"

	"github.com/zmlabs/zmheap/internal/zmerrors"
)

// maxAllocSize bounds count*size so the overflow check in Calloc has
// somewhere to compare against; uint32 arithmetic wraps silently past
// this, which is exactly what spec.md §4.6/§9 flags as needing a guard.
const maxAllocSize = ^uint32(0)

// Calloc implements spec.md §4.6 (zero-allocate): requests count*size
// bytes via Allocate and zero-fills the payload on success.
//
// Unlike the source, which computes count*size with no overflow check,
// Calloc rejects a product that would overflow uint32 by returning nil --
// the hardening spec.md explicitly invites ("an implementer...may harden
// it").
func (h *Heap) Calloc(count, size uint32) unsafe.Pointer {
	h.clearErr()

	if count == 0 || size == 0 {
		h.setErr(zmerrors.InvalidSize(0, "heap.Calloc"))
		return nil
	}

	if size != 0 && count > maxAllocSize/size {
		h.setErr(zmerrors.Overflow(count, size))
		return nil
	}

	total := count * size

	p := h.Allocate(total)
	if p == nil {
		return nil
	}

	buf := (*[1 << 30]byte)(p)[:total:total]
	for i := range buf {
		buf[i] = 0
	}

	return p
}

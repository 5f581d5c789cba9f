package heap

// BlockInfo describes one block in address order, for diagnostics and
// cmd/zmheap-inspect's chain dump.
type BlockInfo struct {
	Offset  uint32
	Used    bool
	Payload uint32 // next - offset - H
}

// Blocks walks the address-ordered chain from offset 0 to the sentinel
// and returns one BlockInfo per non-sentinel block. It never mutates
// state and is safe to call at any point between operations.
func (h *Heap) Blocks() []BlockInfo {
	if !h.Initialized() {
		return nil
	}

	var out []BlockInfo
	for off := uint32(0); off != h.sentinelOff; {
		hdr := headerAt(h.buf, off)
		out = append(out, BlockInfo{
			Offset:  off,
			Used:    hdr.used != 0,
			Payload: hdr.next - off - h.headerSize,
		})
		off = hdr.next
	}

	return out
}

// LowFreeOffset returns the current value of lfree, for tests asserting
// invariant 6 (lfree is the lowest-offset free block, or the sentinel).
func (h *Heap) LowFreeOffset() uint32 {
	return h.lfree
}

// SentinelOffset returns S, the offset of the terminal sentinel.
func (h *Heap) SentinelOffset() uint32 {
	return h.sentinelOff
}

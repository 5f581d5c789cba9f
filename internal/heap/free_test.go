package heap

import (
	"testing"
	"unsafe"
)

func TestFreeNilIsNoOp(t *testing.T) {
	h := newTestHeap(t, 256)
	h.Free(nil) // must not panic
}

func TestFreeOutOfRegionPointerIsNoOp(t *testing.T) {
	h := newTestHeap(t, 256)

	bogus := make([]byte, 16)
	h.Free(unsafe.Pointer(&bogus[0])) // outside the managed region entirely

	// Heap state must be unaffected: still one free block of full size.
	blocks := h.Blocks()
	if len(blocks) != 1 || blocks[0].Used || blocks[0].Payload != h.Total() {
		t.Fatalf("illegal free mutated heap state: %+v", blocks)
	}
}

func TestFreeBadMagicHalts(t *testing.T) {
	h := newTestHeap(t, 256)

	p := h.Allocate(10)
	if p == nil {
		t.Fatal("allocate failed")
	}

	off, ok := h.offsetOf(p)
	if !ok {
		t.Fatal("offsetOf failed for a freshly allocated pointer")
	}
	headerAt(h.buf, off).magic = 0xDEAD

	defer func() {
		if recover() == nil {
			t.Fatal("free of a header with bad magic did not panic")
		}
	}()
	h.Free(p)
}

func TestCoalesceIsIdempotentAcrossRepeatedFrees(t *testing.T) {
	h := newTestHeap(t, 512)

	ptrs := make([]unsafe.Pointer, 0, 4)
	for i := 0; i < 4; i++ {
		p := h.Allocate(20)
		if p == nil {
			t.Fatalf("allocate %d failed", i)
		}
		ptrs = append(ptrs, p)
	}

	for _, p := range ptrs {
		h.Free(p)
	}

	blocks := h.Blocks()
	if len(blocks) != 1 || blocks[0].Used || blocks[0].Payload != h.Total() {
		t.Fatalf("freeing all outstanding allocations should return one full free block, got %+v", blocks)
	}
	if h.Used() != 0 {
		t.Fatalf("Used() = %d, want 0", h.Used())
	}
	if h.LowFreeOffset() != 0 {
		t.Fatalf("LowFreeOffset() = %d, want 0", h.LowFreeOffset())
	}
}

func TestFreeInReverseOrderAlsoFullyCoalesces(t *testing.T) {
	h := newTestHeap(t, 512)

	var ptrs []unsafe.Pointer
	for i := 0; i < 5; i++ {
		p := h.Allocate(16)
		if p == nil {
			t.Fatalf("allocate %d failed", i)
		}
		ptrs = append(ptrs, p)
	}

	for i := len(ptrs) - 1; i >= 0; i-- {
		h.Free(ptrs[i])
	}

	blocks := h.Blocks()
	if len(blocks) != 1 || blocks[0].Used || blocks[0].Payload != h.Total() {
		t.Fatalf("want one full free block, got %+v", blocks)
	}
}

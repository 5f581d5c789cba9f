package heap

import "testing"

func TestAllocateZeroReturnsNil(t *testing.T) {
	h := newTestHeap(t, 256)
	if p := h.Allocate(0); p != nil {
		t.Fatalf("Allocate(0) = %v, want nil", p)
	}
}

func TestAllocateLargerThanCapacityReturnsNil(t *testing.T) {
	h := newTestHeap(t, 256)
	if p := h.Allocate(h.Total() + 1); p != nil {
		t.Fatalf("Allocate(total+1) = %v, want nil", p)
	}
}

func TestAllocateClampsToMinSize(t *testing.T) {
	h := newTestHeap(t, 256)

	p := h.Allocate(1)
	if p == nil {
		t.Fatal("Allocate(1) failed")
	}

	blocks := h.Blocks()
	if len(blocks) == 0 || blocks[0].Payload != h.MinSize() {
		t.Fatalf("small allocation payload = %+v, want clamp to MinSize=%d", blocks, h.MinSize())
	}
}

func TestAllocateDoesNotSplitWhenRemainderTooSmall(t *testing.T) {
	h := newTestHeap(t, 256) // usable=232

	// A request that leaves a remainder smaller than H+M (24) must
	// consume the whole block instead of splitting it.
	p := h.Allocate(232 - 12 - 8) // remainder would be 8 bytes: too small
	if p == nil {
		t.Fatal("allocate failed")
	}

	blocks := h.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("want no split (1 block), got %d: %+v", len(blocks), blocks)
	}
	if !blocks[0].Used {
		t.Fatalf("sole block should be used")
	}
}

func TestAllocateExhaustion(t *testing.T) {
	h := newTestHeap(t, 256)

	var ptrs []uintptr
	for {
		p := h.Allocate(12)
		if p == nil {
			break
		}
		ptrs = append(ptrs, uintptr(p))
	}

	if len(ptrs) == 0 {
		t.Fatal("expected at least one allocation before exhaustion")
	}

	if p := h.Allocate(12); p != nil {
		t.Fatalf("allocate after exhaustion = %v, want nil", p)
	}
}

func TestStatsPeakNeverDecreases(t *testing.T) {
	h := newTestHeap(t, 256)

	p1 := h.Allocate(50)
	p2 := h.Allocate(50)
	if p1 == nil || p2 == nil {
		t.Fatal("allocations failed")
	}

	peakAfterAlloc := h.Peak()

	h.Free(p1)
	h.Free(p2)

	if h.Peak() < peakAfterAlloc {
		t.Fatalf("Peak() dropped from %d to %d after frees", peakAfterAlloc, h.Peak())
	}
	if h.Peak() < h.Used() {
		t.Fatalf("Peak() = %d < Used() = %d", h.Peak(), h.Used())
	}
}

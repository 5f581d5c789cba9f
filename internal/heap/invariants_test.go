package heap

import (
	"math/rand"
	"testing"
	"unsafe"
)

// checkInvariants asserts spec.md §3 invariants 1-6 against the current
// state of h. It never mutates h.
func checkInvariants(t *testing.T, h *Heap, step int) {
	t.Helper()

	if !h.Initialized() {
		return
	}

	seenFree := false
	prevWasFree := false
	off := uint32(0)
	for off != h.sentinelOff {
		hdr := headerAt(h.buf, off)

		if hdr.magic != heapMagic {
			t.Fatalf("step %d: block at %d has bad magic", step, off)
		}
		if hdr.next <= off {
			t.Fatalf("step %d: block at %d has non-increasing next=%d", step, off, hdr.next)
		}

		next := headerAt(h.buf, hdr.next)
		if hdr.next != h.sentinelOff && next.prev != off {
			t.Fatalf("step %d: block at %d's successor %d has prev=%d, want %d", step, off, hdr.next, next.prev, off)
		}

		isFree := hdr.used == 0
		if isFree {
			payload := hdr.next - off - h.headerSize
			if payload < h.minSize {
				t.Fatalf("step %d: free block at %d has payload %d < minSize %d", step, off, payload, h.minSize)
			}
			if prevWasFree {
				t.Fatalf("step %d: two address-adjacent free blocks found ending at %d", step, off)
			}
			if !seenFree && off != h.lfree {
				t.Fatalf("step %d: lowest-offset free block is %d but lfree=%d", step, off, h.lfree)
			}
			seenFree = true
		}
		prevWasFree = isFree

		off = hdr.next
	}

	if !seenFree && h.lfree != h.sentinelOff {
		t.Fatalf("step %d: no free block exists but lfree=%d != sentinel=%d", step, h.lfree, h.sentinelOff)
	}
	if seenFree && h.lfree != h.sentinelOff {
		lf := headerAt(h.buf, h.lfree)
		if lf.used != 0 {
			t.Fatalf("step %d: lfree=%d does not point at a free block", step, h.lfree)
		}
	}
}

// TestRandomizedAllocateFreeResizeSequencesPreserveInvariants drives the
// heap through randomized sequences of Allocate/Free/Resize, checking
// invariants 1-6 after every single operation (spec.md §8).
func TestRandomizedAllocateFreeResizeSequencesPreserveInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 20; trial++ {
		h := newTestHeap(t, 1024)
		live := map[unsafe.Pointer]uint32{} // ptr -> requested size

		for step := 0; step < 300; step++ {
			switch rng.Intn(3) {
			case 0: // allocate
				n := uint32(rng.Intn(80) + 1)
				p := h.Allocate(n)
				if p != nil {
					live[p] = n
				}

			case 1: // free a random live pointer
				if len(live) == 0 {
					continue
				}
				p := pickKey(rng, live)
				h.Free(p)
				delete(live, p)

			case 2: // resize a random live pointer
				if len(live) == 0 {
					continue
				}
				p := pickKey(rng, live)
				n := uint32(rng.Intn(80) + 1)
				// A nil return (n is never 0 here) is a failed grow: the
				// original allocation stays valid and stays live.
				got := h.Resize(p, n)
				if got != nil {
					delete(live, p)
					live[got] = n
				}
			}

			checkInvariants(t, h, trial*1000+step)
		}

		// Invariant property 6: freeing everything outstanding returns the
		// heap to a single free block with usedSize == 0.
		for p := range live {
			h.Free(p)
		}
		blocks := h.Blocks()
		if len(blocks) != 1 || blocks[0].Used || blocks[0].Payload != h.Total() {
			t.Fatalf("trial %d: draining all allocations left %+v, want one full free block", trial, blocks)
		}
		if h.Used() != 0 {
			t.Fatalf("trial %d: Used() = %d after draining all allocations, want 0", trial, h.Used())
		}
	}
}

func pickKey(rng *rand.Rand, m map[unsafe.Pointer]uint32) unsafe.Pointer {
	idx := rng.Intn(len(m))
	i := 0
	for k := range m {
		if i == idx {
			return k
		}
		i++
	}
	panic("unreachable")
}

// TestMaxSizeMonotonicallyTracksUsedSize checks property 7: maxSize never
// decreases and is always >= usedSize.
func TestMaxSizeMonotonicallyTracksUsedSize(t *testing.T) {
	h := newTestHeap(t, 512)
	rng := rand.New(rand.NewSource(2))

	prevMax := uint32(0)
	var live []unsafe.Pointer

	for step := 0; step < 200; step++ {
		if rng.Intn(2) == 0 || len(live) == 0 {
			p := h.Allocate(uint32(rng.Intn(40) + 1))
			if p != nil {
				live = append(live, p)
			}
		} else {
			i := rng.Intn(len(live))
			h.Free(live[i])
			live = append(live[:i], live[i+1:]...)
		}

		if h.Peak() < prevMax {
			t.Fatalf("step %d: Peak() decreased from %d to %d", step, prevMax, h.Peak())
		}
		prevMax = h.Peak()

		if h.Peak() < h.Used() {
			t.Fatalf("step %d: Peak() = %d < Used() = %d", step, h.Peak(), h.Used())
		}
	}
}

// TestBoundaryNearSearchLoopTerminalCondition exercises the first-fit
// search near the idx < usableSize-size boundary called out in
// SPEC_FULL.md §9, making sure the loop neither under- nor over-reads
// the chain at the edge of the region.
func TestBoundaryNearSearchLoopTerminalCondition(t *testing.T) {
	h := newTestHeap(t, 256) // usable = 232

	// Allocate minimum-sized blocks until the search loop finds no fit.
	var ptrs []unsafe.Pointer
	for {
		p := h.Allocate(h.MinSize())
		if p == nil {
			break
		}
		ptrs = append(ptrs, p)
	}
	if len(ptrs) == 0 {
		t.Fatal("expected at least one allocation")
	}

	// Free the very last one so a single small hole (the unsplit tail
	// block, payload 16) remains at the top of the region, right at the
	// search loop's boundary.
	h.Free(ptrs[len(ptrs)-1])

	p := h.Allocate(h.MinSize())
	if p == nil {
		t.Fatal("allocation reusing the boundary hole unexpectedly failed")
	}
	checkInvariants(t, h, -1)
}

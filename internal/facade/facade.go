//go:build !nomemmgr
// +build !nomemmgr

// Package facade exposes the stable, global-default-handle API that the
// root zmheap package re-exports: Init/Allocate/Resize/Calloc/Free/
// Total/Used/Peak over one package-level *heap.Heap, mirroring the
// teacher's GlobalAllocator convenience wrappers.
//
// The default heap is not safe for concurrent use and this package adds
// no lock around it: callers must serialize every call themselves.
package facade

import (
	"fmt"
	"unsafe"

	"github.com/zmlabs/zmheap/internal/heap"
	"github.com/zmlabs/zmheap/internal/region"
	"github.com/zmlabs/zmheap/internal/zmconfig"
)

var defaultHeap *heap.Heap

// Init builds the default heap over a freshly acquired region sized and
// shaped per cfg. Calling Init again replaces the previous default
// heap; callers holding pointers into the old region must not use them
// afterward.
func Init(cfg zmconfig.Config, opts ...heap.Option) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	var buf []byte
	if cfg.UseMmap {
		b, _, err := region.Mmap(int(cfg.MemSize))
		if err != nil {
			return fmt.Errorf("facade: init: %w", err)
		}
		buf = b
	} else {
		buf = region.Static(int(cfg.MemSize))
	}

	heapOpts := append([]heap.Option{
		heap.WithAlign(cfg.AlignSize),
		heap.WithMinSize(cfg.MinSize),
		heap.WithStats(cfg.Stats),
	}, opts...)

	h, err := heap.New(buf, heapOpts...)
	if err != nil {
		return fmt.Errorf("facade: init: %w", err)
	}

	defaultHeap = h
	return nil
}

// InitOver builds the default heap directly over a caller-supplied
// region, bypassing internal/region entirely (for hosts that already
// hold a []byte from elsewhere, e.g. region.External).
func InitOver(buf []byte, opts ...heap.Option) error {
	h, err := heap.New(buf, opts...)
	if err != nil {
		return fmt.Errorf("facade: init: %w", err)
	}
	defaultHeap = h
	return nil
}

func mustHeap() *heap.Heap {
	if defaultHeap == nil {
		panic("zmheap: facade used before Init")
	}
	return defaultHeap
}

// Allocate allocates n bytes from the default heap.
func Allocate(n uint32) unsafe.Pointer { return mustHeap().Allocate(n) }

// Resize resizes the allocation at p to n bytes on the default heap.
func Resize(p unsafe.Pointer, n uint32) unsafe.Pointer { return mustHeap().Resize(p, n) }

// Calloc allocates a zeroed count*size buffer from the default heap.
func Calloc(count, size uint32) unsafe.Pointer { return mustHeap().Calloc(count, size) }

// Free releases p back to the default heap.
func Free(p unsafe.Pointer) { mustHeap().Free(p) }

// Total returns the default heap's usable capacity.
func Total() uint32 { return mustHeap().Total() }

// Used returns the default heap's current used-byte count.
func Used() uint32 { return mustHeap().Used() }

// Peak returns the default heap's historical maximum used-byte count.
func Peak() uint32 { return mustHeap().Peak() }

// LastError returns the most recent non-fatal error recorded by the
// default heap, or nil.
func LastError() error {
	if defaultHeap == nil {
		return nil
	}
	if err := defaultHeap.LastError(); err != nil {
		return err
	}
	return nil
}

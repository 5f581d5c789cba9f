//go:build nomemmgr
// +build nomemmgr

// This file replaces facade.go entirely when built with -tags nomemmgr,
// mirroring the original's __ZM_WEAK fallback that calls libc malloc/
// free directly when ZM_USE_MEM_MGR is compiled out. Allocate/Free
// forward to Go's own runtime allocator and GC; Total/Used/Peak report
// zero since the host runtime keeps no boundary-tag bookkeeping this
// package can read.
package facade

import (
	"unsafe"

	"github.com/zmlabs/zmheap/internal/heap"
	"github.com/zmlabs/zmheap/internal/zmconfig"
)

// Init is a no-op under nomemmgr: there is no managed region to build.
func Init(cfg zmconfig.Config, opts ...heap.Option) error { return nil }

// InitOver is a no-op under nomemmgr.
func InitOver(buf []byte, opts ...heap.Option) error { return nil }

// Allocate hands back host-allocated memory via make. The buffer is not
// pinned; the returned pointer is what keeps it alive for the garbage
// collector.
func Allocate(n uint32) unsafe.Pointer {
	if n == 0 {
		return nil
	}
	buf := make([]byte, n)
	return unsafe.Pointer(&buf[0])
}

// Resize returns a fresh, zeroed host buffer of n bytes. The contents at
// p are not copied into it, since the size of p's buffer is not
// tracked, and there is no in-place shrink/grow without boundary-tag
// bookkeeping.
func Resize(p unsafe.Pointer, n uint32) unsafe.Pointer {
	if n == 0 {
		return nil
	}
	if p == nil {
		return Allocate(n)
	}
	return Allocate(n)
}

// Calloc allocates a zeroed host buffer; make already zero-fills.
func Calloc(count, size uint32) unsafe.Pointer {
	if count == 0 || size == 0 {
		return nil
	}
	return Allocate(count * size)
}

// Free is a no-op: the host garbage collector reclaims the buffer once
// unreferenced.
func Free(p unsafe.Pointer) {}

// Total reports zero: there is no fixed region under nomemmgr.
func Total() uint32 { return 0 }

// Used reports zero: host-allocator usage isn't tracked here.
func Used() uint32 { return 0 }

// Peak reports zero: host-allocator usage isn't tracked here.
func Peak() uint32 { return 0 }

// LastError is always nil under nomemmgr.
func LastError() error { return nil }

// Package region resolves the []byte backing array a Heap manages. It
// never inspects header bytes; it only binds begin/len, mirroring the
// compile-time ZM_FIXED/ZM_EXTERNAL/ZM_DYNAMIC region strategies as
// idiomatic Go constructors.
package region

import "unsafe"

// Static returns a process-owned region of the given size, backed by a
// single Go allocation that outlives the Heap built over it. This is
// the default strategy for hosts with no platform-specific memory API.
func Static(size int) []byte {
	if size <= 0 {
		return nil
	}
	return make([]byte, size)
}

// External wraps a caller-owned address range as a []byte without
// copying, for hosts that hand zmheap a region carved out by other
// means (a linker section, a shared-memory mapping already held by the
// caller). The caller retains ownership: the returned slice must not
// outlive the memory it points at.
func External(begin unsafe.Pointer, length int) []byte {
	if begin == nil || length <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(begin), length)
}

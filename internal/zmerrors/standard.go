// Package zmerrors provides standardized error messaging for zmheap,
// adapted from the teacher's internal/errors package for the allocator's
// own taxonomy: non-fatal conditions that surface as a nil pointer plus a
// diagnosable cause, and the one fatal condition (heap corruption) that
// must never return at all.
package zmerrors

import (
	"fmt"
	"runtime"
)

// ErrorCategory groups related failure causes.
type ErrorCategory string

const (
	CategoryMemory     ErrorCategory = "MEMORY"
	CategoryBounds     ErrorCategory = "BOUNDS"
	CategoryOverflow   ErrorCategory = "OVERFLOW"
	CategoryValidation ErrorCategory = "VALIDATION"
	CategoryCorruption ErrorCategory = "CORRUPTION"
)

// StandardError provides a consistent error format across the allocator.
type StandardError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Context  map[string]interface{}
	Caller   string
}

// Error implements the error interface.
func (e *StandardError) Error() string {
	return fmt.Sprintf("[%s:%s] %s (caller: %s)", e.Category, e.Code, e.Message, e.Caller)
}

// NewStandardError creates a new standardized error, capturing the
// immediate caller for diagnosability.
func NewStandardError(category ErrorCategory, code, message string, context map[string]interface{}) *StandardError {
	pc, _, _, ok := runtime.Caller(1)
	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &StandardError{
		Category: category,
		Code:     code,
		Message:  message,
		Context:  context,
		Caller:   caller,
	}
}

// InvalidSize reports a requested size of zero or one that exceeds the
// heap's total capacity (spec.md §7, "Input errors").
func InvalidSize(size uint32, context string) *StandardError {
	return NewStandardError(CategoryValidation, "INVALID_SIZE",
		fmt.Sprintf("invalid size %d in %s", size, context),
		map[string]interface{}{"size": size, "context": context})
}

// OutOfMemory reports a search that found no block large enough to
// satisfy the request (spec.md §7, "Out-of-memory").
func OutOfMemory(size uint32) *StandardError {
	return NewStandardError(CategoryMemory, "OUT_OF_MEMORY",
		fmt.Sprintf("no free block of at least %d bytes", size),
		map[string]interface{}{"size": size})
}

// IllegalPointer reports a pointer outside the managed region passed to
// Free or Resize (spec.md §7, "Illegal-pointer tolerant").
func IllegalPointer(operation string) *StandardError {
	return NewStandardError(CategoryBounds, "ILLEGAL_POINTER",
		fmt.Sprintf("pointer outside managed region in %s", operation),
		map[string]interface{}{"operation": operation})
}

// Overflow reports a count*size computation in Calloc that would not fit
// in the allocator's size type (spec.md §4.6/§9, hardened against the
// source's unchecked multiplication).
func Overflow(count, size uint32) *StandardError {
	return NewStandardError(CategoryOverflow, "SIZE_OVERFLOW",
		fmt.Sprintf("count=%d * size=%d overflows", count, size),
		map[string]interface{}{"count": count, "size": size})
}

// Corruption describes the fatal condition spec.md §7 requires to never
// return: a bad magic word or a free of an already-free block.
func Corruption(detail string) *StandardError {
	return NewStandardError(CategoryCorruption, "HEAP_CORRUPTION", detail, nil)
}

// Halt panics with err. It is the allocator's one unrecoverable path --
// called only from Free when a header fails its integrity check -- and is
// never expected to be recovered by the caller.
func Halt(err *StandardError) {
	panic(err)
}

// Package zmheap is a fixed-region, in-band boundary-tag allocator for
// environments with no OS heap: bare-metal firmware, WASM linear
// memory, or any host that can hand it one []byte region up front and
// run single-threaded or under its own cooperative scheduling.
//
// zmheap never calls into the Go runtime allocator for the memory it
// manages (outside of acquiring the backing region itself, via
// internal/region). Allocate, Free, Resize, and Calloc operate purely
// by splitting and coalescing in-band headers over caller-supplied
// bytes.
package zmheap

import (
	"unsafe"

	"github.com/zmlabs/zmheap/internal/facade"
	"github.com/zmlabs/zmheap/internal/heap"
	"github.com/zmlabs/zmheap/internal/zmconfig"
)

// Config is the sizing and feature-toggle policy for the default heap.
type Config = zmconfig.Config

// Option customizes a Heap constructed directly via New; see
// WithAlign, WithMinSize, WithStats.
type Option = heap.Option

// Heap is a single, explicit, non-thread-safe allocator handle over one
// managed region. Most callers use the package-level default-heap
// functions instead; Heap is exposed for hosts that need more than one
// independent region.
type Heap = heap.Heap

// WithAlign overrides the alignment payload addresses are rounded up
// to. Must be a power of two.
func WithAlign(align uint32) Option { return heap.WithAlign(align) }

// WithMinSize overrides the minimum block payload size.
func WithMinSize(min uint32) Option { return heap.WithMinSize(min) }

// WithStats toggles usedSize/maxSize tracking.
func WithStats(enabled bool) Option { return heap.WithStats(enabled) }

// New builds a standalone Heap over region, independent of the
// package-level default heap.
func New(region []byte, opts ...Option) (*Heap, error) { return heap.New(region, opts...) }

// DefaultConfig returns the baseline Config used when no options are
// given to Init.
func DefaultConfig(opts ...zmconfig.Option) Config { return zmconfig.Default(opts...) }

// LoadConfig reads and schema-validates a Config from a JSON file.
func LoadConfig(path string) (Config, error) { return zmconfig.Load(path) }

// Init builds the package-level default heap per cfg. Subsequent calls
// to Allocate/Resize/Calloc/Free/Total/Used/Peak operate on it.
func Init(cfg Config, opts ...Option) error { return facade.Init(cfg, opts...) }

// InitOver builds the default heap directly over a caller-supplied
// region.
func InitOver(region []byte, opts ...Option) error { return facade.InitOver(region, opts...) }

// Allocate allocates n bytes from the default heap.
func Allocate(n uint32) unsafe.Pointer { return facade.Allocate(n) }

// Resize resizes the allocation at p to n bytes on the default heap.
func Resize(p unsafe.Pointer, n uint32) unsafe.Pointer { return facade.Resize(p, n) }

// Calloc allocates a zeroed count*size buffer from the default heap.
func Calloc(count, size uint32) unsafe.Pointer { return facade.Calloc(count, size) }

// Free releases p back to the default heap.
func Free(p unsafe.Pointer) { facade.Free(p) }

// Total returns the default heap's usable capacity.
func Total() uint32 { return facade.Total() }

// Used returns the default heap's current used-byte count.
func Used() uint32 { return facade.Used() }

// Peak returns the default heap's historical maximum used-byte count.
func Peak() uint32 { return facade.Peak() }

// LastError returns the most recent non-fatal error recorded by the
// default heap, or nil.
func LastError() error { return facade.LastError() }

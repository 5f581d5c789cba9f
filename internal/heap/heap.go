package heap

import (
	"fmt"
	"unsafe"

	"github.com/zmlabs/zmheap/internal/zmerrors"
)

// Config carries the compile-time toggles spec.md leaves to the host build:
// alignment, minimum block size, and whether usage statistics are tracked.
// It plays the same role as the teacher allocator package's Config/Option
// pair, scoped down to what a boundary-tag heap actually needs.
type Config struct {
	Align uint32 // power of two, default 4
	Min   uint32 // minimum payload size before alignment, default 12
	Stats bool   // track usedSize/maxSize
}

// Option mutates a Config during New.
type Option func(*Config)

// WithAlign overrides the alignment (must be a power of two).
func WithAlign(align uint32) Option {
	return func(c *Config) { c.Align = align }
}

// WithMinSize overrides the minimum payload size.
func WithMinSize(min uint32) Option {
	return func(c *Config) { c.Min = min }
}

// WithStats enables or disables usage-statistics tracking.
func WithStats(enabled bool) Option {
	return func(c *Config) { c.Stats = enabled }
}

func defaultConfig() Config {
	return Config{Align: 4, Min: 12, Stats: true}
}

// Heap is one boundary-tag arena over a caller-supplied region. It is not
// safe for concurrent use -- per spec.md, all serialization is the caller's
// responsibility.
type Heap struct {
	buf []byte

	headerSize  uint32
	minSize     uint32
	align       uint32
	usableSize  uint32
	sentinelOff uint32
	lfree       uint32

	statsEnabled bool
	usedSize     uint32
	maxSize      uint32

	lastErr *zmerrors.StandardError
}

// New binds a Heap to region, rounding begin/end to the configured
// alignment and laying down the first free block plus the terminal
// sentinel (spec.md §4.1).
//
// If the aligned region is no larger than two headers, New still returns a
// non-nil *Heap: every Allocate/Calloc call on it returns nil and
// Total/Used/Peak read zero, exactly as spec.md §4.1/§7 describe for a
// refused initialization. The returned error is an additional,
// fail-fast convenience for callers that want to detect this at
// construction time rather than from the first failed allocation.
func New(region []byte, opts ...Option) (*Heap, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &Heap{
		headerSize: alignUp(rawHeaderSize, cfg.Align),
		minSize:    alignUp(cfg.Min, cfg.Align),
		align:      cfg.Align,
		statsEnabled: cfg.Stats,
	}

	// beginAlign/endAlign are the offsets within region of its first and
	// last aligned addresses.
	var beginAlign, endAlign uint32
	if len(region) > 0 {
		base := uintptr(unsafe.Pointer(&region[0]))
		a := uintptr(cfg.Align)
		lo := (base + a - 1) &^ (a - 1)
		hi := (base + uintptr(len(region))) &^ (a - 1)
		if hi > lo {
			beginAlign = uint32(lo - base)
			endAlign = uint32(hi - base)
		}
	}

	if endAlign-beginAlign <= 2*h.headerSize {
		h.lastErr = zmerrors.InvalidSize(uint32(len(region)), "heap.New: region too small for two headers")
		return h, fmt.Errorf("zmheap: %w", h.lastErr)
	}

	h.buf = region[beginAlign:endAlign]
	h.usableSize = endAlign - beginAlign - 2*h.headerSize
	h.sentinelOff = h.usableSize + h.headerSize

	first := headerAt(h.buf, 0)
	first.magic = heapMagic
	first.used = 0
	first.prev = 0
	first.next = h.sentinelOff

	sentinel := headerAt(h.buf, h.sentinelOff)
	sentinel.magic = heapMagic
	sentinel.used = 1
	sentinel.prev = h.sentinelOff
	sentinel.next = h.sentinelOff

	h.lfree = 0

	return h, nil
}

// Initialized reports whether the region was large enough to host at least
// one block (i.e. whether New's fast-fail error is absent).
func (h *Heap) Initialized() bool {
	return h.buf != nil
}

// LastError returns the StandardError recorded by the most recent
// Allocate, Calloc, Resize or Free call, or nil if that call recorded
// none (or no call has been made). A nil return from Allocate/Calloc/
// Resize records its cause; an out-of-region pointer passed to Free or
// Resize records IllegalPointer, even though Resize then returns the
// pointer unchanged. It never reflects the fatal Corruption path, which
// panics instead of returning.
func (h *Heap) LastError() *zmerrors.StandardError {
	return h.lastErr
}

func (h *Heap) setErr(err *zmerrors.StandardError) {
	h.lastErr = err
}

func (h *Heap) clearErr() {
	h.lastErr = nil
}

// HeaderSize returns H, the aligned in-band size of one block header.
func (h *Heap) HeaderSize() uint32 { return h.headerSize }

// MinSize returns M, the minimum aligned payload size.
func (h *Heap) MinSize() uint32 { return h.minSize }

// Align returns the configured alignment A.
func (h *Heap) Align() uint32 { return h.align }

// Package zmconfig loads and validates the on-disk configuration for a
// zmheap instance: region sizing, alignment, and the minimum block
// size, plus a schema version guard so a config file written for one
// zmheap revision is rejected before it can corrupt a region sized for
// another.
package zmconfig

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
)

// currentSchema is the configuration schema this build understands.
// Bump the minor version for additive fields, the major version for
// breaking ones.
const currentSchema = "1.0.0"

// Config is the on-disk shape of a zmheap deployment's sizing policy.
type Config struct {
	SchemaVersion string `json:"schema_version"`
	MemSize       uint32 `json:"mem_size"`
	AlignSize     uint32 `json:"align_size"`
	MinSize       uint32 `json:"min_size"`
	UseHeap       bool   `json:"use_heap"`
	UseMmap       bool   `json:"use_mmap"`
	Stats         bool   `json:"stats"`
}

// Option mutates a Config during construction, mirroring the
// functional-options shape used throughout this codebase's allocator
// configuration.
type Option func(*Config)

// WithAlignSize overrides the alignment a Heap built from this Config
// will round to.
func WithAlignSize(n uint32) Option { return func(c *Config) { c.AlignSize = n } }

// WithMinSize overrides the minimum block payload size.
func WithMinSize(n uint32) Option { return func(c *Config) { c.MinSize = n } }

// WithMemSize overrides the total region size to request from the
// region provider.
func WithMemSize(n uint32) Option { return func(c *Config) { c.MemSize = n } }

// WithMmap requests that the region be backed by region.Mmap instead of
// region.Static.
func WithMmap(enabled bool) Option { return func(c *Config) { c.UseMmap = enabled } }

// WithUseHeap records whether the region comes from an externally
// supplied address range (ZM_MEM_USE_HEAP=1 in the original) rather
// than a statically reserved array. facade.Init does not read this
// field; a host with an external region builds the heap over it with
// facade.InitOver. The switch to the host allocator is the facade
// package's nomemmgr build tag, not this field.
func WithUseHeap(enabled bool) Option { return func(c *Config) { c.UseHeap = enabled } }

// WithStats toggles usedSize/maxSize tracking.
func WithStats(enabled bool) Option { return func(c *Config) { c.Stats = enabled } }

// Default returns a Config using the same defaults as heap.defaultConfig,
// so callers who skip zmconfig entirely and those who use it agree on
// baseline behavior.
func Default(opts ...Option) Config {
	c := Config{
		SchemaVersion: currentSchema,
		MemSize:       8192,
		AlignSize:     4,
		MinSize:       12,
		UseHeap:       true,
		UseMmap:       false,
		Stats:         true,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Load reads a JSON configuration file from path and validates its
// schema version against currentSchema before returning it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("zmconfig: read %s: %w", path, err)
	}

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("zmconfig: parse %s: %w", path, err)
	}

	if err := c.validateSchema(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// validateSchema rejects a config whose schema major version does not
// match currentSchema's, or whose version is newer than currentSchema.
// An older minor/patch revision of the same major version is accepted.
func (c Config) validateSchema() error {
	if c.SchemaVersion == "" {
		return fmt.Errorf("zmconfig: missing schema_version")
	}

	got, err := semver.NewVersion(c.SchemaVersion)
	if err != nil {
		return fmt.Errorf("zmconfig: invalid schema_version %q: %w", c.SchemaVersion, err)
	}

	want, err := semver.NewVersion(currentSchema)
	if err != nil {
		return fmt.Errorf("zmconfig: invalid built-in schema %q: %w", currentSchema, err)
	}

	if got.Major() != want.Major() {
		return fmt.Errorf("zmconfig: config schema %s is incompatible with this build's schema %s", got, want)
	}
	if got.GreaterThan(want) {
		return fmt.Errorf("zmconfig: config schema %s is newer than this build's schema %s", got, want)
	}

	return nil
}

// Validate checks that MemSize is non-zero and AlignSize is a power of
// two. It does not check that MemSize leaves room for a block plus the
// sentinel once headers are accounted for; heap.New refuses such a
// region itself.
func (c Config) Validate() error {
	if c.MemSize == 0 {
		return fmt.Errorf("zmconfig: mem_size must be positive")
	}
	if c.AlignSize == 0 || (c.AlignSize&(c.AlignSize-1)) != 0 {
		return fmt.Errorf("zmconfig: align_size must be a power of two, got %d", c.AlignSize)
	}
	return nil
}

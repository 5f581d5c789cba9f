//go:build linux || darwin || freebsd || netbsd || openbsd
// +build linux darwin freebsd netbsd openbsd

package region

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Mmap reserves an anonymous, private region of size bytes via
// unix.Mmap, giving the allocator a range the OS page cache -- not the
// Go garbage collector -- owns. The returned release func unmaps the
// region; callers must not touch the slice afterward.
func Mmap(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("region: mmap size must be positive, got %d", size)
	}

	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, fmt.Errorf("region: mmap %d bytes: %w", size, err)
	}

	release := func() error {
		return unix.Munmap(buf)
	}

	return buf, release, nil
}

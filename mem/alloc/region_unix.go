//go:build unix

package alloc

import (
	"errors"

	"golang.org/x/sys/unix"
)

// mapRegion obtains an anonymous private mapping of length bytes.
func mapRegion(length int) ([]byte, func() error, error) {
	data, err := unix.Mmap(-1, 0, length,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() error {
		err := unix.Munmap(data)
		if errors.Is(err, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			return nil
		}
		return err
	}
	return data, cleanup, nil
}

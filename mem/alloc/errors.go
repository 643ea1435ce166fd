package alloc

import "errors"

var (
	// ErrRegionSize indicates a zero or over-limit region size request.
	ErrRegionSize = errors.New("alloc: invalid region size")

	// ErrRegionClosed indicates use of a region after Close.
	ErrRegionClosed = errors.New("alloc: region closed")

	// ErrRegionTooSmall indicates a region too small to hold even one block.
	ErrRegionTooSmall = errors.New("alloc: region too small for allocator metadata")
)

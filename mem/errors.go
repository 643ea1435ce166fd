package mem

import "errors"

var (
	// ErrSizeOverflow indicates a layout computation wrapped around uintptr.
	ErrSizeOverflow = errors.New("mem: layout size overflow")
)

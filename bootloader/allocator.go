package bootloader

import "sync/atomic"

// IDAllocator hands out increasing node IDs. It does not wrap and does not
// check IDs assigned by other means.
type IDAllocator struct {
	last atomic.Uint64
}

// NewIDAllocator creates an allocator whose first ID is start+1.
func NewIDAllocator(start uint64) *IDAllocator {
	a := &IDAllocator{}
	a.last.Store(start)
	return a
}

// Next increments the counter and returns the new value.
func (a *IDAllocator) Next() uint64 {
	return a.last.Add(1)
}

// Current returns the last assigned ID.
func (a *IDAllocator) Current() uint64 {
	return a.last.Load()
}

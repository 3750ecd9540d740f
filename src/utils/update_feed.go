package utils

import (
	"platform-observer/src/models"
)

// -----------------------------------------------------------------------------
// UpdateFeed is a fixed-size circular buffer of live updates, newest first.
// True ring buffer - no resizing allowed!
// -----------------------------------------------------------------------------

type UpdateFeed struct {
	data     []models.MRealTimeUpdate
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewUpdateFeed creates a new feed with fixed capacity
func NewUpdateFeed(capacity int) *UpdateFeed {
	if capacity <= 0 {
		capacity = 50 // Default cap matching the dashboard feed
	}

	return &UpdateFeed{
		data:     make([]models.MRealTimeUpdate, capacity),
		capacity: capacity,
		index:    0,
		size:     0,
	}
}

// -----------------------------------------------------------------------------

// Push adds an update. Once the feed is full the oldest entry is evicted.
func (f *UpdateFeed) Push(update models.MRealTimeUpdate) {
	f.data[f.index] = update
	f.index = (f.index + 1) % f.capacity

	// Update size (never exceeds capacity)
	if f.size < f.capacity {
		f.size++
	}
}

// -----------------------------------------------------------------------------

// Items returns the retained updates, newest first.
func (f *UpdateFeed) Items() []models.MRealTimeUpdate {
	result := make([]models.MRealTimeUpdate, f.size)

	for i := 0; i < f.size; i++ {
		idx := (f.index - 1 - i + f.capacity) % f.capacity
		result[i] = f.data[idx]
	}

	return result
}

// -----------------------------------------------------------------------------

// Size returns the number of retained updates.
func (f *UpdateFeed) Size() int {
	return f.size
}

// -----------------------------------------------------------------------------

// Capacity returns the fixed cap.
func (f *UpdateFeed) Capacity() int {
	return f.capacity
}

// -----------------------------------------------------------------------------

// Reset drops all retained updates.
func (f *UpdateFeed) Reset() {
	f.index = 0
	f.size = 0
}

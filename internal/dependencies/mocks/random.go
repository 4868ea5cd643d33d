package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/roomrank/internal/dependencies/random"
)

// MockRandom returns queued strings in order. Once the queue is drained it
// falls back to a counter so generated names stay unique across a test.
type MockRandom struct {
	mu       sync.Mutex
	queued   []string
	next     int
	fallback int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// String returns the next queued result
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.next < len(r.queued) {
		result := r.queued[r.next]
		r.next++
		return result
	}
	r.fallback++
	return fmt.Sprintf("%0*d", length, r.fallback)
}

// QueueString adds values to the result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queued = append(r.queued, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queued = nil
	r.next = 0
	r.fallback = 0
}

package audit

import (
	"context"
	"sync"
	"time"
)

// Entry captures one moderation decision.
type Entry struct {
	Kind       string         `json:"kind"`
	RecordID   string         `json:"record_id"`
	Action     string         `json:"action"`
	Status     string         `json:"status"`
	Actor      string         `json:"actor,omitempty"`
	Note       string         `json:"note,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Recorder persists audit entries.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
	List(ctx context.Context) ([]Entry, error)
	Clear(ctx context.Context) error
}

// DefaultCapacity bounds the in-memory trail.
const DefaultCapacity = 1000

// MemoryRecorder keeps the most recent entries in memory, oldest first.
type MemoryRecorder struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
	err      error
}

// NewMemoryRecorder constructs a recorder holding at most capacity entries.
// A non-positive capacity selects DefaultCapacity.
func NewMemoryRecorder(capacity int) *MemoryRecorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryRecorder{capacity: capacity}
}

// Record stores the supplied entry, evicting the oldest when full.
func (r *MemoryRecorder) Record(_ context.Context, entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	copied := entry
	if copied.Metadata != nil {
		metadata := make(map[string]any, len(copied.Metadata))
		for k, v := range copied.Metadata {
			metadata[k] = v
		}
		copied.Metadata = metadata
	}
	if len(r.entries) >= r.capacity {
		r.entries = append(r.entries[:0], r.entries[len(r.entries)-r.capacity+1:]...)
	}
	r.entries = append(r.entries, copied)
	return nil
}

// Entries returns a snapshot of recorded entries.
func (r *MemoryRecorder) Entries() []Entry {
	entries, _ := r.List(context.Background())
	return entries
}

// Fail configures the recorder to return err on subsequent Record calls.
func (r *MemoryRecorder) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// List returns the entries recorded so far.
func (r *MemoryRecorder) List(context.Context) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

// Clear removes all recorded entries.
func (r *MemoryRecorder) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	return nil
}

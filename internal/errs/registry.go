package errs

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded failure.
type Entry struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"type"`
	Op          string    `json:"op,omitempty"`
	Message     string    `json:"message"`
	Details     any       `json:"details,omitempty"`
	Recoverable bool      `json:"recoverable"`
	Timestamp   time.Time `json:"timestamp"`
}

// DefaultRegistrySize bounds how many entries a Registry keeps.
const DefaultRegistrySize = 100

// Registry is a process-local list of surfaced errors. The oldest entries
// are dropped once it is full.
type Registry struct {
	mu      sync.Mutex
	entries []Entry
	max     int
	now     func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{max: DefaultRegistrySize, now: time.Now}
}

// Record classifies err, stores it and returns the new entry. A nil
// registry or error records nothing.
func (r *Registry) Record(err error) Entry {
	if r == nil || err == nil {
		return Entry{}
	}
	e := Classify(err)
	ent := Entry{
		ID:          uuid.NewString(),
		Kind:        e.Kind,
		Op:          e.Op,
		Message:     e.Error(),
		Details:     e.Details,
		Recoverable: e.Recoverable(),
		Timestamp:   r.now().UTC(),
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, ent)
	if r.max > 0 && len(r.entries) > r.max {
		r.entries = append([]Entry(nil), r.entries[len(r.entries)-r.max:]...)
	}
	return ent
}

func (r *Registry) List() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

func (r *Registry) ByKind(k Kind) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Entry
	for _, e := range r.entries {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// Dismiss removes the entry with id and reports whether it existed.
func (r *Registry) Dismiss(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Registry) Clear() {
	r.mu.Lock()
	r.entries = nil
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

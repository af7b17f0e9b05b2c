// internal/store/memory.go
//
// In-memory registry of live rounds.
// Rounds hold decoded posters and overlay pixels, so they live in process
// memory only; the database keeps the history rows.
//
// Characteristics:
//   - Stores *round.Round keyed by round ID.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Sweep evicts rounds idle for longer than a cutoff.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/flickguess/internal/round"
)

// ErrNotFound is returned by Get for unknown IDs.
var ErrNotFound = errors.New("round not found")

// Store defines the registry interface for live rounds.
type Store interface {
	// Save adds or replaces a round.
	Save(ctx context.Context, r *round.Round) error

	// Get retrieves a round by ID.
	Get(ctx context.Context, id string) (*round.Round, error)

	// Len reports how many rounds are held.
	Len() int

	// Sweep drops rounds last touched before now-idle and returns how many
	// were removed.
	Sweep(now time.Time, idle time.Duration) int
}

type memory struct {
	mu     sync.RWMutex            // guards rounds map
	rounds map[string]*round.Round // keyed by Round.ID
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() Store {
	return &memory{rounds: make(map[string]*round.Round)}
}

func (m *memory) Save(ctx context.Context, r *round.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds[r.ID] = r
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*round.Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.rounds[id]; ok {
		return r, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rounds)
}

func (m *memory) Sweep(now time.Time, idle time.Duration) int {
	cutoff := now.Add(-idle)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, r := range m.rounds {
		if r.IdleSince().Before(cutoff) {
			delete(m.rounds, id)
			n++
		}
	}
	return n
}

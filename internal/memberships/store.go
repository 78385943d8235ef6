package memberships

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Store is the membership record store. Its unit of atomicity is a single
// (event, user) key; compound invariants (capacity, waitlist ordering) are the
// engine's responsibility, enforced under the engine's per-event lock.
type Store interface {
	// Get returns the membership for the pair, or a default NONE record when
	// none exists. Absence is never an error.
	Get(ctx context.Context, eventID, userID uuid.UUID) (Membership, error)
	// Put overwrites the record for its (event, user) key atomically.
	Put(ctx context.Context, m Membership) error

	CountAttending(ctx context.Context, eventID uuid.UUID) (int, error)
	CountWaitlisted(ctx context.Context, eventID uuid.UUID) (int, error)
	// MaxWaitlistOrder returns the highest order ever handed out for the
	// event's current waitlist, 0 when the waitlist is empty.
	MaxWaitlistOrder(ctx context.Context, eventID uuid.UUID) (int, error)
	// NextWaitlisted returns the waitlisted member with the lowest order,
	// nil when the waitlist is empty.
	NextWaitlisted(ctx context.Context, eventID uuid.UUID) (*Membership, error)
	// WaitlistPosition returns the 1-based rank of the user among waitlisted
	// members, computed from surviving orders; 0 when not waitlisted.
	WaitlistPosition(ctx context.Context, eventID, userID uuid.UUID) (int, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]Membership, error)
}

// MemoryStore is an in-process Store. It backs tests and makes the engine
// usable without any external storage.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Membership
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Membership)}
}

func memoryKey(eventID, userID uuid.UUID) string {
	return eventID.String() + "_" + userID.String()
}

func (s *MemoryStore) Get(_ context.Context, eventID, userID uuid.UUID) (Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m, ok := s.records[memoryKey(eventID, userID)]; ok {
		return m, nil
	}
	return newNone(eventID, userID), nil
}

func (s *MemoryStore) Put(_ context.Context, m Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	s.records[memoryKey(m.EventID, m.UserID)] = m
	return nil
}

func (s *MemoryStore) CountAttending(_ context.Context, eventID uuid.UUID) (int, error) {
	return s.countByState(eventID, StateAttending), nil
}

func (s *MemoryStore) CountWaitlisted(_ context.Context, eventID uuid.UUID) (int, error) {
	return s.countByState(eventID, StateWaitlisted), nil
}

func (s *MemoryStore) countByState(eventID uuid.UUID, state State) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, m := range s.records {
		if m.EventID == eventID && m.State == state {
			count++
		}
	}
	return count
}

func (s *MemoryStore) MaxWaitlistOrder(_ context.Context, eventID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	max := 0
	for _, m := range s.records {
		if m.EventID == eventID && m.State == StateWaitlisted && m.WaitlistOrder != nil && *m.WaitlistOrder > max {
			max = *m.WaitlistOrder
		}
	}
	return max, nil
}

func (s *MemoryStore) NextWaitlisted(_ context.Context, eventID uuid.UUID) (*Membership, error) {
	waitlisted := s.waitlistedSorted(eventID)
	if len(waitlisted) == 0 {
		return nil, nil
	}
	next := waitlisted[0]
	return &next, nil
}

func (s *MemoryStore) WaitlistPosition(_ context.Context, eventID, userID uuid.UUID) (int, error) {
	waitlisted := s.waitlistedSorted(eventID)
	for i, m := range waitlisted {
		if m.UserID == userID {
			return i + 1, nil
		}
	}
	return 0, nil
}

func (s *MemoryStore) waitlistedSorted(eventID uuid.UUID) []Membership {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var waitlisted []Membership
	for _, m := range s.records {
		if m.EventID == eventID && m.State == StateWaitlisted && m.WaitlistOrder != nil {
			waitlisted = append(waitlisted, m)
		}
	}
	sort.Slice(waitlisted, func(i, j int) bool {
		return *waitlisted[i].WaitlistOrder < *waitlisted[j].WaitlistOrder
	})
	return waitlisted
}

func (s *MemoryStore) ListByUser(_ context.Context, userID uuid.UUID) ([]Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Membership
	for _, m := range s.records {
		if m.UserID == userID && m.State != StateNone {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.Before(result[j].UpdatedAt)
	})
	return result, nil
}

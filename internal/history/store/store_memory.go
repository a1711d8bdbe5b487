package store

import (
	"context"
	"slices"
	"sync"

	"tickethub/internal/history/models"
	id "tickethub/pkg/domain"
)

// InMemoryStore is a ticket store for tests and local runs.
type InMemoryStore struct {
	mu        sync.RWMutex
	mode      id.Mode
	tickets   map[models.ListKind][]models.Ticket
	schedules map[id.ScheduleID]models.ScheduleReference
	classes   map[int64]string
	readErr   error
}

// NewInMemory constructs an empty ticket store for mode.
func NewInMemory(mode id.Mode) *InMemoryStore {
	return &InMemoryStore{
		mode:      mode,
		tickets:   make(map[models.ListKind][]models.Ticket),
		schedules: make(map[id.ScheduleID]models.ScheduleReference),
		classes:   make(map[int64]string),
	}
}

func (s *InMemoryStore) Mode() id.Mode { return s.mode }

// AddTicket appends t to the given list.
func (s *InMemoryStore) AddTicket(kind models.ListKind, t models.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[kind] = append(s.tickets[kind], t)
}

// AddSchedule stores ref under its schedule id.
func (s *InMemoryStore) AddSchedule(ref models.ScheduleReference) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[ref.ScheduleID] = ref
}

// DeleteSchedule removes a schedule, leaving tickets that reference it.
func (s *InMemoryStore) DeleteSchedule(scheduleID id.ScheduleID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.schedules, scheduleID)
}

// AddClass names a class (air) or coach (train) referenced by tickets.
func (s *InMemoryStore) AddClass(classRefID int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes[classRefID] = name
}

// FailReads makes every subsequent read return err. Nil restores reads.
func (s *InMemoryStore) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

func (s *InMemoryStore) ListTickets(ctx context.Context, kind models.ListKind, userID id.UserID) ([]models.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := tableFor(kind); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.readErr != nil {
		return nil, s.readErr
	}

	var out []models.Ticket
	for _, t := range s.tickets[kind] {
		if t.UserID == userID {
			t.Seats = slices.Clone(t.Seats)
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *InMemoryStore) ResolveSchedule(ctx context.Context, scheduleID id.ScheduleID, classRefID int64) (*models.ScheduleReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.readErr != nil {
		return nil, s.readErr
	}

	ref, ok := s.schedules[scheduleID]
	if !ok {
		return nil, ErrNotFound
	}
	if s.mode != id.ModeBus {
		ref.ClassName = s.classes[classRefID]
	}
	return &ref, nil
}

func (s *InMemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readErr
}

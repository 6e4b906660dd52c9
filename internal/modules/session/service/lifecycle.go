package service

import (
	"context"
	"fmt"
	"sync"

	"pokerlog/internal/modules/session/domain"
	sessionout "pokerlog/internal/modules/session/port/out"
	"pokerlog/internal/platform/clock"
	apperrors "pokerlog/internal/platform/errors"
	"pokerlog/internal/platform/id"
)

// LifecycleManager owns the single "current" session slot. All operations are
// serialized; each one mutates the in-memory record first, then stages it and asks
// the repository to save. A failed save is returned as is and the mutation stays
// applied. The current record never leaves the manager: callers get copies.
type LifecycleManager struct {
	mu      sync.Mutex
	clock   clock.Clock
	idGen   id.Generator
	repo    sessionout.Repository
	seats   int
	current *domain.Session
	recap   *domain.Session
}

func NewLifecycleManager(clock clock.Clock, idGen id.Generator, repo sessionout.Repository, seats int) *LifecycleManager {
	if seats <= 0 {
		seats = domain.DefaultSeats
	}
	return &LifecycleManager{clock: clock, idGen: idGen, repo: repo, seats: seats}
}

// Create assigns an id and inserts draft in setup status.
func (m *LifecycleManager) Create(ctx context.Context, draft *domain.Session) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	draft.ID = m.idGen.New()
	draft.Status = domain.StatusSetup
	draft.CreatedAt = m.clock.Now()
	if draft.IsTournament() && len(draft.BlindLevels) > 0 {
		first, _ := draft.Schedule().First()
		draft.CurrentBlindLevelNumber = first.LevelNumber
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	if err := m.repo.Insert(ctx, draft); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	if err := m.repo.Save(ctx); err != nil {
		return draft, fmt.Errorf("save session %s: %w", draft.ID, err)
	}
	return draft, nil
}

// Start activates s and makes it the current session, detaching any previous one.
// The manager takes ownership of s; the caller keeps using the returned copy.
// detached is the id of the session that lost the slot, if any.
func (m *LifecycleManager) Start(ctx context.Context, s *domain.Session) (started *domain.Session, detached string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := s.Start(m.clock.Now()); err != nil {
		return nil, "", err
	}
	if m.current != nil && m.current.ID != s.ID {
		detached = m.current.ID
	}
	m.current = s
	return s.Clone(), detached, m.save(ctx, s)
}

// Restore reattaches a live session loaded from storage when the slot is empty.
// The manager takes ownership of s.
func (m *LifecycleManager) Restore(s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !s.Status.Live() {
		return &domain.TransitionError{Op: "restore", From: s.Status}
	}
	if m.current == nil {
		m.current = s
	}
	return nil
}

// Current returns a copy of the current session.
func (m *LifecycleManager) Current() (*domain.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, false
	}
	return m.current.Clone(), true
}

// Detach empties the slot if it currently holds sessionID.
func (m *LifecycleManager) Detach(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || m.current.ID != sessionID {
		return false
	}
	m.current = nil
	return true
}

func (m *LifecycleManager) Pause(ctx context.Context) (*domain.Session, error) {
	return m.withCurrent(ctx, func(s *domain.Session) error { return s.Pause() })
}

func (m *LifecycleManager) Resume(ctx context.Context) (*domain.Session, error) {
	return m.withCurrent(ctx, func(s *domain.Session) error { return s.Resume() })
}

func (m *LifecycleManager) RecordObservation(ctx context.Context, amount int64, source domain.StackSource) (*domain.Session, error) {
	return m.withCurrent(ctx, func(s *domain.Session) error {
		_, err := s.RecordStack(m.clock.Now(), amount, source)
		return err
	})
}

func (m *LifecycleManager) AddOn(ctx context.Context, amount int64) (*domain.Session, error) {
	return m.withCurrent(ctx, func(s *domain.Session) error { return s.AddOn(amount) })
}

func (m *LifecycleManager) Rebuy(ctx context.Context) (*domain.Session, error) {
	return m.withCurrent(ctx, func(s *domain.Session) error { return s.Rebuy() })
}

func (m *LifecycleManager) CollectBounty(ctx context.Context, count int) (*domain.Session, error) {
	return m.withCurrent(ctx, func(s *domain.Session) error { return s.CollectBounty(count) })
}

func (m *LifecycleManager) UpdateField(ctx context.Context, fieldSize, playersRemaining int) (*domain.Session, error) {
	return m.withCurrent(ctx, func(s *domain.Session) error { return s.UpdateField(fieldSize, playersRemaining) })
}

// AdvanceBlindLevel reports apperrors.ErrNoFurtherLevels at the end of the schedule.
func (m *LifecycleManager) AdvanceBlindLevel(ctx context.Context) (*domain.Session, error) {
	return m.withCurrent(ctx, func(s *domain.Session) error {
		_, err := s.AdvanceBlindLevel()
		return err
	})
}

func (m *LifecycleManager) AddBlindLevel(ctx context.Context, level domain.BlindLevel) (*domain.Session, error) {
	return m.withCurrent(ctx, func(s *domain.Session) error { return s.AddBlindLevel(level) })
}

func (m *LifecycleManager) RemoveBlindLevel(ctx context.Context, levelNumber int) (*domain.Session, error) {
	return m.withCurrent(ctx, func(s *domain.Session) error { return s.RemoveBlindLevel(levelNumber) })
}

func (m *LifecycleManager) RecordHandNote(ctx context.Context, text string, stackBefore *int64) (*domain.Session, error) {
	return m.withCurrent(ctx, func(s *domain.Session) error {
		_, err := s.AddHandNote(m.clock.Now(), text, stackBefore)
		return err
	})
}

// Complete settles the current session, empties the slot and holds the record
// as the pending recap until TakeRecap is called.
func (m *LifecycleManager) Complete(ctx context.Context, finalAmount int64) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, apperrors.ErrNoActiveSession
	}
	s := m.current
	if err := s.Complete(m.clock.Now(), finalAmount); err != nil {
		return nil, err
	}
	m.current = nil
	m.recap = s
	return s.Clone(), m.save(ctx, s)
}

// TakeRecap hands out the last completed session once. Completed records are
// no longer mutated, so the record itself is handed over.
func (m *LifecycleManager) TakeRecap() (*domain.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.recap
	m.recap = nil
	return s, s != nil
}

func (m *LifecycleManager) Snapshot(s *domain.Session) domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.Compute(s, m.clock.Now(), m.seats)
}

func (m *LifecycleManager) withCurrent(ctx context.Context, fn func(*domain.Session) error) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, apperrors.ErrNoActiveSession
	}
	s := m.current
	if err := fn(s); err != nil {
		return nil, err
	}
	return s.Clone(), m.save(ctx, s)
}

// save stages s and saves. Callers hold m.mu, so the staged copy is consistent.
func (m *LifecycleManager) save(ctx context.Context, s *domain.Session) error {
	if err := m.repo.Insert(ctx, s); err != nil {
		return fmt.Errorf("stage session %s: %w", s.ID, err)
	}
	if err := m.repo.Save(ctx); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	apperrors "pokerlog/internal/platform/errors"
)

const SchemaVersion = 1

type Kind string

const (
	KindTournament Kind = "tournament"
	KindCash       Kind = "cash"
)

func (k Kind) Validate() error {
	switch k {
	case KindTournament, KindCash:
		return nil
	default:
		return fmt.Errorf("%w: unsupported session kind %q", apperrors.ErrInvalidInput, string(k))
	}
}

type Status string

const (
	StatusSetup     Status = "setup"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

var transitions = map[Status][]Status{
	StatusSetup:  {StatusActive},
	StatusActive: {StatusPaused, StatusCompleted},
	StatusPaused: {StatusActive, StatusCompleted},
}

func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Live reports whether observations and notes may still be recorded.
func (s Status) Live() bool {
	return s == StatusActive || s == StatusPaused
}

// TransitionError reports an operation attempted from a status that does not allow it.
type TransitionError struct {
	Op   string
	From Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s session in status %s", e.Op, e.From)
}

func (e *TransitionError) Unwrap() error { return apperrors.ErrInvalidStateTransition }

type StackSource string

const (
	SourceManual  StackSource = "manual"
	SourceInitial StackSource = "initial"
	SourceMessage StackSource = "derived-from-message"
)

// StackEntry is one immutable chip or dollar count observation.
type StackEntry struct {
	Seq              int
	Timestamp        time.Time
	ChipCount        int64
	BlindLevelNumber int
	SmallBlind       int64
	BigBlind         int64
	Ante             int64
	Source           StackSource
}

type HandNote struct {
	Seq              int
	Timestamp        time.Time
	Text             string
	StackBefore      int64
	BlindLevelNumber int
}

// ActiveSlot is the persisted pointer to the session a lifecycle manager tracks.
type ActiveSlot struct {
	SessionID string    `json:"session_id"`
	StartedAt time.Time `json:"started_at"`
}

// Session is one played tournament or cash game together with the children it owns.
// Pointer fields are unset until known.
type Session struct {
	ID         string
	Kind       Kind
	Status     Status
	GameType   GameType
	Stakes     string
	Location   string
	Notes      string
	IsImported bool
	CreatedAt  time.Time
	StartTime  time.Time
	EndTime    *time.Time

	// Tournament.
	BuyIn                   int64
	EntryFee                int64
	Deductions              int64
	BountyAmount            int64
	Guarantee               int64
	StartingChips           int64
	RebuysUsed              int
	BountiesCollected       int
	FieldSize               int
	PlayersRemaining        int
	PayoutPercent           float64
	Payout                  *int64
	CurrentBlindLevelNumber int
	BlindLevels             []BlindLevel

	// Cash.
	BuyInTotal int64
	CashOut    *int64

	StackEntries []StackEntry
	HandNotes    []HandNote
}

func (s *Session) IsTournament() bool { return s.Kind == KindTournament }

// Clone returns a deep copy that shares no mutable state with s. GameType is
// immutable and stays shared.
func (s *Session) Clone() *Session {
	c := *s
	c.EndTime = clonePtr(s.EndTime)
	c.Payout = clonePtr(s.Payout)
	c.CashOut = clonePtr(s.CashOut)
	c.BlindLevels = slices.Clone(s.BlindLevels)
	c.StackEntries = slices.Clone(s.StackEntries)
	c.HandNotes = slices.Clone(s.HandNotes)
	return &c
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Validate checks field ranges, the field-size bound and the blind schedule.
func (s *Session) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: id is required", apperrors.ErrInvalidInput)
	}
	if err := s.Kind.Validate(); err != nil {
		return err
	}
	for name, v := range map[string]int64{
		"buy-in": s.BuyIn, "entry fee": s.EntryFee, "deductions": s.Deductions,
		"bounty amount": s.BountyAmount, "guarantee": s.Guarantee, "buy-in total": s.BuyInTotal,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s must be non-negative", apperrors.ErrInvalidInput, name)
		}
	}
	if s.RebuysUsed < 0 || s.BountiesCollected < 0 || s.FieldSize < 0 || s.PlayersRemaining < 0 {
		return fmt.Errorf("%w: counters must be non-negative", apperrors.ErrInvalidInput)
	}
	if s.FieldSize > 0 && s.PlayersRemaining > s.FieldSize {
		return fmt.Errorf("%w: players remaining %d exceeds field size %d", apperrors.ErrInvalidInput, s.PlayersRemaining, s.FieldSize)
	}
	if s.PayoutPercent < 0 || s.PayoutPercent > 100 {
		return fmt.Errorf("%w: payout percent must be within 0..100", apperrors.ErrInvalidInput)
	}
	if s.IsTournament() && !s.IsImported && s.StartingChips <= 0 {
		return fmt.Errorf("%w: starting chips must be positive", apperrors.ErrInvalidInput)
	}
	seen := map[int]bool{}
	for _, l := range s.BlindLevels {
		if seen[l.LevelNumber] {
			return fmt.Errorf("%w: duplicate blind level %d", apperrors.ErrInvalidInput, l.LevelNumber)
		}
		seen[l.LevelNumber] = true
		if err := l.Validate(); err != nil {
			return err
		}
	}
	if len(s.BlindLevels) > 0 && !seen[s.CurrentBlindLevelNumber] {
		return fmt.Errorf("%w: current blind level %d is not in the schedule", apperrors.ErrInvalidInput, s.CurrentBlindLevelNumber)
	}
	return nil
}

// Schedule is a fresh ordered view over the session's blind levels.
func (s *Session) Schedule() BlindSchedule {
	return NewBlindSchedule(s.BlindLevels)
}

func (s *Session) CurrentLevel() (BlindLevel, bool) {
	return s.Schedule().CurrentLevel(s.CurrentBlindLevelNumber)
}

// LatestStack is the most recent observation, if any.
func (s *Session) LatestStack() (StackEntry, bool) {
	if len(s.StackEntries) == 0 {
		return StackEntry{}, false
	}
	return s.StackEntries[len(s.StackEntries)-1], true
}

// TerminalAmount is the payout or cash-out, nil until the session is settled.
func (s *Session) TerminalAmount() *int64 {
	if s.IsTournament() {
		return s.Payout
	}
	return s.CashOut
}

// Duration is measured from StartTime to EndTime, or to now while still running.
func (s *Session) Duration(now time.Time) time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	if d := end.Sub(s.StartTime); d > 0 {
		return d
	}
	return 0
}

package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "pokerlog/internal/platform/errors"
)

// Start moves a session out of setup and seeds the initial observation.
func (s *Session) Start(now time.Time) error {
	if s.Status != StatusSetup {
		return &TransitionError{Op: "start", From: s.Status}
	}
	s.Status = StatusActive
	s.StartTime = now
	if s.IsTournament() {
		if first, ok := s.Schedule().First(); ok {
			if _, exists := s.CurrentLevel(); !exists {
				s.CurrentBlindLevelNumber = first.LevelNumber
			}
		}
		s.appendStack(now, s.StartingChips, SourceInitial)
	} else {
		s.appendStack(now, s.BuyInTotal, SourceInitial)
	}
	return nil
}

func (s *Session) Pause() error {
	if s.Status != StatusActive {
		return &TransitionError{Op: "pause", From: s.Status}
	}
	s.Status = StatusPaused
	return nil
}

func (s *Session) Resume() error {
	if s.Status != StatusPaused {
		return &TransitionError{Op: "resume", From: s.Status}
	}
	s.Status = StatusActive
	return nil
}

// Complete settles the session with its payout (tournament) or cash-out (cash).
func (s *Session) Complete(now time.Time, finalAmount int64) error {
	if !s.Status.CanTransition(StatusCompleted) {
		return &TransitionError{Op: "complete", From: s.Status}
	}
	if finalAmount < 0 {
		return fmt.Errorf("%w: final amount must be non-negative", apperrors.ErrInvalidInput)
	}
	amount := finalAmount
	if s.IsTournament() {
		s.Payout = &amount
	} else {
		s.CashOut = &amount
	}
	end := now
	if end.Before(s.StartTime) {
		end = s.StartTime
	}
	s.EndTime = &end
	s.Status = StatusCompleted
	return nil
}

func (s *Session) RecordStack(now time.Time, amount int64, source StackSource) (StackEntry, error) {
	if !s.Status.Live() {
		return StackEntry{}, &TransitionError{Op: "record stack for", From: s.Status}
	}
	if amount < 0 {
		return StackEntry{}, fmt.Errorf("%w: stack must be non-negative", apperrors.ErrInvalidInput)
	}
	if source == "" || source == SourceInitial {
		source = SourceManual
	}
	return s.appendStack(now, amount, source), nil
}

func (s *Session) AddOn(amount int64) error {
	if s.IsTournament() {
		return fmt.Errorf("%w: add-on is cash only", apperrors.ErrWrongSessionKind)
	}
	if !s.Status.Live() {
		return &TransitionError{Op: "add on to", From: s.Status}
	}
	if amount <= 0 {
		return fmt.Errorf("%w: add-on amount must be positive", apperrors.ErrInvalidInput)
	}
	s.BuyInTotal += amount
	return nil
}

func (s *Session) Rebuy() error {
	if err := s.requireLiveTournament("rebuy in"); err != nil {
		return err
	}
	s.RebuysUsed++
	return nil
}

func (s *Session) CollectBounty(count int) error {
	if err := s.requireLiveTournament("collect bounty in"); err != nil {
		return err
	}
	if count <= 0 {
		return fmt.Errorf("%w: bounty count must be positive", apperrors.ErrInvalidInput)
	}
	s.BountiesCollected += count
	return nil
}

// UpdateField sets the entrant count and players left; zero leaves a value unchanged.
func (s *Session) UpdateField(fieldSize, playersRemaining int) error {
	if err := s.requireLiveTournament("update field of"); err != nil {
		return err
	}
	if fieldSize < 0 || playersRemaining < 0 {
		return fmt.Errorf("%w: field values must be non-negative", apperrors.ErrInvalidInput)
	}
	nextField, nextRemaining := s.FieldSize, s.PlayersRemaining
	if fieldSize > 0 {
		nextField = fieldSize
	}
	if playersRemaining > 0 {
		nextRemaining = playersRemaining
	}
	if nextField > 0 && nextRemaining > nextField {
		return fmt.Errorf("%w: players remaining %d exceeds field size %d", apperrors.ErrInvalidInput, nextRemaining, nextField)
	}
	s.FieldSize, s.PlayersRemaining = nextField, nextRemaining
	return nil
}

// AdvanceBlindLevel moves to the next scheduled level and never past the last one.
func (s *Session) AdvanceBlindLevel() (BlindLevel, error) {
	if err := s.requireLiveTournament("advance blinds of"); err != nil {
		return BlindLevel{}, err
	}
	next, ok := s.Schedule().Next(s.CurrentBlindLevelNumber)
	if !ok {
		return BlindLevel{}, apperrors.ErrNoFurtherLevels
	}
	s.CurrentBlindLevelNumber = next.LevelNumber
	return next, nil
}

func (s *Session) AddBlindLevel(level BlindLevel) error {
	if !s.IsTournament() {
		return fmt.Errorf("%w: blind levels are tournament only", apperrors.ErrWrongSessionKind)
	}
	if s.Status == StatusCompleted {
		return &TransitionError{Op: "edit blinds of", From: s.Status}
	}
	if err := level.Validate(); err != nil {
		return err
	}
	if _, exists := s.Schedule().CurrentLevel(level.LevelNumber); exists {
		return fmt.Errorf("%w: blind level %d already exists", apperrors.ErrInvalidInput, level.LevelNumber)
	}
	s.BlindLevels = append(s.BlindLevels, level)
	if _, ok := s.CurrentLevel(); !ok {
		first, _ := s.Schedule().First()
		s.CurrentBlindLevelNumber = first.LevelNumber
	}
	return nil
}

func (s *Session) RemoveBlindLevel(levelNumber int) error {
	if !s.IsTournament() {
		return fmt.Errorf("%w: blind levels are tournament only", apperrors.ErrWrongSessionKind)
	}
	if s.Status == StatusCompleted {
		return &TransitionError{Op: "edit blinds of", From: s.Status}
	}
	idx := -1
	for i, l := range s.BlindLevels {
		if l.LevelNumber == levelNumber {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: blind level %d", apperrors.ErrNotFound, levelNumber)
	}
	s.BlindLevels = append(s.BlindLevels[:idx:idx], s.BlindLevels[idx+1:]...)
	if s.CurrentBlindLevelNumber == levelNumber {
		s.CurrentBlindLevelNumber = 0
		if nearest, ok := s.Schedule().Nearest(levelNumber); ok {
			s.CurrentBlindLevelNumber = nearest.LevelNumber
		}
	}
	return nil
}

// AddHandNote captures stackBefore from the latest observation unless overridden.
func (s *Session) AddHandNote(now time.Time, text string, stackBefore *int64) (HandNote, error) {
	if !s.Status.Live() {
		return HandNote{}, &TransitionError{Op: "add hand note to", From: s.Status}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return HandNote{}, fmt.Errorf("%w: hand note text is required", apperrors.ErrInvalidInput)
	}
	var before int64
	if stackBefore != nil {
		before = *stackBefore
	} else if latest, ok := s.LatestStack(); ok {
		before = latest.ChipCount
	}
	note := HandNote{
		Seq:              len(s.HandNotes),
		Timestamp:        monotonic(lastNoteTime(s.HandNotes), now),
		Text:             text,
		StackBefore:      before,
		BlindLevelNumber: s.CurrentBlindLevelNumber,
	}
	s.HandNotes = append(s.HandNotes, note)
	return note, nil
}

func (s *Session) requireLiveTournament(op string) error {
	if !s.IsTournament() {
		return fmt.Errorf("%w: %s a cash game", apperrors.ErrWrongSessionKind, op)
	}
	if !s.Status.Live() {
		return &TransitionError{Op: op, From: s.Status}
	}
	return nil
}

func (s *Session) appendStack(now time.Time, amount int64, source StackSource) StackEntry {
	var last time.Time
	if latest, ok := s.LatestStack(); ok {
		last = latest.Timestamp
	}
	entry := StackEntry{
		Seq:              len(s.StackEntries),
		Timestamp:        monotonic(last, now),
		ChipCount:        amount,
		BlindLevelNumber: s.CurrentBlindLevelNumber,
		Source:           source,
	}
	if s.IsTournament() {
		if blinds, ok := s.Schedule().ActiveBlinds(s.CurrentBlindLevelNumber); ok {
			entry.SmallBlind, entry.BigBlind, entry.Ante = blinds.SmallBlind, blinds.BigBlind, blinds.Ante
		}
	}
	s.StackEntries = append(s.StackEntries, entry)
	return entry
}

// monotonic keeps child timestamps non-decreasing when the clock steps backwards.
func monotonic(last, now time.Time) time.Time {
	if now.Before(last) {
		return last
	}
	return now
}

func lastNoteTime(notes []HandNote) time.Time {
	if len(notes) == 0 {
		return time.Time{}
	}
	return notes[len(notes)-1].Timestamp
}

package domain

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	apperrors "pokerlog/internal/platform/errors"
)

// DefaultSeats is the orbit size used when no seat count is configured.
const DefaultSeats = 9

type BlindLevel struct {
	LevelNumber     int    `yaml:"level"`
	SmallBlind      int64  `yaml:"sb"`
	BigBlind        int64  `yaml:"bb"`
	Ante            int64  `yaml:"ante"`
	DurationMinutes int    `yaml:"minutes"`
	IsBreak         bool   `yaml:"break"`
	BreakLabel      string `yaml:"label,omitempty"`
}

func (l BlindLevel) Validate() error {
	if l.SmallBlind < 0 || l.BigBlind < 0 || l.Ante < 0 {
		return fmt.Errorf("%w: level %d has negative blinds", apperrors.ErrInvalidInput, l.LevelNumber)
	}
	if l.DurationMinutes < 0 {
		return fmt.Errorf("%w: level %d has negative duration", apperrors.ErrInvalidInput, l.LevelNumber)
	}
	if l.IsBreak {
		return nil
	}
	if l.SmallBlind <= 0 || l.BigBlind < l.SmallBlind {
		return fmt.Errorf("%w: level %d needs big blind >= small blind > 0", apperrors.ErrInvalidInput, l.LevelNumber)
	}
	return nil
}

// BlindSchedule is an ordered view over a tournament's levels. It is rebuilt from
// the owning session on every read, so display numbers always reflect the latest edits.
type BlindSchedule struct {
	levels []BlindLevel
}

func NewBlindSchedule(levels []BlindLevel) BlindSchedule {
	sorted := append([]BlindLevel(nil), levels...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].LevelNumber < sorted[j].LevelNumber })
	return BlindSchedule{levels: sorted}
}

func (s BlindSchedule) SortedLevels() []BlindLevel {
	return append([]BlindLevel(nil), s.levels...)
}

func (s BlindSchedule) Len() int { return len(s.levels) }

// DisplayLevelNumbers maps internal level numbers to the 1-based numbering players
// see. Breaks get no entry and do not advance the counter.
func (s BlindSchedule) DisplayLevelNumbers() map[int]int {
	out := make(map[int]int, len(s.levels))
	playable := lo.Filter(s.levels, func(l BlindLevel, _ int) bool { return !l.IsBreak })
	for i, l := range playable {
		out[l.LevelNumber] = i + 1
	}
	return out
}

func (s BlindSchedule) DisplayNumber(levelNumber int) (int, bool) {
	n, ok := s.DisplayLevelNumbers()[levelNumber]
	return n, ok
}

func (s BlindSchedule) CurrentLevel(levelNumber int) (BlindLevel, bool) {
	return lo.Find(s.levels, func(l BlindLevel) bool { return l.LevelNumber == levelNumber })
}

func (s BlindSchedule) First() (BlindLevel, bool) {
	if len(s.levels) == 0 {
		return BlindLevel{}, false
	}
	return s.levels[0], true
}

// Next returns the level following levelNumber in schedule order, breaks included.
func (s BlindSchedule) Next(levelNumber int) (BlindLevel, bool) {
	for _, l := range s.levels {
		if l.LevelNumber > levelNumber {
			return l, true
		}
	}
	return BlindLevel{}, false
}

// ActiveBlinds resolves the blinds in force at levelNumber. During a break the
// last playable level before it still applies.
func (s BlindSchedule) ActiveBlinds(levelNumber int) (BlindLevel, bool) {
	var found BlindLevel
	ok := false
	for _, l := range s.levels {
		if l.LevelNumber > levelNumber {
			break
		}
		if !l.IsBreak {
			found, ok = l, true
		}
	}
	return found, ok
}

// Nearest returns the remaining level closest to levelNumber, preferring the earlier one on ties.
func (s BlindSchedule) Nearest(levelNumber int) (BlindLevel, bool) {
	if len(s.levels) == 0 {
		return BlindLevel{}, false
	}
	return lo.MinBy(s.levels, func(a, b BlindLevel) bool {
		da, db := abs(a.LevelNumber-levelNumber), abs(b.LevelNumber-levelNumber)
		if da == db {
			return a.LevelNumber < b.LevelNumber
		}
		return da < db
	}), true
}

// OrbitCost is what one trip around a table of seats players costs at level.
func OrbitCost(level BlindLevel, seats int) int64 {
	if seats <= 0 {
		seats = DefaultSeats
	}
	return level.SmallBlind + level.BigBlind + int64(seats)*level.Ante
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

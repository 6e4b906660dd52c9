package domain

import (
	"math"
	"time"
)

type Zone string

const (
	ZoneGreen  Zone = "green"
	ZoneYellow Zone = "yellow"
	ZoneOrange Zone = "orange"
	ZoneRed    Zone = "red"
)

var zoneAdvice = map[Zone]string{
	ZoneGreen:  "Deep stack: play your full range and pressure shorter stacks.",
	ZoneYellow: "Comfortable: tighten opens and look for re-steal spots.",
	ZoneOrange: "Short: favour open-shoves and re-shoves over flatting.",
	ZoneRed:    "Push or fold: pick the first reasonable spot to get it in.",
}

func (z Zone) Advice() string { return zoneAdvice[z] }

// BBCount is the stack measured in big blinds; 0 when the big blind is unknown.
func BBCount(chipCount, bigBlind int64) float64 {
	if bigBlind <= 0 {
		return 0
	}
	return float64(chipCount) / float64(bigBlind)
}

// MRatio is the number of orbits the stack survives; 0 when an orbit costs nothing.
func MRatio(chipCount, smallBlind, bigBlind, ante int64, seats int) float64 {
	orbit := smallBlind + bigBlind + int64(seats)*ante
	if orbit <= 0 {
		return 0
	}
	return float64(chipCount) / float64(orbit)
}

// ZoneFromMRatio bands: [20,inf) green, [10,20) yellow, [5,10) orange, below 5 red.
func ZoneFromMRatio(m float64) Zone {
	switch {
	case m >= 20:
		return ZoneGreen
	case m >= 10:
		return ZoneYellow
	case m >= 5:
		return ZoneOrange
	default:
		return ZoneRed
	}
}

// ZoneFromBB bands: [30,inf) green, [15,30) yellow, [8,15) orange, below 8 red.
func ZoneFromBB(bb float64) Zone {
	switch {
	case bb >= 30:
		return ZoneGreen
	case bb >= 15:
		return ZoneYellow
	case bb >= 8:
		return ZoneOrange
	default:
		return ZoneRed
	}
}

// AverageStack is the starting chips in play spread over the players left.
func AverageStack(s *Session) int64 {
	if s.FieldSize <= 0 || s.PlayersRemaining <= 0 {
		return 0
	}
	return int64(s.FieldSize) * s.StartingChips / int64(s.PlayersRemaining)
}

// PrizePool counts buy-ins only; fees and deductions are excluded.
func PrizePool(s *Session) int64 {
	return s.BuyIn * int64(s.FieldSize)
}

// Overlay is the part of the guarantee the buy-ins do not cover.
func Overlay(s *Session) int64 {
	if s.Guarantee <= 0 {
		return 0
	}
	return max(0, s.Guarantee-PrizePool(s))
}

// PlayersNeededForGuarantee is how many more entrants the buy-ins need to reach the guarantee.
func PlayersNeededForGuarantee(s *Session) int {
	if s.Guarantee <= 0 || s.BuyIn <= 0 {
		return 0
	}
	needed := int((s.Guarantee + s.BuyIn - 1) / s.BuyIn)
	return max(0, needed-s.FieldSize)
}

// EstimatedBubbleDistance is negative once the field is already in the money.
func EstimatedBubbleDistance(s *Session) int {
	paid := math.Ceil(float64(s.FieldSize)*s.PayoutPercent/100 - 1e-9)
	return s.PlayersRemaining - int(paid)
}

// Profit is nil until the payout or cash-out is known.
func Profit(s *Session) *int64 {
	final := s.TerminalAmount()
	if final == nil {
		return nil
	}
	var p int64
	if s.IsTournament() {
		cost := (s.BuyIn + s.EntryFee) * int64(1+s.RebuysUsed)
		p = *final + int64(s.BountiesCollected)*s.BountyAmount - cost
	} else {
		p = *final - s.BuyInTotal
	}
	return &p
}

// HourlyRate is nil when profit is unknown or no time has elapsed.
func HourlyRate(s *Session, now time.Time) *float64 {
	profit := Profit(s)
	hours := s.Duration(now).Seconds() / 3600
	if profit == nil || hours <= 0 {
		return nil
	}
	rate := float64(*profit) / hours
	return &rate
}

// Snapshot is the derived view of a session at a point in time.
type Snapshot struct {
	LatestStack    int64
	HasStack       bool
	Level          *BlindLevel
	DisplayLevel   int
	OrbitCost      int64
	BB             float64
	M              float64
	BBZone         Zone
	MZone          Zone
	AverageStack   int64
	PrizePool      int64
	Overlay        int64
	PlayersNeeded  int
	BubbleDistance int
	Profit         *int64
	Duration       time.Duration
	HourlyRate     *float64
}

func Compute(s *Session, now time.Time, seats int) Snapshot {
	if seats <= 0 {
		seats = DefaultSeats
	}
	snap := Snapshot{
		Profit:     Profit(s),
		Duration:   s.Duration(now),
		HourlyRate: HourlyRate(s, now),
	}
	if latest, ok := s.LatestStack(); ok {
		snap.LatestStack, snap.HasStack = latest.ChipCount, true
	}
	if !s.IsTournament() {
		return snap
	}

	schedule := s.Schedule()
	if level, ok := schedule.CurrentLevel(s.CurrentBlindLevelNumber); ok {
		snap.Level = &level
		snap.DisplayLevel, _ = schedule.DisplayNumber(level.LevelNumber)
	}
	if blinds, ok := schedule.ActiveBlinds(s.CurrentBlindLevelNumber); ok {
		snap.OrbitCost = OrbitCost(blinds, seats)
		snap.BB = BBCount(snap.LatestStack, blinds.BigBlind)
		snap.M = MRatio(snap.LatestStack, blinds.SmallBlind, blinds.BigBlind, blinds.Ante, seats)
	}
	snap.BBZone = ZoneFromBB(snap.BB)
	snap.MZone = ZoneFromMRatio(snap.M)
	snap.AverageStack = AverageStack(s)
	snap.PrizePool = PrizePool(s)
	snap.Overlay = Overlay(s)
	snap.PlayersNeeded = PlayersNeededForGuarantee(s)
	if s.FieldSize > 0 && s.PlayersRemaining > 0 {
		snap.BubbleDistance = EstimatedBubbleDistance(s)
	}
	return snap
}

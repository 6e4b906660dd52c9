package usecase

import (
	"time"

	"github.com/samber/lo"

	"pokerlog/internal/modules/session/domain"
	sessiondto "pokerlog/internal/modules/session/dto"
)

func (i *Interactor) output(s *domain.Session) sessiondto.SessionOutput {
	snap := i.svc.Snapshot(s)
	display := s.Schedule().DisplayLevelNumbers()
	out := sessiondto.SessionOutput{
		ID:                s.ID,
		Kind:              string(s.Kind),
		Status:            string(s.Status),
		GameType:          s.GameType.RawValue(),
		GameLabel:         s.GameType.Label(),
		Stakes:            s.Stakes,
		Location:          s.Location,
		IsImported:        s.IsImported,
		StartTime:         s.StartTime,
		EndTime:           s.EndTime,
		BuyIn:             s.BuyIn,
		EntryFee:          s.EntryFee,
		BuyInTotal:        s.BuyInTotal,
		StartingChips:     s.StartingChips,
		RebuysUsed:        s.RebuysUsed,
		BountiesCollected: s.BountiesCollected,
		FieldSize:         s.FieldSize,
		PlayersRemaining:  s.PlayersRemaining,
		TerminalAmount:    s.TerminalAmount(),
		Levels: lo.Map(s.Schedule().SortedLevels(), func(l domain.BlindLevel, _ int) sessiondto.LevelOutput {
			return levelOutput(l, display)
		}),
		Stack: lo.Map(s.StackEntries, func(e domain.StackEntry, _ int) sessiondto.StackOutput {
			return sessiondto.StackOutput{Timestamp: e.Timestamp, ChipCount: e.ChipCount, LevelNumber: e.BlindLevelNumber, BigBlind: e.BigBlind, Source: string(e.Source)}
		}),
		HandNotes: lo.Map(s.HandNotes, func(n domain.HandNote, _ int) sessiondto.HandNoteOutput {
			return sessiondto.HandNoteOutput{Timestamp: n.Timestamp, Text: n.Text, StackBefore: n.StackBefore}
		}),
		Metrics: sessiondto.MetricsOutput{
			LatestStack:    snap.LatestStack,
			BB:             snap.BB,
			M:              snap.M,
			BBZone:         string(snap.BBZone),
			MZone:          string(snap.MZone),
			Advice:         snap.MZone.Advice(),
			OrbitCost:      snap.OrbitCost,
			AverageStack:   snap.AverageStack,
			PrizePool:      snap.PrizePool,
			Overlay:        snap.Overlay,
			PlayersNeeded:  snap.PlayersNeeded,
			BubbleDistance: snap.BubbleDistance,
			Profit:         snap.Profit,
			HourlyRate:     snap.HourlyRate,
			Duration:       snap.Duration,
		},
	}
	if snap.Level != nil {
		lvl := levelOutput(*snap.Level, display)
		out.CurrentLevel = &lvl
	}
	return out
}

func levelOutput(l domain.BlindLevel, display map[int]int) sessiondto.LevelOutput {
	return sessiondto.LevelOutput{
		LevelNumber:     l.LevelNumber,
		DisplayNumber:   display[l.LevelNumber],
		SmallBlind:      l.SmallBlind,
		BigBlind:        l.BigBlind,
		Ante:            l.Ante,
		DurationMinutes: l.DurationMinutes,
		IsBreak:         l.IsBreak,
		BreakLabel:      l.BreakLabel,
	}
}

func sortKey(s *domain.Session) time.Time {
	if !s.StartTime.IsZero() {
		return s.StartTime
	}
	return s.CreatedAt
}

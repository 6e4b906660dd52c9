package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokerlog/internal/modules/session/domain"
)

func TestBBCount(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 25.0, domain.BBCount(5000, 200), 1e-9)
	assert.InDelta(t, 0.5, domain.BBCount(100, 200), 1e-9)
	assert.Equal(t, 0.0, domain.BBCount(5000, 0))
}

func TestMRatioUsesSeatsForAnte(t *testing.T) {
	t.Parallel()
	// orbit = 100 + 200 + 9*25 = 525
	assert.InDelta(t, 20.0, domain.MRatio(10500, 100, 200, 25, 9), 1e-9)
	assert.Equal(t, 0.0, domain.MRatio(10500, 0, 0, 0, 9))
}

func TestZoneFromMRatioBoundaries(t *testing.T) {
	t.Parallel()
	cases := map[float64]domain.Zone{
		20:     domain.ZoneGreen,
		19.999: domain.ZoneYellow,
		10:     domain.ZoneYellow,
		9.999:  domain.ZoneOrange,
		5:      domain.ZoneOrange,
		4.999:  domain.ZoneRed,
		0:      domain.ZoneRed,
		250:    domain.ZoneGreen,
	}
	for m, want := range cases {
		assert.Equal(t, want, domain.ZoneFromMRatio(m), "m=%v", m)
	}
}

func TestZoneFromBBUsesItsOwnScale(t *testing.T) {
	t.Parallel()
	assert.Equal(t, domain.ZoneGreen, domain.ZoneFromBB(30))
	assert.Equal(t, domain.ZoneYellow, domain.ZoneFromBB(29.9))
	assert.Equal(t, domain.ZoneYellow, domain.ZoneFromBB(15))
	assert.Equal(t, domain.ZoneOrange, domain.ZoneFromBB(14.9))
	assert.Equal(t, domain.ZoneOrange, domain.ZoneFromBB(8))
	assert.Equal(t, domain.ZoneRed, domain.ZoneFromBB(7.9))
	// 20 is green as an M ratio but only yellow in big blinds.
	assert.NotEqual(t, domain.ZoneFromMRatio(20), domain.ZoneFromBB(20))
	assert.NotEmpty(t, domain.ZoneRed.Advice())
}

func TestTournamentAggregates(t *testing.T) {
	t.Parallel()
	s := &domain.Session{
		Kind:             domain.KindTournament,
		BuyIn:            100,
		StartingChips:    20000,
		FieldSize:        100,
		PlayersRemaining: 10,
		PayoutPercent:    15,
		Guarantee:        15000,
	}
	assert.Equal(t, int64(200000), domain.AverageStack(s))
	assert.Equal(t, int64(10000), domain.PrizePool(s))
	assert.Equal(t, int64(5000), domain.Overlay(s))
	assert.Equal(t, 50, domain.PlayersNeededForGuarantee(s))
	assert.Equal(t, -5, domain.EstimatedBubbleDistance(s))

	s.Guarantee = 0
	assert.Zero(t, domain.Overlay(s))
	assert.Zero(t, domain.PlayersNeededForGuarantee(s))

	s.Guarantee = 5000
	assert.Zero(t, domain.Overlay(s))
	assert.Zero(t, domain.PlayersNeededForGuarantee(s))

	s.PlayersRemaining = 0
	assert.Zero(t, domain.AverageStack(s))
}

func TestPlayersNeededRoundsUp(t *testing.T) {
	t.Parallel()
	s := &domain.Session{Kind: domain.KindTournament, BuyIn: 300, Guarantee: 1000, FieldSize: 2}
	// ceil(1000/300) = 4
	assert.Equal(t, 2, domain.PlayersNeededForGuarantee(s))
}

func TestProfitUndefinedUntilSettled(t *testing.T) {
	t.Parallel()
	tourney := &domain.Session{
		Kind:              domain.KindTournament,
		BuyIn:             100,
		EntryFee:          10,
		RebuysUsed:        1,
		BountyAmount:      25,
		BountiesCollected: 2,
	}
	assert.Nil(t, domain.Profit(tourney))
	payout := int64(500)
	tourney.Payout = &payout
	require.NotNil(t, domain.Profit(tourney))
	// 500 + 2*25 - 110*2
	assert.Equal(t, int64(330), *domain.Profit(tourney))

	cash := &domain.Session{Kind: domain.KindCash, BuyInTotal: 300}
	assert.Nil(t, domain.Profit(cash))
	out := int64(120)
	cash.CashOut = &out
	assert.Equal(t, int64(-180), *domain.Profit(cash))
}

func TestHourlyRate(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	out := int64(500)
	s := &domain.Session{Kind: domain.KindCash, BuyInTotal: 300, StartTime: start}
	assert.Nil(t, domain.HourlyRate(s, end), "no cash-out yet")

	s.CashOut = &out
	s.EndTime = &end
	rate := domain.HourlyRate(s, end)
	require.NotNil(t, rate)
	assert.InDelta(t, 100.0, *rate, 1e-9)

	s.EndTime = &start
	assert.Nil(t, domain.HourlyRate(s, start), "zero duration must not divide")
}

func TestComputeUsesPreviousBlindsDuringBreak(t *testing.T) {
	t.Parallel()
	s := &domain.Session{
		Kind:          domain.KindTournament,
		Status:        domain.StatusActive,
		StartingChips: 10000,
		BlindLevels: []domain.BlindLevel{
			{LevelNumber: 1, SmallBlind: 50, BigBlind: 100},
			{LevelNumber: 2, IsBreak: true, BreakLabel: "Color up"},
			{LevelNumber: 3, SmallBlind: 100, BigBlind: 200, Ante: 25},
		},
		CurrentBlindLevelNumber: 2,
		StackEntries:            []domain.StackEntry{{ChipCount: 4000}},
	}
	snap := domain.Compute(s, time.Now(), 9)
	require.NotNil(t, snap.Level)
	assert.True(t, snap.Level.IsBreak)
	assert.Zero(t, snap.DisplayLevel)
	assert.Equal(t, int64(150), snap.OrbitCost)
	assert.InDelta(t, 40.0, snap.BB, 1e-9)
	assert.Equal(t, domain.ZoneGreen, snap.BBZone)
	assert.InDelta(t, 26.67, snap.M, 0.01)
	assert.Equal(t, domain.ZoneGreen, snap.MZone)
}

func TestParseStackMessage(t *testing.T) {
	t.Parallel()
	cases := map[string]int64{
		"down to 45k":             45000,
		"sitting on 12,500 chips": 12500,
		"1.2m after the double":   1200000,
		"had 30k, now 52.5K":      52500,
		"3150":                    3150,
	}
	for text, want := range cases {
		got, ok := domain.ParseStackMessage(text)
		require.True(t, ok, text)
		assert.Equal(t, want, got, text)
	}
	_, ok := domain.ParseStackMessage("busted")
	assert.False(t, ok)
}

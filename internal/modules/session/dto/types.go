package dto

import "time"

type LevelInput struct {
	LevelNumber     int   `validate:"gte=0"`
	SmallBlind      int64 `validate:"gte=0"`
	BigBlind        int64 `validate:"gte=0"`
	Ante            int64 `validate:"gte=0"`
	DurationMinutes int   `validate:"gte=0"`
	IsBreak         bool
	BreakLabel      string `validate:"max=64"`
}

// CreateInput describes a session in setup. Zero values fall back to configured defaults.
type CreateInput struct {
	Kind          string `validate:"required,oneof=tournament cash"`
	GameType      string `validate:"max=64"`
	Stakes        string `validate:"max=32"`
	Location      string `validate:"max=128"`
	Notes         string
	BuyIn         int64   `validate:"gte=0"`
	EntryFee      int64   `validate:"gte=0"`
	Deductions    int64   `validate:"gte=0"`
	BountyAmount  int64   `validate:"gte=0"`
	Guarantee     int64   `validate:"gte=0"`
	StartingChips int64   `validate:"gte=0"`
	FieldSize     int     `validate:"gte=0"`
	PayoutPercent float64 `validate:"gte=0,lte=100"`
	Structure     string
	Levels        []LevelInput `validate:"dive"`
}

type StartInput struct {
	SessionID string `validate:"required"`
}

type StackInput struct {
	Amount int64 `validate:"gte=0"`
}

type MessageInput struct {
	Text string `validate:"required"`
}

type AddOnInput struct {
	Amount int64 `validate:"gt=0"`
}

type BountyInput struct {
	Count int `validate:"gt=0"`
}

type FieldInput struct {
	FieldSize        int `validate:"gte=0"`
	PlayersRemaining int `validate:"gte=0"`
}

type RemoveLevelInput struct {
	LevelNumber int
}

type HandNoteInput struct {
	Text        string `validate:"required"`
	StackBefore *int64
}

type CompleteInput struct {
	FinalAmount int64 `validate:"gte=0"`
}

type StackOutput struct {
	Timestamp   time.Time
	ChipCount   int64
	LevelNumber int
	BigBlind    int64
	Source      string
}

type HandNoteOutput struct {
	Timestamp   time.Time
	Text        string
	StackBefore int64
}

type LevelOutput struct {
	LevelNumber     int
	DisplayNumber   int
	SmallBlind      int64
	BigBlind        int64
	Ante            int64
	DurationMinutes int
	IsBreak         bool
	BreakLabel      string
}

type MetricsOutput struct {
	LatestStack    int64
	BB             float64
	M              float64
	BBZone         string
	MZone          string
	Advice         string
	OrbitCost      int64
	AverageStack   int64
	PrizePool      int64
	Overlay        int64
	PlayersNeeded  int
	BubbleDistance int
	Profit         *int64
	HourlyRate     *float64
	Duration       time.Duration
}

type SessionOutput struct {
	ID                string
	Kind              string
	Status            string
	GameType          string
	GameLabel         string
	Stakes            string
	Location          string
	IsImported        bool
	StartTime         time.Time
	EndTime           *time.Time
	BuyIn             int64
	EntryFee          int64
	BuyInTotal        int64
	StartingChips     int64
	RebuysUsed        int
	BountiesCollected int
	FieldSize         int
	PlayersRemaining  int
	TerminalAmount    *int64
	CurrentLevel      *LevelOutput
	Levels            []LevelOutput
	Stack             []StackOutput
	HandNotes         []HandNoteOutput
	Metrics           MetricsOutput
}

type SessionSummary struct {
	ID         string
	Kind       string
	Status     string
	GameType   string
	Stakes     string
	Location   string
	StartTime  time.Time
	IsImported bool
	Profit     *int64
}

type RecapOutput struct {
	Session SessionOutput
	Path    string
}

package in

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sessiondto "pokerlog/internal/modules/session/dto"
	sessionin "pokerlog/internal/modules/session/port/in"
	apperrors "pokerlog/internal/platform/errors"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Create(ctx context.Context, input sessiondto.CreateInput) (sessiondto.SessionOutput, error) {
	return h.usecase.Create(ctx, input)
}

func (h CLIHandler) Start(ctx context.Context, sessionID string) (sessiondto.SessionOutput, error) {
	return h.usecase.Start(ctx, sessiondto.StartInput{SessionID: sessionID})
}

func (h CLIHandler) Pause(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.Pause(ctx)
}

func (h CLIHandler) Resume(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.Resume(ctx)
}

// Stack records a plain chip count, or falls back to reading the count out of free text.
func (h CLIHandler) Stack(ctx context.Context, raw string) (sessiondto.SessionOutput, error) {
	if n, err := strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""), 10, 64); err == nil {
		return h.usecase.RecordStack(ctx, sessiondto.StackInput{Amount: n})
	}
	return h.usecase.RecordMessage(ctx, sessiondto.MessageInput{Text: raw})
}

func (h CLIHandler) Message(ctx context.Context, text string) (sessiondto.SessionOutput, error) {
	return h.usecase.RecordMessage(ctx, sessiondto.MessageInput{Text: text})
}

func (h CLIHandler) AddOn(ctx context.Context, amount int64) (sessiondto.SessionOutput, error) {
	return h.usecase.AddOn(ctx, sessiondto.AddOnInput{Amount: amount})
}

func (h CLIHandler) Rebuy(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.Rebuy(ctx)
}

func (h CLIHandler) Bounty(ctx context.Context, count int) (sessiondto.SessionOutput, error) {
	return h.usecase.CollectBounty(ctx, sessiondto.BountyInput{Count: count})
}

func (h CLIHandler) Field(ctx context.Context, fieldSize, remaining int) (sessiondto.SessionOutput, error) {
	return h.usecase.UpdateField(ctx, sessiondto.FieldInput{FieldSize: fieldSize, PlayersRemaining: remaining})
}

func (h CLIHandler) NextLevel(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.AdvanceLevel(ctx)
}

func (h CLIHandler) AddLevel(ctx context.Context, level sessiondto.LevelInput) (sessiondto.SessionOutput, error) {
	return h.usecase.AddLevel(ctx, level)
}

func (h CLIHandler) RemoveLevel(ctx context.Context, levelNumber int) (sessiondto.SessionOutput, error) {
	return h.usecase.RemoveLevel(ctx, sessiondto.RemoveLevelInput{LevelNumber: levelNumber})
}

// Note attaches a hand note. stackBefore < 0 means "use the latest observation".
func (h CLIHandler) Note(ctx context.Context, text string, stackBefore int64) (sessiondto.SessionOutput, error) {
	input := sessiondto.HandNoteInput{Text: text}
	if stackBefore >= 0 {
		input.StackBefore = &stackBefore
	}
	return h.usecase.AddHandNote(ctx, input)
}

// Complete settles the active session and writes its recap note.
func (h CLIHandler) Complete(ctx context.Context, finalAmount int64) (sessiondto.RecapOutput, error) {
	if _, err := h.usecase.Complete(ctx, sessiondto.CompleteInput{FinalAmount: finalAmount}); err != nil {
		return sessiondto.RecapOutput{}, err
	}
	return h.usecase.TakeRecap(ctx)
}

// Show returns the session with id, or the active one when id is empty.
func (h CLIHandler) Show(ctx context.Context, id string) (sessiondto.SessionOutput, error) {
	if strings.TrimSpace(id) == "" {
		return h.usecase.GetActive(ctx)
	}
	return h.usecase.Get(ctx, id)
}

func (h CLIHandler) GetActive(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.GetActive(ctx)
}

func (h CLIHandler) List(ctx context.Context) ([]sessiondto.SessionSummary, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}
	return h.usecase.Delete(ctx, id)
}

func (h CLIHandler) Structures(ctx context.Context) ([]string, error) {
	return h.usecase.Structures(ctx)
}

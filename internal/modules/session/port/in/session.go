package in

import (
	"context"

	"pokerlog/internal/modules/session/dto"
)

type Usecase interface {
	Create(ctx context.Context, input dto.CreateInput) (dto.SessionOutput, error)
	Start(ctx context.Context, input dto.StartInput) (dto.SessionOutput, error)
	Pause(ctx context.Context) (dto.SessionOutput, error)
	Resume(ctx context.Context) (dto.SessionOutput, error)
	RecordStack(ctx context.Context, input dto.StackInput) (dto.SessionOutput, error)
	RecordMessage(ctx context.Context, input dto.MessageInput) (dto.SessionOutput, error)
	AddOn(ctx context.Context, input dto.AddOnInput) (dto.SessionOutput, error)
	Rebuy(ctx context.Context) (dto.SessionOutput, error)
	CollectBounty(ctx context.Context, input dto.BountyInput) (dto.SessionOutput, error)
	UpdateField(ctx context.Context, input dto.FieldInput) (dto.SessionOutput, error)
	AdvanceLevel(ctx context.Context) (dto.SessionOutput, error)
	AddLevel(ctx context.Context, input dto.LevelInput) (dto.SessionOutput, error)
	RemoveLevel(ctx context.Context, input dto.RemoveLevelInput) (dto.SessionOutput, error)
	AddHandNote(ctx context.Context, input dto.HandNoteInput) (dto.SessionOutput, error)
	Complete(ctx context.Context, input dto.CompleteInput) (dto.SessionOutput, error)
	TakeRecap(ctx context.Context) (dto.RecapOutput, error)
	GetActive(ctx context.Context) (dto.SessionOutput, error)
	Get(ctx context.Context, id string) (dto.SessionOutput, error)
	List(ctx context.Context) ([]dto.SessionSummary, error)
	Delete(ctx context.Context, id string) error
	Structures(ctx context.Context) ([]string, error)
}

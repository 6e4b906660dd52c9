package out

import (
	"context"

	"pokerlog/internal/modules/session/domain"
)

// Repository is the persistence port. Insert stages the record as it is at the
// call (new or changed); Delete stages its removal. Save makes every staged change
// durable, or reports why it could not and keeps the stage for a retry.
// Implementations must not retain the pointer passed to Insert.
type Repository interface {
	Insert(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, session *domain.Session) error
	Save(ctx context.Context) error
}

// Finder returns private copies; changes reach storage only through Insert.
type Finder interface {
	FindByID(ctx context.Context, id string) (*domain.Session, error)
	List(ctx context.Context) ([]*domain.Session, error)
}

type Store interface {
	Repository
	Finder
}

type ActiveSlotStore interface {
	SaveActive(ctx context.Context, slot domain.ActiveSlot) error
	LoadActive(ctx context.Context) (domain.ActiveSlot, error)
	ClearActive(ctx context.Context) error
}

// StructureStore serves named blind-structure templates.
type StructureStore interface {
	Find(ctx context.Context, name string) ([]domain.BlindLevel, error)
	Names(ctx context.Context) ([]string, error)
}

type RecapWriter interface {
	Write(ctx context.Context, session domain.Session, snapshot domain.Snapshot) (string, error)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"pokerlog/internal/modules/session/domain"
	sessiondto "pokerlog/internal/modules/session/dto"
	sessionin "pokerlog/internal/modules/session/port/in"
	sessionout "pokerlog/internal/modules/session/port/out"
	"pokerlog/internal/modules/session/service"
	"pokerlog/internal/platform/config"
	apperrors "pokerlog/internal/platform/errors"
	"pokerlog/internal/platform/logging"
)

// Deps are the ports the interactor consults besides the lifecycle manager.
// ActiveStore, Structures and Recaps are optional.
type Deps struct {
	Repo        sessionout.Repository
	Finder      sessionout.Finder
	ActiveStore sessionout.ActiveSlotStore
	Structures  sessionout.StructureStore
	Recaps      sessionout.RecapWriter
	Settings    config.SessionConfig
	Logger      *zap.Logger
}

type Interactor struct {
	svc      *service.LifecycleManager
	deps     Deps
	registry domain.GameTypeRegistry
	validate *validator.Validate
	logger   *zap.Logger
}

func NewInteractor(svc *service.LifecycleManager, deps Deps) sessionin.Usecase {
	return &Interactor{
		svc:      svc,
		deps:     deps,
		registry: domain.NewGameTypeRegistry(deps.Settings.CustomGameTypes),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logging.OrNop(deps.Logger).Named("session"),
	}
}

func (i *Interactor) Create(ctx context.Context, input sessiondto.CreateInput) (sessiondto.SessionOutput, error) {
	if err := i.check(input); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	draft, err := i.draftFrom(ctx, input)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	s, err := i.svc.Create(ctx, draft)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	i.logger.Info("session created", zap.String("session_id", s.ID), zap.String("kind", string(s.Kind)), zap.String("game", s.GameType.RawValue()))
	return i.output(s), nil
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.SessionOutput, error) {
	if err := i.check(input); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	s, err := i.deps.Finder.FindByID(ctx, input.SessionID)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	// Pick up a previously started session first so the detach below is reported.
	if _, err := i.current(ctx); err != nil && !errors.Is(err, apperrors.ErrNoActiveSession) {
		return sessiondto.SessionOutput{}, err
	}
	started, detached, err := i.svc.Start(ctx, s)
	if detached != "" {
		i.logger.Info("previous session detached", zap.String("session_id", detached))
	}
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if i.deps.ActiveStore != nil {
		if err := i.deps.ActiveStore.SaveActive(ctx, domain.ActiveSlot{SessionID: started.ID, StartedAt: started.StartTime}); err != nil {
			return sessiondto.SessionOutput{}, err
		}
	}
	i.logger.Info("session started", zap.String("session_id", started.ID), zap.Time("start_time", started.StartTime))
	return i.output(started), nil
}

func (i *Interactor) Pause(ctx context.Context) (sessiondto.SessionOutput, error) {
	return i.mutate(ctx, "paused", func(ctx context.Context) (*domain.Session, error) { return i.svc.Pause(ctx) })
}

func (i *Interactor) Resume(ctx context.Context) (sessiondto.SessionOutput, error) {
	return i.mutate(ctx, "resumed", func(ctx context.Context) (*domain.Session, error) { return i.svc.Resume(ctx) })
}

func (i *Interactor) RecordStack(ctx context.Context, input sessiondto.StackInput) (sessiondto.SessionOutput, error) {
	if err := i.check(input); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return i.mutate(ctx, "stack recorded", func(ctx context.Context) (*domain.Session, error) {
		return i.svc.RecordObservation(ctx, input.Amount, domain.SourceManual)
	})
}

func (i *Interactor) RecordMessage(ctx context.Context, input sessiondto.MessageInput) (sessiondto.SessionOutput, error) {
	if err := i.check(input); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	amount, ok := domain.ParseStackMessage(input.Text)
	if !ok {
		return sessiondto.SessionOutput{}, fmt.Errorf("%w: no chip count in %q", apperrors.ErrInvalidInput, input.Text)
	}
	return i.mutate(ctx, "stack derived from message", func(ctx context.Context) (*domain.Session, error) {
		return i.svc.RecordObservation(ctx, amount, domain.SourceMessage)
	})
}

func (i *Interactor) AddOn(ctx context.Context, input sessiondto.AddOnInput) (sessiondto.SessionOutput, error) {
	if err := i.check(input); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return i.mutate(ctx, "add-on", func(ctx context.Context) (*domain.Session, error) { return i.svc.AddOn(ctx, input.Amount) })
}

func (i *Interactor) Rebuy(ctx context.Context) (sessiondto.SessionOutput, error) {
	return i.mutate(ctx, "rebuy", func(ctx context.Context) (*domain.Session, error) { return i.svc.Rebuy(ctx) })
}

func (i *Interactor) CollectBounty(ctx context.Context, input sessiondto.BountyInput) (sessiondto.SessionOutput, error) {
	if err := i.check(input); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return i.mutate(ctx, "bounty collected", func(ctx context.Context) (*domain.Session, error) {
		return i.svc.CollectBounty(ctx, input.Count)
	})
}

func (i *Interactor) UpdateField(ctx context.Context, input sessiondto.FieldInput) (sessiondto.SessionOutput, error) {
	if err := i.check(input); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return i.mutate(ctx, "field updated", func(ctx context.Context) (*domain.Session, error) {
		return i.svc.UpdateField(ctx, input.FieldSize, input.PlayersRemaining)
	})
}

func (i *Interactor) AdvanceLevel(ctx context.Context) (sessiondto.SessionOutput, error) {
	return i.mutate(ctx, "blind level advanced", func(ctx context.Context) (*domain.Session, error) { return i.svc.AdvanceBlindLevel(ctx) })
}

func (i *Interactor) AddLevel(ctx context.Context, input sessiondto.LevelInput) (sessiondto.SessionOutput, error) {
	if err := i.check(input); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return i.mutate(ctx, "blind level added", func(ctx context.Context) (*domain.Session, error) {
		return i.svc.AddBlindLevel(ctx, levelFrom(input))
	})
}

func (i *Interactor) RemoveLevel(ctx context.Context, input sessiondto.RemoveLevelInput) (sessiondto.SessionOutput, error) {
	return i.mutate(ctx, "blind level removed", func(ctx context.Context) (*domain.Session, error) {
		return i.svc.RemoveBlindLevel(ctx, input.LevelNumber)
	})
}

func (i *Interactor) AddHandNote(ctx context.Context, input sessiondto.HandNoteInput) (sessiondto.SessionOutput, error) {
	if err := i.check(input); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if input.StackBefore != nil && *input.StackBefore < 0 {
		return sessiondto.SessionOutput{}, fmt.Errorf("%w: stack before must be non-negative", apperrors.ErrInvalidInput)
	}
	return i.mutate(ctx, "hand note added", func(ctx context.Context) (*domain.Session, error) {
		return i.svc.RecordHandNote(ctx, input.Text, input.StackBefore)
	})
}

func (i *Interactor) Complete(ctx context.Context, input sessiondto.CompleteInput) (sessiondto.SessionOutput, error) {
	if err := i.check(input); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if _, err := i.current(ctx); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	s, err := i.svc.Complete(ctx, input.FinalAmount)
	if s == nil {
		return sessiondto.SessionOutput{}, err
	}
	if i.deps.ActiveStore != nil {
		if clearErr := i.deps.ActiveStore.ClearActive(ctx); clearErr != nil {
			err = errors.Join(err, clearErr)
		}
	}
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	out := i.output(s)
	fields := []zap.Field{zap.String("session_id", s.ID), zap.Duration("duration", out.Metrics.Duration)}
	if out.Metrics.Profit != nil {
		fields = append(fields, zap.Int64("profit", *out.Metrics.Profit))
	}
	i.logger.Info("session completed", fields...)
	return out, nil
}

func (i *Interactor) TakeRecap(ctx context.Context) (sessiondto.RecapOutput, error) {
	s, ok := i.svc.TakeRecap()
	if !ok {
		return sessiondto.RecapOutput{}, apperrors.ErrNoPendingRecap
	}
	out := sessiondto.RecapOutput{Session: i.output(s)}
	if i.deps.Recaps == nil {
		return out, nil
	}
	path, err := i.deps.Recaps.Write(ctx, *s, i.svc.Snapshot(s))
	if err != nil {
		return out, err
	}
	out.Path = path
	i.logger.Debug("recap written", zap.String("session_id", s.ID), zap.String("path", path))
	return out, nil
}

func (i *Interactor) GetActive(ctx context.Context) (sessiondto.SessionOutput, error) {
	s, err := i.current(ctx)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return i.output(s), nil
}

func (i *Interactor) Get(ctx context.Context, id string) (sessiondto.SessionOutput, error) {
	if strings.TrimSpace(id) == "" {
		return sessiondto.SessionOutput{}, fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}
	if s, ok := i.svc.Current(); ok && s.ID == id {
		return i.output(s), nil
	}
	s, err := i.deps.Finder.FindByID(ctx, id)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return i.output(s), nil
}

func (i *Interactor) List(ctx context.Context) ([]sessiondto.SessionSummary, error) {
	sessions, err := i.deps.Finder.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sessions, func(a, b int) bool { return sortKey(sessions[a]).After(sortKey(sessions[b])) })
	out := make([]sessiondto.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessiondto.SessionSummary{
			ID:         s.ID,
			Kind:       string(s.Kind),
			Status:     string(s.Status),
			GameType:   s.GameType.RawValue(),
			Stakes:     s.Stakes,
			Location:   s.Location,
			StartTime:  s.StartTime,
			IsImported: s.IsImported,
			Profit:     domain.Profit(s),
		})
	}
	return out, nil
}

func (i *Interactor) Delete(ctx context.Context, id string) error {
	s, err := i.deps.Finder.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := i.current(ctx); err != nil && !errors.Is(err, apperrors.ErrNoActiveSession) {
		return err
	}
	if i.svc.Detach(id) && i.deps.ActiveStore != nil {
		if err := i.deps.ActiveStore.ClearActive(ctx); err != nil {
			return err
		}
	}
	if err := i.deps.Repo.Delete(ctx, s); err != nil {
		return err
	}
	if err := i.deps.Repo.Save(ctx); err != nil {
		return fmt.Errorf("save after delete %s: %w", id, err)
	}
	i.logger.Info("session deleted", zap.String("session_id", id))
	return nil
}

func (i *Interactor) Structures(ctx context.Context) ([]string, error) {
	if i.deps.Structures == nil {
		return nil, nil
	}
	return i.deps.Structures.Names(ctx)
}

// current returns the manager's session, restoring it from the slot store when a
// previous process left one behind.
func (i *Interactor) current(ctx context.Context) (*domain.Session, error) {
	if s, ok := i.svc.Current(); ok {
		return s, nil
	}
	if i.deps.ActiveStore == nil {
		return nil, apperrors.ErrNoActiveSession
	}
	slot, err := i.deps.ActiveStore.LoadActive(ctx)
	if err != nil {
		return nil, err
	}
	s, err := i.deps.Finder.FindByID(ctx, slot.SessionID)
	if err == nil {
		err = i.svc.Restore(s)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrInvalidStateTransition) {
			i.logger.Warn("dropping stale active slot", zap.String("session_id", slot.SessionID), zap.Error(err))
			_ = i.deps.ActiveStore.ClearActive(ctx)
			return nil, apperrors.ErrNoActiveSession
		}
		return nil, err
	}
	current, _ := i.svc.Current()
	return current, nil
}

func (i *Interactor) mutate(ctx context.Context, event string, op func(context.Context) (*domain.Session, error)) (sessiondto.SessionOutput, error) {
	if _, err := i.current(ctx); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	s, err := op(ctx)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	i.logger.Info("session "+event, zap.String("session_id", s.ID), zap.String("status", string(s.Status)))
	return i.output(s), nil
}

func (i *Interactor) check(input any) error {
	if err := i.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return nil
}

func (i *Interactor) draftFrom(ctx context.Context, input sessiondto.CreateInput) (*domain.Session, error) {
	settings := i.deps.Settings
	gameRaw := input.GameType
	if strings.TrimSpace(gameRaw) == "" {
		gameRaw = settings.DefaultGameType
	}
	game, err := i.registry.Resolve(gameRaw)
	if err != nil {
		return nil, err
	}
	draft := &domain.Session{
		Kind:     domain.Kind(input.Kind),
		GameType: game,
		Stakes:   strings.TrimSpace(input.Stakes),
		Location: strings.TrimSpace(input.Location),
		Notes:    input.Notes,
	}
	if draft.Kind == domain.KindCash {
		draft.BuyInTotal = input.BuyIn
		if draft.Stakes == "" {
			draft.Stakes = settings.DefaultStakes
		}
		return draft, nil
	}

	draft.BuyIn = input.BuyIn
	draft.EntryFee = input.EntryFee
	draft.Deductions = input.Deductions
	draft.BountyAmount = input.BountyAmount
	draft.Guarantee = input.Guarantee
	draft.FieldSize = input.FieldSize
	draft.StartingChips = input.StartingChips
	if draft.StartingChips == 0 {
		draft.StartingChips = settings.DefaultStartingChips
	}
	draft.PayoutPercent = input.PayoutPercent
	if draft.PayoutPercent == 0 {
		draft.PayoutPercent = settings.DefaultPayoutPercent
	}
	for _, l := range input.Levels {
		draft.BlindLevels = append(draft.BlindLevels, levelFrom(l))
	}
	if name := strings.TrimSpace(input.Structure); name != "" && len(draft.BlindLevels) == 0 {
		if i.deps.Structures == nil {
			return nil, fmt.Errorf("%w: blind structure %q", apperrors.ErrNotFound, name)
		}
		levels, err := i.deps.Structures.Find(ctx, name)
		if err != nil {
			return nil, err
		}
		draft.BlindLevels = levels
	}
	return draft, nil
}

func levelFrom(in sessiondto.LevelInput) domain.BlindLevel {
	return domain.BlindLevel{
		LevelNumber:     in.LevelNumber,
		SmallBlind:      in.SmallBlind,
		BigBlind:        in.BigBlind,
		Ante:            in.Ante,
		DurationMinutes: in.DurationMinutes,
		IsBreak:         in.IsBreak,
		BreakLabel:      in.BreakLabel,
	}
}

package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	bclock "github.com/benbjohnson/clock"

	sessionadapter "pokerlog/internal/modules/session/adapter/out"
	"pokerlog/internal/modules/session/domain"
	sessiondto "pokerlog/internal/modules/session/dto"
	sessionin "pokerlog/internal/modules/session/port/in"
	"pokerlog/internal/modules/session/service"
	"pokerlog/internal/modules/session/usecase"
	"pokerlog/internal/platform/config"
	apperrors "pokerlog/internal/platform/errors"
	"pokerlog/internal/platform/id"
)

const structures = `turbo:
  - {level: 1, sb: 100, bb: 200, ante: 0, minutes: 10}
  - {level: 2, break: true, label: "Break", minutes: 5}
  - {level: 3, sb: 200, bb: 400, ante: 50, minutes: 10}
`

type harness struct {
	uc    sessionin.Usecase
	clock *bclock.Mock
	cfg   config.Config
}

func newHarness(t *testing.T, dataDir string, clk *bclock.Mock) harness {
	t.Helper()
	cfg := config.Default(dataDir)
	cfg.Session.CustomGameTypes = map[string]string{"HORSE": "H.O.R.S.E."}
	registry := domain.NewGameTypeRegistry(cfg.Session.CustomGameTypes)
	store, err := sessionadapter.NewSQLiteSessionStore(cfg.DBPath, registry)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	n := 0
	ids := id.Func(func() string {
		n++
		return fmt.Sprintf("%s-%d", filepath.Base(dataDir), n)
	})
	svc := service.NewLifecycleManager(clk, ids, store, cfg.Session.SeatsPerTable)
	uc := usecase.NewInteractor(svc, usecase.Deps{
		Repo:        store,
		Finder:      store,
		ActiveStore: sessionadapter.NewFileActiveSlotStore(dataDir),
		Structures:  sessionadapter.NewYAMLStructureStore(cfg.StructuresPath),
		Recaps:      sessionadapter.NewVaultRecapWriter(cfg.RecapDir),
		Settings:    cfg.Session,
	})
	return harness{uc: uc, clock: clk, cfg: cfg}
}

func newMock() *bclock.Mock {
	clk := bclock.NewMock()
	clk.Set(time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC))
	return clk
}

func writeStructures(t *testing.T, cfg config.Config) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(cfg.StructuresPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(cfg.StructuresPath, []byte(structures), 0o644); err != nil {
		t.Fatalf("write structures: %v", err)
	}
}

func TestTournamentLifecycleFromTemplate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, t.TempDir(), newMock())
	writeStructures(t, h.cfg)

	created, err := h.uc.Create(ctx, sessiondto.CreateInput{Kind: "tournament", BuyIn: 100, EntryFee: 10, FieldSize: 50, Structure: "turbo"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.StartingChips != 20000 || created.Status != "setup" || created.GameType != "NLH" {
		t.Fatalf("expected configured defaults, got %+v", created)
	}
	if len(created.Levels) != 3 || created.Levels[2].DisplayNumber != 2 {
		t.Fatalf("expected display numbers skipping the break, got %+v", created.Levels)
	}

	started, err := h.uc.Start(ctx, sessiondto.StartInput{SessionID: created.ID})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(started.Stack) != 1 || started.Metrics.BB != 100 {
		t.Fatalf("expected initial entry at 100bb, got %+v", started.Metrics)
	}

	h.clock.Add(30 * time.Minute)
	msg, err := h.uc.RecordMessage(ctx, sessiondto.MessageInput{Text: "chipped up, sitting on 45.5k"})
	if err != nil {
		t.Fatalf("record message: %v", err)
	}
	if msg.Metrics.LatestStack != 45500 || msg.Stack[1].Source != string(domain.SourceMessage) {
		t.Fatalf("expected derived 45500 entry, got %+v", msg.Stack)
	}

	if _, err := h.uc.AdvanceLevel(ctx); err != nil {
		t.Fatalf("advance to break: %v", err)
	}
	onBreak, err := h.uc.GetActive(ctx)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if onBreak.CurrentLevel == nil || !onBreak.CurrentLevel.IsBreak || onBreak.Metrics.OrbitCost != 300 {
		t.Fatalf("expected break level using previous blinds, got %+v", onBreak.Metrics)
	}
	if _, err := h.uc.AdvanceLevel(ctx); err != nil {
		t.Fatalf("advance past break: %v", err)
	}
	if _, err := h.uc.AdvanceLevel(ctx); !errors.Is(err, apperrors.ErrNoFurtherLevels) {
		t.Fatalf("expected no further levels, got %v", err)
	}

	field, err := h.uc.UpdateField(ctx, sessiondto.FieldInput{PlayersRemaining: 10})
	if err != nil {
		t.Fatalf("update field: %v", err)
	}
	if field.Metrics.BubbleDistance != 2 || field.Metrics.AverageStack != 100000 {
		t.Fatalf("unexpected field metrics %+v", field.Metrics)
	}
	if _, err := h.uc.AddOn(ctx, sessiondto.AddOnInput{Amount: 50}); !errors.Is(err, apperrors.ErrWrongSessionKind) {
		t.Fatalf("expected add-on to be rejected for tournaments, got %v", err)
	}

	h.clock.Add(90 * time.Minute)
	done, err := h.uc.Complete(ctx, sessiondto.CompleteInput{FinalAmount: 600})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Metrics.Profit == nil || *done.Metrics.Profit != 490 {
		t.Fatalf("expected profit 490, got %v", done.Metrics.Profit)
	}
	if _, err := h.uc.GetActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session after complete, got %v", err)
	}

	recap, err := h.uc.TakeRecap(ctx)
	if err != nil {
		t.Fatalf("take recap: %v", err)
	}
	note, err := os.ReadFile(recap.Path)
	if err != nil {
		t.Fatalf("read recap: %v", err)
	}
	if !strings.Contains(string(note), "profit: 490") {
		t.Fatalf("recap missing profit: %s", note)
	}
	if _, err := h.uc.TakeRecap(ctx); !errors.Is(err, apperrors.ErrNoPendingRecap) {
		t.Fatalf("expected recap to be consumed, got %v", err)
	}
}

func TestActiveSessionSurvivesRestart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dataDir := t.TempDir()
	clk := newMock()
	first := newHarness(t, dataDir, clk)

	created, err := first.uc.Create(ctx, sessiondto.CreateInput{Kind: "cash", BuyIn: 200, GameType: "horse"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.GameLabel != "H.O.R.S.E." || created.Stakes != "1/2" {
		t.Fatalf("expected custom game and default stakes, got %s %s", created.GameLabel, created.Stakes)
	}
	if _, err := first.uc.Start(ctx, sessiondto.StartInput{SessionID: created.ID}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := first.uc.AddOn(ctx, sessiondto.AddOnInput{Amount: 100}); err != nil {
		t.Fatalf("add-on: %v", err)
	}

	second := newHarness(t, dataDir, clk)
	paused, err := second.uc.Pause(ctx)
	if err != nil {
		t.Fatalf("pause after restart: %v", err)
	}
	if paused.ID != created.ID || paused.BuyInTotal != 300 || paused.Status != "paused" {
		t.Fatalf("unexpected restored session %+v", paused)
	}
	if _, err := second.uc.Pause(ctx); !errors.Is(err, apperrors.ErrInvalidStateTransition) {
		t.Fatalf("expected invalid transition pausing twice, got %v", err)
	}
}

func TestPauseWithoutActiveSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, t.TempDir(), newMock())
	created, err := h.uc.Create(ctx, sessiondto.CreateInput{Kind: "cash", BuyIn: 100})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := h.uc.Pause(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session, got %v", err)
	}
	got, err := h.uc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != "setup" {
		t.Fatalf("expected status to stay setup, got %s", got.Status)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, t.TempDir(), newMock())
	cases := []sessiondto.CreateInput{
		{Kind: "sng"},
		{Kind: "cash", BuyIn: -5},
		{Kind: "cash", GameType: "Razz"},
		{Kind: "tournament", PayoutPercent: 120},
	}
	for _, in := range cases {
		if _, err := h.uc.Create(ctx, in); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("expected invalid input for %+v, got %v", in, err)
		}
	}
	if _, err := h.uc.Create(ctx, sessiondto.CreateInput{Kind: "tournament", Structure: "missing"}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected missing structure to be not found, got %v", err)
	}
}

func TestDeleteActiveSessionClearsSlotAndListOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, t.TempDir(), newMock())

	older, err := h.uc.Create(ctx, sessiondto.CreateInput{Kind: "cash", BuyIn: 100})
	if err != nil {
		t.Fatalf("create older: %v", err)
	}
	if _, err := h.uc.Start(ctx, sessiondto.StartInput{SessionID: older.ID}); err != nil {
		t.Fatalf("start older: %v", err)
	}
	if _, err := h.uc.Complete(ctx, sessiondto.CompleteInput{FinalAmount: 80}); err != nil {
		t.Fatalf("complete older: %v", err)
	}
	h.clock.Add(24 * time.Hour)
	newer, err := h.uc.Create(ctx, sessiondto.CreateInput{Kind: "cash", BuyIn: 100})
	if err != nil {
		t.Fatalf("create newer: %v", err)
	}
	if _, err := h.uc.Start(ctx, sessiondto.StartInput{SessionID: newer.ID}); err != nil {
		t.Fatalf("start newer: %v", err)
	}

	list, err := h.uc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].Profit == nil || *list[1].Profit != -20 {
		t.Fatalf("unexpected list %+v", list)
	}

	if err := h.uc.Delete(ctx, newer.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := h.uc.GetActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session after delete, got %v", err)
	}
	if _, err := h.uc.Get(ctx, newer.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected deleted session to be gone, got %v", err)
	}
	if err := h.uc.Delete(ctx, newer.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected second delete to be not found, got %v", err)
	}
}

func TestStaleActiveSlotIsDropped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dataDir := t.TempDir()
	h := newHarness(t, dataDir, newMock())
	slots := sessionadapter.NewFileActiveSlotStore(dataDir)
	if err := slots.SaveActive(ctx, domain.ActiveSlot{SessionID: "ghost"}); err != nil {
		t.Fatalf("save slot: %v", err)
	}
	if _, err := h.uc.GetActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected stale slot to read as no active session, got %v", err)
	}
	if _, err := slots.LoadActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected stale slot file to be cleared, got %v", err)
	}
}

package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bclock "github.com/benbjohnson/clock"

	"pokerlog/internal/modules/session/domain"
	"pokerlog/internal/modules/session/service"
	apperrors "pokerlog/internal/platform/errors"
	"pokerlog/internal/platform/id"
)

func (r *memRepo) stored(id string) *domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inserted[id]
}

type memRepo struct {
	mu       sync.Mutex
	inserted map[string]*domain.Session
	deleted  []string
	saves    int
	failWith error
}

func newMemRepo() *memRepo { return &memRepo{inserted: map[string]*domain.Session{}} }

func (r *memRepo) Insert(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserted[s.ID] = s.Clone()
	return nil
}

func (r *memRepo) Delete(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, s.ID)
	return nil
}

func (r *memRepo) Save(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.saves++
	return nil
}

func newManager(t *testing.T, repo *memRepo) (*service.LifecycleManager, *bclock.Mock) {
	t.Helper()
	clk := bclock.NewMock()
	clk.Set(time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC))
	n := 0
	ids := id.Func(func() string {
		n++
		return "s-" + string(rune('0'+n))
	})
	return service.NewLifecycleManager(clk, ids, repo, 9), clk
}

func cashDraft() *domain.Session {
	return &domain.Session{Kind: domain.KindCash, GameType: domain.Builtin(domain.GameNLH), Stakes: "1/2", BuyInTotal: 200}
}

func TestStartThenCompleteYieldsOneEntryAndProfit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	mgr, clk := newManager(t, repo)

	s, err := mgr.Create(ctx, cashDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.ID != "s-1" || s.Status != domain.StatusSetup {
		t.Fatalf("unexpected created session %s %s", s.ID, s.Status)
	}
	if _, _, err := mgr.Start(ctx, s); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Add(2 * time.Hour)
	done, err := mgr.Complete(ctx, 500)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(done.StackEntries) != 1 {
		t.Fatalf("expected exactly one stack entry, got %d", len(done.StackEntries))
	}
	snap := mgr.Snapshot(done)
	if snap.Profit == nil || *snap.Profit != 300 {
		t.Fatalf("expected profit 300, got %v", snap.Profit)
	}
	if snap.HourlyRate == nil || *snap.HourlyRate != 150 {
		t.Fatalf("expected hourly 150, got %v", snap.HourlyRate)
	}
	if stored := repo.stored("s-1"); stored.Status != domain.StatusCompleted || stored.CashOut == nil {
		t.Fatalf("expected completed record staged, got %s", stored.Status)
	}
	if _, ok := mgr.Current(); ok {
		t.Fatalf("expected empty slot after complete")
	}
	recap, ok := mgr.TakeRecap()
	if !ok || recap.ID != s.ID {
		t.Fatalf("expected pending recap for %s", s.ID)
	}
	if _, ok := mgr.TakeRecap(); ok {
		t.Fatalf("expected recap to be taken once")
	}
}

func TestPauseRequiresActiveSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mgr, _ := newManager(t, newMemRepo())

	if _, err := mgr.Pause(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session, got %v", err)
	}
	s, err := mgr.Create(ctx, cashDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mgr.Restore(s); !errors.Is(err, apperrors.ErrInvalidStateTransition) {
		t.Fatalf("expected setup session to be rejected by restore, got %v", err)
	}
	if _, _, err := mgr.Start(ctx, s); err != nil {
		t.Fatalf("start: %v", err)
	}
	done, err := mgr.Complete(ctx, 100)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := done.Pause(); !errors.Is(err, apperrors.ErrInvalidStateTransition) {
		t.Fatalf("expected invalid transition from completed, got %v", err)
	}
	if done.Status != domain.StatusCompleted {
		t.Fatalf("status changed to %s", done.Status)
	}
}

func TestStartDetachesPreviousSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	mgr, _ := newManager(t, repo)
	first, _ := mgr.Create(ctx, cashDraft())
	second, _ := mgr.Create(ctx, cashDraft())
	if _, _, err := mgr.Start(ctx, first); err != nil {
		t.Fatalf("start first: %v", err)
	}
	_, detached, err := mgr.Start(ctx, second)
	if err != nil {
		t.Fatalf("start second: %v", err)
	}
	if detached != first.ID {
		t.Fatalf("expected %s detached, got %q", first.ID, detached)
	}
	current, _ := mgr.Current()
	if current.ID != second.ID {
		t.Fatalf("expected %s current, got %s", second.ID, current.ID)
	}
	if stored := repo.stored(first.ID); stored.Status != domain.StatusActive {
		t.Fatalf("detached session should keep its status, got %s", stored.Status)
	}
}

func TestSaveFailureKeepsMutation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	mgr, _ := newManager(t, repo)
	s, _ := mgr.Create(ctx, cashDraft())
	if _, _, err := mgr.Start(ctx, s); err != nil {
		t.Fatalf("start: %v", err)
	}

	repo.mu.Lock()
	repo.failWith = errors.New("disk full")
	repo.mu.Unlock()
	out, err := mgr.RecordObservation(ctx, 350, domain.SourceManual)
	if err == nil || !errors.Is(err, repo.failWith) {
		t.Fatalf("expected save failure, got %v", err)
	}
	if out == nil || len(out.StackEntries) != 2 {
		t.Fatalf("expected the mutated session alongside the error, got %+v", out)
	}
	current, _ := mgr.Current()
	latest, _ := current.LatestStack()
	if latest.ChipCount != 350 || len(current.StackEntries) != 2 {
		t.Fatalf("expected in-memory entry to survive failed save, got %+v", current.StackEntries)
	}
	if _, err := mgr.Pause(ctx); err == nil {
		t.Fatalf("expected pause save failure")
	}
	if current, _ := mgr.Current(); current.Status != domain.StatusPaused {
		t.Fatalf("expected paused in memory, got %s", current.Status)
	}
}

func TestReturnedSessionsAreCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mgr, _ := newManager(t, newMemRepo())
	s, _ := mgr.Create(ctx, cashDraft())
	started, _, err := mgr.Start(ctx, s)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	started.StackEntries[0].ChipCount = 1
	started.BuyInTotal = 1

	current, _ := mgr.Current()
	if current.StackEntries[0].ChipCount != 200 || current.BuyInTotal != 200 {
		t.Fatalf("caller copy leaked into the current session: %+v", current)
	}
}

func TestConcurrentObservationsAreSerialized(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mgr, _ := newManager(t, newMemRepo())
	s, _ := mgr.Create(ctx, cashDraft())
	if _, _, err := mgr.Start(ctx, s); err != nil {
		t.Fatalf("start: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(amount int64) {
			defer wg.Done()
			if _, err := mgr.RecordObservation(ctx, amount, domain.SourceManual); err != nil {
				t.Errorf("record: %v", err)
			}
		}(int64(100 + i))
	}
	wg.Wait()
	current, _ := mgr.Current()
	if len(current.StackEntries) != 21 {
		t.Fatalf("expected 21 entries, got %d", len(current.StackEntries))
	}
	for i, e := range current.StackEntries {
		if e.Seq != i {
			t.Fatalf("entry %d has seq %d", i, e.Seq)
		}
	}
}

// Readers walk the returned copies while a writer keeps appending; run with -race.
func TestReadersDoNotShareTheCurrentSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mgr, _ := newManager(t, newMemRepo())
	s, _ := mgr.Create(ctx, cashDraft())
	if _, _, err := mgr.Start(ctx, s); err != nil {
		t.Fatalf("start: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, err := mgr.RecordObservation(ctx, int64(100+i), domain.SourceManual); err != nil {
				t.Errorf("record: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			current, ok := mgr.Current()
			if !ok {
				t.Errorf("lost the current session")
				return
			}
			snap := mgr.Snapshot(current)
			if latest, _ := current.LatestStack(); latest.ChipCount != snap.LatestStack {
				t.Errorf("snapshot disagrees with its copy: %d vs %d", latest.ChipCount, snap.LatestStack)
				return
			}
		}
	}()
	wg.Wait()
}

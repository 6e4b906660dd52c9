package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"pokerlog/internal/modules/session/domain"
	apperrors "pokerlog/internal/platform/errors"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

// SQLiteSessionStore persists sessions and their children. Insert stages a copy
// of the record as it is at that moment; Save writes only what was staged since
// the last successful save, in one transaction. Records handed out by FindByID
// and List are private copies, so the store never reads memory a caller mutates.
type SQLiteSessionStore struct {
	db       *sql.DB
	registry domain.GameTypeRegistry

	mu      sync.Mutex
	staged  map[string]*domain.Session
	deleted map[string]struct{}
}

func NewSQLiteSessionStore(dbPath string, registry domain.GameTypeRegistry) (*SQLiteSessionStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	store := &SQLiteSessionStore{
		db:       db,
		registry: registry,
		staged:   map[string]*domain.Session{},
		deleted:  map[string]struct{}{},
	}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteSessionStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteSessionStore) ensureSchema(ctx context.Context) error {
	const ddl = `
PRAGMA foreign_keys = ON;
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  schema_version INTEGER NOT NULL,
  kind TEXT NOT NULL,
  status TEXT NOT NULL,
  game_type TEXT NOT NULL,
  stakes TEXT,
  location TEXT,
  notes TEXT,
  is_imported INTEGER NOT NULL,
  created_at TEXT NOT NULL,
  start_time TEXT,
  end_time TEXT,
  buy_in INTEGER NOT NULL,
  entry_fee INTEGER NOT NULL,
  deductions INTEGER NOT NULL,
  bounty_amount INTEGER NOT NULL,
  guarantee INTEGER NOT NULL,
  starting_chips INTEGER NOT NULL,
  rebuys_used INTEGER NOT NULL,
  bounties_collected INTEGER NOT NULL,
  field_size INTEGER NOT NULL,
  players_remaining INTEGER NOT NULL,
  payout_percent REAL NOT NULL,
  payout INTEGER,
  current_level INTEGER NOT NULL,
  buy_in_total INTEGER NOT NULL,
  cash_out INTEGER
);
CREATE TABLE IF NOT EXISTS blind_levels (
  session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
  level_number INTEGER NOT NULL,
  small_blind INTEGER NOT NULL,
  big_blind INTEGER NOT NULL,
  ante INTEGER NOT NULL,
  duration_minutes INTEGER NOT NULL,
  is_break INTEGER NOT NULL,
  break_label TEXT,
  PRIMARY KEY (session_id, level_number)
);
CREATE TABLE IF NOT EXISTS stack_entries (
  session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
  seq INTEGER NOT NULL,
  recorded_at TEXT NOT NULL,
  chip_count INTEGER NOT NULL,
  level_number INTEGER NOT NULL,
  small_blind INTEGER NOT NULL,
  big_blind INTEGER NOT NULL,
  ante INTEGER NOT NULL,
  source TEXT NOT NULL,
  PRIMARY KEY (session_id, seq)
);
CREATE TABLE IF NOT EXISTS hand_notes (
  session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
  seq INTEGER NOT NULL,
  recorded_at TEXT NOT NULL,
  body TEXT NOT NULL,
  stack_before INTEGER NOT NULL,
  level_number INTEGER NOT NULL,
  PRIMARY KEY (session_id, seq)
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create session tables: %w", err)
	}
	return nil
}

func (s *SQLiteSessionStore) Insert(_ context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}
	staged := session.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged[session.ID] = staged
	delete(s.deleted, session.ID)
	return nil
}

func (s *SQLiteSessionStore) Delete(_ context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.staged, session.ID)
	s.deleted[session.ID] = struct{}{}
	return nil
}

func (s *SQLiteSessionStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for id := range s.deleted {
		if err := deleteSession(ctx, tx, id); err != nil {
			return err
		}
	}
	for _, session := range s.staged {
		if err := writeSession(ctx, tx, session); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	s.staged = map[string]*domain.Session{}
	s.deleted = map[string]struct{}{}
	return nil
}

func (s *SQLiteSessionStore) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(ctx, id)
}

// List returns every stored session that is not staged for deletion.
func (s *SQLiteSessionStore) List(ctx context.Context) ([]*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	_ = rows.Close()

	seen := map[string]bool{}
	out := make([]*domain.Session, 0, len(ids))
	for _, id := range ids {
		session, err := s.findLocked(ctx, id)
		if errors.Is(err, apperrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		seen[id] = true
		out = append(out, session)
	}
	// Staged but not yet saved.
	for id, session := range s.staged {
		if !seen[id] {
			out = append(out, session.Clone())
		}
	}
	return out, nil
}

// findLocked prefers the staged copy over the stored row.
func (s *SQLiteSessionStore) findLocked(ctx context.Context, id string) (*domain.Session, error) {
	if _, gone := s.deleted[id]; gone {
		return nil, fmt.Errorf("%w: session %s", apperrors.ErrNotFound, id)
	}
	if session, ok := s.staged[id]; ok {
		return session.Clone(), nil
	}
	return s.load(ctx, id)
}

func (s *SQLiteSessionStore) load(ctx context.Context, id string) (*domain.Session, error) {
	const query = `
SELECT kind, status, game_type, stakes, location, notes, is_imported, created_at, start_time, end_time,
  buy_in, entry_fee, deductions, bounty_amount, guarantee, starting_chips, rebuys_used, bounties_collected,
  field_size, players_remaining, payout_percent, payout, current_level, buy_in_total, cash_out
FROM sessions WHERE id = ?`
	var (
		kind, status, game      string
		stakes, location, notes sql.NullString
		createdAt               string
		startTime, endTime      sql.NullString
		payout, cashOut         sql.NullInt64
		session                 = &domain.Session{ID: id}
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&kind, &status, &game, &stakes, &location, &notes, &session.IsImported, &createdAt, &startTime, &endTime,
		&session.BuyIn, &session.EntryFee, &session.Deductions, &session.BountyAmount, &session.Guarantee,
		&session.StartingChips, &session.RebuysUsed, &session.BountiesCollected, &session.FieldSize,
		&session.PlayersRemaining, &session.PayoutPercent, &payout, &session.CurrentBlindLevelNumber,
		&session.BuyInTotal, &cashOut,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: session %s", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	session.Kind = domain.Kind(kind)
	session.Status = domain.Status(status)
	session.GameType = s.registry.Restore(game)
	session.Stakes, session.Location, session.Notes = stakes.String, location.String, notes.String
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if startTime.Valid && startTime.String != "" {
		if session.StartTime, err = parseTime(startTime.String); err != nil {
			return nil, err
		}
	}
	if endTime.Valid && endTime.String != "" {
		end, err := parseTime(endTime.String)
		if err != nil {
			return nil, err
		}
		session.EndTime = &end
	}
	session.Payout = nullableInt(payout)
	session.CashOut = nullableInt(cashOut)

	if session.BlindLevels, err = s.loadLevels(ctx, id); err != nil {
		return nil, err
	}
	if session.StackEntries, err = s.loadStack(ctx, id); err != nil {
		return nil, err
	}
	if session.HandNotes, err = s.loadNotes(ctx, id); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SQLiteSessionStore) loadLevels(ctx context.Context, id string) ([]domain.BlindLevel, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT level_number, small_blind, big_blind, ante, duration_minutes, is_break, break_label
FROM blind_levels WHERE session_id = ? ORDER BY level_number`, id)
	if err != nil {
		return nil, fmt.Errorf("load blind levels: %w", err)
	}
	defer rows.Close()
	var out []domain.BlindLevel
	for rows.Next() {
		var (
			l     domain.BlindLevel
			label sql.NullString
		)
		if err := rows.Scan(&l.LevelNumber, &l.SmallBlind, &l.BigBlind, &l.Ante, &l.DurationMinutes, &l.IsBreak, &label); err != nil {
			return nil, fmt.Errorf("scan blind level: %w", err)
		}
		l.BreakLabel = label.String
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLiteSessionStore) loadStack(ctx context.Context, id string) ([]domain.StackEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT seq, recorded_at, chip_count, level_number, small_blind, big_blind, ante, source
FROM stack_entries WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load stack entries: %w", err)
	}
	defer rows.Close()
	var out []domain.StackEntry
	for rows.Next() {
		var (
			e          domain.StackEntry
			recordedAt string
			source     string
		)
		if err := rows.Scan(&e.Seq, &recordedAt, &e.ChipCount, &e.BlindLevelNumber, &e.SmallBlind, &e.BigBlind, &e.Ante, &source); err != nil {
			return nil, fmt.Errorf("scan stack entry: %w", err)
		}
		if e.Timestamp, err = parseTime(recordedAt); err != nil {
			return nil, err
		}
		e.Source = domain.StackSource(source)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteSessionStore) loadNotes(ctx context.Context, id string) ([]domain.HandNote, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT seq, recorded_at, body, stack_before, level_number
FROM hand_notes WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load hand notes: %w", err)
	}
	defer rows.Close()
	var out []domain.HandNote
	for rows.Next() {
		var (
			n          domain.HandNote
			recordedAt string
		)
		if err := rows.Scan(&n.Seq, &recordedAt, &n.Text, &n.StackBefore, &n.BlindLevelNumber); err != nil {
			return nil, fmt.Errorf("scan hand note: %w", err)
		}
		if n.Timestamp, err = parseTime(recordedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func writeSession(ctx context.Context, tx *sql.Tx, session *domain.Session) error {
	const upsert = `
INSERT INTO sessions (id, schema_version, kind, status, game_type, stakes, location, notes, is_imported, created_at,
  start_time, end_time, buy_in, entry_fee, deductions, bounty_amount, guarantee, starting_chips, rebuys_used,
  bounties_collected, field_size, players_remaining, payout_percent, payout, current_level, buy_in_total, cash_out)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  schema_version=excluded.schema_version,
  kind=excluded.kind,
  status=excluded.status,
  game_type=excluded.game_type,
  stakes=excluded.stakes,
  location=excluded.location,
  notes=excluded.notes,
  is_imported=excluded.is_imported,
  created_at=excluded.created_at,
  start_time=excluded.start_time,
  end_time=excluded.end_time,
  buy_in=excluded.buy_in,
  entry_fee=excluded.entry_fee,
  deductions=excluded.deductions,
  bounty_amount=excluded.bounty_amount,
  guarantee=excluded.guarantee,
  starting_chips=excluded.starting_chips,
  rebuys_used=excluded.rebuys_used,
  bounties_collected=excluded.bounties_collected,
  field_size=excluded.field_size,
  players_remaining=excluded.players_remaining,
  payout_percent=excluded.payout_percent,
  payout=excluded.payout,
  current_level=excluded.current_level,
  buy_in_total=excluded.buy_in_total,
  cash_out=excluded.cash_out;
`
	var startTime, endTime any
	if !session.StartTime.IsZero() {
		startTime = session.StartTime.Format(timeLayout)
	}
	if session.EndTime != nil {
		endTime = session.EndTime.Format(timeLayout)
	}
	_, err := tx.ExecContext(ctx, upsert,
		session.ID, domain.SchemaVersion, string(session.Kind), string(session.Status), session.GameType.RawValue(),
		session.Stakes, session.Location, session.Notes, session.IsImported, session.CreatedAt.Format(timeLayout),
		startTime, endTime, session.BuyIn, session.EntryFee, session.Deductions, session.BountyAmount,
		session.Guarantee, session.StartingChips, session.RebuysUsed, session.BountiesCollected, session.FieldSize,
		session.PlayersRemaining, session.PayoutPercent, nullInt(session.Payout), session.CurrentBlindLevelNumber,
		session.BuyInTotal, nullInt(session.CashOut),
	)
	if err != nil {
		return fmt.Errorf("upsert session %s: %w", session.ID, err)
	}
	if err := deleteChildren(ctx, tx, session.ID); err != nil {
		return err
	}
	for _, l := range session.BlindLevels {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO blind_levels (session_id, level_number, small_blind, big_blind, ante, duration_minutes, is_break, break_label)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			session.ID, l.LevelNumber, l.SmallBlind, l.BigBlind, l.Ante, l.DurationMinutes, l.IsBreak, l.BreakLabel,
		); err != nil {
			return fmt.Errorf("insert blind level %d: %w", l.LevelNumber, err)
		}
	}
	for _, e := range session.StackEntries {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO stack_entries (session_id, seq, recorded_at, chip_count, level_number, small_blind, big_blind, ante, source)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			session.ID, e.Seq, e.Timestamp.Format(timeLayout), e.ChipCount, e.BlindLevelNumber, e.SmallBlind, e.BigBlind, e.Ante, string(e.Source),
		); err != nil {
			return fmt.Errorf("insert stack entry %d: %w", e.Seq, err)
		}
	}
	for _, n := range session.HandNotes {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO hand_notes (session_id, seq, recorded_at, body, stack_before, level_number)
VALUES (?, ?, ?, ?, ?, ?)`,
			session.ID, n.Seq, n.Timestamp.Format(timeLayout), n.Text, n.StackBefore, n.BlindLevelNumber,
		); err != nil {
			return fmt.Errorf("insert hand note %d: %w", n.Seq, err)
		}
	}
	return nil
}

func deleteSession(ctx context.Context, tx *sql.Tx, id string) error {
	if err := deleteChildren(ctx, tx, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func deleteChildren(ctx context.Context, tx *sql.Tx, id string) error {
	for _, table := range []string{"blind_levels", "stack_entries", "hand_notes"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE session_id = ?`, id); err != nil {
			return fmt.Errorf("clear %s for %s: %w", table, id, err)
		}
	}
	return nil
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", v, err)
	}
	return t, nil
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullableInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

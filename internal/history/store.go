// Package history persists simulated sessions and their dice rolls in SQLite
// so any session can be replayed later.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/xtding233/craps-backend/internal/craps"
	"github.com/xtding233/craps-backend/internal/history/migrations"
)

var (
	ErrNotFound      = errors.New("session not found")
	ErrAlreadyExists = errors.New("session already exists")
)

// Session describes one recorded session. Rolls is filled by reads only.
// Rules holds the normalized house rules the session ran under, as JSON.
type Session struct {
	ID           string    `json:"id"`
	RunID        string    `json:"run_id"`
	Table        string    `json:"table,omitempty"`
	Variant      string    `json:"variant,omitempty"`
	Strategies   []string  `json:"strategies"`
	Unit         int64     `json:"unit"`
	Bankroll     int64     `json:"bankroll"`
	Seed         uint64    `json:"seed,omitempty"`
	Overrides    string    `json:"overrides,omitempty"` // JSON, opaque to the store
	Rules        string    `json:"rules,omitempty"`
	RulesVersion string    `json:"rules_version,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Rolls        int       `json:"rolls"`
}

// Store persists roll history in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite history store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := "file:" + filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// CreateSession inserts one session header.
func (s *Store) CreateSession(ctx context.Context, sess Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(sess.ID) == "" {
		return fmt.Errorf("session id is required")
	}
	if len(sess.Strategies) == 0 {
		return fmt.Errorf("at least one strategy is required")
	}
	created := sess.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO sessions (id, run_id, table_name, variant, strategies, unit, bankroll, seed, overrides, rules, rules_version, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.RunID, sess.Table, sess.Variant, strings.Join(sess.Strategies, ","),
		sess.Unit, sess.Bankroll, int64(sess.Seed), sess.Overrides, sess.Rules, sess.RulesVersion, toMillis(created),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, sess.ID)
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// AppendRolls adds rolls after any already stored for the session.
func (s *Store) AppendRolls(ctx context.Context, sessionID string, rolls []craps.Roll) (err error) {
	if len(rolls) == 0 {
		return nil
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM sessions WHERE id = ?`, sessionID).Scan(&exists); err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	var next int64
	if err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq) + 1, 0) FROM rolls WHERE session_id = ?`, sessionID).Scan(&next); err != nil {
		return fmt.Errorf("next roll seq: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO rolls (session_id, seq, d1, d2) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare roll insert: %w", err)
	}
	defer stmt.Close()
	for i, r := range rolls {
		if _, err = craps.NewRoll(r.D1, r.D2); err != nil {
			return fmt.Errorf("roll %d: %w", i, err)
		}
		if _, err = stmt.ExecContext(ctx, sessionID, next+int64(i), r.D1, r.D2); err != nil {
			return fmt.Errorf("insert roll %d: %w", i, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit rolls: %w", err)
	}
	return nil
}

// Record stores a finished session and its rolls in one call.
func (s *Store) Record(ctx context.Context, sess Session, rolls []craps.Roll) error {
	if err := s.CreateSession(ctx, sess); err != nil {
		return err
	}
	return s.AppendRolls(ctx, sess.ID, rolls)
}

// Rolls returns a session's rolls in play order.
func (s *Store) Rolls(ctx context.Context, sessionID string) ([]craps.Roll, error) {
	if _, err := s.Session(ctx, sessionID); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT d1, d2 FROM rolls WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query rolls: %w", err)
	}
	defer rows.Close()
	var out []craps.Roll
	for rows.Next() {
		var r craps.Roll
		if err := rows.Scan(&r.D1, &r.D2); err != nil {
			return nil, fmt.Errorf("scan roll: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const sessionColumns = `s.id, s.run_id, s.table_name, s.variant, s.strategies, s.unit, s.bankroll, s.seed, s.overrides, s.rules, s.rules_version, s.created_at,
	(SELECT COUNT(1) FROM rolls r WHERE r.session_id = s.id)`

// Session returns one session header with its roll count.
func (s *Store) Session(ctx context.Context, id string) (Session, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions s WHERE s.id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, err
}

// Sessions lists the most recent sessions first. runID filters when set.
func (s *Store) Sessions(ctx context.Context, runID string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + sessionColumns + ` FROM sessions s`
	args := []any{}
	if runID != "" {
		query += ` WHERE s.run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY s.created_at DESC, s.id LIMIT ?`
	args = append(args, limit)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()
	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var (
		sess       Session
		strategies string
		seed       int64
		created    int64
	)
	if err := row.Scan(&sess.ID, &sess.RunID, &sess.Table, &sess.Variant, &strategies,
		&sess.Unit, &sess.Bankroll, &seed, &sess.Overrides, &sess.Rules, &sess.RulesVersion, &created, &sess.Rolls); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("scan session: %w", err)
	}
	sess.Strategies = strings.Split(strategies, ",")
	sess.Seed = uint64(seed)
	sess.CreatedAt = fromMillis(created)
	return sess, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// Package history keeps a local log of classified statements in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/echelon/internal/model"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get for an unknown verdict ID
var ErrNotFound = errors.New("verdict not found")

const schema = `
CREATE TABLE IF NOT EXISTS verdicts (
	id           TEXT PRIMARY KEY,
	statement    TEXT NOT NULL,
	echelon      TEXT NOT NULL,
	subtype      TEXT NOT NULL,
	explanation  TEXT NOT NULL,
	laws_json    TEXT NOT NULL,
	rule_id      TEXT,
	engine       TEXT NOT NULL,
	provider     TEXT,
	model        TEXT,
	reply        TEXT,
	warnings_json TEXT,
	created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS verdicts_created_at ON verdicts(created_at);
`

// Store is the SQLite-backed verdict log
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs migrations
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer; the server records from many goroutines
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a verdict, assigning an ID and timestamp when they are unset.
// It returns the stored verdict's ID.
func (s *Store) Record(ctx context.Context, v *model.Verdict) (string, error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	laws := v.Classification.Laws
	if laws == nil {
		laws = []model.LawID{}
	}
	lawsJSON, err := json.Marshal(laws)
	if err != nil {
		return "", fmt.Errorf("marshal laws: %w", err)
	}
	warningsJSON, err := json.Marshal(v.Warnings)
	if err != nil {
		return "", fmt.Errorf("marshal warnings: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO verdicts (id, statement, echelon, subtype, explanation, laws_json, rule_id,
		                       engine, provider, model, reply, warnings_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Statement, string(v.Classification.Echelon), string(v.Classification.Subtype),
		v.Classification.Explanation, string(lawsJSON), v.Classification.RuleID,
		string(v.Engine), v.Provider, v.Model, v.Reply, string(warningsJSON),
		v.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert verdict: %w", err)
	}
	return v.ID, nil
}

const selectColumns = `id, statement, echelon, subtype, explanation, laws_json, rule_id,
	engine, provider, model, reply, warnings_json, created_at`

// Get returns the verdict with the given ID
func (s *Store) Get(ctx context.Context, id string) (*model.Verdict, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM verdicts WHERE id = ?`, id)
	v, err := scanVerdict(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Recent returns up to limit verdicts, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]model.Verdict, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM verdicts ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query verdicts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	verdicts := make([]model.Verdict, 0)
	for rows.Next() {
		v, err := scanVerdict(rows)
		if err != nil {
			return nil, err
		}
		verdicts = append(verdicts, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verdicts: %w", err)
	}
	return verdicts, nil
}

// Count returns the number of stored verdicts
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM verdicts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count verdicts: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVerdict(row scanner) (*model.Verdict, error) {
	var (
		v                                        model.Verdict
		echelon, subtype, engine, createdAt      string
		lawsJSON                                 string
		ruleID, provider, modelName, reply, warn sql.NullString
	)

	err := row.Scan(&v.ID, &v.Statement, &echelon, &subtype, &v.Classification.Explanation,
		&lawsJSON, &ruleID, &engine, &provider, &modelName, &reply, &warn, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan verdict: %w", err)
	}

	v.Classification.Echelon = model.Echelon(echelon)
	v.Classification.Subtype = model.Subtype(subtype)
	v.Classification.RuleID = ruleID.String
	v.Engine = model.Engine(engine)
	v.Provider = provider.String
	v.Model = modelName.String
	v.Reply = reply.String

	if err := json.Unmarshal([]byte(lawsJSON), &v.Classification.Laws); err != nil {
		return nil, fmt.Errorf("unmarshal laws: %w", err)
	}
	if v.Classification.Laws == nil {
		v.Classification.Laws = []model.LawID{}
	}
	if warn.Valid && warn.String != "" && warn.String != "null" {
		if err := json.Unmarshal([]byte(warn.String), &v.Warnings); err != nil {
			return nil, fmt.Errorf("unmarshal warnings: %w", err)
		}
	}

	v.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &v, nil
}

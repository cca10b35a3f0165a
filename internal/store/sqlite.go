package store

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
	_ "github.com/mattn/go-sqlite3"

	"github.com/spigell/hh-interviewer/internal/interview"
)

// InMemoryPath opens a private in-memory database.
const InMemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	candidate_name TEXT NOT NULL,
	candidate_id TEXT NOT NULL,
	interview_ref TEXT NOT NULL,
	role TEXT NOT NULL,
	difficulty TEXT NOT NULL,
	duration_minutes INTEGER NOT NULL,
	questions TEXT NOT NULL,
	current_question_index INTEGER NOT NULL DEFAULT 0,
	follow_up_count INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);

CREATE TABLE IF NOT EXISTS turns (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	speaker TEXT NOT NULL,
	content TEXT NOT NULL,
	timestamp_ms INTEGER,
	PRIMARY KEY (session_id, seq)
);
`

// SQLite persists sessions in a SQLite database. Turns are stored as append-only
// rows keyed by their position in the transcript.
type SQLite struct {
	db    *sql.DB
	locks keyedMutex
	now   func() time.Time
}

var _ interview.Store = (*SQLite)(nil)

// OpenSQLite opens or creates the database at path and initializes the schema.
func OpenSQLite(path string, opts ...Option) (*SQLite, error) {
	dsn := path + "?_foreign_keys=ON&_busy_timeout=5000"
	if path != InMemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		dsn += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection: SQLite has a single writer and :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	o := buildOptions(opts)
	return &SQLite{db: db, now: o.now}, nil
}

// Close releases the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Create(ctx context.Context, sess *interview.Session) (string, error) {
	stored := sess.Clone()
	stored.ID = uuid.NewString()
	stored.CreatedAt = s.now()
	stored.UpdatedAt = stored.CreatedAt

	questions, err := json.Marshal(stored.Questions)
	if err != nil {
		return "", fmt.Errorf("encode questions: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO sessions (
		id, candidate_name, candidate_id, interview_ref, role, difficulty, duration_minutes,
		questions, current_question_index, follow_up_count, status, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.ID, stored.CandidateName, stored.CandidateID, stored.InterviewRef, stored.Role,
		stored.Difficulty, stored.DurationMinutes, string(questions), stored.CurrentQuestionIndex,
		stored.FollowUpCount, string(stored.Status), stored.CreatedAt.UnixMilli(), stored.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}

	if err := insertTurns(ctx, tx, stored.ID, 0, stored.Transcript); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit session: %w", err)
	}

	return stored.ID, nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*interview.Session, error) {
	var (
		sess      interview.Session
		questions string
		status    string
		created   int64
		updated   int64
	)

	err := s.db.QueryRowContext(ctx, `SELECT
		id, candidate_name, candidate_id, interview_ref, role, difficulty, duration_minutes,
		questions, current_question_index, follow_up_count, status, created_at, updated_at
	FROM sessions WHERE id = ?`, id).Scan(
		&sess.ID, &sess.CandidateName, &sess.CandidateID, &sess.InterviewRef, &sess.Role,
		&sess.Difficulty, &sess.DurationMinutes, &questions, &sess.CurrentQuestionIndex,
		&sess.FollowUpCount, &status, &created, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interview.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}

	if err := json.Unmarshal([]byte(questions), &sess.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	sess.Status = interview.Status(status)
	sess.CreatedAt = time.UnixMilli(created)
	sess.UpdatedAt = time.UnixMilli(updated)

	rows, err := s.db.QueryContext(ctx,
		`SELECT speaker, content, timestamp_ms FROM turns WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			turn    interview.Turn
			speaker string
			ts      sql.NullInt64
		)
		if err := rows.Scan(&speaker, &turn.Content, &ts); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turn.Speaker = interview.Speaker(speaker)
		if ts.Valid {
			v := ts.Int64
			turn.TimestampMillis = &v
		}
		sess.Transcript = append(sess.Transcript, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}

	return &sess, nil
}

func (s *SQLite) Update(ctx context.Context, id string, mutate func(*interview.Session) error) (*interview.Session, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	if err := mutate(next); err != nil {
		if errors.Is(err, interview.ErrNoChange) {
			return current, nil
		}
		return nil, err
	}
	if err := interview.ValidateUpdate(current, next); err != nil {
		return nil, fmt.Errorf("update session %s: %w", id, err)
	}
	next.UpdatedAt = s.now()

	questions, err := json.Marshal(next.Questions)
	if err != nil {
		return nil, fmt.Errorf("encode questions: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE sessions SET
		questions = ?, current_question_index = ?, follow_up_count = ?, status = ?, updated_at = ?
	WHERE id = ?`,
		string(questions), next.CurrentQuestionIndex, next.FollowUpCount, string(next.Status),
		next.UpdatedAt.UnixMilli(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, interview.ErrSessionNotFound
	}

	appended := next.Transcript[len(current.Transcript):]
	if err := insertTurns(ctx, tx, id, len(current.Transcript), appended); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit session: %w", err)
	}

	return next, nil
}

func (s *SQLite) Expire(ctx context.Context, olderThan time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, olderThan.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("expire sessions: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expired rows: %w", err)
	}
	return int(n), nil
}

func insertTurns(ctx context.Context, tx *sql.Tx, id string, offset int, turns []interview.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO turns (session_id, seq, speaker, content, timestamp_ms) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare turn insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range turns {
		var ts sql.NullInt64
		if t.TimestampMillis != nil {
			ts = sql.NullInt64{Int64: *t.TimestampMillis, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, id, offset+i, string(t.Speaker), t.Content, ts); err != nil {
			return fmt.Errorf("insert turn %d: %w", offset+i, err)
		}
	}

	return nil
}

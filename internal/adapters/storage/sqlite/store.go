// Package sqlite persists chat sessions and messages and executes the
// pipeline's generated queries. Generated queries run on a separate
// query_only connection, so even SQL that slips past the keyword guard cannot
// write.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/PabloGalante/olist-intelligence/internal/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements domain.ChatStore and domain.QueryExecutor.
type Store struct {
	db  *sql.DB // read-write, chat tables only
	ro  *sql.DB // query_only, generated SQL
	now func() time.Time
}

// Open opens the database at path, applies migrations, and prepares the
// read-only connection.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	ro, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=query_only(1)")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening read-only connection: %w", err)
	}

	return &Store{db: db, ro: ro, now: time.Now}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// Ping reports database availability for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	s.ro.Close()
	return s.db.Close()
}

// ─── domain.ChatStore ───

func (s *Store) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	if session.ID == "" {
		session.ID = domain.SessionID(uuid.NewString())
	}
	now := s.now()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, user_id, context, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		string(session.ID), string(session.UserID), session.Context, now, now,
	)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id domain.SessionID) (*domain.ChatSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, context, created_at, updated_at FROM chat_sessions WHERE id = ?`,
		string(id),
	)

	var sess domain.ChatSession
	var userID string
	err := row.Scan(&sess.ID, &userID, &sess.Context, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	sess.UserID = domain.UserID(userID)
	return &sess, nil
}

func (s *Store) TouchSession(ctx context.Context, id domain.SessionID) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE chat_sessions SET updated_at = ? WHERE id = ?`,
		s.now(), string(id),
	)
	if err != nil {
		return fmt.Errorf("touching session: %w", err)
	}
	return nil
}

func (s *Store) ListSessions(ctx context.Context, userID domain.UserID, limit int) ([]*domain.ChatSession, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, user_id, context, created_at, updated_at FROM chat_sessions`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, string(userID))
	}
	query += ` ORDER BY updated_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.ChatSession
	for rows.Next() {
		var sess domain.ChatSession
		var uid string
		if err := rows.Scan(&sess.ID, &uid, &sess.Context, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sess.UserID = domain.UserID(uid)
		sessions = append(sessions, &sess)
	}
	return sessions, rows.Err()
}

func (s *Store) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = domain.MessageID(uuid.NewString())
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, session_id, role, content, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(msg.ID), string(msg.SessionID), string(msg.Role), msg.Content, msg.Metadata, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

func (s *Store) GetMessagesBySession(ctx context.Context, sessionID domain.SessionID, limit int) ([]*domain.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, metadata, created_at
		 FROM chat_messages WHERE session_id = ?
		 ORDER BY created_at ASC, rowid ASC LIMIT ?`,
		string(sessionID), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.Metadata, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, &msg)
	}
	return msgs, rows.Err()
}

// ─── domain.QueryExecutor ───

// ExecuteQuery runs generated SQL verbatim on the query_only connection and
// returns rows as column-keyed maps.
func (s *Store) ExecuteQuery(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := s.ro.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		record := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			record[col] = v
		}
		results = append(results, record)
	}
	return results, rows.Err()
}

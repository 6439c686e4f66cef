package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// MemoryDSN names a private in-memory SQLite database. All connections in
// the pool see the same data while at least one of them stays open.
func MemoryDSN(name string) string {
	return "file:" + name + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
}

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:taba.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/taba?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// one writer; also keeps shared in-memory databases alive
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema: %w", err)
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS profiles (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL DEFAULT '',
  avatar_url TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'learner',
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  course TEXT NOT NULL,
  topic TEXT NOT NULL,
  kind TEXT NOT NULL,                 -- multiple-choice | true-false | drag-drop
  prompt TEXT NOT NULL,
  options_json TEXT NOT NULL DEFAULT 'null',
  drag_items_json TEXT NOT NULL DEFAULT 'null',
  correct_answer_json TEXT NOT NULL,  -- string or array
  explanation TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL         -- unix nanos
);
CREATE INDEX IF NOT EXISTS questions_topic_idx ON questions (course, topic, created_at);

CREATE TABLE IF NOT EXISTS quiz_history (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  course TEXT NOT NULL,
  topic TEXT NOT NULL,
  score INTEGER NOT NULL,
  total_questions INTEGER NOT NULL,
  correct_answers INTEGER NOT NULL,
  duration TEXT NOT NULL DEFAULT '',
  completed_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS quiz_history_user_idx ON quiz_history (user_id, completed_at);

CREATE TABLE IF NOT EXISTS quiz_answers (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  quiz_history_id TEXT NOT NULL REFERENCES quiz_history(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  question_id TEXT NOT NULL,
  user_answer TEXT NOT NULL,
  correct_answer TEXT NOT NULL,
  is_correct BOOLEAN NOT NULL,
  UNIQUE (quiz_history_id, position)
);

CREATE TABLE IF NOT EXISTS course_progress (
  user_id TEXT NOT NULL,
  course_name TEXT NOT NULL,
  progress INTEGER NOT NULL,
  completed BOOLEAN NOT NULL,
  last_accessed INTEGER NOT NULL,
  PRIMARY KEY (user_id, course_name)
);

CREATE TABLE IF NOT EXISTS event_log (
  seq INTEGER PRIMARY KEY AUTOINCREMENT, -- BIGSERIAL in Postgres
  user_id TEXT NOT NULL,
  typ TEXT NOT NULL,                     -- e.g., QuizCompleted
  key TEXT NOT NULL,                     -- natural key: history id, course
  data TEXT NOT NULL,                    -- JSON payload
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS event_log_user_idx ON event_log (user_id, seq);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS profiles (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL DEFAULT '',
  avatar_url TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'learner',
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  course TEXT NOT NULL,
  topic TEXT NOT NULL,
  kind TEXT NOT NULL,
  prompt TEXT NOT NULL,
  options_json TEXT NOT NULL DEFAULT 'null',
  drag_items_json TEXT NOT NULL DEFAULT 'null',
  correct_answer_json TEXT NOT NULL,
  explanation TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS questions_topic_idx ON questions (course, topic, created_at);

CREATE TABLE IF NOT EXISTS quiz_history (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  course TEXT NOT NULL,
  topic TEXT NOT NULL,
  score INTEGER NOT NULL,
  total_questions INTEGER NOT NULL,
  correct_answers INTEGER NOT NULL,
  duration TEXT NOT NULL DEFAULT '',
  completed_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS quiz_history_user_idx ON quiz_history (user_id, completed_at);

CREATE TABLE IF NOT EXISTS quiz_answers (
  id BIGSERIAL PRIMARY KEY,
  quiz_history_id TEXT NOT NULL REFERENCES quiz_history(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  question_id TEXT NOT NULL,
  user_answer TEXT NOT NULL,
  correct_answer TEXT NOT NULL,
  is_correct BOOLEAN NOT NULL,
  UNIQUE (quiz_history_id, position)
);

CREATE TABLE IF NOT EXISTS course_progress (
  user_id TEXT NOT NULL,
  course_name TEXT NOT NULL,
  progress INTEGER NOT NULL,
  completed BOOLEAN NOT NULL,
  last_accessed BIGINT NOT NULL,
  PRIMARY KEY (user_id, course_name)
);

CREATE TABLE IF NOT EXISTS event_log (
  seq BIGSERIAL PRIMARY KEY,
  user_id TEXT NOT NULL,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS event_log_user_idx ON event_log (user_id, seq);
`

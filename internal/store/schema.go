package store

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS llm_events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sequence INTEGER NOT NULL,
  ts INTEGER NOT NULL,
  request_id TEXT NOT NULL DEFAULT '',
  provider TEXT NOT NULL,
  model TEXT NOT NULL,
  purpose TEXT NOT NULL,
  input_tokens INTEGER NOT NULL DEFAULT 0,
  output_tokens INTEGER NOT NULL DEFAULT 0,
  latency_ms INTEGER NOT NULL DEFAULT 0,
  success INTEGER NOT NULL,
  error_message TEXT NOT NULL DEFAULT '',
  request_body TEXT NOT NULL DEFAULT '',
  response_body TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS repair_events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sequence INTEGER NOT NULL,
  ts INTEGER NOT NULL,
  request_id TEXT NOT NULL DEFAULT '',
  section TEXT NOT NULL,
  part INTEGER NOT NULL,
  kind TEXT NOT NULL,
  count INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_llm_events_sequence ON llm_events(sequence);
CREATE INDEX IF NOT EXISTS idx_repair_events_blueprint ON repair_events(section, part);
CREATE INDEX IF NOT EXISTS idx_llm_events_request ON llm_events(request_id);

CREATE TABLE IF NOT EXISTS event_sequence (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  next_val BIGINT NOT NULL
);
INSERT INTO event_sequence (id, next_val) VALUES (1, 1) ON CONFLICT (id) DO NOTHING;
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS llm_events (
  id BIGSERIAL PRIMARY KEY,
  sequence BIGINT NOT NULL,
  ts BIGINT NOT NULL,
  request_id TEXT NOT NULL DEFAULT '',
  provider TEXT NOT NULL,
  model TEXT NOT NULL,
  purpose TEXT NOT NULL,
  input_tokens INTEGER NOT NULL DEFAULT 0,
  output_tokens INTEGER NOT NULL DEFAULT 0,
  latency_ms INTEGER NOT NULL DEFAULT 0,
  success INTEGER NOT NULL,
  error_message TEXT NOT NULL DEFAULT '',
  request_body TEXT NOT NULL DEFAULT '',
  response_body TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS repair_events (
  id BIGSERIAL PRIMARY KEY,
  sequence BIGINT NOT NULL,
  ts BIGINT NOT NULL,
  request_id TEXT NOT NULL DEFAULT '',
  section TEXT NOT NULL,
  part INTEGER NOT NULL,
  kind TEXT NOT NULL,
  count INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_llm_events_sequence ON llm_events(sequence);
CREATE INDEX IF NOT EXISTS idx_repair_events_blueprint ON repair_events(section, part);
CREATE INDEX IF NOT EXISTS idx_llm_events_request ON llm_events(request_id);

CREATE TABLE IF NOT EXISTS event_sequence (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  next_val BIGINT NOT NULL
);
INSERT INTO event_sequence (id, next_val) VALUES (1, 1) ON CONFLICT (id) DO NOTHING;
`

func migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	schema := schemaSQLite
	if dialect == DialectPostgres {
		schema = schemaPostgres
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

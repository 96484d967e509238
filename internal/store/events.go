package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type eventRepo struct {
	db      *sql.DB
	dialect Dialect
	seq     *sequence
}

func (r *eventRepo) q(query string) string {
	return rebind(r.dialect, query)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seq, err := r.seq.reserve(ctx, 1)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, r.q(`INSERT INTO llm_events
		(sequence, ts, request_id, provider, model, purpose, input_tokens, output_tokens,
		 latency_ms, success, error_message, request_body, response_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		seq, time.Now().UnixMilli(), data.RequestID, data.Provider, data.Model, data.Purpose,
		data.InputTokens, data.OutputTokens, data.LatencyMs, boolToInt(data.Success),
		data.ErrorMessage, data.RequestBody, data.ResponseBody,
	)
	if err != nil {
		return fmt.Errorf("append llm request event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendRepairs(ctx context.Context, events []RepairEventData) error {
	if len(events) == 0 {
		return nil
	}

	// Reserved before the transaction opens: SQLite runs on a single pooled
	// connection, which the transaction would hold.
	first, err := r.seq.reserve(ctx, len(events))
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin repair tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	stmt := r.q(`INSERT INTO repair_events (sequence, ts, request_id, section, part, kind, count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for i, ev := range events {
		if _, err := tx.ExecContext(ctx, stmt,
			first+int64(i), now, ev.RequestID, ev.Section, ev.Part, ev.Kind, ev.Count,
		); err != nil {
			return fmt.Errorf("append repair event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit repair events: %w", err)
	}
	return nil
}

const llmEventColumns = `id, sequence, ts, request_id, provider, model, purpose,
	input_tokens, output_tokens, latency_ms, success, error_message, request_body, response_body`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLLMEvent(row rowScanner) (LLMEvent, error) {
	var (
		ev      LLMEvent
		ts      int64
		success int
	)
	err := row.Scan(&ev.ID, &ev.Sequence, &ts, &ev.RequestID, &ev.Provider, &ev.Model, &ev.Purpose,
		&ev.InputTokens, &ev.OutputTokens, &ev.LatencyMs, &success, &ev.ErrorMessage,
		&ev.RequestBody, &ev.ResponseBody)
	if err != nil {
		return LLMEvent{}, err
	}
	ev.Timestamp = time.UnixMilli(ts).UTC()
	ev.Success = success != 0
	return ev, nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	var (
		where []string
		args  []any
	)
	if opts.After > 0 {
		where = append(where, "sequence > ?")
		args = append(args, opts.After)
	}
	if opts.Before > 0 {
		where = append(where, "sequence < ?")
		args = append(args, opts.Before)
	}
	if !opts.From.IsZero() {
		where = append(where, "ts >= ?")
		args = append(args, opts.From.UnixMilli())
	}
	if !opts.To.IsZero() {
		where = append(where, "ts <= ?")
		args = append(args, opts.To.UnixMilli())
	}
	if opts.Purpose != "" {
		where = append(where, "purpose = ?")
		args = append(args, opts.Purpose)
	}
	if opts.RequestID != "" {
		where = append(where, "request_id = ?")
		args = append(args, opts.RequestID)
	}

	query := "SELECT " + llmEventColumns + " FROM llm_events"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY sequence DESC"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query llm events: %w", err)
	}
	defer rows.Close()

	var events []LLMEvent
	for rows.Next() {
		ev, err := scanLLMEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan llm event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error) {
	row := r.db.QueryRowContext(ctx, r.q("SELECT "+llmEventColumns+" FROM llm_events WHERE id = ?"), id)
	ev, err := scanLLMEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get llm event %d: %w", id, err)
	}
	return &ev, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT purpose, COUNT(*),
		SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END),
		COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0),
		COALESCE(CAST(AVG(latency_ms) AS DOUBLE PRECISION), 0)
		FROM llm_events GROUP BY purpose ORDER BY COUNT(*) DESC, purpose`)
	if err != nil {
		return nil, fmt.Errorf("usage by purpose: %w", err)
	}
	defer rows.Close()

	var out []PurposeUsage
	for rows.Next() {
		var (
			u   PurposeUsage
			avg float64
		)
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.Failures, &u.InputTokens, &u.OutputTokens, &avg); err != nil {
			return nil, fmt.Errorf("scan purpose usage: %w", err)
		}
		u.AvgLatencyMs = int64(avg)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT model, COUNT(*),
		COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0)
		FROM llm_events GROUP BY model ORDER BY COUNT(*) DESC, model`)
	if err != nil {
		return nil, fmt.Errorf("usage by model: %w", err)
	}
	defer rows.Close()

	var out []ModelUsage
	for rows.Next() {
		var u ModelUsage
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan model usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *eventRepo) RepairStats(ctx context.Context) ([]RepairStat, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT section, part, kind,
		COUNT(DISTINCT request_id), COALESCE(SUM(count), 0)
		FROM repair_events GROUP BY section, part, kind ORDER BY section, part, kind`)
	if err != nil {
		return nil, fmt.Errorf("repair stats: %w", err)
	}
	defer rows.Close()

	var out []RepairStat
	for rows.Next() {
		var s RepairStat
		if err := rows.Scan(&s.Section, &s.Part, &s.Kind, &s.Requests, &s.Corrections); err != nil {
			return nil, fmt.Errorf("scan repair stat: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

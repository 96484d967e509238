package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// sequence hands out the ordering numbers shared by llm_events and
// repair_events, so a repair can be placed after the call that caused it.
// Row ids are per table and cannot do that.
type sequence struct {
	mu sync.Mutex
	db *sql.DB
}

// reserve claims n consecutive numbers and returns the first. The single
// UPDATE ... RETURNING is atomic in both SQLite and Postgres; the mutex
// only keeps this process from queueing on the row lock.
func (s *sequence) reserve(ctx context.Context, n int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var first int64
	err := s.db.QueryRowContext(ctx,
		`UPDATE event_sequence SET next_val = next_val + `+fmt.Sprint(n)+` WHERE id = 1 RETURNING next_val - `+fmt.Sprint(n),
	).Scan(&first)
	if err != nil {
		return 0, fmt.Errorf("reserve %d sequence numbers: %w", n, err)
	}
	return first, nil
}

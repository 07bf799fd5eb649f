package door

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 200
)

// SQLiteEventRepository implements EventRepository using SQLite.
//
// Events are stored in the door_events table (see migrations).
type SQLiteEventRepository struct {
	db *sql.DB
}

// NewSQLiteEventRepository creates a new SQLite event repository.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *SQLiteEventRepository: Repository instance ready for use
func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

// RecordEvent inserts a new door movement row.
func (r *SQLiteEventRepository) RecordEvent(ctx context.Context, event Event) error {
	if event.Action != ActionOpen && event.Action != ActionClose {
		return fmt.Errorf("%w: event action %q", ErrInvalidState, event.Action)
	}
	if event.Source == "" {
		event.Source = EventSourceSchedule
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO door_events (action, state, mode, source, reason) VALUES (?, ?, ?, ?, ?)",
		string(event.Action),
		string(event.State),
		string(event.Mode),
		event.Source,
		event.Reason,
	)
	if err != nil {
		return fmt.Errorf("inserting door event: %w", err)
	}

	return nil
}

// GetRecent returns recent door movements, ordered newest first.
func (r *SQLiteEventRepository) GetRecent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, action, state, mode, source, reason, created_at
		 FROM door_events
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying door events: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only rows

	var events []Event
	for rows.Next() {
		var e Event
		var action, state, mode, createdAt string
		if err := rows.Scan(&e.ID, &action, &state, &mode, &e.Source, &e.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning door event: %w", err)
		}
		e.Action = Action(action)
		e.State = State(state)
		e.Mode = Mode(mode)
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // Format is controlled
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating door events: %w", err)
	}

	return events, nil
}

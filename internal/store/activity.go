package store

import (
	"context"
	"fmt"
	"time"
)

// AddActivity records an activity entry for an event.
func (s *Store) AddActivity(ctx context.Context, a Activity) error {
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activity (event_id, task_id, actor_id, event_type, content, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		a.EventID, a.TaskID, a.ActorID, a.Type, a.Content, a.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("add activity: %w", err)
	}
	return nil
}

// ListActivity returns the activity of an event in chronological order.
// A non-empty taskID narrows it to one task.
func (s *Store) ListActivity(ctx context.Context, eventID, taskID string) ([]Activity, error) {
	query := `SELECT id, event_id, task_id, actor_id, event_type, content, timestamp FROM activity WHERE event_id = ?`
	args := []any{eventID}
	if taskID != "" {
		query += ` AND task_id = ?`
		args = append(args, taskID)
	}
	query += ` ORDER BY timestamp, id`

	var out []Activity
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return out, nil
}

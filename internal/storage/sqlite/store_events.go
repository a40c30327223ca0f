package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/studyhall/studyhall/internal/storage"
)

// PutDomainEvent appends one row to the domain event log.
func (s *Store) PutDomainEvent(ctx context.Context, record storage.DomainEventRecord) error {
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("domain event id is required")
	}
	if strings.TrimSpace(record.Type) == "" {
		return fmt.Errorf("domain event type is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO domain_events (id, type, payload, user_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		record.ID, record.Type, string(record.PayloadJSON), record.UserID, toMillis(record.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert domain event: %w", err)
	}
	return nil
}

// ListDomainEvents returns the newest rows of the event log, newest first.
// A non-positive limit returns every row.
func (s *Store) ListDomainEvents(ctx context.Context, limit int) ([]storage.DomainEventRecord, error) {
	query := `SELECT id, type, payload, user_id, created_at FROM domain_events ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list domain events: %w", err)
	}
	defer rows.Close()

	var records []storage.DomainEventRecord
	for rows.Next() {
		var record storage.DomainEventRecord
		var payload string
		var createdAt int64
		if err := rows.Scan(&record.ID, &record.Type, &payload, &record.UserID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan domain event: %w", err)
		}
		record.PayloadJSON = []byte(payload)
		record.CreatedAt = fromMillis(createdAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list domain events: %w", err)
	}
	return records, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/studyhall/studyhall/internal/storage"
)

// GetOrCreateConversation resolves the course's conversation row, creating it
// on first access. A concurrent insert losing the unique race falls back to
// reading the winner's row.
func (s *Store) GetOrCreateConversation(ctx context.Context, courseID int64) (storage.ConversationRecord, error) {
	record, err := s.getConversation(ctx, courseID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return storage.ConversationRecord{}, err
	}

	now := toMillis(time.Now())
	result, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO conversations (course_id, created_at) VALUES (?, ?)`, courseID, now)
	if err != nil {
		if isUniqueViolation(err) {
			return s.getConversation(ctx, courseID)
		}
		return storage.ConversationRecord{}, fmt.Errorf("insert conversation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return storage.ConversationRecord{}, fmt.Errorf("conversation id: %w", err)
	}
	return storage.ConversationRecord{ID: id, CourseID: courseID, CreatedAt: fromMillis(now)}, nil
}

func (s *Store) getConversation(ctx context.Context, courseID int64) (storage.ConversationRecord, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, course_id, created_at FROM conversations WHERE course_id = ?`, courseID)

	var record storage.ConversationRecord
	var createdAt int64
	if err := row.Scan(&record.ID, &record.CourseID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ConversationRecord{}, storage.ErrNotFound
		}
		return storage.ConversationRecord{}, fmt.Errorf("scan conversation: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

// CreateMessage inserts a message and returns it with the author's username
// and the owning course resolved.
func (s *Store) CreateMessage(ctx context.Context, conversationID, authorID int64, text string) (storage.MessageRecord, error) {
	now := toMillis(time.Now())
	result, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO messages (conversation_id, author_id, text, created_at) VALUES (?, ?, ?, ?)`,
		conversationID, authorID, text, now)
	if err != nil {
		return storage.MessageRecord{}, fmt.Errorf("insert message: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return storage.MessageRecord{}, fmt.Errorf("message id: %w", err)
	}
	return s.getMessage(ctx, id)
}

// ListMessages returns the conversation's messages in creation order.
func (s *Store) ListMessages(ctx context.Context, conversationID int64) ([]storage.MessageRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		messageQuery+` WHERE m.conversation_id = ? ORDER BY m.id`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var records []storage.MessageRecord
	for rows.Next() {
		record, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return records, nil
}

const messageQuery = `
SELECT m.id, m.conversation_id, c.course_id, m.author_id, u.username, m.text, m.created_at
FROM messages m
JOIN conversations c ON c.id = m.conversation_id
JOIN users u ON u.id = m.author_id`

func (s *Store) getMessage(ctx context.Context, id int64) (storage.MessageRecord, error) {
	row := s.sqlDB.QueryRowContext(ctx, messageQuery+` WHERE m.id = ?`, id)
	record, err := scanMessage(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.MessageRecord{}, storage.ErrNotFound
		}
		return storage.MessageRecord{}, fmt.Errorf("scan message: %w", err)
	}
	return record, nil
}

func scanMessage(scan func(...any) error) (storage.MessageRecord, error) {
	var record storage.MessageRecord
	var createdAt int64
	if err := scan(&record.ID, &record.ConversationID, &record.CourseID, &record.AuthorID,
		&record.AuthorUsername, &record.Text, &createdAt); err != nil {
		return storage.MessageRecord{}, err
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

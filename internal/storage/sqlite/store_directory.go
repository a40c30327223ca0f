package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/studyhall/studyhall/internal/storage"
	"github.com/studyhall/studyhall/internal/user"
)

// CreateUser inserts an account row.
func (s *Store) CreateUser(ctx context.Context, username string, role user.Role) (storage.UserRecord, error) {
	now := time.Now().UTC()
	result, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (username, role, created_at) VALUES (?, ?, ?)`,
		username, user.RoleLabel(role), toMillis(now))
	if err != nil {
		return storage.UserRecord{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return storage.UserRecord{}, fmt.Errorf("user id: %w", err)
	}
	return storage.UserRecord{ID: id, Username: username, Role: role, CreatedAt: fromMillis(toMillis(now))}, nil
}

// GetUser returns one account row by id.
func (s *Store) GetUser(ctx context.Context, id int64) (storage.UserRecord, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, username, role, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (storage.UserRecord, error) {
	var record storage.UserRecord
	var role string
	var createdAt int64
	if err := row.Scan(&record.ID, &record.Username, &role, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.UserRecord{}, storage.ErrNotFound
		}
		return storage.UserRecord{}, fmt.Errorf("scan user: %w", err)
	}
	record.Role = user.RoleFromLabel(role)
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

// CreateCourse inserts a course row.
func (s *Store) CreateCourse(ctx context.Context, title string, instructorID int64) (storage.CourseRecord, error) {
	now := toMillis(time.Now())
	result, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO courses (title, instructor_id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		title, instructorID, now, now)
	if err != nil {
		return storage.CourseRecord{}, fmt.Errorf("insert course: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return storage.CourseRecord{}, fmt.Errorf("course id: %w", err)
	}
	return storage.CourseRecord{
		ID:           id,
		Title:        title,
		InstructorID: instructorID,
		CreatedAt:    fromMillis(now),
		UpdatedAt:    fromMillis(now),
	}, nil
}

// GetCourse returns one course row by id.
func (s *Store) GetCourse(ctx context.Context, id int64) (storage.CourseRecord, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, title, instructor_id, created_at, updated_at FROM courses WHERE id = ?`, id)

	var record storage.CourseRecord
	var createdAt, updatedAt int64
	if err := row.Scan(&record.ID, &record.Title, &record.InstructorID, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.CourseRecord{}, storage.ErrNotFound
		}
		return storage.CourseRecord{}, fmt.Errorf("scan course: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

// UpdateCourseTitle renames a course.
func (s *Store) UpdateCourseTitle(ctx context.Context, id int64, title string) (storage.CourseRecord, error) {
	now := toMillis(time.Now())
	result, err := s.sqlDB.ExecContext(ctx,
		`UPDATE courses SET title = ?, updated_at = ? WHERE id = ?`, title, now, id)
	if err != nil {
		return storage.CourseRecord{}, fmt.Errorf("update course: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.CourseRecord{}, fmt.Errorf("update course rows: %w", err)
	}
	if affected == 0 {
		return storage.CourseRecord{}, storage.ErrNotFound
	}
	return s.GetCourse(ctx, id)
}

// DeleteCourse removes a course row. Enrollments, the conversation, and its
// messages cascade with it.
func (s *Store) DeleteCourse(ctx context.Context, id int64) error {
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete course rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

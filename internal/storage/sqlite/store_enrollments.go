package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/studyhall/studyhall/internal/enrollment"
	"github.com/studyhall/studyhall/internal/storage"
)

const enrollmentColumns = `id, student_id, course_id, status, completed_at, created_at, updated_at`

// CreateEnrollment inserts a PENDING row for the (student, course) pair.
func (s *Store) CreateEnrollment(ctx context.Context, studentID, courseID int64) (storage.EnrollmentRecord, error) {
	now := toMillis(time.Now())
	result, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO enrollments (student_id, course_id, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		studentID, courseID, enrollment.StatusLabel(enrollment.StatusPending), now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.EnrollmentRecord{}, storage.ErrEnrollmentExists
		}
		return storage.EnrollmentRecord{}, fmt.Errorf("insert enrollment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return storage.EnrollmentRecord{}, fmt.Errorf("enrollment id: %w", err)
	}
	return storage.EnrollmentRecord{
		ID:        id,
		StudentID: studentID,
		CourseID:  courseID,
		Status:    enrollment.StatusPending,
		CreatedAt: fromMillis(now),
		UpdatedAt: fromMillis(now),
	}, nil
}

// GetEnrollmentByPair returns the enrollment row for the (student, course)
// pair.
func (s *Store) GetEnrollmentByPair(ctx context.Context, studentID, courseID int64) (storage.EnrollmentRecord, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE student_id = ? AND course_id = ?`,
		studentID, courseID)

	record, err := scanEnrollment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.EnrollmentRecord{}, storage.ErrNotFound
		}
		return storage.EnrollmentRecord{}, fmt.Errorf("scan enrollment: %w", err)
	}
	return record, nil
}

// TransitionEnrollment conditionally moves a row from the expected status to
// the next one. Zero affected rows means the precondition no longer holds.
func (s *Store) TransitionEnrollment(ctx context.Context, id int64, expected, next enrollment.Status, at time.Time) error {
	var completedAt any
	if next == enrollment.StatusCompleted {
		completedAt = toMillis(at)
	}
	result, err := s.sqlDB.ExecContext(ctx,
		`UPDATE enrollments SET status = ?, completed_at = ?, updated_at = ? WHERE id = ? AND status = ?`,
		enrollment.StatusLabel(next), completedAt, toMillis(at), id, enrollment.StatusLabel(expected))
	if err != nil {
		return fmt.Errorf("transition enrollment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition enrollment rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrStatusConflict
	}
	return nil
}

// DeleteEnrollment conditionally removes a row still holding the expected
// status.
func (s *Store) DeleteEnrollment(ctx context.Context, id int64, expected enrollment.Status) error {
	result, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM enrollments WHERE id = ? AND status = ?`,
		id, enrollment.StatusLabel(expected))
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete enrollment rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrStatusConflict
	}
	return nil
}

// CompleteCourseEnrollments flips every non-COMPLETED row for the course to
// COMPLETED in one statement and reports how many rows changed.
func (s *Store) CompleteCourseEnrollments(ctx context.Context, courseID int64, at time.Time) (int64, error) {
	result, err := s.sqlDB.ExecContext(ctx,
		`UPDATE enrollments SET status = ?, completed_at = ?, updated_at = ? WHERE course_id = ? AND status != ?`,
		enrollment.StatusLabel(enrollment.StatusCompleted), toMillis(at), toMillis(at),
		courseID, enrollment.StatusLabel(enrollment.StatusCompleted))
	if err != nil {
		return 0, fmt.Errorf("complete course enrollments: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("complete course enrollments rows: %w", err)
	}
	return affected, nil
}

// ListCourseEnrollments returns the course's enrollment rows in insertion
// order.
func (s *Store) ListCourseEnrollments(ctx context.Context, courseID int64) ([]storage.EnrollmentRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE course_id = ? ORDER BY id`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	var records []storage.EnrollmentRecord
	for rows.Next() {
		record, err := scanEnrollment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return records, nil
}

// ListActiveStudentIDs returns the student id of every ACTIVE enrollment on
// the course.
func (s *Store) ListActiveStudentIDs(ctx context.Context, courseID int64) ([]int64, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT student_id FROM enrollments WHERE course_id = ? AND status = ? ORDER BY student_id`,
		courseID, enrollment.StatusLabel(enrollment.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("list active students: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan student id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active students: %w", err)
	}
	return ids, nil
}

func scanEnrollment(scan func(...any) error) (storage.EnrollmentRecord, error) {
	var record storage.EnrollmentRecord
	var status string
	var completedAt sql.NullInt64
	var createdAt, updatedAt int64
	if err := scan(&record.ID, &record.StudentID, &record.CourseID, &status, &completedAt, &createdAt, &updatedAt); err != nil {
		return storage.EnrollmentRecord{}, err
	}
	record.Status = enrollment.StatusFromLabel(status)
	if completedAt.Valid {
		at := fromMillis(completedAt.Int64)
		record.CompletedAt = &at
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

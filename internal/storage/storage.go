// Package storage defines the persistence records and store interfaces the
// core services depend on.
package storage

import (
	"context"
	"time"

	"github.com/studyhall/studyhall/internal/enrollment"
	apperrors "github.com/studyhall/studyhall/internal/errors"
	"github.com/studyhall/studyhall/internal/user"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "no such entity" states
// and transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrEnrollmentExists indicates an insert tried to violate the permanent
// (student_id, course_id) unique key. The pair stays claimed even after an
// enrollment reaches a terminal status.
var ErrEnrollmentExists = apperrors.New(apperrors.CodeEnrollmentExists, "enrollment already exists for student and course")

// ErrStatusConflict indicates a conditional status transition matched zero
// rows: the enrollment's current status no longer satisfies the transition's
// precondition.
var ErrStatusConflict = apperrors.New(apperrors.CodeEnrollmentWrongStatus, "enrollment status does not allow this transition")

// UserRecord captures an account row referenced by enrollments and messages.
type UserRecord struct {
	ID        int64
	Username  string
	Role      user.Role
	CreatedAt time.Time
}

// CourseRecord captures a course row.
type CourseRecord struct {
	ID           int64
	Title        string
	InstructorID int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EnrollmentRecord captures the (student, course) relationship row.
type EnrollmentRecord struct {
	ID          int64
	StudentID   int64
	CourseID    int64
	Status      enrollment.Status
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DomainEventRecord captures one persisted domain event.
type DomainEventRecord struct {
	ID          string
	Type        string
	PayloadJSON []byte
	UserID      int64
	CreatedAt   time.Time
}

// ConversationRecord captures the per-course conversation row.
type ConversationRecord struct {
	ID        int64
	CourseID  int64
	CreatedAt time.Time
}

// MessageRecord captures one chat message with its author details.
type MessageRecord struct {
	ID             int64
	ConversationID int64
	CourseID       int64
	AuthorID       int64
	AuthorUsername string
	Text           string
	CreatedAt      time.Time
}

// UserStore persists account rows.
type UserStore interface {
	CreateUser(ctx context.Context, username string, role user.Role) (UserRecord, error)
	GetUser(ctx context.Context, id int64) (UserRecord, error)
}

// CourseStore persists course rows.
type CourseStore interface {
	CreateCourse(ctx context.Context, title string, instructorID int64) (CourseRecord, error)
	GetCourse(ctx context.Context, id int64) (CourseRecord, error)
	UpdateCourseTitle(ctx context.Context, id int64, title string) (CourseRecord, error)
	DeleteCourse(ctx context.Context, id int64) error
}

// EnrollmentStore persists enrollment rows and implements the conditional
// writes the state machine relies on.
type EnrollmentStore interface {
	// CreateEnrollment inserts a PENDING row; ErrEnrollmentExists when the
	// (student, course) pair already has one.
	CreateEnrollment(ctx context.Context, studentID, courseID int64) (EnrollmentRecord, error)
	GetEnrollmentByPair(ctx context.Context, studentID, courseID int64) (EnrollmentRecord, error)
	// TransitionEnrollment updates status only when the row still holds the
	// expected status; ErrStatusConflict when zero rows matched.
	TransitionEnrollment(ctx context.Context, id int64, expected, next enrollment.Status, at time.Time) error
	// DeleteEnrollment removes the row only when it still holds the expected
	// status; ErrStatusConflict when zero rows matched.
	DeleteEnrollment(ctx context.Context, id int64, expected enrollment.Status) error
	// CompleteCourseEnrollments flips every non-COMPLETED row for the course to
	// COMPLETED and stamps completed_at, returning the number of rows changed.
	CompleteCourseEnrollments(ctx context.Context, courseID int64, at time.Time) (int64, error)
	ListCourseEnrollments(ctx context.Context, courseID int64) ([]EnrollmentRecord, error)
	// ListActiveStudentIDs returns the studentId of every ACTIVE enrollment.
	ListActiveStudentIDs(ctx context.Context, courseID int64) ([]int64, error)
}

// DomainEventStore persists the audit log of published events.
type DomainEventStore interface {
	PutDomainEvent(ctx context.Context, record DomainEventRecord) error
	ListDomainEvents(ctx context.Context, limit int) ([]DomainEventRecord, error)
}

// ChatStore persists conversations and messages.
type ChatStore interface {
	// GetOrCreateConversation resolves the course's conversation, creating it
	// lazily on first access.
	GetOrCreateConversation(ctx context.Context, courseID int64) (ConversationRecord, error)
	CreateMessage(ctx context.Context, conversationID, authorID int64, text string) (MessageRecord, error)
	ListMessages(ctx context.Context, conversationID int64) ([]MessageRecord, error)
}

// Package service implements the core enrollment, course, and chat rules on
// top of the storage interfaces, publishing domain events on the injected bus.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/studyhall/studyhall/internal/enrollment"
	apperrors "github.com/studyhall/studyhall/internal/errors"
	"github.com/studyhall/studyhall/internal/event"
	"github.com/studyhall/studyhall/internal/storage"
	"github.com/studyhall/studyhall/internal/user"
)

// EnrollmentService drives the enrollment lifecycle.
//
// Every transition is a conditional write against the expected current status;
// a zero-row update surfaces as a conflict instead of silently overwriting a
// concurrent transition. Events are published after the write succeeds and
// before the call returns.
type EnrollmentService struct {
	users       storage.UserStore
	courses     storage.CourseStore
	enrollments storage.EnrollmentStore
	bus         *event.Bus
	clock       func() time.Time
}

// NewEnrollmentService creates an EnrollmentService with default dependencies.
func NewEnrollmentService(users storage.UserStore, courses storage.CourseStore, enrollments storage.EnrollmentStore, bus *event.Bus) *EnrollmentService {
	return &EnrollmentService{
		users:       users,
		courses:     courses,
		enrollments: enrollments,
		bus:         bus,
		clock:       time.Now,
	}
}

// Invite creates a PENDING enrollment for the student on the instructor's
// course and publishes INSTRUCTOR_INVITED_STUDENT.
func (s *EnrollmentService) Invite(ctx context.Context, actorID, courseID, studentID int64) (storage.EnrollmentRecord, error) {
	course, err := s.requireInstructor(ctx, actorID, courseID)
	if err != nil {
		return storage.EnrollmentRecord{}, err
	}
	target, err := s.users.GetUser(ctx, studentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.EnrollmentRecord{}, apperrors.WithMetadata(apperrors.CodeStudentNotFound, "student not found",
				map[string]string{"student_id": formatID(studentID)})
		}
		return storage.EnrollmentRecord{}, apperrors.Wrap(apperrors.CodeUnknown, "load student", err)
	}
	if target.Role != user.RoleStudent {
		return storage.EnrollmentRecord{}, apperrors.WithMetadata(apperrors.CodeStudentNotFound, "student not found or invalid role",
			map[string]string{"student_id": formatID(studentID)})
	}

	record, err := s.enrollments.CreateEnrollment(ctx, studentID, courseID)
	if err != nil {
		// ErrEnrollmentExists carries its own code; pass it through.
		if apperrors.IsCode(err, apperrors.CodeEnrollmentExists) {
			return storage.EnrollmentRecord{}, err
		}
		return storage.EnrollmentRecord{}, apperrors.Wrap(apperrors.CodeUnknown, "create enrollment", err)
	}

	s.publish(actorID, event.InstructorInvitedStudentPayload{
		EnrollmentID: record.ID,
		CourseID:     course.ID,
		StudentID:    studentID,
	})
	return record, nil
}

// Accept moves the student's own PENDING enrollment to ACTIVE and publishes
// STUDENT_ENROLLED_IN_COURSE.
func (s *EnrollmentService) Accept(ctx context.Context, actorID, courseID int64) (storage.EnrollmentRecord, error) {
	record, err := s.ownEnrollment(ctx, actorID, courseID)
	if err != nil {
		return storage.EnrollmentRecord{}, err
	}

	now := s.clock().UTC()
	if err := s.enrollments.TransitionEnrollment(ctx, record.ID, enrollment.StatusPending, enrollment.StatusActive, now); err != nil {
		return storage.EnrollmentRecord{}, transitionError(err, "accept enrollment")
	}
	record.Status = enrollment.StatusActive
	record.UpdatedAt = now

	s.publish(actorID, event.StudentEnrolledPayload{
		EnrollmentID: record.ID,
		CourseID:     courseID,
		StudentID:    actorID,
	})
	return record, nil
}

// Reject deletes the student's own PENDING enrollment. No event is published
// and the freed (student, course) pair can be invited again; terminal statuses
// keep their row, so those pairs stay claimed.
func (s *EnrollmentService) Reject(ctx context.Context, actorID, courseID int64) error {
	record, err := s.ownEnrollment(ctx, actorID, courseID)
	if err != nil {
		return err
	}
	if err := s.enrollments.DeleteEnrollment(ctx, record.ID, enrollment.StatusPending); err != nil {
		return transitionError(err, "reject enrollment")
	}
	return nil
}

// Drop moves the student's own ACTIVE enrollment to DROPPED and publishes
// STUDENT_DROPPED_FROM_COURSE.
func (s *EnrollmentService) Drop(ctx context.Context, actorID, courseID int64) (storage.EnrollmentRecord, error) {
	record, err := s.ownEnrollment(ctx, actorID, courseID)
	if err != nil {
		return storage.EnrollmentRecord{}, err
	}

	now := s.clock().UTC()
	if err := s.enrollments.TransitionEnrollment(ctx, record.ID, enrollment.StatusActive, enrollment.StatusDropped, now); err != nil {
		return storage.EnrollmentRecord{}, transitionError(err, "drop enrollment")
	}
	record.Status = enrollment.StatusDropped
	record.UpdatedAt = now

	s.publish(actorID, event.StudentDroppedPayload{
		EnrollmentID: record.ID,
		CourseID:     courseID,
		StudentID:    actorID,
	})
	return record, nil
}

// Kick moves a student's ACTIVE enrollment to KICKED on behalf of the course
// instructor and publishes INSTRUCTOR_KICKED_STUDENT.
func (s *EnrollmentService) Kick(ctx context.Context, actorID, courseID, studentID int64) (storage.EnrollmentRecord, error) {
	if _, err := s.requireInstructor(ctx, actorID, courseID); err != nil {
		return storage.EnrollmentRecord{}, err
	}
	record, err := s.enrollments.GetEnrollmentByPair(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.EnrollmentRecord{}, apperrors.New(apperrors.CodeEnrollmentNotFound, "enrollment not found")
		}
		return storage.EnrollmentRecord{}, apperrors.Wrap(apperrors.CodeUnknown, "load enrollment", err)
	}

	now := s.clock().UTC()
	if err := s.enrollments.TransitionEnrollment(ctx, record.ID, enrollment.StatusActive, enrollment.StatusKicked, now); err != nil {
		return storage.EnrollmentRecord{}, transitionError(err, "kick student")
	}
	record.Status = enrollment.StatusKicked
	record.UpdatedAt = now

	s.publish(actorID, event.InstructorKickedStudentPayload{
		EnrollmentID: record.ID,
		CourseID:     courseID,
		StudentID:    studentID,
	})
	return record, nil
}

// CompleteCourse flips every non-COMPLETED enrollment on the instructor's
// course to COMPLETED, stamps completed_at, and publishes
// INSTRUCTOR_COMPLETED_COURSE with the number of rows changed.
func (s *EnrollmentService) CompleteCourse(ctx context.Context, actorID, courseID int64) (int64, error) {
	if _, err := s.requireInstructor(ctx, actorID, courseID); err != nil {
		return 0, err
	}

	now := s.clock().UTC()
	completed, err := s.enrollments.CompleteCourseEnrollments(ctx, courseID, now)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeUnknown, "complete course enrollments", err)
	}

	// Zero rows changed means every enrollment was already COMPLETED; the
	// no-op emits no event.
	if completed > 0 {
		s.publish(actorID, event.InstructorCompletedCoursePayload{
			CourseID:    courseID,
			Completed:   completed,
			CompletedAt: now,
		})
	}
	return completed, nil
}

// ListCourseEnrollments returns the course's enrollment rows for its
// instructor.
func (s *EnrollmentService) ListCourseEnrollments(ctx context.Context, actorID, courseID int64) ([]storage.EnrollmentRecord, error) {
	if _, err := s.requireInstructor(ctx, actorID, courseID); err != nil {
		return nil, err
	}
	records, err := s.enrollments.ListCourseEnrollments(ctx, courseID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "list enrollments", err)
	}
	return records, nil
}

func (s *EnrollmentService) requireInstructor(ctx context.Context, actorID, courseID int64) (storage.CourseRecord, error) {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.CourseRecord{}, apperrors.WithMetadata(apperrors.CodeCourseNotFound, "course not found",
				map[string]string{"course_id": formatID(courseID)})
		}
		return storage.CourseRecord{}, apperrors.Wrap(apperrors.CodeUnknown, "load course", err)
	}
	if course.InstructorID != actorID {
		return storage.CourseRecord{}, apperrors.New(apperrors.CodeNotCourseInstructor, "only the course instructor may perform this action")
	}
	return course, nil
}

func (s *EnrollmentService) ownEnrollment(ctx context.Context, studentID, courseID int64) (storage.EnrollmentRecord, error) {
	record, err := s.enrollments.GetEnrollmentByPair(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.EnrollmentRecord{}, apperrors.New(apperrors.CodeEnrollmentNotFound, "enrollment not found")
		}
		return storage.EnrollmentRecord{}, apperrors.Wrap(apperrors.CodeUnknown, "load enrollment", err)
	}
	return record, nil
}

func (s *EnrollmentService) publish(actorID int64, payload event.Payload) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.New(actorID, s.clock(), payload))
}

func transitionError(err error, op string) error {
	if apperrors.IsCode(err, apperrors.CodeEnrollmentWrongStatus) {
		return err
	}
	return apperrors.Wrap(apperrors.CodeUnknown, op, err)
}

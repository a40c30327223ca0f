package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/studyhall/studyhall/internal/errors"
	"github.com/studyhall/studyhall/internal/event"
	"github.com/studyhall/studyhall/internal/storage"
	"github.com/studyhall/studyhall/internal/user"
)

// CourseService drives course lifecycle writes and their events.
type CourseService struct {
	users   storage.UserStore
	courses storage.CourseStore
	bus     *event.Bus
	clock   func() time.Time
}

// NewCourseService creates a CourseService with default dependencies.
func NewCourseService(users storage.UserStore, courses storage.CourseStore, bus *event.Bus) *CourseService {
	return &CourseService{
		users:   users,
		courses: courses,
		bus:     bus,
		clock:   time.Now,
	}
}

// Create creates a course owned by the acting instructor and publishes
// COURSE_CREATED.
func (s *CourseService) Create(ctx context.Context, actorID int64, title string) (storage.CourseRecord, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return storage.CourseRecord{}, apperrors.New(apperrors.CodeInvalidArgument, "course title is required")
	}
	actor, err := s.users.GetUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.CourseRecord{}, apperrors.New(apperrors.CodeUnauthenticated, "acting user not found")
		}
		return storage.CourseRecord{}, apperrors.Wrap(apperrors.CodeUnknown, "load acting user", err)
	}
	if actor.Role != user.RoleInstructor {
		return storage.CourseRecord{}, apperrors.New(apperrors.CodeInvalidRole, "only instructors may create courses")
	}

	record, err := s.courses.CreateCourse(ctx, title, actorID)
	if err != nil {
		return storage.CourseRecord{}, apperrors.Wrap(apperrors.CodeUnknown, "create course", err)
	}

	s.publish(actorID, event.CourseCreatedPayload{Course: snapshot(record)})
	return record, nil
}

// UpdateTitle renames the instructor's course and publishes COURSE_UPDATED
// carrying both the old and the new course.
func (s *CourseService) UpdateTitle(ctx context.Context, actorID, courseID int64, title string) (storage.CourseRecord, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return storage.CourseRecord{}, apperrors.New(apperrors.CodeInvalidArgument, "course title is required")
	}
	before, err := s.ownedCourse(ctx, actorID, courseID)
	if err != nil {
		return storage.CourseRecord{}, err
	}

	after, err := s.courses.UpdateCourseTitle(ctx, courseID, title)
	if err != nil {
		return storage.CourseRecord{}, apperrors.Wrap(apperrors.CodeUnknown, "update course", err)
	}

	s.publish(actorID, event.CourseUpdatedPayload{
		OldCourse: snapshot(before),
		NewCourse: snapshot(after),
	})
	return after, nil
}

// Delete removes the instructor's course and publishes COURSE_DELETED.
// Enrollments, the conversation, and its messages go with the course row.
func (s *CourseService) Delete(ctx context.Context, actorID, courseID int64) error {
	course, err := s.ownedCourse(ctx, actorID, courseID)
	if err != nil {
		return err
	}
	if err := s.courses.DeleteCourse(ctx, courseID); err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "delete course", err)
	}

	s.publish(actorID, event.CourseDeletedPayload{Course: snapshot(course)})
	return nil
}

// Get returns one course by id.
func (s *CourseService) Get(ctx context.Context, courseID int64) (storage.CourseRecord, error) {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.CourseRecord{}, apperrors.New(apperrors.CodeCourseNotFound, "course not found")
		}
		return storage.CourseRecord{}, apperrors.Wrap(apperrors.CodeUnknown, "load course", err)
	}
	return course, nil
}

func (s *CourseService) ownedCourse(ctx context.Context, actorID, courseID int64) (storage.CourseRecord, error) {
	course, err := s.Get(ctx, courseID)
	if err != nil {
		return storage.CourseRecord{}, err
	}
	if course.InstructorID != actorID {
		return storage.CourseRecord{}, apperrors.New(apperrors.CodeNotCourseInstructor, "only the course instructor may perform this action")
	}
	return course, nil
}

func (s *CourseService) publish(actorID int64, payload event.Payload) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.New(actorID, s.clock(), payload))
}

func snapshot(record storage.CourseRecord) event.CourseSnapshot {
	return event.CourseSnapshot{
		ID:           record.ID,
		Title:        record.Title,
		InstructorID: record.InstructorID,
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

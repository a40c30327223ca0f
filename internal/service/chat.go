package service

import (
	"context"
	"errors"
	"strings"

	"github.com/studyhall/studyhall/internal/enrollment"
	apperrors "github.com/studyhall/studyhall/internal/errors"
	"github.com/studyhall/studyhall/internal/storage"
)

// ChatService implements course conversations.
//
// Authorization for sending, reading, and receiving is the same predicate:
// the user is the course instructor or holds an ACTIVE enrollment. Recipient
// resolution reuses it, so a dropped or kicked student stops receiving
// messages the moment their enrollment leaves ACTIVE.
type ChatService struct {
	courses     storage.CourseStore
	enrollments storage.EnrollmentStore
	chat        storage.ChatStore
}

// NewChatService creates a ChatService with default dependencies.
func NewChatService(courses storage.CourseStore, enrollments storage.EnrollmentStore, chat storage.ChatStore) *ChatService {
	return &ChatService{
		courses:     courses,
		enrollments: enrollments,
		chat:        chat,
	}
}

// CanAccess reports whether the user may participate in the course
// conversation. The course must exist.
func (s *ChatService) CanAccess(ctx context.Context, userID, courseID int64) (bool, error) {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, apperrors.New(apperrors.CodeCourseNotFound, "course not found")
		}
		return false, apperrors.Wrap(apperrors.CodeUnknown, "load course", err)
	}
	if course.InstructorID == userID {
		return true, nil
	}
	record, err := s.enrollments.GetEnrollmentByPair(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, apperrors.Wrap(apperrors.CodeUnknown, "load enrollment", err)
	}
	return record.Status == enrollment.StatusActive, nil
}

// Send persists a message in the course conversation and returns it along
// with the user ids it should be delivered to.
//
// The recipient set is the course instructor plus every ACTIVE student,
// resolved at send time. The author is part of the set; delivery to the
// author's own connections is the transport's echo.
func (s *ChatService) Send(ctx context.Context, authorID, courseID int64, text string) (storage.MessageRecord, []int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return storage.MessageRecord{}, nil, apperrors.New(apperrors.CodeInvalidArgument, "message text is required")
	}

	allowed, err := s.CanAccess(ctx, authorID, courseID)
	if err != nil {
		return storage.MessageRecord{}, nil, err
	}
	if !allowed {
		return storage.MessageRecord{}, nil, apperrors.New(apperrors.CodeChatSendForbidden, "user may not send messages in this course")
	}

	conversation, err := s.chat.GetOrCreateConversation(ctx, courseID)
	if err != nil {
		return storage.MessageRecord{}, nil, apperrors.Wrap(apperrors.CodeUnknown, "resolve conversation", err)
	}
	message, err := s.chat.CreateMessage(ctx, conversation.ID, authorID, text)
	if err != nil {
		return storage.MessageRecord{}, nil, apperrors.Wrap(apperrors.CodeUnknown, "create message", err)
	}

	recipients, err := s.Recipients(ctx, courseID)
	if err != nil {
		return storage.MessageRecord{}, nil, err
	}
	return message, recipients, nil
}

// Messages returns the course conversation's messages in creation order for
// a user allowed to read them.
func (s *ChatService) Messages(ctx context.Context, userID, courseID int64) ([]storage.MessageRecord, error) {
	allowed, err := s.CanAccess(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.New(apperrors.CodeRoomJoinForbidden, "user may not read this course conversation")
	}
	conversation, err := s.chat.GetOrCreateConversation(ctx, courseID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "resolve conversation", err)
	}
	messages, err := s.chat.ListMessages(ctx, conversation.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "list messages", err)
	}
	return messages, nil
}

// Recipients resolves the user ids entitled to the course conversation right
// now: every ACTIVE student plus the instructor.
func (s *ChatService) Recipients(ctx context.Context, courseID int64) ([]int64, error) {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeCourseNotFound, "course not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "load course", err)
	}
	studentIDs, err := s.enrollments.ListActiveStudentIDs(ctx, courseID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "list active students", err)
	}

	recipients := make([]int64, 0, len(studentIDs)+1)
	seen := make(map[int64]bool, len(studentIDs)+1)
	for _, id := range append(studentIDs, course.InstructorID) {
		if seen[id] {
			continue
		}
		seen[id] = true
		recipients = append(recipients, id)
	}
	return recipients, nil
}

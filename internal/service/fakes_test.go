package service

import (
	"context"
	"sort"
	"time"

	"github.com/studyhall/studyhall/internal/enrollment"
	"github.com/studyhall/studyhall/internal/event"
	"github.com/studyhall/studyhall/internal/storage"
	"github.com/studyhall/studyhall/internal/user"
)

// memoryStore is an in-memory implementation of the store interfaces used by
// the service tests.
type memoryStore struct {
	users         map[int64]storage.UserRecord
	courses       map[int64]storage.CourseRecord
	enrollments   map[int64]storage.EnrollmentRecord
	conversations map[int64]storage.ConversationRecord
	messages      []storage.MessageRecord
	nextID        int64
	now           time.Time

	failNext error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:         make(map[int64]storage.UserRecord),
		courses:       make(map[int64]storage.CourseRecord),
		enrollments:   make(map[int64]storage.EnrollmentRecord),
		conversations: make(map[int64]storage.ConversationRecord),
		now:           time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memoryStore) fail() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *memoryStore) addUser(role user.Role, username string) storage.UserRecord {
	record := storage.UserRecord{ID: m.id(), Username: username, Role: role, CreatedAt: m.now}
	m.users[record.ID] = record
	return record
}

func (m *memoryStore) addCourse(title string, instructorID int64) storage.CourseRecord {
	record := storage.CourseRecord{ID: m.id(), Title: title, InstructorID: instructorID, CreatedAt: m.now, UpdatedAt: m.now}
	m.courses[record.ID] = record
	return record
}

func (m *memoryStore) addEnrollment(studentID, courseID int64, status enrollment.Status) storage.EnrollmentRecord {
	record := storage.EnrollmentRecord{ID: m.id(), StudentID: studentID, CourseID: courseID, Status: status, CreatedAt: m.now, UpdatedAt: m.now}
	m.enrollments[record.ID] = record
	return record
}

func (m *memoryStore) CreateUser(_ context.Context, username string, role user.Role) (storage.UserRecord, error) {
	if err := m.fail(); err != nil {
		return storage.UserRecord{}, err
	}
	return m.addUser(role, username), nil
}

func (m *memoryStore) GetUser(_ context.Context, id int64) (storage.UserRecord, error) {
	if err := m.fail(); err != nil {
		return storage.UserRecord{}, err
	}
	record, ok := m.users[id]
	if !ok {
		return storage.UserRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (m *memoryStore) CreateCourse(_ context.Context, title string, instructorID int64) (storage.CourseRecord, error) {
	if err := m.fail(); err != nil {
		return storage.CourseRecord{}, err
	}
	return m.addCourse(title, instructorID), nil
}

func (m *memoryStore) GetCourse(_ context.Context, id int64) (storage.CourseRecord, error) {
	if err := m.fail(); err != nil {
		return storage.CourseRecord{}, err
	}
	record, ok := m.courses[id]
	if !ok {
		return storage.CourseRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (m *memoryStore) UpdateCourseTitle(_ context.Context, id int64, title string) (storage.CourseRecord, error) {
	if err := m.fail(); err != nil {
		return storage.CourseRecord{}, err
	}
	record, ok := m.courses[id]
	if !ok {
		return storage.CourseRecord{}, storage.ErrNotFound
	}
	record.Title = title
	record.UpdatedAt = m.now
	m.courses[id] = record
	return record, nil
}

func (m *memoryStore) DeleteCourse(_ context.Context, id int64) error {
	if err := m.fail(); err != nil {
		return err
	}
	if _, ok := m.courses[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.courses, id)
	for enrollmentID, record := range m.enrollments {
		if record.CourseID == id {
			delete(m.enrollments, enrollmentID)
		}
	}
	return nil
}

func (m *memoryStore) CreateEnrollment(_ context.Context, studentID, courseID int64) (storage.EnrollmentRecord, error) {
	if err := m.fail(); err != nil {
		return storage.EnrollmentRecord{}, err
	}
	for _, record := range m.enrollments {
		if record.StudentID == studentID && record.CourseID == courseID {
			return storage.EnrollmentRecord{}, storage.ErrEnrollmentExists
		}
	}
	return m.addEnrollment(studentID, courseID, enrollment.StatusPending), nil
}

func (m *memoryStore) GetEnrollmentByPair(_ context.Context, studentID, courseID int64) (storage.EnrollmentRecord, error) {
	if err := m.fail(); err != nil {
		return storage.EnrollmentRecord{}, err
	}
	for _, record := range m.enrollments {
		if record.StudentID == studentID && record.CourseID == courseID {
			return record, nil
		}
	}
	return storage.EnrollmentRecord{}, storage.ErrNotFound
}

func (m *memoryStore) TransitionEnrollment(_ context.Context, id int64, expected, next enrollment.Status, at time.Time) error {
	if err := m.fail(); err != nil {
		return err
	}
	record, ok := m.enrollments[id]
	if !ok || record.Status != expected {
		return storage.ErrStatusConflict
	}
	record.Status = next
	record.UpdatedAt = at
	if next == enrollment.StatusCompleted {
		record.CompletedAt = &at
	}
	m.enrollments[id] = record
	return nil
}

func (m *memoryStore) DeleteEnrollment(_ context.Context, id int64, expected enrollment.Status) error {
	if err := m.fail(); err != nil {
		return err
	}
	record, ok := m.enrollments[id]
	if !ok || record.Status != expected {
		return storage.ErrStatusConflict
	}
	delete(m.enrollments, id)
	return nil
}

func (m *memoryStore) CompleteCourseEnrollments(_ context.Context, courseID int64, at time.Time) (int64, error) {
	if err := m.fail(); err != nil {
		return 0, err
	}
	var changed int64
	for id, record := range m.enrollments {
		if record.CourseID != courseID || record.Status == enrollment.StatusCompleted {
			continue
		}
		record.Status = enrollment.StatusCompleted
		record.CompletedAt = &at
		record.UpdatedAt = at
		m.enrollments[id] = record
		changed++
	}
	return changed, nil
}

func (m *memoryStore) ListCourseEnrollments(_ context.Context, courseID int64) ([]storage.EnrollmentRecord, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	var records []storage.EnrollmentRecord
	for _, record := range m.enrollments {
		if record.CourseID == courseID {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (m *memoryStore) ListActiveStudentIDs(_ context.Context, courseID int64) ([]int64, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	var ids []int64
	for _, record := range m.enrollments {
		if record.CourseID == courseID && record.Status == enrollment.StatusActive {
			ids = append(ids, record.StudentID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *memoryStore) GetOrCreateConversation(_ context.Context, courseID int64) (storage.ConversationRecord, error) {
	if err := m.fail(); err != nil {
		return storage.ConversationRecord{}, err
	}
	for _, record := range m.conversations {
		if record.CourseID == courseID {
			return record, nil
		}
	}
	record := storage.ConversationRecord{ID: m.id(), CourseID: courseID, CreatedAt: m.now}
	m.conversations[record.ID] = record
	return record, nil
}

func (m *memoryStore) CreateMessage(_ context.Context, conversationID, authorID int64, text string) (storage.MessageRecord, error) {
	if err := m.fail(); err != nil {
		return storage.MessageRecord{}, err
	}
	conversation, ok := m.conversations[conversationID]
	if !ok {
		return storage.MessageRecord{}, storage.ErrNotFound
	}
	author := m.users[authorID]
	record := storage.MessageRecord{
		ID:             m.id(),
		ConversationID: conversationID,
		CourseID:       conversation.CourseID,
		AuthorID:       authorID,
		AuthorUsername: author.Username,
		Text:           text,
		CreatedAt:      m.now,
	}
	m.messages = append(m.messages, record)
	return record, nil
}

func (m *memoryStore) ListMessages(_ context.Context, conversationID int64) ([]storage.MessageRecord, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	var records []storage.MessageRecord
	for _, record := range m.messages {
		if record.ConversationID == conversationID {
			records = append(records, record)
		}
	}
	return records, nil
}

// collectEvents subscribes a recording handler to every type on the bus.
func collectEvents(bus *event.Bus) *[]event.Event {
	var events []event.Event
	bus.SubscribeAll(func(e event.Event) {
		events = append(events, e)
	})
	return &events
}

package event

import (
	"testing"
	"time"
)

func TestNewStampsPayloadType(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 30, 0, 0, time.FixedZone("UTC-3", -3*60*60))

	e := New(42, now, StudentEnrolledPayload{EnrollmentID: 5, CourseID: 7, StudentID: 42})

	if e.Type != TypeStudentEnrolledInCourse {
		t.Errorf("Type = %s, want %s", e.Type, TypeStudentEnrolledInCourse)
	}
	if e.UserID != 42 {
		t.Errorf("UserID = %d, want 42", e.UserID)
	}
	if e.CreatedAt.Location() != time.UTC {
		t.Errorf("CreatedAt location = %v, want UTC", e.CreatedAt.Location())
	}
	if !e.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", e.CreatedAt, now)
	}
}

func TestTypeFromLabel(t *testing.T) {
	tests := []struct {
		label string
		want  Type
	}{
		{"COURSE_CREATED", TypeCourseCreated},
		{"course_created", TypeCourseCreated},
		{" STUDENT_DROPPED_FROM_COURSE ", TypeStudentDroppedFromCourse},
		{"STUDENT_REJECTED_ENROLLMENT_FROM_COURSE", TypeStudentRejectedEnrollment},
		{"NOT_A_TYPE", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := TypeFromLabel(tt.label); got != tt.want {
			t.Errorf("TypeFromLabel(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestPayloadTypesCoverEnumeration(t *testing.T) {
	payloads := []Payload{
		CourseCreatedPayload{},
		CourseUpdatedPayload{},
		CourseDeletedPayload{},
		InstructorInvitedStudentPayload{},
		InstructorKickedStudentPayload{},
		InstructorCompletedCoursePayload{},
		StudentEnrolledPayload{},
		StudentDroppedPayload{},
		StudentRejectedPayload{},
	}

	seen := make(map[Type]bool)
	for _, p := range payloads {
		seen[p.EventType()] = true
	}
	for _, typ := range Types() {
		if !seen[typ] {
			t.Errorf("no payload struct reports type %s", typ)
		}
	}
	if len(seen) != len(Types()) {
		t.Errorf("payload types = %d, want %d", len(seen), len(Types()))
	}
}

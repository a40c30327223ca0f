// Package event defines the domain event taxonomy and the in-process bus that
// fans events out to the audit recorder and live stream subscribers.
package event

import (
	"strings"
	"time"
)

// Type identifies the type of a domain event.
type Type string

// Course lifecycle events.
const (
	// TypeCourseCreated records the creation of a course.
	TypeCourseCreated Type = "COURSE_CREATED"
	// TypeCourseUpdated records updates to course metadata.
	TypeCourseUpdated Type = "COURSE_UPDATED"
	// TypeCourseDeleted records the deletion of a course.
	TypeCourseDeleted Type = "COURSE_DELETED"
)

// Instructor-driven enrollment events.
const (
	// TypeInstructorInvitedStudent records a pending enrollment invitation.
	TypeInstructorInvitedStudent Type = "INSTRUCTOR_INVITED_STUDENT"
	// TypeInstructorKickedStudent records the removal of an active student.
	TypeInstructorKickedStudent Type = "INSTRUCTOR_KICKED_STUDENT"
	// TypeInstructorCompletedCourse records a bulk completion of a course's enrollments.
	TypeInstructorCompletedCourse Type = "INSTRUCTOR_COMPLETED_COURSE"
)

// Student-driven enrollment events.
const (
	// TypeStudentEnrolledInCourse records an accepted invitation.
	TypeStudentEnrolledInCourse Type = "STUDENT_ENROLLED_IN_COURSE"
	// TypeStudentDroppedFromCourse records a student leaving an active enrollment.
	TypeStudentDroppedFromCourse Type = "STUDENT_DROPPED_FROM_COURSE"
	// TypeStudentRejectedEnrollment records a declined invitation.
	//
	// The reject transition deletes the pending row without publishing; the
	// type stays in the enumeration so the recorder and stream keep a stable
	// wire contract for all nine kinds.
	TypeStudentRejectedEnrollment Type = "STUDENT_REJECTED_ENROLLMENT_FROM_COURSE"
)

// Types lists every event type in the closed enumeration.
func Types() []Type {
	return []Type{
		TypeCourseCreated,
		TypeCourseUpdated,
		TypeCourseDeleted,
		TypeInstructorInvitedStudent,
		TypeInstructorKickedStudent,
		TypeInstructorCompletedCourse,
		TypeStudentEnrolledInCourse,
		TypeStudentDroppedFromCourse,
		TypeStudentRejectedEnrollment,
	}
}

// TypeFromLabel converts a type label to a Type value, or "" when unknown.
func TypeFromLabel(label string) Type {
	candidate := Type(strings.ToUpper(strings.TrimSpace(label)))
	for _, t := range Types() {
		if t == candidate {
			return t
		}
	}
	return ""
}

// Payload is the closed set of event-specific payload shapes.
//
// Each event type has exactly one payload struct; the bus and its consumers
// dispatch on EventType instead of probing untyped fields.
type Payload interface {
	EventType() Type
}

// Event represents an immutable record of something that happened.
type Event struct {
	// Type identifies the kind of event.
	Type Type
	// UserID is the acting user.
	UserID int64
	// CreatedAt is when the event occurred.
	CreatedAt time.Time
	// Payload holds the event-specific data.
	Payload Payload
}

// New builds an event stamped with the payload's type.
func New(userID int64, createdAt time.Time, payload Payload) Event {
	return Event{
		Type:      payload.EventType(),
		UserID:    userID,
		CreatedAt: createdAt.UTC(),
		Payload:   payload,
	}
}

package event

import "time"

// CourseSnapshot captures the course fields carried inside course events.
type CourseSnapshot struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	InstructorID int64  `json:"instructorId"`
}

// CourseCreatedPayload captures the payload for COURSE_CREATED events.
type CourseCreatedPayload struct {
	Course CourseSnapshot `json:"course"`
}

// EventType implements Payload.
func (CourseCreatedPayload) EventType() Type { return TypeCourseCreated }

// CourseUpdatedPayload captures the payload for COURSE_UPDATED events.
type CourseUpdatedPayload struct {
	OldCourse CourseSnapshot `json:"oldCourse"`
	NewCourse CourseSnapshot `json:"newCourse"`
}

// EventType implements Payload.
func (CourseUpdatedPayload) EventType() Type { return TypeCourseUpdated }

// CourseDeletedPayload captures the payload for COURSE_DELETED events.
type CourseDeletedPayload struct {
	Course CourseSnapshot `json:"course"`
}

// EventType implements Payload.
func (CourseDeletedPayload) EventType() Type { return TypeCourseDeleted }

// InstructorInvitedStudentPayload captures the payload for INSTRUCTOR_INVITED_STUDENT events.
type InstructorInvitedStudentPayload struct {
	EnrollmentID int64 `json:"enrollmentId"`
	CourseID     int64 `json:"courseId"`
	StudentID    int64 `json:"studentId"`
}

// EventType implements Payload.
func (InstructorInvitedStudentPayload) EventType() Type { return TypeInstructorInvitedStudent }

// InstructorKickedStudentPayload captures the payload for INSTRUCTOR_KICKED_STUDENT events.
type InstructorKickedStudentPayload struct {
	EnrollmentID int64 `json:"enrollmentId"`
	CourseID     int64 `json:"courseId"`
	StudentID    int64 `json:"studentId"`
}

// EventType implements Payload.
func (InstructorKickedStudentPayload) EventType() Type { return TypeInstructorKickedStudent }

// InstructorCompletedCoursePayload captures the payload for INSTRUCTOR_COMPLETED_COURSE events.
type InstructorCompletedCoursePayload struct {
	CourseID    int64     `json:"courseId"`
	Completed   int64     `json:"completed"`
	CompletedAt time.Time `json:"completedAt"`
}

// EventType implements Payload.
func (InstructorCompletedCoursePayload) EventType() Type { return TypeInstructorCompletedCourse }

// StudentEnrolledPayload captures the payload for STUDENT_ENROLLED_IN_COURSE events.
type StudentEnrolledPayload struct {
	EnrollmentID int64 `json:"enrollmentId"`
	CourseID     int64 `json:"courseId"`
	StudentID    int64 `json:"studentId"`
}

// EventType implements Payload.
func (StudentEnrolledPayload) EventType() Type { return TypeStudentEnrolledInCourse }

// StudentDroppedPayload captures the payload for STUDENT_DROPPED_FROM_COURSE events.
type StudentDroppedPayload struct {
	EnrollmentID int64 `json:"enrollmentId"`
	CourseID     int64 `json:"courseId"`
	StudentID    int64 `json:"studentId"`
}

// EventType implements Payload.
func (StudentDroppedPayload) EventType() Type { return TypeStudentDroppedFromCourse }

// StudentRejectedPayload captures the payload for STUDENT_REJECTED_ENROLLMENT_FROM_COURSE events.
type StudentRejectedPayload struct {
	EnrollmentID int64 `json:"enrollmentId"`
	CourseID     int64 `json:"courseId"`
	StudentID    int64 `json:"studentId"`
}

// EventType implements Payload.
func (StudentRejectedPayload) EventType() Type { return TypeStudentRejectedEnrollment }

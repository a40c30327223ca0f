// Package errors provides structured error handling with machine-readable codes.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Authentication errors
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeTokenInvalid    Code = "TOKEN_INVALID"
	CodeTokenExpired    Code = "TOKEN_EXPIRED"

	// Lookup errors
	CodeNotFound           Code = "NOT_FOUND"
	CodeStudentNotFound    Code = "STUDENT_NOT_FOUND"
	CodeCourseNotFound     Code = "COURSE_NOT_FOUND"
	CodeEnrollmentNotFound Code = "ENROLLMENT_NOT_FOUND"

	// Authorization errors
	CodeNotCourseInstructor Code = "NOT_COURSE_INSTRUCTOR"
	CodeChatSendForbidden   Code = "CHAT_SEND_FORBIDDEN"
	CodeRoomJoinForbidden   Code = "ROOM_JOIN_FORBIDDEN"

	// Precondition errors
	CodeEnrollmentExists      Code = "ENROLLMENT_EXISTS"
	CodeEnrollmentWrongStatus Code = "ENROLLMENT_WRONG_STATUS"
	CodeInvalidRole           Code = "INVALID_ROLE"

	// Validation errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeUnauthenticated,
		CodeTokenInvalid,
		CodeTokenExpired:
		return http.StatusUnauthorized

	case CodeNotFound,
		CodeStudentNotFound,
		CodeCourseNotFound,
		CodeEnrollmentNotFound:
		return http.StatusNotFound

	case CodeNotCourseInstructor,
		CodeChatSendForbidden,
		CodeRoomJoinForbidden:
		return http.StatusForbidden

	case CodeEnrollmentExists,
		CodeEnrollmentWrongStatus:
		return http.StatusConflict

	case CodeInvalidRole,
		CodeInvalidArgument:
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// Package enrollment defines the lifecycle statuses of the student/course
// relationship.
package enrollment

import "strings"

// Status represents the lifecycle status of an enrollment.
type Status int

const (
	// StatusUnspecified represents an invalid enrollment status.
	StatusUnspecified Status = iota
	// StatusPending indicates an invitation awaiting the student's decision.
	StatusPending
	// StatusActive indicates an accepted, current enrollment.
	StatusActive
	// StatusCompleted indicates the course was marked completed for this row.
	StatusCompleted
	// StatusDropped indicates the student left the course.
	StatusDropped
	// StatusKicked indicates the instructor removed the student.
	StatusKicked
)

// StatusLabel returns the string label for an enrollment status.
func StatusLabel(status Status) string {
	switch status {
	case StatusPending:
		return "PENDING"
	case StatusActive:
		return "ACTIVE"
	case StatusCompleted:
		return "COMPLETED"
	case StatusDropped:
		return "DROPPED"
	case StatusKicked:
		return "KICKED"
	default:
		return "UNSPECIFIED"
	}
}

// StatusFromLabel converts a status label to a Status value.
func StatusFromLabel(label string) Status {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "PENDING":
		return StatusPending
	case "ACTIVE":
		return StatusActive
	case "COMPLETED":
		return StatusCompleted
	case "DROPPED":
		return StatusDropped
	case "KICKED":
		return StatusKicked
	default:
		return StatusUnspecified
	}
}

// Package course defines the course entity referenced by enrollments, chat,
// and domain events.
package course

import "strconv"

// RoomID derives the realtime room identifier for a course.
func RoomID(courseID int64) string {
	return "course_" + strconv.FormatInt(courseID, 10)
}

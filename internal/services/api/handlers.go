package api

import "net/http"

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	claims, err := s.claims(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body courseRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	record, err := s.courses.Create(r.Context(), claims.UserID, body.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCourseResponse(record))
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	if _, err := s.claims(r); err != nil {
		writeError(w, err)
		return
	}
	courseID, err := courseIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	record, err := s.courses.Get(r.Context(), courseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCourseResponse(record))
}

func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	claims, err := s.claims(r)
	if err != nil {
		writeError(w, err)
		return
	}
	courseID, err := courseIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body courseRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	record, err := s.courses.UpdateTitle(r.Context(), claims.UserID, courseID, body.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCourseResponse(record))
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	claims, err := s.claims(r)
	if err != nil {
		writeError(w, err)
		return
	}
	courseID, err := courseIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.courses.Delete(r.Context(), claims.UserID, courseID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListEnrollments(w http.ResponseWriter, r *http.Request) {
	claims, err := s.claims(r)
	if err != nil {
		writeError(w, err)
		return
	}
	courseID, err := courseIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	records, err := s.enrollments.ListCourseEnrollments(r.Context(), claims.UserID, courseID)
	if err != nil {
		writeError(w, err)
		return
	}
	responses := make([]enrollmentResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, toEnrollmentResponse(record))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	claims, err := s.claims(r)
	if err != nil {
		writeError(w, err)
		return
	}
	courseID, err := courseIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	records, err := s.chat.Messages(r.Context(), claims.UserID, courseID)
	if err != nil {
		writeError(w, err)
		return
	}
	responses := make([]messageResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, toMessageResponse(record))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	claims, err := s.claims(r)
	if err != nil {
		writeError(w, err)
		return
	}
	courseID, err := courseIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body studentRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	record, err := s.enrollments.Invite(r.Context(), claims.UserID, courseID, body.StudentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEnrollmentResponse(record))
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	claims, err := s.claims(r)
	if err != nil {
		writeError(w, err)
		return
	}
	courseID, err := courseIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	record, err := s.enrollments.Accept(r.Context(), claims.UserID, courseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEnrollmentResponse(record))
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	claims, err := s.claims(r)
	if err != nil {
		writeError(w, err)
		return
	}
	courseID, err := courseIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.enrollments.Reject(r.Context(), claims.UserID, courseID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	claims, err := s.claims(r)
	if err != nil {
		writeError(w, err)
		return
	}
	courseID, err := courseIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	record, err := s.enrollments.Drop(r.Context(), claims.UserID, courseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEnrollmentResponse(record))
}

func (s *Server) handleKick(w http.ResponseWriter, r *http.Request) {
	claims, err := s.claims(r)
	if err != nil {
		writeError(w, err)
		return
	}
	courseID, err := courseIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body studentRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	record, err := s.enrollments.Kick(r.Context(), claims.UserID, courseID, body.StudentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEnrollmentResponse(record))
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	claims, err := s.claims(r)
	if err != nil {
		writeError(w, err)
		return
	}
	courseID, err := courseIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	completed, err := s.enrollments.CompleteCourse(r.Context(), claims.UserID, courseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"completed": completed})
}

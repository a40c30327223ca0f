// Package api exposes the course and enrollment operations as a JSON HTTP
// surface. Handlers translate requests and errors; every rule lives in the
// core services.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/studyhall/studyhall/internal/auth"
	"github.com/studyhall/studyhall/internal/enrollment"
	apperrors "github.com/studyhall/studyhall/internal/errors"
	"github.com/studyhall/studyhall/internal/service"
	"github.com/studyhall/studyhall/internal/storage"
)

// Server hosts the REST-style JSON API.
type Server struct {
	courses     *service.CourseService
	enrollments *service.EnrollmentService
	chat        *service.ChatService
	tokenCfg    auth.Config
}

// NewServer creates an API server over the core services.
func NewServer(courses *service.CourseService, enrollments *service.EnrollmentService, chat *service.ChatService, tokenCfg auth.Config) *Server {
	return &Server{
		courses:     courses,
		enrollments: enrollments,
		chat:        chat,
		tokenCfg:    tokenCfg,
	}
}

// Register mounts the API routes on the mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /courses", s.handleCreateCourse)
	mux.HandleFunc("GET /courses/{courseID}", s.handleGetCourse)
	mux.HandleFunc("PATCH /courses/{courseID}", s.handleUpdateCourse)
	mux.HandleFunc("DELETE /courses/{courseID}", s.handleDeleteCourse)
	mux.HandleFunc("GET /courses/{courseID}/enrollments", s.handleListEnrollments)
	mux.HandleFunc("GET /courses/{courseID}/messages", s.handleListMessages)
	mux.HandleFunc("POST /courses/{courseID}/invite", s.handleInvite)
	mux.HandleFunc("POST /courses/{courseID}/accept", s.handleAccept)
	mux.HandleFunc("POST /courses/{courseID}/reject", s.handleReject)
	mux.HandleFunc("POST /courses/{courseID}/drop", s.handleDrop)
	mux.HandleFunc("POST /courses/{courseID}/kick", s.handleKick)
	mux.HandleFunc("POST /courses/{courseID}/complete", s.handleComplete)
}

// Handler returns the API as a standalone handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

type courseResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	InstructorID int64     `json:"instructorId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type enrollmentResponse struct {
	ID          int64      `json:"id"`
	StudentID   int64      `json:"studentId"`
	CourseID    int64      `json:"courseId"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type messageResponse struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversationId"`
	CourseID       int64     `json:"courseId"`
	AuthorID       int64     `json:"authorId"`
	AuthorUsername string    `json:"authorUsername"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"createdAt"`
}

type courseRequest struct {
	Title string `json:"title"`
}

type studentRequest struct {
	StudentID int64 `json:"studentId"`
}

func toCourseResponse(record storage.CourseRecord) courseResponse {
	return courseResponse{
		ID:           record.ID,
		Title:        record.Title,
		InstructorID: record.InstructorID,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}

func toEnrollmentResponse(record storage.EnrollmentRecord) enrollmentResponse {
	return enrollmentResponse{
		ID:          record.ID,
		StudentID:   record.StudentID,
		CourseID:    record.CourseID,
		Status:      enrollment.StatusLabel(record.Status),
		CompletedAt: record.CompletedAt,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func toMessageResponse(record storage.MessageRecord) messageResponse {
	return messageResponse{
		ID:             record.ID,
		ConversationID: record.ConversationID,
		CourseID:       record.CourseID,
		AuthorID:       record.AuthorID,
		AuthorUsername: record.AuthorUsername,
		Text:           record.Text,
		CreatedAt:      record.CreatedAt,
	}
}

func (s *Server) claims(r *http.Request) (auth.Claims, error) {
	token := auth.TokenFromRequest(r)
	if token == "" {
		return auth.Claims{}, apperrors.New(apperrors.CodeUnauthenticated, "access token is required")
	}
	return auth.Verify(token, s.tokenCfg)
}

func courseIDFromPath(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("courseID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.New(apperrors.CodeInvalidArgument, "course id must be a positive integer")
	}
	return id, nil
}

func decodeBody(r *http.Request, target any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		return apperrors.New(apperrors.CodeInvalidArgument, "request body is not valid JSON")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	writeJSON(w, code.HTTPStatus(), map[string]string{
		"error": err.Error(),
		"code":  string(code),
	})
}

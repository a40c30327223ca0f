// Package app hosts the WebSocket transport for course chat.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/studyhall/studyhall/internal/auth"
	"github.com/studyhall/studyhall/internal/course"
	apperrors "github.com/studyhall/studyhall/internal/errors"
	"github.com/studyhall/studyhall/internal/storage"
)

const (
	maxFramePayloadBytes   = 16 * 1024
	maxDecodeErrorsPerConn = 3
)

// ChatCore is the slice of the chat service the transport depends on.
type ChatCore interface {
	CanAccess(ctx context.Context, userID, courseID int64) (bool, error)
	Send(ctx context.Context, authorID, courseID int64, text string) (storage.MessageRecord, []int64, error)
}

type wsFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type wsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type joinPayload struct {
	CourseID int64 `json:"courseId"`
}

type joinedPayload struct {
	CourseID int64  `json:"courseId"`
	Room     string `json:"room"`
}

type sendMessagePayload struct {
	CourseID int64  `json:"courseId"`
	Text     string `json:"text"`
}

type sentPayload struct {
	MessageID int64 `json:"messageId"`
}

type courseMessagePayload struct {
	ID             int64     `json:"id"`
	CourseID       int64     `json:"courseId"`
	ConversationID int64     `json:"conversationId"`
	AuthorID       int64     `json:"authorId"`
	AuthorUsername string    `json:"authorUsername"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"createdAt"`
}

// wsPeer serializes writes to one WebSocket connection.
type wsPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func newWSPeer(encoder *json.Encoder) *wsPeer {
	return &wsPeer{encoder: encoder}
}

func (p *wsPeer) writeFrame(frame wsFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

type wsSession struct {
	mu     sync.Mutex
	userID int64
	peer   *wsPeer
	joined map[int64]bool
}

func newWSSession(userID int64, peer *wsPeer) *wsSession {
	return &wsSession{userID: userID, peer: peer, joined: make(map[int64]bool)}
}

func (s *wsSession) markJoined(courseID int64) {
	s.mu.Lock()
	s.joined[courseID] = true
	s.mu.Unlock()
}

func (s *wsSession) joinedCourse(courseID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joined[courseID]
}

// Server hosts the chat WebSocket endpoint.
//
// The verified token identity, not any frame field, is the actor for every
// operation on the connection.
type Server struct {
	core     ChatCore
	tokenCfg auth.Config
	registry *Registry
}

// NewServer creates a chat transport over the given core.
func NewServer(core ChatCore, tokenCfg auth.Config, registry *Registry) *Server {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Server{core: core, tokenCfg: tokenCfg, registry: registry}
}

// Registry exposes the connection registry.
func (s *Server) Registry() *Registry {
	return s.registry
}

type wsClaimsContextKey struct{}

// ServeHTTP upgrades authenticated GET requests to WebSocket connections.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := auth.TokenFromRequest(r)
	if token == "" {
		log.Printf("chat: websocket unauthorized: missing access token remote=%s", r.RemoteAddr)
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	claims, err := auth.Verify(token, s.tokenCfg)
	if err != nil {
		log.Printf("chat: websocket unauthorized: %v remote=%s", err, r.RemoteAddr)
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	r = r.WithContext(context.WithValue(r.Context(), wsClaimsContextKey{}, claims))
	websocket.Handler(s.handleConn).ServeHTTP(w, r)
}

func (s *Server) handleConn(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	request := conn.Request()
	claims, ok := request.Context().Value(wsClaimsContextKey{}).(auth.Claims)
	if !ok {
		return
	}

	peer := newWSPeer(json.NewEncoder(conn))
	session := newWSSession(claims.UserID, peer)
	s.registry.Add(claims.UserID, peer)
	defer s.registry.Remove(claims.UserID, peer)

	decoder := json.NewDecoder(conn)
	decodeErrors := 0

	for {
		var frame wsFrame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = writeWSError(peer, "", apperrors.CodeInvalidArgument, "invalid frame payload")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = writeWSError(peer, frame.RequestID, apperrors.CodeInvalidArgument, "payload too large")
			continue
		}

		switch frame.Type {
		case "joinCourse":
			s.handleJoin(request.Context(), session, frame)
		case "sendCourseMessage":
			s.handleSend(request.Context(), session, frame)
		default:
			_ = writeWSError(peer, frame.RequestID, apperrors.CodeInvalidArgument, "unsupported frame type")
		}
	}
}

func (s *Server) handleJoin(ctx context.Context, session *wsSession, frame wsFrame) {
	var payload joinPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(session.peer, frame.RequestID, apperrors.CodeInvalidArgument, "invalid join payload")
		return
	}
	if payload.CourseID <= 0 {
		_ = writeWSError(session.peer, frame.RequestID, apperrors.CodeInvalidArgument, "courseId is required")
		return
	}

	// Repeat joins ack immediately; the room was already authorized on this
	// connection.
	if !session.joinedCourse(payload.CourseID) {
		allowed, err := s.core.CanAccess(ctx, session.userID, payload.CourseID)
		if err != nil {
			writeServiceError(session.peer, frame.RequestID, err)
			return
		}
		if !allowed {
			_ = writeWSError(session.peer, frame.RequestID, apperrors.CodeRoomJoinForbidden, "user may not join this course room")
			return
		}
		session.markJoined(payload.CourseID)
	}

	ack, err := json.Marshal(joinedPayload{
		CourseID: payload.CourseID,
		Room:     course.RoomID(payload.CourseID),
	})
	if err != nil {
		log.Printf("chat: marshal joined ack: %v", err)
		return
	}
	_ = session.peer.writeFrame(wsFrame{Type: "joined", RequestID: frame.RequestID, Payload: ack})
}

func (s *Server) handleSend(ctx context.Context, session *wsSession, frame wsFrame) {
	var payload sendMessagePayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(session.peer, frame.RequestID, apperrors.CodeInvalidArgument, "invalid message payload")
		return
	}
	if payload.CourseID <= 0 {
		_ = writeWSError(session.peer, frame.RequestID, apperrors.CodeInvalidArgument, "courseId is required")
		return
	}

	message, recipients, err := s.core.Send(ctx, session.userID, payload.CourseID, payload.Text)
	if err != nil {
		writeServiceError(session.peer, frame.RequestID, err)
		return
	}

	s.deliver(message, recipients)

	ack, err := json.Marshal(sentPayload{MessageID: message.ID})
	if err != nil {
		log.Printf("chat: marshal sent ack: %v", err)
		return
	}
	_ = session.peer.writeFrame(wsFrame{Type: "sent", RequestID: frame.RequestID, Payload: ack})
}

// deliver fans the persisted message out to every live connection of every
// recipient, once per connection.
func (s *Server) deliver(message storage.MessageRecord, recipients []int64) {
	payload, err := json.Marshal(courseMessagePayload{
		ID:             message.ID,
		CourseID:       message.CourseID,
		ConversationID: message.ConversationID,
		AuthorID:       message.AuthorID,
		AuthorUsername: message.AuthorUsername,
		Text:           message.Text,
		CreatedAt:      message.CreatedAt,
	})
	if err != nil {
		log.Printf("chat: marshal course message: %v", err)
		return
	}
	frame := wsFrame{Type: "courseMessage", Payload: payload}
	for _, peer := range s.registry.Connections(recipients) {
		if err := peer.writeFrame(frame); err != nil {
			log.Printf("chat: deliver course message: %v", err)
		}
	}
}

func writeWSError(peer *wsPeer, requestID string, code apperrors.Code, message string) error {
	payload, err := json.Marshal(wsError{Code: string(code), Message: message})
	if err != nil {
		return err
	}
	return peer.writeFrame(wsFrame{Type: "error", RequestID: requestID, Payload: payload})
}

func writeServiceError(peer *wsPeer, requestID string, err error) {
	_ = writeWSError(peer, requestID, apperrors.GetCode(err), err.Error())
}

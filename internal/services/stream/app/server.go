// Package app hosts the server-sent events stream of domain events.
package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/studyhall/studyhall/internal/auth"
	apperrors "github.com/studyhall/studyhall/internal/errors"
	"github.com/studyhall/studyhall/internal/event"
	"github.com/studyhall/studyhall/internal/user"
)

const (
	// frameBuffer bounds the per-connection queue between the publishing
	// goroutine and the SSE writer. Frames beyond it are dropped for that
	// connection; the bus never blocks on a slow consumer.
	frameBuffer = 64

	heartbeatInterval = 30 * time.Second
)

// frame is the wire shape of one streamed event.
type frame struct {
	Type      event.Type    `json:"type"`
	Payload   event.Payload `json:"payload"`
	UserID    int64         `json:"userId"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Server streams domain events to ADMIN connections over SSE.
//
// Any valid token opens the stream; only ADMIN connections receive frames.
// Non-admin connections stay open and silent until the client disconnects.
type Server struct {
	bus       *event.Bus
	tokenCfg  auth.Config
	heartbeat time.Duration
}

// NewServer creates an SSE stream server on the given bus.
func NewServer(bus *event.Bus, tokenCfg auth.Config) *Server {
	return &Server{
		bus:       bus,
		tokenCfg:  tokenCfg,
		heartbeat: heartbeatInterval,
	}
}

// ServeHTTP handles GET requests to the event stream endpoint.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := auth.TokenFromRequest(r)
	if token == "" {
		writeAuthError(w, apperrors.New(apperrors.CodeUnauthenticated, "access token is required"))
		return
	}
	claims, err := auth.Verify(token, s.tokenCfg)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	flusher.Flush()

	ctx := r.Context()

	// Non-admin connections get no subscription at all; they hold the open
	// stream until the client goes away.
	var frames chan event.Event
	if claims.Role == user.RoleAdmin {
		frames = make(chan event.Event, frameBuffer)
		unsubscribe := s.bus.SubscribeAll(func(e event.Event) {
			select {
			case frames <- e:
			default:
				log.Printf("stream: dropping %s frame for slow consumer user=%d", e.Type, claims.UserID)
			}
		})
		defer unsubscribe()
	}

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case e := <-frames:
			data, err := json.Marshal(frame{
				Type:      e.Type,
				Payload:   e.Payload,
				UserID:    e.UserID,
				CreatedAt: e.CreatedAt,
			})
			if err != nil {
				log.Printf("stream: marshal %s frame: %v", e.Type, err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func writeAuthError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code.HTTPStatus())
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
		"code":  string(code),
	})
}

package event

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/studyhall/studyhall/internal/storage"
)

const recorderWriteTimeout = 5 * time.Second

// Recorder durably records every published domain event.
//
// Recording is fire-and-forget relative to delivery: a storage failure is
// logged and never rolls back or re-delivers the already-broadcast event.
type Recorder struct {
	store storage.DomainEventStore
}

// NewRecorder creates a recorder writing to the given store.
func NewRecorder(store storage.DomainEventStore) *Recorder {
	return &Recorder{store: store}
}

// Attach subscribes the recorder to every event type on the bus.
func (r *Recorder) Attach(bus *Bus) (unsubscribe func()) {
	if bus == nil {
		return func() {}
	}
	return bus.SubscribeAll(r.Record)
}

// Record persists one delivered event as a DomainEvent row.
func (r *Recorder) Record(e Event) {
	if r == nil || r.store == nil {
		return
	}
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		log.Printf("event recorder: marshal %s payload: %v", e.Type, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), recorderWriteTimeout)
	defer cancel()

	record := storage.DomainEventRecord{
		ID:          uuid.NewString(),
		Type:        string(e.Type),
		PayloadJSON: payload,
		UserID:      e.UserID,
		CreatedAt:   e.CreatedAt,
	}
	if err := r.store.PutDomainEvent(ctx, record); err != nil {
		log.Printf("event recorder: persist %s event: %v", e.Type, err)
	}
}

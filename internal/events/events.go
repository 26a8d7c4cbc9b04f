// Package events publishes lifecycle notifications for downstream consumers
// (mailers, the registry filing worker, analytics).
package events

import (
	"context"
	"sync"
	"time"
)

// Event types. The NATS subject is "<prefix>.<type>".
const (
	CompanyCreated       = "company.created"
	CompanyUpdated       = "company.updated"
	CompanySubmitted     = "company.submitted"
	CompanyLinked        = "company.linked"
	CompanyStatusChanged = "company.status_changed"
	CompanyPaid          = "company.paid"
	CompanyNoteAdded     = "company.note_added"
	DocumentUploaded     = "document.uploaded"
	DocumentVerified     = "document.verified"
	DocumentDeleted      = "document.deleted"
)

// Event is the JSON payload of every notification.
type Event struct {
	Type       string    `json:"type"`
	CompanyID  string    `json:"company_id"`
	DocumentID string    `json:"document_id,omitempty"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to,omitempty"`
	ActorID    uint      `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of what was published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the type of every recorded event, in order.
func (r *Recorder) Types() []string {
	evs := r.Events()
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.Type
	}
	return out
}

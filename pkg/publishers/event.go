package publishers

import (
	"time"

	"github.com/google/uuid"
)

// EventTypeItemCreated is emitted after the items endpoint accepted a new item.
const EventTypeItemCreated = "item.created"

// Event represents the payload published downstream.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Endpoint  string    `json:"endpoint"`
	Item      any       `json:"item"`
	CreatedAt time.Time `json:"created_at"`
}

// NewItemCreatedEvent constructs an Event carrying the endpoint's response to
// an add, whatever JSON shape it has.
func NewItemCreatedEvent(endpoint string, item any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      EventTypeItemCreated,
		Endpoint:  endpoint,
		Item:      item,
		CreatedAt: time.Now().UTC(),
	}
}

// attributes returns the routing metadata attached by queue-based publishers.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_id":   e.ID,
		"event_type": e.Type,
	}
}

package amqp

import (
	"encoding/json"
	"time"
)

// ItemEvent names what happened to a tracked item.
type ItemEvent string

const (
	ItemCreated       ItemEvent = "created"
	ItemDeleted       ItemEvent = "deleted"
	ItemStatusChanged ItemEvent = "status_changed"
)

// ItemEventMessage is a lightweight notification that an item changed.
// It carries only identifiers; consumers fetch the full item from the store.
type ItemEventMessage struct {
	Event     ItemEvent `json:"event"`
	ItemID    string    `json:"item_id"`
	OwnerID   string    `json:"owner_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewItemEventMessage creates an event message stamped with the current time.
func NewItemEventMessage(event ItemEvent, itemID, ownerID string) *ItemEventMessage {
	return &ItemEventMessage{
		Event:     event,
		ItemID:    itemID,
		OwnerID:   ownerID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ItemEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func ItemEventMessageFromJSON(data []byte) (*ItemEventMessage, error) {
	var msg ItemEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

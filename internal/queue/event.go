// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

import "time"

// EntryChangedQueue is the durable queue that receives EntryChangedEvent
// messages.
const EntryChangedQueue = "catalog.entry.changed"

// Operations carried in EntryChangedEvent.Op.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// EntryChangedEvent is published after every successful catalog mutation.
// It carries enough information for downstream consumers to audit the
// change without querying the primary database.  Title and Type are empty
// for deletions.
type EntryChangedEvent struct {
	Op         string    `json:"op"`
	EntryID    int64     `json:"entryId"`
	Title      string    `json:"title,omitempty"`
	Type       string    `json:"type,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

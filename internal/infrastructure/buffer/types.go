package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	KindNotification = "notification"

	PriorityHigh   = 1
	PriorityNormal = 3
	PriorityLow    = 5
)

// Item is a pending delivery kept in the outbox until it succeeds or runs
// out of retries.
type Item struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Channel   string          `json:"channel"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	LastError string          `json:"last_error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`

	key []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Kind == "" {
		i.Kind = KindNotification
	}
	if i.Priority < PriorityHigh || i.Priority > PriorityLow {
		i.Priority = PriorityNormal
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}

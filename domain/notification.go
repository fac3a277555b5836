package domain

import "time"

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Notification is a best-effort message addressed to a user over one channel.
type Notification struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Channel   string    `json:"channel"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

package notify

import (
	"context"

	"github.com/MagnumMax/skyluxse-sub003/pkg/enums"
)

// Message is one rendered notification, ready for any channel.
type Message struct {
	Subject   string
	Body      string
	MediaURLs []string
}

// Provider delivers a rendered message over one channel.
type Provider interface {
	Send(ctx context.Context, msg Message) error
}

// Request is the generic payload of a notification_requested outbox entry,
// queued by callers that already know what they want to say.
type Request struct {
	Channels []enums.NotificationChannel `json:"channels,omitempty"`
	Subject  string                      `json:"subject"`
	Body     string                      `json:"body"`
	Media    []string                    `json:"media,omitempty"`
}

package relay

import (
	"context"
)

// Message is one outbound notification: text plus an optional image
// attachment. Transports that cannot attach images send the text alone.
type Message struct {
	Text      string
	Image     []byte
	ImageName string
}

func (m Message) HasImage() bool {
	return len(m.Image) > 0
}

// Notifier is a single outbound transport (one channel kind). Send returns a
// transport-assigned delivery identifier when available.
type Notifier interface {
	Kind() string
	Send(ctx context.Context, recipient string, msg Message) (string, error)
}

// Target names one recipient on one notifier
type Target struct {
	Notifier  Notifier
	Recipient string
}

// ChannelResult is the per-target outcome of one fan-out
type ChannelResult struct {
	Kind       string
	Recipient  string
	Success    bool
	DeliveryID string
	Err        string
}

// Result aggregates the per-target outcomes, ordered as the targets were given
type Result struct {
	Channels []ChannelResult
}

// OK reports whether at least one target succeeded
func (r Result) OK() bool {
	for _, c := range r.Channels {
		if c.Success {
			return true
		}
	}
	return false
}

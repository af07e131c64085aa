package broker

import "context"

// ThreadEvent is the wire form of a thread append, published on the
// gig's channel for live subscribers.
type ThreadEvent struct {
	MessageID string `json:"message_id"`
	GigID     string `json:"gig_id"`
	SenderID  string `json:"sender_id"`
	Username  string `json:"username"`
	Seq       uint64 `json:"seq"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// ThreadBroker fans out thread appends to live listeners. Each gig has
// its own channel; subscribers to one gig never see another gig's
// traffic.
type ThreadBroker interface {
	Publish(event ThreadEvent) error

	// Subscribe returns a channel of events for one gig plus a cancel
	// function that must be called to release the subscription.
	Subscribe(ctx context.Context, gigID string) (<-chan ThreadEvent, func(), error)

	Close() error
}

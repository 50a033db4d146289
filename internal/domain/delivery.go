package domain

import "context"

// Deliverer sends the finished briefing to its destination. An error means the
// channel did not accept the message.
type Deliverer interface {
	Deliver(ctx context.Context, text string) error
}

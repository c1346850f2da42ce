package relay

import "context"

// Backplane shares broadcasts between relay instances.
type Backplane interface {
	// Publish sends msg to every other instance. origin identifies the sender
	// so it can skip its own messages.
	Publish(ctx context.Context, origin string, msg Message) error

	// Subscribe returns messages published by instances other than origin.
	// The channel is closed when ctx is cancelled or the backplane closes.
	Subscribe(ctx context.Context, origin string) (<-chan Message, error)

	Close() error
}

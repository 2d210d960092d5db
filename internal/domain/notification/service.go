package notification

import "context"

// Service is the outbound notification port. Queueing is non-blocking and
// best-effort; a dropped or failed notification never affects the state
// transition that produced it.
type Service interface {
	Queue(ctx context.Context, n Notification) error
	Stop()
}

// Package events publishes submission outcomes to downstream consumers.
// Publishing is best-effort; callers log failures and carry on.
package events

import "context"

// Publisher sends events to a broker.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Noop drops every event.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, Event) error { return nil }

var _ Publisher = Noop{}

package pubsub

import "context"

// EventType labels what a published event reports.
type EventType string

const (
	// LogLineEvent carries a formatted log entry for live tailing.
	LogLineEvent EventType = "log-line"
	// ReloadEvent signals that the watched data file changed and the
	// reactive graph was refreshed.
	ReloadEvent EventType = "reload"
)

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}

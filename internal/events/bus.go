// Package events provides a lightweight in-process pub-sub bus used to fan
// out notification-worthy moments (new alerts, acknowledgements) without
// coupling services to any delivery mechanism.
package events

// EventKind represents the type of domain event produced by the service layer.
type EventKind string

const (
	EventAlertGenerated EventKind = "alert_generated"
	EventAckRecorded    EventKind = "ack_recorded"
)

// Event carries the minimum data a consumer needs; full records can be
// re-queried from the store or regenerated by the detector.
type Event struct {
	Kind      EventKind
	OwnerID   string
	NurtureID string
	AlertID   *string // present for AckRecorded
	Count     int     // alert count for AlertGenerated
}

// Bus is a lightweight in-process pub-sub implementation backed by a buffered channel.
type Bus struct {
	ch chan Event
}

// NewBus creates a bus with the given buffer size.
func NewBus(buffer int) *Bus {
	return &Bus{ch: make(chan Event, buffer)}
}

// Publish attempts to enqueue the event without blocking.
// Returns true if published, false if the buffer is full.
func (b *Bus) Publish(evt Event) bool {
	select {
	case b.ch <- evt:
		return true
	default:
		return false
	}
}

// Subscribe returns a read-only channel for consumers.
func (b *Bus) Subscribe() <-chan Event {
	return b.ch
}

package events

import (
	"strings"
	"time"
)

// DomainEvent is a fact recorded by a command and relayed through the outbox.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// Attributed events name the user whose action raised them.
type Attributed interface {
	ActorID() string
}

// Family is the part of an event name before the first dot, e.g. "booking"
// for "booking.requested". Events of one family share a broker topic.
func Family(name string) string {
	family, _, _ := strings.Cut(name, ".")
	return family
}

// Actor returns the acting user of ev, or "" when it is not Attributed.
func Actor(ev DomainEvent) string {
	if a, ok := ev.(Attributed); ok {
		return a.ActorID()
	}
	return ""
}

// Package catalogsync keeps cached catalog data in line with catalog events.
package catalogsync

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"hotelfront/internal/app/policies"
	"hotelfront/internal/domain/hotels"
	"hotelfront/internal/domain/reviews"
	"hotelfront/internal/domain/shared/events"
)

var hotelFamily = events.Family(hotels.EventHotelCreated)

// Topics are the event names whose topics the invalidator subscribes to.
var Topics = []string{hotels.EventHotelCreated, reviews.EventReviewSubmitted}

// Inbox remembers processed event ids. Mark is called only after the event
// was applied, so a failed invalidation is retried on redelivery.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

// Event is the part of a CloudEvents envelope the invalidator reads.
type Event struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Subject string          `json:"subject"`
	Data    json.RawMessage `json:"data"`
}

type Invalidator struct {
	Catalog policies.CatalogInvalidator
	Inbox   Inbox
	Logger  *slog.Logger
}

// Handle processes one broker message. key is the message key, which carries
// the aggregate id.
func (i *Invalidator) Handle(ctx context.Context, key string, payload []byte) error {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		i.logger().Warn("skip malformed catalog event", "key", key, "error", err)
		return nil
	}
	name := eventName(ev.Type)
	if !relevant(name) {
		return nil
	}
	dedupe := ev.ID != "" && i.Inbox != nil
	if dedupe {
		seen, err := i.Inbox.Seen(ctx, ev.ID)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}

	hotelID := firstNonEmpty(ev.Subject, key, dataHotelID(ev.Data))
	if hotelID != "" {
		if err := i.Catalog.InvalidateHotel(ctx, hotelID); err != nil {
			return err
		}
	}
	if events.Family(name) == hotelFamily {
		if err := i.Catalog.InvalidateLocations(ctx); err != nil {
			return err
		}
	}
	i.logger().Debug("catalog cache invalidated", "event", name, "hotel_id", hotelID)
	if dedupe {
		return i.Inbox.Mark(ctx, ev.ID)
	}
	return nil
}

func eventName(t string) string {
	if idx := strings.LastIndex(t, ".v"); idx > 0 {
		return t[:idx]
	}
	return t
}

func relevant(name string) bool {
	return events.Family(name) == hotelFamily || name == reviews.EventReviewSubmitted
}

func dataHotelID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var body struct {
		HotelID string `json:"hotelId"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.HotelID
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (i *Invalidator) logger() *slog.Logger {
	if i.Logger != nil {
		return i.Logger
	}
	return slog.Default()
}

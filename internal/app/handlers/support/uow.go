// Package support holds helpers shared by command handlers.
package support

import (
	"context"

	"hotelfront/internal/app/outbox"
	"hotelfront/internal/app/uow"
	"hotelfront/internal/domain/shared/events"
)

// RecordEvents encodes evs into the outbox of the current unit of work, or box
// when the command runs outside one.
func RecordEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, evs []events.DomainEvent) error {
	target, err := uow.OutboxFor(ctx, box)
	if err != nil {
		return err
	}
	return outbox.RecordDomainEvents(ctx, target, encoder, evs)
}

package reviews

import (
	"context"
	"log/slog"
	"time"

	"hotelfront/internal/app/commands"
	"hotelfront/internal/app/handlers/support"
	"hotelfront/internal/app/outbox"
	"hotelfront/internal/app/policies"
	"hotelfront/internal/domain/auth"
	domainreviews "hotelfront/internal/domain/reviews"
	"hotelfront/internal/domain/shared/events"
)

const submitReviewKey = "reviews.submit"

// SubmitReviewCommand posts a review on behalf of the signed-in guest.
type SubmitReviewCommand struct {
	HotelID string
	Comment string
	Rating  int
}

func (c SubmitReviewCommand) Key() string { return submitReviewKey }

func (c SubmitReviewCommand) RequiredRole() string { return "" }

type SubmitReviewHandler struct {
	Reviews     policies.ReviewGateway
	Invalidator policies.CatalogInvalidator
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	Logger      *slog.Logger
	Now         func() time.Time
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (domainreviews.Review, error) {
	principal, err := auth.RequireRole(ctx, cmd.RequiredRole())
	if err != nil {
		return domainreviews.Review{}, err
	}
	sub, err := domainreviews.NewSubmission(domainreviews.SubmitParams{
		HotelID:  cmd.HotelID,
		UserID:   principal.UserID,
		UserName: principal.Name,
		Comment:  cmd.Comment,
		Rating:   cmd.Rating,
	})
	if err != nil {
		return domainreviews.Review{}, err
	}

	review, err := h.Reviews.SubmitReview(ctx, sub)
	if err != nil {
		return domainreviews.Review{}, err
	}
	if review.HotelID == "" {
		review.HotelID = sub.HotelID
	}

	if h.Invalidator != nil {
		if err := h.Invalidator.InvalidateHotel(ctx, sub.HotelID); err != nil {
			h.logger().Warn("invalidate hotel after review", "hotel_id", sub.HotelID, "error", err)
		}
	}

	at := time.Now().UTC()
	if h.Now != nil {
		at = h.Now().UTC()
	}
	enc := h.Encoder
	if enc == nil {
		enc = outbox.JSONEventEncoder{}
	}
	ev := domainreviews.ReviewSubmitted{HotelID: sub.HotelID, UserID: sub.UserID, Rating: sub.Rating, At: at}
	if err := support.RecordEvents(ctx, h.Outbox, enc, []events.DomainEvent{ev}); err != nil {
		return domainreviews.Review{}, err
	}
	return review, nil
}

func (h *SubmitReviewHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ commands.Handler[SubmitReviewCommand, domainreviews.Review] = (*SubmitReviewHandler)(nil)

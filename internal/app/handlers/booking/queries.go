package booking

import (
	"context"
	"strings"

	"hotelfront/internal/app/dto"
	"hotelfront/internal/app/policies"
	"hotelfront/internal/app/queries"
	"hotelfront/internal/domain/auth"
	domainbooking "hotelfront/internal/domain/booking"
)

const (
	getBookingKey       = "booking.get"
	listUserBookingsKey = "booking.list_user"
)

type GetBookingQuery struct {
	ID string
}

func (q GetBookingQuery) Key() string { return getBookingKey }

func (q GetBookingQuery) RequiredRole() string { return "" }

type GetBookingHandler struct {
	Bookings policies.BookingGateway
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.BookingView, error) {
	principal, err := auth.RequireRole(ctx, q.RequiredRole())
	if err != nil {
		return dto.BookingView{}, err
	}
	id := strings.TrimSpace(q.ID)
	if id == "" {
		return dto.BookingView{}, domainbooking.ErrNotFound
	}
	b, err := h.Bookings.GetBooking(ctx, id)
	if err != nil {
		return dto.BookingView{}, err
	}
	if !canSee(principal, b.UserID) {
		return dto.BookingView{}, auth.ErrForbidden
	}
	return dto.MapBooking(b), nil
}

// ListUserBookingsQuery loads a guest's history. An empty UserID means the caller.
type ListUserBookingsQuery struct {
	UserID  string
	Status  string
	CheckIn string
}

func (q ListUserBookingsQuery) Key() string { return listUserBookingsKey }

func (q ListUserBookingsQuery) RequiredRole() string { return "" }

func (q ListUserBookingsQuery) Validate() error {
	_, err := domainbooking.ParseHistoryFilter(q.Status, q.CheckIn)
	return err
}

type ListUserBookingsHandler struct {
	Bookings policies.BookingGateway
}

func (h *ListUserBookingsHandler) Handle(ctx context.Context, q ListUserBookingsQuery) (dto.BookingHistory, error) {
	principal, err := auth.RequireRole(ctx, q.RequiredRole())
	if err != nil {
		return dto.BookingHistory{}, err
	}
	filter, err := domainbooking.ParseHistoryFilter(q.Status, q.CheckIn)
	if err != nil {
		return dto.BookingHistory{}, err
	}
	userID := strings.TrimSpace(q.UserID)
	if userID == "" {
		userID = principal.UserID
	}
	if !canSee(principal, userID) {
		return dto.BookingHistory{}, auth.ErrForbidden
	}
	list, err := h.Bookings.ListUserBookings(ctx, userID)
	if err != nil {
		return dto.BookingHistory{}, err
	}
	return dto.MapHistory(domainbooking.History(list, filter), filter), nil
}

func canSee(p auth.Principal, ownerID string) bool {
	return ownerID == "" || ownerID == p.UserID || p.HasRole(auth.RoleAdmin)
}

var _ queries.Handler[GetBookingQuery, dto.BookingView] = (*GetBookingHandler)(nil)
var _ queries.Handler[ListUserBookingsQuery, dto.BookingHistory] = (*ListUserBookingsHandler)(nil)

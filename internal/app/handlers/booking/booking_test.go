package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hotelfront/internal/app/outbox"
	"hotelfront/internal/domain/auth"
	domainbooking "hotelfront/internal/domain/booking"
	"hotelfront/internal/domain/payments"
	"hotelfront/internal/domain/shared/validation"
)

type bookingsMock struct{ mock.Mock }

func (m *bookingsMock) CreateBooking(ctx context.Context, req domainbooking.Request) (domainbooking.Booking, error) {
	args := m.Called(req)
	return args.Get(0).(domainbooking.Booking), args.Error(1)
}

func (m *bookingsMock) GetBooking(ctx context.Context, id string) (domainbooking.Booking, error) {
	args := m.Called(id)
	return args.Get(0).(domainbooking.Booking), args.Error(1)
}

func (m *bookingsMock) ListUserBookings(ctx context.Context, userID string) ([]domainbooking.Booking, error) {
	args := m.Called(userID)
	return args.Get(0).([]domainbooking.Booking), args.Error(1)
}

type paymentsMock struct{ mock.Mock }

func (m *paymentsMock) CreateCheckoutSession(ctx context.Context, bookingID string) (payments.CheckoutSecret, error) {
	args := m.Called(bookingID)
	return args.Get(0).(payments.CheckoutSecret), args.Error(1)
}

func (m *paymentsMock) CheckoutSession(ctx context.Context, sessionID string) (payments.CheckoutSession, error) {
	args := m.Called(sessionID)
	return args.Get(0).(payments.CheckoutSession), args.Error(1)
}

type recordingOutbox struct{ records []outbox.EventRecord }

func (o *recordingOutbox) Add(_ context.Context, rec outbox.EventRecord) error {
	o.records = append(o.records, rec)
	return nil
}

var today = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func clock() time.Time { return today }

func guestCtx() context.Context {
	return auth.ContextWithPrincipal(context.Background(), auth.Principal{UserID: "u1", Name: "Ann"})
}

func day(offset int) time.Time {
	return time.Date(2026, 3, 10+offset, 0, 0, 0, 0, time.UTC)
}

func TestCreateBookingSubmitsRequestAndRecordsEvent(t *testing.T) {
	gw := &bookingsMock{}
	box := &recordingOutbox{}
	gw.On("CreateBooking", domainbooking.Request{HotelID: "h1", CheckIn: day(1), CheckOut: day(4), Nights: 3}).
		Return(domainbooking.Booking{ID: "b1", HotelID: "h1", UserID: "u1", CheckIn: day(1), CheckOut: day(4)}, nil)
	h := &CreateBookingHandler{Bookings: gw, Outbox: box, Now: clock}

	res, err := h.Handle(guestCtx(), CreateBookingCommand{HotelID: "h1", CheckIn: day(1), CheckOut: day(4)})

	require.NoError(t, err)
	assert.Equal(t, "b1", res.Booking.ID)
	assert.Equal(t, "/booking/payment?bookingId=b1", res.PaymentURL)
	require.Len(t, box.records, 1)
	assert.Equal(t, "booking.requested", box.records[0].Name)
}

func TestCreateBookingRejectsInvalidFormWithoutCallingBackend(t *testing.T) {
	gw := &bookingsMock{}
	h := &CreateBookingHandler{Bookings: gw, Outbox: &recordingOutbox{}, Now: clock}

	_, err := h.Handle(guestCtx(), CreateBookingCommand{HotelID: "h1", CheckIn: day(-1), CheckOut: day(-1)})

	ie, ok := validation.AsInputError(err)
	require.True(t, ok)
	assert.Equal(t, []string{domainbooking.MsgCheckInInPast}, ie.Messages(domainbooking.FieldCheckIn))
	assert.Equal(t, []string{domainbooking.MsgCheckOutBeforeCheckIn}, ie.Messages(domainbooking.FieldCheckOut))
	gw.AssertNotCalled(t, "CreateBooking", mock.Anything)
}

func TestCreateBookingRequiresSignIn(t *testing.T) {
	h := &CreateBookingHandler{Bookings: &bookingsMock{}, Now: clock}

	_, err := h.Handle(context.Background(), CreateBookingCommand{HotelID: "h1", CheckIn: day(1), CheckOut: day(2)})

	assert.ErrorIs(t, err, auth.ErrUnauthorized)
}

func TestCreateBookingWithoutIDFails(t *testing.T) {
	gw := &bookingsMock{}
	gw.On("CreateBooking", mock.Anything).Return(domainbooking.Booking{}, nil)
	h := &CreateBookingHandler{Bookings: gw, Outbox: &recordingOutbox{}, Now: clock}

	_, err := h.Handle(guestCtx(), CreateBookingCommand{HotelID: "h1", CheckIn: day(0), CheckOut: day(1)})

	assert.ErrorIs(t, err, ErrMissingBookingID)
}

func TestBookAndPayRunsBothStepsInOrder(t *testing.T) {
	gw := &bookingsMock{}
	pay := &paymentsMock{}
	box := &recordingOutbox{}
	gw.On("CreateBooking", mock.Anything).Return(domainbooking.Booking{ID: "b2", HotelID: "h1"}, nil).Once()
	pay.On("CreateCheckoutSession", "b2").Return(payments.CheckoutSecret{ClientSecret: "cs_123"}, nil).Once()
	h := &BookAndPayHandler{Bookings: gw, Payments: pay, Outbox: box, Now: clock}

	res, err := h.Handle(guestCtx(), BookAndPayCommand{HotelID: "h1", CheckIn: day(2), CheckOut: day(5)})

	require.NoError(t, err)
	assert.Equal(t, "cs_123", res.ClientSecret)
	assert.Equal(t, 3, res.Booking.Nights)
	require.Len(t, box.records, 2)
	assert.Equal(t, "checkout.session_created", box.records[1].Name)
	gw.AssertExpectations(t)
	pay.AssertExpectations(t)
}

func TestBookAndPayReportsBookingWhenCheckoutFails(t *testing.T) {
	gw := &bookingsMock{}
	pay := &paymentsMock{}
	boom := errors.New("stripe down")
	gw.On("CreateBooking", mock.Anything).Return(domainbooking.Booking{ID: "b3"}, nil)
	pay.On("CreateCheckoutSession", "b3").Return(payments.CheckoutSecret{}, boom)
	box := &recordingOutbox{}
	h := &BookAndPayHandler{Bookings: gw, Payments: pay, Outbox: box, Now: clock}

	_, err := h.Handle(guestCtx(), BookAndPayCommand{HotelID: "h1", CheckIn: day(2), CheckOut: day(3)})

	var setup *PaymentSetupError
	require.ErrorAs(t, err, &setup)
	assert.Equal(t, "b3", setup.BookingID)
	assert.True(t, setup.KeepsWrites())
	require.Len(t, box.records, 1)
	assert.Equal(t, "booking.requested", box.records[0].Name)
	assert.Equal(t, "/booking/payment?bookingId=b3", setup.PaymentURL())
	assert.ErrorIs(t, err, boom)
}

func TestBookAndPayStopsWhenBookingFails(t *testing.T) {
	gw := &bookingsMock{}
	pay := &paymentsMock{}
	boom := errors.New("sold out")
	gw.On("CreateBooking", mock.Anything).Return(domainbooking.Booking{}, boom)
	h := &BookAndPayHandler{Bookings: gw, Payments: pay, Now: clock}

	_, err := h.Handle(guestCtx(), BookAndPayCommand{HotelID: "h1", CheckIn: day(2), CheckOut: day(3)})

	assert.ErrorIs(t, err, boom)
	pay.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything)
}

func TestGetBookingChecksOwnership(t *testing.T) {
	gw := &bookingsMock{}
	gw.On("GetBooking", "b1").Return(domainbooking.Booking{ID: "b1", UserID: "someone-else"}, nil)
	h := &GetBookingHandler{Bookings: gw}

	_, err := h.Handle(guestCtx(), GetBookingQuery{ID: "b1"})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	admin := auth.ContextWithPrincipal(context.Background(), auth.Principal{UserID: "a", Roles: []string{auth.RoleAdmin}})
	view, err := h.Handle(admin, GetBookingQuery{ID: "b1"})
	require.NoError(t, err)
	assert.Equal(t, "b1", view.ID)
}

func TestListUserBookingsFiltersHistory(t *testing.T) {
	gw := &bookingsMock{}
	gw.On("ListUserBookings", "u1").Return([]domainbooking.Booking{
		{ID: "paid", PaymentStatus: domainbooking.PaymentPaid, CheckIn: day(1), CheckOut: day(2)},
		{ID: "pending", PaymentStatus: domainbooking.PaymentPending, CheckIn: day(1), CheckOut: day(2)},
	}, nil)
	h := &ListUserBookingsHandler{Bookings: gw}

	history, err := h.Handle(guestCtx(), ListUserBookingsQuery{Status: "paid"})

	require.NoError(t, err)
	require.Len(t, history.Bookings, 1)
	assert.Equal(t, "paid", history.Bookings[0].ID)

	_, err = h.Handle(guestCtx(), ListUserBookingsQuery{UserID: "u2"})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	assert.ErrorIs(t, ListUserBookingsQuery{Status: "refunded"}.Validate(), domainbooking.ErrInvalidStatusFilter)
}

package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelfront/internal/domain/booking"
	"hotelfront/internal/domain/hotels"
)

func TestResolveOpenRedirectsToPaymentPage(t *testing.T) {
	out := Resolve(CheckoutSession{Status: StatusOpen, BookingID: "b 1"})

	assert.Equal(t, OutcomeRedirect, out.Kind)
	assert.Equal(t, "/booking/payment?bookingId=b+1", out.Redirect)
}

func TestResolveCompleteBuildsSummary(t *testing.T) {
	in := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	session := CheckoutSession{
		Status:    StatusComplete,
		BookingID: "b1",
		Booking: &booking.Booking{
			ID:            "b1",
			CheckIn:       in,
			CheckOut:      in.AddDate(0, 0, 4),
			PaymentStatus: booking.PaymentPaid,
			PaymentMethod: "CARD",
		},
		Hotel: &hotels.Hotel{Name: "Harbor Inn", Location: "Oslo, Norway", Price: 90},
	}

	out := Resolve(session)

	require.Equal(t, OutcomeSummary, out.Kind)
	require.NotNil(t, out.Summary)
	assert.Equal(t, 4, out.Summary.Nights)
	assert.Equal(t, 360.0, out.Summary.Total)
	assert.Equal(t, "2025-05-01", out.Summary.CheckIn)
	assert.Equal(t, "2025-05-05", out.Summary.CheckOut)
	assert.Equal(t, "Harbor Inn", out.Summary.HotelName)
	assert.Equal(t, booking.PaymentPaid, out.Summary.PaymentStatus)
}

func TestResolvePaidIsTreatedAsComplete(t *testing.T) {
	out := Resolve(CheckoutSession{Status: "PAID", BookingID: "b2"})

	assert.Equal(t, OutcomeSummary, out.Kind)
	assert.Equal(t, "b2", out.Summary.BookingID)
}

func TestResolveUnknownStatus(t *testing.T) {
	out := Resolve(CheckoutSession{Status: "expired"})

	assert.Equal(t, OutcomeUnknown, out.Kind)
	assert.NotEmpty(t, out.Message)
}

package reviews

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hotelfront/internal/app/outbox"
	"hotelfront/internal/domain/auth"
	domainreviews "hotelfront/internal/domain/reviews"
	"hotelfront/internal/domain/shared/validation"
)

type reviewsMock struct{ mock.Mock }

func (m *reviewsMock) SubmitReview(ctx context.Context, sub domainreviews.Submission) (domainreviews.Review, error) {
	args := m.Called(sub)
	return args.Get(0).(domainreviews.Review), args.Error(1)
}

type invalidatorMock struct{ mock.Mock }

func (m *invalidatorMock) InvalidateHotel(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func (m *invalidatorMock) InvalidateLocations(ctx context.Context) error {
	return m.Called().Error(0)
}

type recordingOutbox struct{ records []outbox.EventRecord }

func (o *recordingOutbox) Add(_ context.Context, rec outbox.EventRecord) error {
	o.records = append(o.records, rec)
	return nil
}

func TestSubmitReviewFillsAuthorFromPrincipal(t *testing.T) {
	gw := &reviewsMock{}
	inv := &invalidatorMock{}
	box := &recordingOutbox{}
	gw.On("SubmitReview", domainreviews.Submission{
		HotelID: "h1", Comment: "Lovely", Rating: 5, UserID: "u1", UserName: domainreviews.AnonymousName,
	}).Return(domainreviews.Review{ID: "r1", Rating: 5}, nil)
	inv.On("InvalidateHotel", "h1").Return(errors.New("cache down"))
	h := &SubmitReviewHandler{Reviews: gw, Invalidator: inv, Outbox: box}
	ctx := auth.ContextWithPrincipal(context.Background(), auth.Principal{UserID: "u1"})

	review, err := h.Handle(ctx, SubmitReviewCommand{HotelID: "h1", Comment: "Lovely", Rating: 5})

	require.NoError(t, err)
	assert.Equal(t, "h1", review.HotelID)
	require.Len(t, box.records, 1)
	assert.Equal(t, "review.submitted", box.records[0].Name)
	inv.AssertExpectations(t)
}

func TestSubmitReviewValidation(t *testing.T) {
	gw := &reviewsMock{}
	h := &SubmitReviewHandler{Reviews: gw, Outbox: &recordingOutbox{}}
	ctx := auth.ContextWithPrincipal(context.Background(), auth.Principal{UserID: "u1"})

	_, err := h.Handle(ctx, SubmitReviewCommand{HotelID: "h1", Rating: 9})

	ie, ok := validation.AsInputError(err)
	require.True(t, ok)
	assert.Len(t, ie.Fields(), 2)
	gw.AssertNotCalled(t, "SubmitReview", mock.Anything)

	_, err = h.Handle(context.Background(), SubmitReviewCommand{HotelID: "h1", Comment: "x", Rating: 3})
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
}

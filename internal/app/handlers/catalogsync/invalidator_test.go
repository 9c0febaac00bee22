package catalogsync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type catalogMock struct{ mock.Mock }

func (m *catalogMock) InvalidateHotel(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func (m *catalogMock) InvalidateLocations(ctx context.Context) error {
	return m.Called().Error(0)
}

type inboxMock struct{ seen map[string]bool }

func (i *inboxMock) Seen(_ context.Context, id string) (bool, error) {
	return i.seen[id], nil
}

func (i *inboxMock) Mark(_ context.Context, id string) error {
	i.seen[id] = true
	return nil
}

func TestHotelCreatedDropsHotelAndLocations(t *testing.T) {
	cat := &catalogMock{}
	cat.On("InvalidateHotel", "h1").Return(nil).Once()
	cat.On("InvalidateLocations").Return(nil).Once()
	inv := &Invalidator{Catalog: cat, Inbox: &inboxMock{seen: map[string]bool{}}}

	payload := []byte(`{"id":"e1","type":"hotel.created.v1","subject":"h1","data":{"hotelId":"h1"}}`)
	require.NoError(t, inv.Handle(context.Background(), "h1", payload))
	// redelivery is skipped
	require.NoError(t, inv.Handle(context.Background(), "h1", payload))

	cat.AssertExpectations(t)
}

func TestReviewSubmittedUsesDataWhenKeyMissing(t *testing.T) {
	cat := &catalogMock{}
	cat.On("InvalidateHotel", "h9").Return(nil).Once()
	inv := &Invalidator{Catalog: cat}

	err := inv.Handle(context.Background(), "", []byte(`{"id":"e2","type":"review.submitted.v1","data":{"hotelId":"h9"}}`))

	require.NoError(t, err)
	cat.AssertExpectations(t)
	cat.AssertNotCalled(t, "InvalidateLocations")
}

func TestIrrelevantAndMalformedEventsAreIgnored(t *testing.T) {
	cat := &catalogMock{}
	inv := &Invalidator{Catalog: cat}

	assert.NoError(t, inv.Handle(context.Background(), "b1", []byte(`{"id":"e3","type":"booking.requested.v1"}`)))
	assert.NoError(t, inv.Handle(context.Background(), "b1", []byte(`not json`)))
	cat.AssertNotCalled(t, "InvalidateHotel", mock.Anything)
}

func TestInvalidationErrorIsReturned(t *testing.T) {
	boom := errors.New("redis down")
	cat := &catalogMock{}
	cat.On("InvalidateHotel", "h1").Return(boom)
	inv := &Invalidator{Catalog: cat}

	err := inv.Handle(context.Background(), "h1", []byte(`{"id":"e4","type":"review.submitted.v1"}`))

	assert.ErrorIs(t, err, boom)
}

func TestFailedInvalidationIsNotMarkedSeen(t *testing.T) {
	boom := errors.New("redis down")
	cat := &catalogMock{}
	cat.On("InvalidateHotel", "h1").Return(boom).Once()
	cat.On("InvalidateHotel", "h1").Return(nil).Once()
	box := &inboxMock{seen: map[string]bool{}}
	inv := &Invalidator{Catalog: cat, Inbox: box}
	payload := []byte(`{"id":"e5","type":"review.submitted.v1","subject":"h1"}`)

	require.ErrorIs(t, inv.Handle(context.Background(), "h1", payload), boom)
	assert.False(t, box.seen["e5"])

	require.NoError(t, inv.Handle(context.Background(), "h1", payload))
	assert.True(t, box.seen["e5"])
	cat.AssertExpectations(t)
}

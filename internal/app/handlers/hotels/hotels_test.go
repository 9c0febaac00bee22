package hotels

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hotelfront/internal/app/listing"
	"hotelfront/internal/app/outbox"
	"hotelfront/internal/app/policies"
	"hotelfront/internal/domain/filters"
	domainhotels "hotelfront/internal/domain/hotels"
	"hotelfront/internal/domain/shared/validation"
)

type catalogMock struct{ mock.Mock }

func (m *catalogMock) ListHotels(ctx context.Context, q policies.CatalogQuery) (domainhotels.Page, error) {
	args := m.Called(q)
	return args.Get(0).(domainhotels.Page), args.Error(1)
}

func (m *catalogMock) SearchHotels(ctx context.Context, query string) ([]domainhotels.Hotel, error) {
	args := m.Called(query)
	return args.Get(0).([]domainhotels.Hotel), args.Error(1)
}

func (m *catalogMock) GetHotel(ctx context.Context, id string) (domainhotels.Hotel, error) {
	args := m.Called(id)
	return args.Get(0).(domainhotels.Hotel), args.Error(1)
}

func (m *catalogMock) ListLocations(ctx context.Context) ([]domainhotels.Location, error) {
	args := m.Called()
	return args.Get(0).([]domainhotels.Location), args.Error(1)
}

func (m *catalogMock) CreateHotel(ctx context.Context, p domainhotels.CreateParams) (domainhotels.Hotel, error) {
	args := m.Called(p)
	return args.Get(0).(domainhotels.Hotel), args.Error(1)
}

type imagesMock struct{ mock.Mock }

func (m *imagesMock) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	args := m.Called(key, contentType)
	return args.String(0), args.Error(1)
}

type recordingOutbox struct{ records []outbox.EventRecord }

func (o *recordingOutbox) Add(_ context.Context, rec outbox.EventRecord) error {
	o.records = append(o.records, rec)
	return nil
}

func TestListHotelsUsesDefaultLimitAndBuildsLinks(t *testing.T) {
	state := filters.ParseQuery("location=Paris&page=1")
	cat := &catalogMock{}
	cat.On("ListHotels", policies.CatalogQuery{Filters: state, Limit: DefaultPageSize}).
		Return(domainhotels.Page{Hotels: []domainhotels.Hotel{{ID: "h1"}}, TotalPages: 2, TotalCount: 13}, nil)
	cat.On("ListLocations").Return([]domainhotels.Location{{Name: "Paris"}, {Name: "Rome"}}, nil)
	h := &ListHotelsHandler{Catalog: cat}

	got, err := h.Handle(context.Background(), ListHotelsQuery{Filters: state, BasePath: "/hotels"})

	require.NoError(t, err)
	assert.Equal(t, listing.ModeBrowse, got.Meta.Mode)
	assert.Equal(t, 13, got.Meta.TotalCount)
	require.NotNil(t, got.Links)
	assert.Equal(t, "/hotels?location=Paris&page=2", got.Links.Next)
	assert.Len(t, got.Links.Locations, 2)
}

func TestListHotelsToleratesLocationFailure(t *testing.T) {
	cat := &catalogMock{}
	cat.On("ListHotels", mock.Anything).Return(domainhotels.Page{TotalPages: 1}, nil)
	cat.On("ListLocations").Return([]domainhotels.Location(nil), errors.New("down"))
	h := &ListHotelsHandler{Catalog: cat}

	got, err := h.Handle(context.Background(), ListHotelsQuery{Filters: filters.Clear(), Limit: 6, BasePath: "/hotels"})

	require.NoError(t, err)
	require.NotNil(t, got.Links)
	assert.Empty(t, got.Links.Locations)
	assert.Equal(t, 6, got.Meta.Limit)
}

func TestListHotelsPropagatesBackendError(t *testing.T) {
	boom := errors.New("backend 500")
	cat := &catalogMock{}
	cat.On("ListHotels", mock.Anything).Return(domainhotels.Page{}, boom)
	h := &ListHotelsHandler{Catalog: cat}

	_, err := h.Handle(context.Background(), ListHotelsQuery{Filters: filters.Clear()})

	assert.ErrorIs(t, err, boom)
	cat.AssertNotCalled(t, "ListLocations")
}

func TestSearchHotels(t *testing.T) {
	cat := &catalogMock{}
	cat.On("SearchHotels", "sea view").Return([]domainhotels.Hotel{{ID: "a"}, {ID: "b"}}, nil)
	h := &SearchHotelsHandler{Catalog: cat}

	got, err := h.Handle(context.Background(), SearchHotelsQuery{Query: "sea view"})
	require.NoError(t, err)
	assert.Equal(t, listing.ModeSearch, got.Meta.Mode)
	assert.Equal(t, 2, got.Meta.TotalCount)

	_, err = h.Handle(context.Background(), SearchHotelsQuery{Query: ""})
	assert.ErrorIs(t, err, ErrQueryRequired)
	assert.ErrorIs(t, SearchHotelsQuery{}.Validate(), ErrQueryRequired)
}

func TestGetHotelRejectsBlankID(t *testing.T) {
	h := &GetHotelHandler{Catalog: &catalogMock{}}

	_, err := h.Handle(context.Background(), GetHotelQuery{ID: " "})

	assert.ErrorIs(t, err, domainhotels.ErrNotFound)
}

func validParams() domainhotels.CreateParams {
	return domainhotels.CreateParams{Name: " Alpine ", Description: "Quiet", Location: "Zermatt", Price: 240}
}

func TestCreateHotelUploadsImageAndRecordsEvent(t *testing.T) {
	cat := &catalogMock{}
	images := &imagesMock{}
	box := &recordingOutbox{}
	images.On("Upload", mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "hotels/") && strings.HasSuffix(key, ".jpg")
	}), "image/jpeg").Return("https://cdn/hotels/x.jpg", nil)
	cat.On("CreateHotel", mock.MatchedBy(func(p domainhotels.CreateParams) bool {
		return p.Name == "Alpine" && p.Image == "https://cdn/hotels/x.jpg"
	})).Return(domainhotels.Hotel{ID: "h7", Name: "Alpine", Location: "Zermatt"}, nil)
	h := &CreateHotelHandler{Catalog: cat, Images: images, Outbox: box}

	hotel, err := h.Handle(context.Background(), CreateHotelCommand{
		Params: validParams(),
		Upload: &ImageUpload{Filename: "front.JPG", ContentType: "image/jpeg", Body: bytes.NewReader([]byte{1})},
	})

	require.NoError(t, err)
	assert.Equal(t, "h7", hotel.ID)
	require.Len(t, box.records, 1)
	assert.Equal(t, "hotel.created", box.records[0].Name)
	assert.Equal(t, "h7", box.records[0].Aggregate)
	images.AssertExpectations(t)
}

func TestCreateHotelValidation(t *testing.T) {
	h := &CreateHotelHandler{Catalog: &catalogMock{}, Outbox: &recordingOutbox{}}

	_, err := h.Handle(context.Background(), CreateHotelCommand{Params: validParams()})

	ie, ok := validation.AsInputError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Image is required"}, ie.Messages(domainhotels.FieldImage))
}

func TestCreateHotelUploadNeedsImageStore(t *testing.T) {
	h := &CreateHotelHandler{Catalog: &catalogMock{}, Outbox: &recordingOutbox{}}

	_, err := h.Handle(context.Background(), CreateHotelCommand{
		Params: validParams(),
		Upload: &ImageUpload{Filename: "a.png", Body: bytes.NewReader(nil)},
	})

	assert.ErrorIs(t, err, ErrImageStoreMissing)
}

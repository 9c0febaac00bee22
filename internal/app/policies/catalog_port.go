package policies

import (
	"context"
	"io"

	"hotelfront/internal/domain/filters"
	"hotelfront/internal/domain/hotels"
)

// CatalogQuery is one page request against the hotel catalog.
type CatalogQuery struct {
	Filters filters.State
	Limit   int
}

type HotelCatalog interface {
	ListHotels(ctx context.Context, q CatalogQuery) (hotels.Page, error)
	SearchHotels(ctx context.Context, query string) ([]hotels.Hotel, error)
	GetHotel(ctx context.Context, id string) (hotels.Hotel, error)
	ListLocations(ctx context.Context) ([]hotels.Location, error)
	CreateHotel(ctx context.Context, params hotels.CreateParams) (hotels.Hotel, error)
}

// CatalogInvalidator drops cached catalog data after it changed upstream.
type CatalogInvalidator interface {
	InvalidateHotel(ctx context.Context, id string) error
	InvalidateLocations(ctx context.Context) error
}

// ImageStore keeps uploaded hotel images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}
